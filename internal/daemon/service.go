// Package daemon provides the long-running budget-risk scoring service.
package daemon

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/omrisk/internal/config"
	"github.com/theirongolddev/omrisk/internal/metrics"
	"github.com/theirongolddev/omrisk/internal/model"
	"github.com/theirongolddev/omrisk/internal/pipeline"
	"github.com/theirongolddev/omrisk/internal/store"
)

// RunStore persists scored runs. *store.Store satisfies it.
type RunStore interface {
	SaveRun(res *pipeline.Result) error
	ListRuns(limit int) ([]store.RunRecord, error)
	LoadRun(id string) (store.RunRecord, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	ConfigPath   string
	Addr         string
	Schedule     string // cron spec, e.g. "@every 1h" or "0 6 * * *"; empty disables
	EventsBuffer int
	Debounce     time.Duration
	Store        RunStore // optional

	// Optional overrides layered over the assumptions file on every score.
	NSims *int
	Seed  *int64
}

// Snapshot is a compact risk state for status and event payloads.
type Snapshot struct {
	At              time.Time `json:"at"`
	RunID           string    `json:"run_id"`
	NSims           int       `json:"n_sims"`
	Budget          float64   `json:"budget"`
	MeanAnnualCost  float64   `json:"mean_annual_cost"`
	P95AnnualCost   float64   `json:"p95_annual_cost"`
	ProbOverBudget  float64   `json:"prob_over_budget"`
	ExpectedOverrun float64   `json:"expected_overrun"`
	TopDriver       string    `json:"top_driver,omitempty"`
	TopDriverShare  float64   `json:"top_driver_share"`
	ElapsedMillis   int64     `json:"elapsed_ms"`
}

// Delta captures changes in risk between two scored runs.
type Delta struct {
	Budget          float64 `json:"budget"`
	MeanAnnualCost  float64 `json:"mean_annual_cost"`
	P95AnnualCost   float64 `json:"p95_annual_cost"`
	ProbOverBudget  float64 `json:"prob_over_budget"`
	ExpectedOverrun float64 `json:"expected_overrun"`
	TopDriver       bool    `json:"top_driver_changed"`
}

func (d Delta) isZero() bool {
	return d.Budget == 0 &&
		d.MeanAnnualCost == 0 &&
		d.P95AnnualCost == 0 &&
		d.ProbOverBudget == 0 &&
		d.ExpectedOverrun == 0 &&
		!d.TopDriver
}

// Event types.
const (
	EventSnapshot  = "snapshot"
	EventRiskDelta = "risk_delta"
)

// Event is emitted whenever the risk snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Trigger   string    `json:"trigger,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastRunAt       time.Time `json:"last_run_at"`
	Schedule        string    `json:"schedule,omitempty"`
	RunCount        int64     `json:"run_count"`
	ConfigPath      string    `json:"config_path"`
	StoreEnabled    bool      `json:"store_enabled"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	log     zerolog.Logger
	metrics *metrics.Collectors

	// scoreMu serializes scoring between the scheduler, the watcher and
	// manual triggers.
	scoreMu sync.Mutex

	mu          sync.RWMutex
	startedAt   time.Time
	lastRunAt   time.Time
	runCount    int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	summary     model.SummaryMetrics
	drivers     []model.VarianceContribution
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config, log zerolog.Logger) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8790"
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 250 * time.Millisecond
	}

	return &Service{
		cfg:       cfg,
		log:       log.With().Str("component", "daemon").Logger(),
		metrics:   metrics.New(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// scoreOnce reloads the assumptions file, runs the pipeline and publishes
// the outcome. trigger names what caused the run.
func (s *Service) scoreOnce(trigger string) {
	s.scoreMu.Lock()
	defer s.scoreMu.Unlock()

	file, err := config.Load(s.cfg.ConfigPath)
	if err != nil {
		s.recordFailure(metrics.ResultError, trigger, err)
		return
	}
	cfg := file.CostModel().WithOverrides(s.cfg.NSims, s.cfg.Seed)

	res, err := pipeline.Run(cfg, pipeline.Options{Logger: s.log})
	if err != nil {
		result := metrics.ResultError
		var cerr *config.ConfigError
		if errors.As(err, &cerr) {
			result = metrics.ResultInvalid
		}
		s.recordFailure(result, trigger, err)
		return
	}

	s.metrics.ObserveRun(res.Summary, res.Drivers, res.Elapsed)

	if s.cfg.Store != nil {
		if err := s.cfg.Store.SaveRun(res); err != nil {
			s.log.Warn().Err(err).Str("run_id", res.RunID.String()).Msg("saving run failed")
		}
	}

	snap := snapshotFromResult(res)
	now := time.Now()

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.summary = res.Summary
	s.drivers = res.Drivers
	s.lastRunAt = now
	s.runCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      EventSnapshot,
			Trigger:   trigger,
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      EventRiskDelta,
			Trigger:   trigger,
			Timestamp: now,
			Snapshot:  snap,
			Delta:     delta,
		}
		publish = true
	}
	s.mu.Unlock()

	s.log.Info().
		Str("trigger", trigger).
		Str("run_id", snap.RunID).
		Float64("prob_over_budget", snap.ProbOverBudget).
		Bool("changed", publish).
		Msg("scored")

	if publish {
		s.publishEvent(ev)
	}
}

func (s *Service) recordFailure(result, trigger string, err error) {
	s.metrics.ObserveFailure(result)

	s.mu.Lock()
	s.lastError = err.Error()
	s.lastRunAt = time.Now()
	s.runCount++
	s.mu.Unlock()

	s.log.Error().Err(err).Str("trigger", trigger).Str("result", result).Msg("scoring failed")
}

func snapshotFromResult(res *pipeline.Result) Snapshot {
	snap := Snapshot{
		At:              res.CreatedAt,
		RunID:           res.RunID.String(),
		NSims:           res.Config.NSims,
		Budget:          res.Summary.Budget,
		MeanAnnualCost:  res.Summary.MeanAnnualCost,
		P95AnnualCost:   res.Summary.P95AnnualCost,
		ProbOverBudget:  res.Summary.ProbOverBudget,
		ExpectedOverrun: res.Summary.ExpectedOverrun,
		ElapsedMillis:   res.Elapsed.Milliseconds(),
	}
	if len(res.Drivers) > 0 {
		snap.TopDriver = res.Drivers[0].Category
		snap.TopDriverShare = res.Drivers[0].VarianceShare
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Budget:          curr.Budget - prev.Budget,
		MeanAnnualCost:  curr.MeanAnnualCost - prev.MeanAnnualCost,
		P95AnnualCost:   curr.P95AnnualCost - prev.P95AnnualCost,
		ProbOverBudget:  curr.ProbOverBudget - prev.ProbOverBudget,
		ExpectedOverrun: curr.ExpectedOverrun - prev.ExpectedOverrun,
		TopDriver:       curr.TopDriver != prev.TopDriver,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastRunAt:       s.lastRunAt,
		Schedule:        s.cfg.Schedule,
		RunCount:        s.runCount,
		ConfigPath:      s.cfg.ConfigPath,
		StoreEnabled:    s.cfg.Store != nil,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
