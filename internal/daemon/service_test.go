package daemon

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/omrisk/internal/metrics"
	"github.com/theirongolddev/omrisk/internal/store"
)

const testAssumptions = `
[simulation]
n_sims = 200
random_seed = 7

[budget]
buffer_pct = 0.03

[annual_mean]
labor = 1200000.0
maintenance = 400000.0

[annual_vol_pct]
labor = 0.05
maintenance = 0.20
`

func writeAssumptions(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Budget:          1_000_000,
		MeanAnnualCost:  950_000,
		P95AnnualCost:   1_100_000,
		ProbOverBudget:  0.20,
		ExpectedOverrun: 8_000,
		TopDriver:       "maintenance",
	}
	curr := Snapshot{
		Budget:          1_000_000,
		MeanAnnualCost:  975_000,
		P95AnnualCost:   1_150_000,
		ProbOverBudget:  0.26,
		ExpectedOverrun: 11_500,
		TopDriver:       "labor",
	}

	delta := diffSnapshots(prev, curr)
	assert.Equal(t, 0.0, delta.Budget)
	assert.Equal(t, 25_000.0, delta.MeanAnnualCost)
	assert.Equal(t, 50_000.0, delta.P95AnnualCost)
	assert.True(t, math.Abs(delta.ProbOverBudget-0.06) < 1e-9)
	assert.Equal(t, 3_500.0, delta.ExpectedOverrun)
	assert.True(t, delta.TopDriver)
	assert.False(t, delta.isZero())

	// Run identity and timing are not risk changes.
	same := curr
	same.RunID = "other"
	same.ElapsedMillis = 99
	assert.True(t, diffSnapshots(curr, same).isZero())
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, zerolog.Nop())

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Len(t, s.events, 2)
	assert.Equal(t, int64(2), s.events[0].ID)
	assert.Equal(t, int64(3), s.events[1].ID)
}

func TestScoreOnce_SnapshotThenDeltaOnlyOnChange(t *testing.T) {
	path := writeAssumptions(t, t.TempDir(), testAssumptions)
	s := New(Config{ConfigPath: path}, zerolog.Nop())

	s.scoreOnce("startup")
	s.scoreOnce("schedule")

	s.mu.RLock()
	require.Len(t, s.events, 1, "identical re-score must not publish a delta")
	assert.Equal(t, EventSnapshot, s.events[0].Type)
	assert.Equal(t, "startup", s.events[0].Trigger)
	assert.Equal(t, int64(2), s.runCount)
	s.mu.RUnlock()

	writeAssumptions(t, filepath.Dir(path), testAssumptions+"\n")
	// Whitespace-only edit keeps assumptions identical.
	s.scoreOnce("reload")
	s.mu.RLock()
	assert.Len(t, s.events, 1)
	s.mu.RUnlock()

	changed := `
[simulation]
n_sims = 200
random_seed = 7

[budget]
buffer_pct = 0.0

[annual_mean]
labor = 1200000.0
maintenance = 400000.0

[annual_vol_pct]
labor = 0.05
maintenance = 0.20
`
	writeAssumptions(t, filepath.Dir(path), changed)
	s.scoreOnce("reload")

	s.mu.RLock()
	defer s.mu.RUnlock()
	require.Len(t, s.events, 2)
	ev := s.events[1]
	assert.Equal(t, EventRiskDelta, ev.Type)
	assert.Less(t, ev.Delta.Budget, 0.0)
	assert.GreaterOrEqual(t, ev.Delta.ProbOverBudget, 0.0)
	assert.Equal(t, 4.0, testutil.ToFloat64(s.metrics.RunsTotal.WithLabelValues(metrics.ResultOK)))
}

func TestScoreOnce_InvalidConfig(t *testing.T) {
	path := writeAssumptions(t, t.TempDir(), `
[simulation]
n_sims = 0

[annual_mean]
labor = 1.0

[annual_vol_pct]
labor = 0.1
`)
	s := New(Config{ConfigPath: path}, zerolog.Nop())
	s.scoreOnce("startup")

	st := s.snapshotStatus()
	assert.Contains(t, st.LastError, "n_sims")
	assert.Equal(t, 0, st.EventCount)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.RunsTotal.WithLabelValues(metrics.ResultInvalid)))
}

func TestScoreOnce_MalformedFile(t *testing.T) {
	path := writeAssumptions(t, t.TempDir(), "[simulation\n")
	s := New(Config{ConfigPath: path}, zerolog.Nop())
	s.scoreOnce("startup")

	assert.Contains(t, s.snapshotStatus().LastError, "parsing config")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.RunsTotal.WithLabelValues(metrics.ResultError)))
}

func TestScoreOnce_OverridesAndStore(t *testing.T) {
	dir := t.TempDir()
	path := writeAssumptions(t, dir, testAssumptions)
	db, err := store.Open(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sims := 50
	s := New(Config{ConfigPath: path, Store: db, NSims: &sims}, zerolog.Nop())
	s.scoreOnce("startup")

	assert.Equal(t, 50, s.snapshotStatus().Summary.NSims)
	runs, err := db.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 50, runs[0].Assumptions.NSims)
}

var _ RunStore = (*store.Store)(nil)
