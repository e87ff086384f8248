// Package store persists simulation run history in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/omrisk/internal/model"
	"github.com/theirongolddev/omrisk/internal/pipeline"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned by LoadRun when no run has the given id.
var ErrNotFound = errors.New("run not found")

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store provides SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// RunRecord is a persisted run. Draws are not stored, only the scored output
// and the assumptions that produced it.
type RunRecord struct {
	RunID       string
	CreatedAt   time.Time
	Elapsed     time.Duration
	Summary     model.SummaryMetrics
	Assumptions model.Assumptions

	// Populated by LoadRun only.
	Drivers []model.VarianceContribution
}

// DefaultPath returns the XDG cache location of the run database.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "omrisk", "runs.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "omrisk", "runs.db")
}

// Open opens or creates the run database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening run db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the run database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a run summary with its drivers and assumptions.
func (s *Store) SaveRun(res *pipeline.Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id := res.RunID.String()
	sum := res.Summary
	_, err = tx.Exec(`INSERT OR REPLACE INTO runs
		(run_id, created_at, n_sims, random_seed, budget_buffer_pct, budget,
		 mean_annual_cost, std_annual_cost, p50_annual_cost, p90_annual_cost,
		 p95_annual_cost, p99_annual_cost, prob_over_budget,
		 avg_overrun_if_over_budget, expected_overrun, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, res.CreatedAt.UTC().Format(timeLayout),
		res.Config.NSims, res.Config.RandomSeed, res.Config.BudgetBufferPct, sum.Budget,
		sum.MeanAnnualCost, sum.StdAnnualCost, sum.P50AnnualCost, sum.P90AnnualCost,
		sum.P95AnnualCost, sum.P99AnnualCost, sum.ProbOverBudget,
		sum.AvgOverrunIfOverBudget, sum.ExpectedOverrun, res.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM run_drivers WHERE run_id = ?", id); err != nil {
		return err
	}
	for rank, d := range res.Drivers {
		_, err = tx.Exec(`INSERT INTO run_drivers
			(run_id, rank, category, annual_variance, variance_share)
			VALUES (?, ?, ?, ?, ?)`,
			id, rank+1, d.Category, d.AnnualVariance, d.VarianceShare,
		)
		if err != nil {
			return fmt.Errorf("inserting driver %s: %w", d.Category, err)
		}
	}

	if _, err := tx.Exec("DELETE FROM run_assumptions WHERE run_id = ?", id); err != nil {
		return err
	}
	for _, a := range res.Config.Assumptions().Categories {
		_, err = tx.Exec(`INSERT INTO run_assumptions
			(run_id, category, annual_mean, annual_vol_pct)
			VALUES (?, ?, ?, ?)`,
			id, a.Category, a.AnnualMean, a.AnnualVolPct,
		)
		if err != nil {
			return fmt.Errorf("inserting assumption %s: %w", a.Category, err)
		}
	}

	return tx.Commit()
}

const runColumns = `run_id, created_at, n_sims, random_seed, budget_buffer_pct, budget,
	mean_annual_cost, std_annual_cost, p50_annual_cost, p90_annual_cost,
	p95_annual_cost, p99_annual_cost, prob_over_budget,
	avg_overrun_if_over_budget, expected_overrun, elapsed_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(sc rowScanner) (RunRecord, error) {
	var r RunRecord
	var created string
	var elapsedMs int64
	sum := &r.Summary
	err := sc.Scan(
		&r.RunID, &created, &r.Assumptions.NSims, &r.Assumptions.RandomSeed,
		&r.Assumptions.BudgetBufferPct, &sum.Budget,
		&sum.MeanAnnualCost, &sum.StdAnnualCost, &sum.P50AnnualCost, &sum.P90AnnualCost,
		&sum.P95AnnualCost, &sum.P99AnnualCost, &sum.ProbOverBudget,
		&sum.AvgOverrunIfOverBudget, &sum.ExpectedOverrun, &elapsedMs,
	)
	if err != nil {
		return r, err
	}
	r.CreatedAt, _ = time.Parse(timeLayout, created)
	r.Elapsed = time.Duration(elapsedMs) * time.Millisecond
	return r, nil
}

// ListRuns returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	q := "SELECT " + runColumns + " FROM runs ORDER BY created_at DESC, run_id"
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LoadRun reads one run with its drivers (variance share order) and
// assumptions (category order).
func (s *Store) LoadRun(id string) (RunRecord, error) {
	r, err := scanRun(s.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE run_id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return r, err
	}

	driverRows, err := s.db.Query(`SELECT category, annual_variance, variance_share
		FROM run_drivers WHERE run_id = ? ORDER BY rank`, id)
	if err != nil {
		return r, err
	}
	defer func() { _ = driverRows.Close() }()
	for driverRows.Next() {
		var d model.VarianceContribution
		if err := driverRows.Scan(&d.Category, &d.AnnualVariance, &d.VarianceShare); err != nil {
			return r, err
		}
		r.Drivers = append(r.Drivers, d)
	}
	if err := driverRows.Err(); err != nil {
		return r, err
	}

	assumptionRows, err := s.db.Query(`SELECT category, annual_mean, annual_vol_pct
		FROM run_assumptions WHERE run_id = ? ORDER BY category`, id)
	if err != nil {
		return r, err
	}
	defer func() { _ = assumptionRows.Close() }()
	for assumptionRows.Next() {
		var a model.CategoryAssumption
		if err := assumptionRows.Scan(&a.Category, &a.AnnualMean, &a.AnnualVolPct); err != nil {
			return r, err
		}
		r.Assumptions.Categories = append(r.Assumptions.Categories, a)
	}
	return r, assumptionRows.Err()
}

// DeleteRun removes a run and its associated rows. Deleting an unknown id
// returns ErrNotFound.
func (s *Store) DeleteRun(id string) error {
	res, err := s.db.Exec("DELETE FROM runs WHERE run_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// RunCount returns the number of stored runs.
func (s *Store) RunCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}
