package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id                     TEXT PRIMARY KEY,
    created_at                 TEXT NOT NULL,
    n_sims                     INTEGER NOT NULL,
    random_seed                INTEGER NOT NULL,
    budget_buffer_pct          REAL NOT NULL,
    budget                     REAL NOT NULL,
    mean_annual_cost           REAL NOT NULL,
    std_annual_cost            REAL NOT NULL,
    p50_annual_cost            REAL NOT NULL,
    p90_annual_cost            REAL NOT NULL,
    p95_annual_cost            REAL NOT NULL,
    p99_annual_cost            REAL NOT NULL,
    prob_over_budget           REAL NOT NULL,
    avg_overrun_if_over_budget REAL NOT NULL,
    expected_overrun           REAL NOT NULL,
    elapsed_ms                 INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_drivers (
    run_id          TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    rank            INTEGER NOT NULL,
    category        TEXT NOT NULL,
    annual_variance REAL NOT NULL,
    variance_share  REAL NOT NULL,
    PRIMARY KEY (run_id, category)
);

CREATE TABLE IF NOT EXISTS run_assumptions (
    run_id         TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    category       TEXT NOT NULL,
    annual_mean    REAL NOT NULL,
    annual_vol_pct REAL NOT NULL,
    PRIMARY KEY (run_id, category)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`
