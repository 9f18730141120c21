package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Runs table: one row per completed aggregation stage
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    strategy TEXT NOT NULL,            -- perkey or grouped
    input TEXT NOT NULL,
    output_path TEXT NOT NULL,
    sample_bound INTEGER NOT NULL,
    records_read INTEGER NOT NULL,
    sampled INTEGER NOT NULL,
    valid_records INTEGER NOT NULL,
    distinct_keys INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_strategy ON runs(strategy);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`
