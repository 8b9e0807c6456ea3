package store

import (
	"context"
	"database/sql"
	"strings"
)

// schema contains the DDL for all wisched tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id                TEXT PRIMARY KEY,
		policy            TEXT NOT NULL,
		horizon           INTEGER NOT NULL,
		total_jobs        INTEGER NOT NULL DEFAULT 0,
		missed_deadlines  INTEGER NOT NULL DEFAULT 0,
		avg_response_time REAL NOT NULL DEFAULT 0,
		min_response_time INTEGER NOT NULL DEFAULT 0,
		max_response_time INTEGER NOT NULL DEFAULT 0,
		cpu_utilization   REAL NOT NULL DEFAULT 0,
		task_stats        TEXT NOT NULL DEFAULT '{}',
		created_at        TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS jobs (
		run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		task     TEXT NOT NULL,
		number   INTEGER NOT NULL,
		arrival  INTEGER NOT NULL,
		start    INTEGER NOT NULL,
		finish   INTEGER NOT NULL,
		deadline INTEGER NOT NULL,
		response INTEGER NOT NULL,
		missed   INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, task, number)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_policy ON runs(policy)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_run_id ON jobs(run_id)`,
	// Supports the missed-deadline drilldown query
	`CREATE INDEX IF NOT EXISTS idx_jobs_run_missed ON jobs(run_id, missed)`,
}

// alterStatements are column additions that need special handling since
// SQLite doesn't support IF NOT EXISTS for ALTER TABLE ADD COLUMN.
var alterStatements = []struct {
	table    string
	column   string
	alterSQL string
	indexSQL string // Optional index to create after column is added
}{
	{
		table:    "runs",
		column:   "label",
		alterSQL: "ALTER TABLE runs ADD COLUMN label TEXT NOT NULL DEFAULT ''",
		indexSQL: "CREATE INDEX IF NOT EXISTS idx_runs_label ON runs(label) WHERE label != ''",
	},
}

// migrate executes all schema DDL statements and alter migrations.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	// Execute ALTER TABLE statements idempotently.
	for _, alter := range alterStatements {
		if err := addColumnIfNotExists(ctx, db, alter.table, alter.column, alter.alterSQL); err != nil {
			return err
		}
		if alter.indexSQL != "" {
			if _, err := db.ExecContext(ctx, alter.indexSQL); err != nil {
				return err
			}
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(ctx context.Context, db *sql.DB, table, column, alterSQL string) error {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue *string
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return err
		}
		if strings.EqualFold(name, column) {
			return nil // Column already exists
		}
	}

	// Column doesn't exist, add it.
	_, err = db.ExecContext(ctx, alterSQL)
	return err
}
