package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/me/wisched/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Run CRUD ---

func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.Run) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", run.ID)

	statsJSON, err := json.Marshal(run.TaskStats)
	if err != nil {
		return fmt.Errorf("marshal task stats: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, policy, horizon, label, total_jobs, missed_deadlines,
		 avg_response_time, min_response_time, max_response_time, cpu_utilization,
		 task_stats, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Policy, run.Horizon, run.Label,
		run.TotalJobs, run.MissedDeadlines,
		run.AvgResponseTime, run.MinResponseTime, run.MaxResponseTime, run.CPUUtilization,
		string(statsJSON), run.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "id", id)
	return s.scanRun(s.db.QueryRowContext(ctx,
		`SELECT id, policy, horizon, label, total_jobs, missed_deadlines,
		 avg_response_time, min_response_time, max_response_time, cpu_utilization,
		 task_stats, created_at
		 FROM runs WHERE id = ?`, id))
}

func (s *SQLiteStore) ListRuns(ctx context.Context, opts model.ListOptions) ([]*model.Run, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "runs", "limit", opts.Limit, "offset", opts.Offset)
	opts.Clamp()

	var whereClauses []string
	var countArgs []any

	if opts.Policy != "" {
		whereClauses = append(whereClauses, "policy = ?")
		countArgs = append(countArgs, opts.Policy)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM runs` + whereSQL
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `SELECT id, policy, horizon, label, total_jobs, missed_deadlines,
		avg_response_time, min_response_time, max_response_time, cpu_utilization,
		task_stats, created_at
		FROM runs` + whereSQL + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	listArgs := append(countArgs, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := s.scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "runs", "id", id)

	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// --- Job details ---

// CreateJobs inserts the job rows of a run in one transaction.
func (s *SQLiteStore) CreateJobs(ctx context.Context, runID string, jobs []model.JobRecord) error {
	s.logger.Debug("sql", "op", "insert", "table", "jobs", "run_id", runID, "count", len(jobs))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO jobs (run_id, task, number, arrival, start, finish, deadline, response, missed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, j := range jobs {
		missed := 0
		if j.Missed {
			missed = 1
		}
		if _, err := stmt.ExecContext(ctx,
			runID, j.Task, j.Number, j.Arrival, j.Start, j.Finish, j.Deadline, j.Response, missed,
		); err != nil {
			return fmt.Errorf("insert job %s: %w", j.JobID(), err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) ListJobs(ctx context.Context, runID string) ([]model.JobRecord, error) {
	s.logger.Debug("sql", "op", "list", "table", "jobs", "run_id", runID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, task, number, arrival, start, finish, deadline, response, missed
		 FROM jobs WHERE run_id = ? ORDER BY arrival, number`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []model.JobRecord
	for rows.Next() {
		var j model.JobRecord
		var missed int
		if err := rows.Scan(&j.RunID, &j.Task, &j.Number, &j.Arrival, &j.Start,
			&j.Finish, &j.Deadline, &j.Response, &missed); err != nil {
			return nil, err
		}
		j.Missed = missed != 0
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// --- scan helpers ---

type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanRun(row scanner) (*model.Run, error) {
	var run model.Run
	var statsJSON, createdAt string

	err := row.Scan(&run.ID, &run.Policy, &run.Horizon, &run.Label,
		&run.TotalJobs, &run.MissedDeadlines,
		&run.AvgResponseTime, &run.MinResponseTime, &run.MaxResponseTime, &run.CPUUtilization,
		&statsJSON, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(statsJSON), &run.TaskStats); err != nil {
		return nil, fmt.Errorf("unmarshal task stats: %w", err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return &run, nil
}
