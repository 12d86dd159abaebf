package refresh

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
	"github.com/google/uuid"
)

// Store records refresh cycles. Nothing here feeds back into the page.
type Store interface {
	Start(ctx context.Context, trigger string) (*store.RefreshRun, error)
	Finish(ctx context.Context, run *store.RefreshRun, runErr error) error
	ListRecent(ctx context.Context, limit int) ([]store.RefreshRun, error)
}

// keepRuns bounds the history table; older runs are pruned on Finish.
const keepRuns = 500

type defaultStore struct {
	db   *sql.DB
	now  func() time.Time
	keep int
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{
		db:   db,
		now:  func() time.Time { return time.Now().UTC() },
		keep: keepRuns,
	}, nil
}

type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *defaultStore) conn(ctx context.Context) conn {
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		return tx
	}
	return s.db
}

func (s *defaultStore) Start(ctx context.Context, trigger string) (*store.RefreshRun, error) {
	run := &store.RefreshRun{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		StartedAt: s.now(),
		Status:    store.RefreshStatusRunning,
	}

	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO refresh_runs (id, trigger_kind, started_at, status) VALUES (?, ?, ?, ?)`,
		run.ID, run.Trigger, run.StartedAt, run.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("insert refresh run: %w", err)
	}
	return run, nil
}

func (s *defaultStore) Finish(ctx context.Context, run *store.RefreshRun, runErr error) error {
	if run == nil {
		return fmt.Errorf("refresh run is nil")
	}

	finished := s.now()
	run.FinishedAt = &finished
	run.Status = store.RefreshStatusSucceeded
	run.Error = nil
	if runErr != nil {
		msg := runErr.Error()
		run.Status = store.RefreshStatusFailed
		run.Error = &msg
	}

	return duckdb.InTransaction(ctx, s.db, func(ctx context.Context) error {
		res, err := s.conn(ctx).ExecContext(ctx,
			`UPDATE refresh_runs SET finished_at = ?, status = ?, error = ? WHERE id = ?`,
			finished, run.Status, run.Error, run.ID,
		)
		if err != nil {
			return fmt.Errorf("update refresh run: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("refresh run %s not found", run.ID)
		}

		_, err = s.conn(ctx).ExecContext(ctx, `
			DELETE FROM refresh_runs
			WHERE id NOT IN (
				SELECT id FROM refresh_runs ORDER BY started_at DESC LIMIT ?
			)`, s.keep)
		if err != nil {
			return fmt.Errorf("prune refresh runs: %w", err)
		}
		return nil
	})
}

func (s *defaultStore) ListRecent(ctx context.Context, limit int) ([]store.RefreshRun, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, trigger_kind, started_at, finished_at, status, error
		FROM refresh_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query refresh runs: %w", err)
	}
	defer rows.Close()

	var runs []store.RefreshRun
	for rows.Next() {
		var (
			run      store.RefreshRun
			finished sql.NullTime
			errMsg   sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Trigger, &run.StartedAt, &finished, &run.Status, &errMsg); err != nil {
			return nil, fmt.Errorf("scan refresh run: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		if errMsg.Valid {
			msg := errMsg.String
			run.Error = &msg
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refresh runs: %w", err)
	}
	return runs, nil
}
