package refresh

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setupMockStore(t *testing.T) (*defaultStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	s, err := NewStore(db)
	require.NoError(t, err)
	ds := s.(*defaultStore)
	ds.now = func() time.Time { return fixedNow }
	return ds, mock
}

func TestNewStore_NilDB(t *testing.T) {
	s, err := NewStore(nil)
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestStore_StartAndFinish(t *testing.T) {
	s, mock := setupMockStore(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO refresh_runs (id, trigger_kind, started_at, status) VALUES (?, ?, ?, ?)`)).
		WithArgs(sqlmock.AnyArg(), "manual", fixedNow, store.RefreshStatusRunning).
		WillReturnResult(sqlmock.NewResult(0, 1))

	run, err := s.Start(ctx, "manual")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, store.RefreshStatusRunning, run.Status)

	t.Run("success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE refresh_runs SET finished_at = ?, status = ?, error = ? WHERE id = ?`)).
			WithArgs(fixedNow, store.RefreshStatusSucceeded, nil, run.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM refresh_runs`)).
			WithArgs(keepRuns).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		require.NoError(t, s.Finish(ctx, run, nil))
		assert.Equal(t, store.RefreshStatusSucceeded, run.Status)
		assert.Nil(t, run.Error)
		require.NotNil(t, run.FinishedAt)
	})

	t.Run("failure is recorded", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE refresh_runs SET finished_at = ?, status = ?, error = ? WHERE id = ?`)).
			WithArgs(fixedNow, store.RefreshStatusFailed, "summary: boom", run.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM refresh_runs`)).
			WithArgs(keepRuns).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		require.NoError(t, s.Finish(ctx, run, errors.New("summary: boom")))
		assert.Equal(t, store.RefreshStatusFailed, run.Status)
		require.NotNil(t, run.Error)
		assert.Equal(t, "summary: boom", *run.Error)
	})

	t.Run("unknown run rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE refresh_runs`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.Error(t, s.Finish(ctx, &store.RefreshRun{ID: "missing"}, nil))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_StartUsesTransactionFromContext(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO refresh_runs`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := s.db.Begin()
	require.NoError(t, err)
	_, err = s.Start(duckdb.WithTransaction(context.Background(), tx), "startup")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FinishJoinsTransactionFromContext(t *testing.T) {
	s, mock := setupMockStore(t)
	run := &store.RefreshRun{ID: "run-1"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE refresh_runs`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM refresh_runs`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	tx, err := s.db.Begin()
	require.NoError(t, err)
	require.NoError(t, s.Finish(duckdb.WithTransaction(context.Background(), tx), run, nil))
	require.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListRecent(t *testing.T) {
	s, mock := setupMockStore(t)
	finished := fixedNow.Add(time.Second)

	rows := sqlmock.NewRows([]string{"id", "trigger_kind", "started_at", "finished_at", "status", "error"}).
		AddRow("b", "manual", fixedNow, finished, store.RefreshStatusFailed, "segments: down").
		AddRow("a", "startup", fixedNow.Add(-time.Minute), nil, store.RefreshStatusRunning, nil)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM refresh_runs`)).
		WithArgs(5).
		WillReturnRows(rows)

	runs, err := s.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "b", runs[0].ID)
	require.NotNil(t, runs[0].FinishedAt)
	assert.Equal(t, finished, *runs[0].FinishedAt)
	assert.Equal(t, "segments: down", *runs[0].Error)

	assert.Equal(t, "startup", runs[1].Trigger)
	assert.Nil(t, runs[1].FinishedAt)
	assert.Nil(t, runs[1].Error)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AgainstDuckDB(t *testing.T) {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	s, err := NewStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	run, err := s.Start(ctx, "startup")
	require.NoError(t, err)
	require.NoError(t, s.Finish(ctx, run, nil))

	runs, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, store.RefreshStatusSucceeded, runs[0].Status)
}

func TestStore_FinishPrunesOldRuns(t *testing.T) {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	s, err := NewStore(db)
	require.NoError(t, err)
	ds := s.(*defaultStore)
	ds.keep = 2
	clock := fixedNow
	ds.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	ctx := context.Background()

	var ids []string
	for range 3 {
		run, err := s.Start(ctx, "scheduled")
		require.NoError(t, err)
		require.NoError(t, s.Finish(ctx, run, nil))
		ids = append(ids, run.ID)
	}

	runs, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
}
