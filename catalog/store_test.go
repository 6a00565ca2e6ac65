package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gleyba/uber-poet/errors"
	uptest "github.com/gleyba/uber-poet/internal/testing"
)

func newRun(started time.Time) *Run {
	return &Run{
		Command:    "ios",
		GenType:    "layered",
		OutputDir:  "/tmp/mock_app",
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Modules: []Module{
			{Name: "MockLib0_0", Language: "Swift", FileCount: 4, LOC: 100},
			{Name: "MockLib1_0", Language: "ObjC", FileCount: 8, LOC: 100},
		},
	}
}

func TestRecordAndGet(t *testing.T) {
	store := NewStore(uptest.CreateTestDB(t), zaptest.NewLogger(t).Sugar())
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	run := newRun(started)
	require.NoError(t, store.Record(ctx, run))

	_, err := uuid.Parse(run.ID)
	require.NoError(t, err, "a fresh run gets a UUID")
	assert.Equal(t, 2, run.ModuleCount)
	assert.Equal(t, 200, run.TotalLOC)
	assert.Equal(t, 12, run.FileCount)

	got, err := store.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "ios", got.Command)
	assert.Equal(t, "layered", got.GenType)
	assert.True(t, got.StartedAt.Equal(started))
	assert.Equal(t, 3*time.Second, got.Duration())
	assert.Equal(t, run.Modules, got.Modules)
}

func TestRecordKeepsExplicitTotals(t *testing.T) {
	store := NewStore(uptest.CreateTestDB(t), zaptest.NewLogger(t).Sugar())
	ctx := context.Background()

	run := newRun(time.Now())
	run.ID = "fixed-id"
	run.TotalLOC = 1234
	run.FileCount = 99
	require.NoError(t, store.Record(ctx, run))

	got, err := store.Get(ctx, "fixed-id")
	require.NoError(t, err)
	assert.Equal(t, 1234, got.TotalLOC)
	assert.Equal(t, 99, got.FileCount)
}

func TestGetByPrefix(t *testing.T) {
	store := NewStore(uptest.CreateTestDB(t), zaptest.NewLogger(t).Sugar())
	ctx := context.Background()

	a := newRun(time.Now())
	a.ID = "abc123"
	b := newRun(time.Now())
	b.ID = "abd456"
	require.NoError(t, store.Record(ctx, a))
	require.NoError(t, store.Record(ctx, b))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.ID)

	_, err = store.Get(ctx, "ab")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestGetPrefixIsLiteral(t *testing.T) {
	store := NewStore(uptest.CreateTestDB(t), zaptest.NewLogger(t).Sugar())
	ctx := context.Background()

	for _, id := range []string{"a_c1", "abc2", "ab%d3"} {
		run := newRun(time.Now())
		run.ID = id
		require.NoError(t, store.Record(ctx, run))
	}

	got, err := store.Get(ctx, "a_")
	require.NoError(t, err, "_ is not a wildcard")
	assert.Equal(t, "a_c1", got.ID)

	got, err = store.Get(ctx, "ab%")
	require.NoError(t, err, "% is not a wildcard")
	assert.Equal(t, "ab%d3", got.ID)

	_, err = store.Get(ctx, "a%")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestGetExactIDBeatsLongerPrefixMatch(t *testing.T) {
	store := NewStore(uptest.CreateTestDB(t), zaptest.NewLogger(t).Sugar())
	ctx := context.Background()

	for _, id := range []string{"run1", "run10"} {
		run := newRun(time.Now())
		run.ID = id
		require.NoError(t, store.Record(ctx, run))
	}

	got, err := store.Get(ctx, "run1")
	require.NoError(t, err)
	assert.Equal(t, "run1", got.ID)

	_, err = store.Get(ctx, "run")
	assert.True(t, errors.IsConfigError(err), "a shorter prefix is still ambiguous")
}

func TestGetNotFound(t *testing.T) {
	store := NewStore(uptest.CreateTestDB(t), zaptest.NewLogger(t).Sugar())

	_, err := store.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
	assert.Contains(t, err.Error(), "missing")
	assert.NotEmpty(t, errors.GetAllHints(err))

	_, err = store.Get(context.Background(), "")
	assert.True(t, errors.IsConfigError(err))
}

func TestList(t *testing.T) {
	store := NewStore(uptest.CreateTestDB(t), zaptest.NewLogger(t).Sugar())
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		run := newRun(base.Add(time.Duration(i) * time.Hour))
		run.GenType = []string{"flat", "bs_flat", "layered", "bs_layered", "dot"}[i]
		require.NoError(t, store.Record(ctx, run))
	}

	runs, err := store.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "dot", runs[0].GenType, "newest first")
	assert.Equal(t, "bs_layered", runs[1].GenType)
	assert.Equal(t, "layered", runs[2].GenType)
	assert.Empty(t, runs[0].Modules, "List does not load modules")

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestListEmpty(t *testing.T) {
	store := NewStore(uptest.CreateTestDB(t), zaptest.NewLogger(t).Sugar())

	runs, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRecordDuplicateModuleRollsBack(t *testing.T) {
	conn := uptest.CreateTestDB(t)
	store := NewStore(conn, zaptest.NewLogger(t).Sugar())
	ctx := context.Background()

	run := newRun(time.Now())
	run.Modules = append(run.Modules, run.Modules[0])

	err := store.Record(ctx, run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MockLib0_0")

	var n int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n))
	assert.Zero(t, n, "the run row is rolled back with its modules")
}

// sqlmock tests cover driver failures the real database does not produce

func TestRecord_Sqlmock(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	store := NewStore(conn, zaptest.NewLogger(t).Sugar())
	run := newRun(time.Now())
	run.ID = "r1"

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs("r1", "ios", "layered", "/tmp/mock_app", 2, 200, 12, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO run_modules`).
		WithArgs("r1", "MockLib0_0", "Swift", 4, 100).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO run_modules`).
		WithArgs("r1", "MockLib1_0", "ObjC", 8, 100).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Record(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordFailure_Sqlmock(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	store := NewStore(conn, zaptest.NewLogger(t).Sugar())
	run := newRun(time.Now())
	run.ID = "r1"

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO runs`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO run_modules`).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = store.Record(context.Background(), run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module MockLib0_0 of run r1")
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBeginFailure_Sqlmock(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	store := NewStore(conn, zaptest.NewLogger(t).Sugar())
	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	err = store.Record(context.Background(), newRun(time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin catalog transaction")
}

func TestList_Sqlmock(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	store := NewStore(conn, zaptest.NewLogger(t).Sugar())
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "command", "gen_type", "output_dir", "module_count", "total_loc", "file_count", "started_at", "finished_at",
	}).AddRow("r1", "java", "flat", "/tmp/out", 10, 1000, 40, started, started.Add(time.Second))

	mock.ExpectQuery(`SELECT .* FROM runs ORDER BY started_at DESC LIMIT`).
		WithArgs(DefaultListLimit).
		WillReturnRows(rows)

	runs, err := store.List(context.Background(), -1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "java", runs[0].Command)
	assert.Equal(t, time.Second, runs[0].Duration())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFailure_Sqlmock(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	store := NewStore(conn, zaptest.NewLogger(t).Sugar())
	mock.ExpectQuery(`SELECT .* FROM runs`).WillReturnError(errors.New("no such table: runs"))

	_, err = store.List(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list runs")
}
