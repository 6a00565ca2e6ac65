package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "catalog.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate(t *testing.T) {
	t.Run("records every migration", func(t *testing.T) {
		db := openTemp(t)
		require.NoError(t, Migrate(db, nil))

		var versions []string
		rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
		require.NoError(t, err)
		defer rows.Close()
		for rows.Next() {
			var v string
			require.NoError(t, rows.Scan(&v))
			versions = append(versions, v)
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, []string{"000", "001"}, versions)
	})

	t.Run("is idempotent", func(t *testing.T) {
		db := openTemp(t)
		require.NoError(t, Migrate(db, nil))
		require.NoError(t, Migrate(db, nil), "running migrations multiple times should be safe")
	})

	t.Run("run_modules cascade with their run", func(t *testing.T) {
		db := openTemp(t)
		require.NoError(t, Migrate(db, nil))

		_, err := db.Exec(`INSERT INTO runs (id, command, gen_type, output_dir, module_count, total_loc, started_at, finished_at)
			VALUES ('r1', 'ios', 'flat', '/tmp/out', 1, 100, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO run_modules (run_id, name, language, file_count, loc) VALUES ('r1', 'MockLib0', 'Swift', 4, 100)`)
		require.NoError(t, err)

		_, err = db.Exec(`DELETE FROM runs WHERE id = 'r1'`)
		require.NoError(t, err)

		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM run_modules").Scan(&n))
		assert.Zero(t, n)
	})

	t.Run("fails on a closed database", func(t *testing.T) {
		db, err := Open(filepath.Join(t.TempDir(), "catalog.db"), nil)
		require.NoError(t, err)
		db.Close()

		assert.Error(t, Migrate(db, nil))
	})
}

func TestAppliedVersions(t *testing.T) {
	db := openTemp(t)

	applied, err := AppliedVersions(db)
	require.NoError(t, err)
	assert.Empty(t, applied, "a fresh database has no schema_migrations table")

	require.NoError(t, Migrate(db, nil))
	applied, err = AppliedVersions(db)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"000": true, "001": true}, applied)
}

func TestMigrationList(t *testing.T) {
	fsys := fstest.MapFS{
		"sqlite/migrations/001_b.sql":    {Data: []byte("SELECT 1;")},
		"sqlite/migrations/000_a.sql":    {Data: []byte("SELECT 1;")},
		"sqlite/migrations/README.md":    {Data: []byte("notes")},
		"sqlite/migrations/010_c.sql":    {Data: []byte("SELECT 1;")},
		"sqlite/migrations/nested/x.sql": {Data: []byte("SELECT 1;")},
	}

	list, err := migrationList(fsys)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, migration{version: "000", file: "000_a.sql"}, list[0])
	assert.Equal(t, "001", list[1].version)
	assert.Equal(t, "010", list[2].version)

	_, err = migrationList(fstest.MapFS{"sqlite/migrations/init.sql": {Data: []byte("")}})
	assert.ErrorContains(t, err, "no version prefix")
}
