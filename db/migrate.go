package db

import (
	"database/sql"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/gleyba/uber-poet/errors"
)

const migrationsDir = "sqlite/migrations"

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

// migration is one embedded schema step; version is the file name prefix
type migration struct {
	version string
	file    string
}

// Migrate brings the catalog schema up to date. Each pending migration runs
// in its own transaction together with its schema_migrations row.
func Migrate(db *sql.DB, logger *zap.SugaredLogger) error {
	pending, err := migrationList(migrations)
	if err != nil {
		return err
	}

	applied, err := AppliedVersions(db)
	if err != nil {
		return err
	}

	ran := 0
	for _, m := range pending {
		if applied[m.version] {
			continue
		}
		if logger != nil {
			logger.Infow("Applying migration", "migration", m.file, "version", m.version)
		}
		if err := apply(db, m); err != nil {
			return err
		}
		ran++
	}

	if logger != nil && ran > 0 {
		logger.Infow("Migrations complete", "applied", ran, "known", len(pending))
	}
	return nil
}

// AppliedVersions returns the recorded migration versions. A database that
// has never been migrated has none.
func AppliedVersions(db *sql.DB) (map[string]bool, error) {
	var table string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'",
	).Scan(&table)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to inspect schema")
	}

	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read applied migrations")
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "failed to scan migration version")
		}
		applied[v] = true
	}
	return applied, errors.Wrap(rows.Err(), "failed to iterate applied migrations")
}

func migrationList(fsys fs.ReadDirFS) ([]migration, error) {
	entries, err := fsys.ReadDir(migrationsDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read migrations")
	}

	var list []migration
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		version, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, errors.Newf("migration %s has no version prefix", name)
		}
		list = append(list, migration{version: version, file: name})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].file < list[j].file })
	return list, nil
}

func apply(db *sql.DB, m migration) error {
	body, err := migrations.ReadFile(path.Join(migrationsDir, m.file))
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", m.file)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "failed to begin %s", m.file)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(body)); err != nil {
		return errors.Wrapf(err, "failed to execute %s", m.file)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
		return errors.Wrapf(err, "failed to record %s", m.file)
	}
	return errors.Wrapf(tx.Commit(), "failed to commit %s", m.file)
}
