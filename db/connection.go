// Package db opens the SQLite database behind the run catalog and applies its
// embedded schema migrations.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/gleyba/uber-poet/errors"
)

// SQLiteBusyTimeoutMS is how long a writer waits on a locked database.
const SQLiteBusyTimeoutMS = 5000

// Open opens a SQLite database at the specified path with optimized settings.
// If logger is provided, logs database operations; otherwise operates silently.
func Open(path string, logger *zap.SugaredLogger) (*sql.DB, error) {
	if logger != nil {
		logger.Debugw("Opening database", "path", path)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// WAL lets `history` read while a run is being recorded
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable foreign keys")
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", SQLiteBusyTimeoutMS)); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to set busy timeout")
	}

	if logger != nil {
		logger.Infow("Database opened successfully",
			"path", path,
			"wal_mode", true,
			"foreign_keys", true,
		)
	}

	return db, nil
}

// OpenWithMigrations creates the parent directory if needed, opens the
// database and brings its schema up to date.
func OpenWithMigrations(path string, logger *zap.SugaredLogger) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create database directory %s", dir)
		}
	}

	db, err := Open(path, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := Migrate(db, logger); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to run migrations")
	}

	return db, nil
}
