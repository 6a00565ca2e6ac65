// Package catalog keeps a history of generated mock projects in SQLite.
package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gleyba/uber-poet/errors"
	"github.com/gleyba/uber-poet/logger"
)

// DefaultListLimit is how many runs List returns when no limit is given
const DefaultListLimit = 20

// Module is one generated library of a run
type Module struct {
	Name      string `json:"name"`
	Language  string `json:"language"`
	FileCount int    `json:"file_count"`
	LOC       int    `json:"loc"` // assigned budget, as in module_index.json
}

// Run is one completed generation
type Run struct {
	ID          string    `json:"id"`
	Command     string    `json:"command"`
	GenType     string    `json:"gen_type"`
	OutputDir   string    `json:"output_dir"`
	ModuleCount int       `json:"module_count"`
	TotalLOC    int       `json:"total_loc"`
	FileCount   int       `json:"file_count"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Modules     []Module  `json:"modules,omitempty"`
}

// Duration is how long the run took
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store handles persistence of runs
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewStore creates a catalog over an already migrated database
func NewStore(db *sql.DB, l *zap.SugaredLogger) *Store {
	return &Store{db: db, logger: l.Named("catalog")}
}

// Record stores run and its modules in one transaction. An empty ID is
// replaced with a fresh UUID; ModuleCount, TotalLOC and FileCount are derived
// from Modules when left zero.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.ModuleCount == 0 {
		run.ModuleCount = len(run.Modules)
	}
	if run.TotalLOC == 0 {
		for _, m := range run.Modules {
			run.TotalLOC += m.LOC
		}
	}
	if run.FileCount == 0 {
		for _, m := range run.Modules {
			run.FileCount += m.FileCount
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin catalog transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, command, gen_type, output_dir, module_count, total_loc, file_count, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Command, run.GenType, run.OutputDir, run.ModuleCount, run.TotalLOC, run.FileCount,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to record run %s", run.ID)
	}

	for _, m := range run.Modules {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO run_modules (run_id, name, language, file_count, loc) VALUES (?, ?, ?, ?, ?)`,
			run.ID, m.Name, m.Language, m.FileCount, m.LOC,
		)
		if err != nil {
			return errors.Wrapf(err, "failed to record module %s of run %s", m.Name, run.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit catalog transaction")
	}

	s.logger.Debugw("Recorded run",
		logger.FieldRunID, run.ID,
		logger.FieldGenType, run.GenType,
		"modules", len(run.Modules),
	)
	return nil
}

// List returns the most recent runs first, without their modules
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, gen_type, output_dir, module_count, total_loc, file_count, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := scanRun(rows, &r); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate runs")
	}
	return runs, nil
}

// Get loads a run and its modules. id may be a unique prefix of the full
// run ID.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	if id == "" {
		return nil, errors.NewConfigError("run id is required")
	}

	// Literal prefix match, _ and % in ids are not wildcards
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, gen_type, output_dir, module_count, total_loc, file_count, started_at, finished_at
		 FROM runs WHERE substr(id, 1, length(?)) = ?
		 ORDER BY id = ? DESC, id LIMIT 2`,
		id, id, id,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get run %s", id)
	}

	var found []Run
	for rows.Next() {
		var r Run
		if err := scanRun(rows, &r); err != nil {
			rows.Close()
			return nil, err
		}
		found = append(found, r)
	}
	iterErr := rows.Err()
	rows.Close()
	if iterErr != nil {
		return nil, errors.Wrapf(iterErr, "failed to get run %s", id)
	}

	// An exact id wins over longer ids it prefixes
	if len(found) == 2 && found[0].ID == id {
		found = found[:1]
	}

	switch len(found) {
	case 0:
		return nil, errors.WithHint(
			errors.Wrapf(errors.ErrNotFound, "run %s", id),
			"list recorded runs with: uberpoet history ls",
		)
	case 2:
		return nil, errors.WithHint(
			errors.NewConfigError("run id prefix %s is ambiguous", id),
			"pass more characters of the run id",
		)
	}

	run := &found[0]
	modules, err := s.modules(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Modules = modules
	return run, nil
}

func (s *Store) modules(ctx context.Context, runID string) ([]Module, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, language, file_count, loc FROM run_modules WHERE run_id = ? ORDER BY name`,
		runID,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load modules of run %s", runID)
	}
	defer rows.Close()

	var modules []Module
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.Name, &m.Language, &m.FileCount, &m.LOC); err != nil {
			return nil, errors.Wrap(err, "failed to scan module")
		}
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate modules")
	}
	return modules, nil
}

func scanRun(rows *sql.Rows, r *Run) error {
	err := rows.Scan(&r.ID, &r.Command, &r.GenType, &r.OutputDir, &r.ModuleCount,
		&r.TotalLOC, &r.FileCount, &r.StartedAt, &r.FinishedAt)
	if err != nil {
		return errors.Wrap(err, "failed to scan run")
	}
	return nil
}
