package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for structured logging. Use these constants instead of
// raw strings so JSON logs stay queryable.
const (
	FieldRunID     = "run_id"
	FieldComponent = "component"

	// Generation
	FieldModule    = "module"
	FieldLanguage  = "language"
	FieldGenType   = "gen_type"
	FieldFileCount = "file_count"
	FieldLOC       = "loc"
	FieldTarget    = "target"
	FieldWorkers   = "workers"
	FieldDeps      = "deps"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Files and paths
	FieldPath   = "path"
	FieldBinary = "binary"
)

type contextKey string

const (
	runIDKey     contextKey = "logger_run_id"
	componentKey contextKey = "logger_component"
)

// WithRunID adds a generation run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields = append(fields, FieldRunID, runID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// LoggerFromContext returns the global logger carrying any run_id/component
// stored in ctx.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
//
//	func NewScheduler() *Scheduler {
//	    return &Scheduler{logger: logger.ComponentLogger("scheduler")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
