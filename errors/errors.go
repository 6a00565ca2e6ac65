// Package errors provides error handling for uberpoet.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints attached to failures
//
// On top of that it defines the error taxonomy of a generation run. Every
// failure that aborts a run is marked with one of the category sentinels so
// callers can classify it through any amount of wrapping:
//
//	if errors.Is(err, errors.ErrSizing) {
//	    // a module's weight cannot produce a single file at this budget
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Run failure categories. All of them are terminal for a run.
var (
	// ErrConfig marks invalid or contradictory parameters: bad graph counts,
	// unknown languages, missing input files. Reported before generation starts.
	ErrConfig = New("configuration error")

	// ErrSizing marks a module whose weight cannot produce one file at the
	// current LOC budget.
	ErrSizing = New("sizing error")

	// ErrCycle marks a supplied module graph that is not a DAG.
	ErrCycle = New("dependency cycle")

	// ErrEmitter marks a failure inside a language emitter or while writing
	// its output.
	ErrEmitter = New("emitter error")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")
)

// NewConfigError creates a configuration error with a formatted message
func NewConfigError(format string, args ...interface{}) error {
	return Mark(crdb.NewWithDepthf(1, format, args...), ErrConfig)
}

// NewSizingError creates a sizing error with a formatted message
func NewSizingError(format string, args ...interface{}) error {
	return Mark(crdb.NewWithDepthf(1, format, args...), ErrSizing)
}

// NewCycleError creates a cycle error with a formatted message
func NewCycleError(format string, args ...interface{}) error {
	return Mark(crdb.NewWithDepthf(1, format, args...), ErrCycle)
}

// WrapConfig marks err as a configuration error and adds context
func WrapConfig(err error, context string) error {
	if err == nil {
		return nil
	}
	return Mark(crdb.WrapWithDepth(1, err, context), ErrConfig)
}

// WrapEmitter marks err as an emitter error for the given module, unless it
// already carries a category.
func WrapEmitter(err error, module string) error {
	if err == nil {
		return nil
	}
	wrapped := crdb.WrapWithDepthf(1, err, "module %s", module)
	if Category(err) != nil {
		return wrapped
	}
	return Mark(wrapped, ErrEmitter)
}

// Category returns the taxonomy sentinel err is marked with, or nil.
func Category(err error) error {
	if err == nil {
		return nil
	}
	for _, c := range []error{ErrConfig, ErrSizing, ErrCycle, ErrEmitter, ErrNotFound} {
		if Is(err, c) {
			return c
		}
	}
	return nil
}

// IsConfigError checks if an error is or wraps ErrConfig
func IsConfigError(err error) bool {
	return err != nil && Is(err, ErrConfig)
}

// IsSizingError checks if an error is or wraps ErrSizing
func IsSizingError(err error) bool {
	return err != nil && Is(err, ErrSizing)
}

// IsCycleError checks if an error is or wraps ErrCycle
func IsCycleError(err error) bool {
	return err != nil && Is(err, ErrCycle)
}

// IsEmitterError checks if an error is or wraps ErrEmitter
func IsEmitterError(err error) bool {
	return err != nil && Is(err, ErrEmitter)
}

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}
