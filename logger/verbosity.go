package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for CLI flag counts.
const (
	VerbosityUser  = 0 // No flags: results and errors only
	VerbosityInfo  = 1 // -v: + run summary, per-phase timing
	VerbosityDebug = 2 // -vv: + per-module generation events
	VerbosityTrace = 3 // -vvv: + import selection and LOC measurement detail
)

// VerbosityToLevel maps verbosity flags (-v, -vv, etc.) to zap log levels
//
//	0 (none)  -> WarnLevel
//	1 (-v)    -> InfoLevel
//	2+ (-vv)  -> DebugLevel
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityUser:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// ShouldLogTrace returns true for verbosity >= 3 (-vvv)
func ShouldLogTrace(verbosity int) bool {
	return verbosity >= VerbosityTrace
}

// LevelName returns a human-readable name for verbosity level
func LevelName(verbosity int) string {
	switch {
	case verbosity < VerbosityUser:
		return "Unknown"
	case verbosity == VerbosityUser:
		return "User"
	case verbosity == VerbosityInfo:
		return "Info (-v)"
	case verbosity == VerbosityDebug:
		return "Debug (-vv)"
	case verbosity == VerbosityTrace:
		return "Trace (-vvv)"
	default:
		return "Trace (-vvv+)"
	}
}
