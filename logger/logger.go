package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global logger instance
	Logger *zap.SugaredLogger
	// Flag to track if JSON output is enabled
	JSONOutput bool
)

func init() {
	// No-op until Initialize runs so packages can log from tests and init code
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. Console output goes to stderr so
// generated artifacts and command results on stdout stay clean.
func Initialize(jsonOutput bool, verbosity int) error {
	JSONOutput = jsonOutput
	level := VerbosityToLevel(verbosity)

	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stderr"}
		zapLogger, err := config.Build()
		if err != nil {
			return err
		}
		Logger = zapLogger.Sugar()
		return nil
	}

	if theme := os.Getenv("UBERPOET_LOG_THEME"); theme != "" {
		SetTheme(theme)
	}

	Logger = zap.New(
		zapcore.NewCore(
			newConsoleEncoder(),
			zapcore.AddSync(os.Stderr),
			level,
		),
	).Sugar()
	return nil
}

// Replace swaps the global logger, returning a function that restores the
// previous one. Intended for tests that want to observe log output.
func Replace(l *zap.SugaredLogger) func() {
	prev := Logger
	Logger = l
	return func() { Logger = prev }
}

// Cleanup flushes any buffered log entries
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// Infow logs an info message with structured fields
func Infow(msg string, keysAndValues ...interface{}) {
	Logger.Infow(msg, keysAndValues...)
}

// Warnw logs a warning message with structured fields
func Warnw(msg string, keysAndValues ...interface{}) {
	Logger.Warnw(msg, keysAndValues...)
}

// Errorw logs an error message with structured fields
func Errorw(msg string, keysAndValues ...interface{}) {
	Logger.Errorw(msg, keysAndValues...)
}

// Debugw logs a debug message with structured fields
func Debugw(msg string, keysAndValues ...interface{}) {
	Logger.Debugw(msg, keysAndValues...)
}
