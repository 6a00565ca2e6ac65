package progress

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/gleyba/uber-poet/filegen"
	"github.com/gleyba/uber-poet/logger"
)

// CLISink prints summaries to the terminal using pterm
type CLISink struct{}

// NewCLISink creates a terminal sink
func NewCLISink() *CLISink {
	return &CLISink{}
}

// Summary prints one line per language
func (s *CLISink) Summary(sum Summary) {
	for _, p := range sum.Languages {
		line := fmt.Sprintf("%s: %s / %d lines (%.1f%%)",
			pterm.LightCyan(p.Language.String()),
			pterm.Green(fmt.Sprintf("%d", p.Total)),
			p.Target, p.Percent())
		if sum.Final {
			pterm.Success.Println(line)
		} else {
			pterm.Printf("🔄 %s\n", line)
		}
	}
}

// Event is one JSON progress record
type Event struct {
	Type string  `json:"type"` // "progress" or "complete"
	Data Summary `json:"data"`
}

// JSONSink writes one JSON event per summary. Write failures are logged and
// do not stop generation.
type JSONSink struct {
	encoder *json.Encoder
	logger  *zap.SugaredLogger
}

// NewJSONSink creates a sink writing newline-delimited JSON to w
func NewJSONSink(w io.Writer, l *zap.SugaredLogger) *JSONSink {
	return &JSONSink{encoder: json.NewEncoder(w), logger: l.Named("progress")}
}

func (s *JSONSink) Summary(sum Summary) {
	event := Event{Type: "progress", Data: sum}
	if sum.Final {
		event.Type = "complete"
	}
	if err := s.encoder.Encode(event); err != nil {
		s.logger.Warnw("failed to write progress event", "type", event.Type, logger.FieldError, err)
	}
}

// CallbackFunc observes the lines generated for lang since the previous
// summary, along with the language's LOC target
type CallbackFunc func(lang filegen.Language, sinceLast, target int)

// Summary calls f once per language
func (f CallbackFunc) Summary(sum Summary) {
	for _, p := range sum.Languages {
		f(p.Language, p.SinceLast, p.Target)
	}
}

// LogSink writes summaries to a structured logger
type LogSink struct {
	logger *zap.SugaredLogger
}

// NewLogSink creates a logging sink
func NewLogSink(l *zap.SugaredLogger) *LogSink {
	return &LogSink{logger: l.Named("progress")}
}

func (s *LogSink) Summary(sum Summary) {
	for _, p := range sum.Languages {
		s.logger.Infow("generated lines",
			logger.FieldLanguage, p.Language.String(),
			"total", p.Total,
			"since_last", p.SinceLast,
			"target", p.Target,
			"final", sum.Final)
	}
}
