package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

type palette struct {
	time      string
	component string
	key       string
	number    string
	warn      string
	warnBg    string
	err       string
	errBg     string
}

var themes = map[string]palette{
	// Gruvbox Dark (warm, muted)
	"gruvbox": {
		time:      "\x1b[38;5;245m",
		component: "\x1b[38;5;108m",
		key:       "\x1b[38;5;109m",
		number:    "\x1b[38;5;175m",
		warn:      "\x1b[38;5;214m",
		warnBg:    "\x1b[48;5;58m",
		err:       "\x1b[38;5;167m",
		errBg:     "\x1b[48;5;88m",
	},
	// Everforest Dark (forest greens)
	"everforest": {
		time:      "\x1b[38;5;243m",
		component: "\x1b[38;5;114m",
		key:       "\x1b[38;5;109m",
		number:    "\x1b[38;5;142m",
		warn:      "\x1b[38;5;179m",
		warnBg:    "\x1b[48;5;58m",
		err:       "\x1b[38;5;167m",
		errBg:     "\x1b[48;5;52m",
	},
}

var currentTheme = "gruvbox"

var bufferPool = buffer.NewPool()

// SetTheme selects the console palette. Unknown names are ignored.
func SetTheme(theme string) {
	if _, ok := themes[theme]; ok {
		currentTheme = theme
	}
}

// consoleEncoder is a compact human-readable encoder:
//
//	"13:04:35  s.scheduler  module done  module=MockLib3 file_count=12"
//
// Fields are always rendered as key=value; none are dropped. Fields added
// through With() are kept in the embedded map encoder and printed first.
type consoleEncoder struct {
	*zapcore.MapObjectEncoder
}

func newConsoleEncoder() *consoleEncoder {
	return &consoleEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder()}
}

func (enc *consoleEncoder) Clone() zapcore.Encoder {
	clone := newConsoleEncoder()
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return clone
}

func (enc *consoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	p := themes[currentTheme]
	final := bufferPool.Get()

	final.AppendString(p.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	if lvl := levelString(p, ent.Level); lvl != "" {
		final.AppendString("  ")
		final.AppendString(lvl)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(p.component)
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(ent.Message)

	pairs := enc.contextPairs(p)
	for _, f := range fields {
		pairs = append(pairs, fieldPairs(p, f)...)
	}
	if len(pairs) > 0 {
		final.AppendString("  ")
		final.AppendString(strings.Join(pairs, " "))
	}

	if ent.Stack != "" && ent.Level >= zapcore.ErrorLevel {
		final.AppendString("\n")
		final.AppendString(ent.Stack)
	}

	final.AppendString("\n")
	return final, nil
}

func (enc *consoleEncoder) contextPairs(p palette) []string {
	if len(enc.Fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, formatPair(p, k, enc.Fields[k]))
	}
	return pairs
}

// fieldPairs renders a single zap field. Namespaces and objects flatten to
// their top-level keys.
func fieldPairs(p palette, f zapcore.Field) []string {
	m := zapcore.NewMapObjectEncoder()
	f.AddTo(m)
	if len(m.Fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, formatPair(p, k, m.Fields[k]))
	}
	return pairs
}

func formatPair(p palette, key string, value interface{}) string {
	var val string
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		val = p.number + fmt.Sprint(v) + colorReset
	default:
		val = fmt.Sprint(v)
	}
	return p.key + key + colorReset + "=" + val
}

func levelString(p palette, level zapcore.Level) string {
	switch {
	case level == zapcore.WarnLevel:
		return colorBold + p.warnBg + p.warn + "WARN" + colorReset
	case level >= zapcore.ErrorLevel:
		return colorBold + p.errBg + p.err + level.CapitalString() + colorReset
	case level == zapcore.DebugLevel:
		return p.time + "DEBUG" + colorReset
	default:
		return ""
	}
}

// abbreviateName shortens component names: scheduler -> scheduler,
// projectgen.ios -> p.ios
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}
