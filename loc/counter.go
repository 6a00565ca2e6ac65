package loc

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/gleyba/uber-poet/errors"
	"github.com/gleyba/uber-poet/filegen"
)

// Code-to-line ratios measured by running cloc over a 3x3 sample file of
// each language
const (
	SwiftMultiplier = 0.811537333
	ObjCMultiplier  = 0.772727272
)

// Runner executes an external command and returns its standard output
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Counter counts lines of code in generated text. It shells out to cloc and
// falls back to fixed multipliers when cloc is not installed.
type Counter struct {
	binary string
	cache  *MeasurementCache
	run    Runner
	logger *zap.SugaredLogger

	warnOnce sync.Once
}

// NewCounter creates a counter using the given cloc binary. An empty binary
// always uses the fallback.
func NewCounter(binary string, cache *MeasurementCache, logger *zap.SugaredLogger) *Counter {
	if cache == nil {
		cache = NewMeasurementCache()
	}
	return &Counter{
		binary: binary,
		cache:  cache,
		run:    execRunner,
		logger: logger.Named("loc"),
	}
}

// WithRunner replaces how the cloc binary is executed
func (c *Counter) WithRunner(run Runner) *Counter {
	c.run = run
	return c
}

// Count returns the number of code lines in text
func (c *Counter) Count(ctx context.Context, text string, lang filegen.Language) (int, error) {
	if n, ok := c.cache.Get(lang, text); ok {
		return n, nil
	}

	n, err := 0, error(exec.ErrNotFound)
	if c.binary != "" {
		n, err = c.cloc(ctx, text, lang)
	}
	if errors.Is(err, exec.ErrNotFound) {
		c.warnOnce.Do(func() {
			c.logger.Warnw("cloc not found, using fallback line counting", "binary", c.binary)
		})
		n, err = Fallback(text, lang)
	}
	if err != nil {
		return 0, err
	}

	c.cache.Put(lang, text, n)
	return n, nil
}

func (c *Counter) cloc(ctx context.Context, text string, lang filegen.Language) (int, error) {
	f, err := os.CreateTemp("", "uberpoet_sample_*"+lang.Extension())
	if err != nil {
		return 0, errors.Wrap(err, "failed to create sample file")
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return 0, errors.Wrap(err, "failed to write sample file")
	}
	if err := f.Close(); err != nil {
		return 0, errors.Wrap(err, "failed to close sample file")
	}

	c.logger.Debugw("counting lines of code", "path", f.Name(), "language", lang.String())
	out, err := c.run(ctx, c.binary, "--quiet", "--json", f.Name())
	if err != nil {
		return 0, errors.Wrapf(err, "failed to run %s", c.binary)
	}
	return parseCloc(out, lang)
}

// parseCloc reads the code line total of lang from cloc's JSON report
func parseCloc(out []byte, lang filegen.Language) (int, error) {
	var report map[string]json.RawMessage
	if err := json.Unmarshal(out, &report); err != nil {
		return 0, errors.Wrap(err, "failed to parse cloc output")
	}

	var entry struct {
		Code int `json:"code"`
	}
	if raw, ok := report[lang.String()]; ok {
		if err := json.Unmarshal(raw, &entry); err != nil {
			return 0, errors.Wrapf(err, "failed to parse cloc entry for %s", lang)
		}
	}
	if entry.Code == 0 {
		return 0, errors.WithDetailf(
			errors.Newf("cloc reported no %s code", lang),
			"output: %s", strings.TrimSpace(string(out)))
	}
	return entry.Code, nil
}

// Fallback estimates code lines without cloc
func Fallback(text string, lang filegen.Language) (int, error) {
	lines := strings.Split(text, "\n")
	switch lang {
	case filegen.Swift:
		return int(math.Ceil(float64(len(lines)) * SwiftMultiplier)), nil
	case filegen.ObjC:
		return int(math.Ceil(float64(len(lines)) * ObjCMultiplier)), nil
	case filegen.Java:
		n := 0
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "/*") || strings.HasPrefix(line, "*") {
				continue
			}
			n++
		}
		return n, nil
	}
	return 0, errors.NewConfigError("no fallback line count for %s", lang)
}
