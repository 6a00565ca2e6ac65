// Package progress aggregates generated line counts from concurrent module
// tasks and hands throttled summaries to sinks.
package progress

import (
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gleyba/uber-poet/filegen"
)

// DefaultInterval is the minimum time between two summaries
const DefaultInterval = 500 * time.Millisecond

// LanguageProgress is the state of one language at summary time
type LanguageProgress struct {
	Language  filegen.Language `json:"language"`
	Total     int              `json:"total"`
	SinceLast int              `json:"since_last"`
	Target    int              `json:"target"`
}

// Percent is the share of the target generated so far
func (p LanguageProgress) Percent() float64 {
	if p.Target <= 0 {
		return 0
	}
	return float64(p.Total) * 100 / float64(p.Target)
}

// Summary is one emitted progress report
type Summary struct {
	Final     bool               `json:"final"`
	Timestamp time.Time          `json:"timestamp"`
	Languages []LanguageProgress `json:"languages"`
}

// Sink receives summaries. Calls are serialized by the reporter.
type Sink interface {
	Summary(s Summary)
}

// Reporter keeps per-language running totals. Safe for concurrent use.
type Reporter struct {
	mu        sync.Mutex
	targets   map[filegen.Language]int
	totals    map[filegen.Language]int
	sinceLast map[filegen.Language]int
	limiter   *rate.Limiter
	timeNow   func() time.Time // Injectable for testing
	sinks     []Sink
	emitted   int
}

// NewReporter creates a reporter with real time
func NewReporter(targets map[filegen.Language]int, interval time.Duration, sinks ...Sink) *Reporter {
	return NewReporterWithClock(targets, interval, time.Now, sinks...)
}

// NewReporterWithClock creates a reporter with injectable clock (for testing)
func NewReporterWithClock(targets map[filegen.Language]int, interval time.Duration, timeNow func() time.Time, sinks ...Sink) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reporter{
		targets:   targets,
		totals:    make(map[filegen.Language]int),
		sinceLast: make(map[filegen.Language]int),
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		timeNow:   timeNow,
		sinks:     sinks,
	}
}

// Report records lines just generated for lang and emits a summary unless
// one went out within the interval
func (r *Reporter) Report(lang filegen.Language, lines int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.totals[lang] += lines
	r.sinceLast[lang] += lines

	now := r.timeNow()
	if r.limiter.AllowN(now, 1) {
		r.emit(now, false)
	}
}

// Flush emits a final summary regardless of the throttle
func (r *Reporter) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emit(r.timeNow(), true)
}

// Must be called with lock held
func (r *Reporter) emit(now time.Time, final bool) {
	s := Summary{Final: final, Timestamp: now}
	for _, lang := range r.languages() {
		s.Languages = append(s.Languages, LanguageProgress{
			Language:  lang,
			Total:     r.totals[lang],
			SinceLast: r.sinceLast[lang],
			Target:    r.targets[lang],
		})
		r.sinceLast[lang] = 0
	}
	r.emitted++
	for _, sink := range r.sinks {
		sink.Summary(s)
	}
}

// languages lists every language with a target or generated lines, in
// declaration order. Must be called with lock held.
func (r *Reporter) languages() []filegen.Language {
	var langs []filegen.Language
	for lang, target := range r.targets {
		if target > 0 || r.totals[lang] > 0 {
			langs = append(langs, lang)
		}
	}
	for lang := range r.totals {
		if !slices.Contains(langs, lang) {
			langs = append(langs, lang)
		}
	}
	slices.Sort(langs)
	return langs
}

// Total returns the lines generated so far for lang
func (r *Reporter) Total(lang filegen.Language) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totals[lang]
}

// Emitted is the number of summaries sent so far
func (r *Reporter) Emitted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emitted
}
