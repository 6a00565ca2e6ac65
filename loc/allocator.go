// Package loc turns line-of-code targets into per-module file counts.
package loc

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/gleyba/uber-poet/errors"
	"github.com/gleyba/uber-poet/filegen"
	"github.com/gleyba/uber-poet/logger"
	"github.com/gleyba/uber-poet/moduletree"
)

// Target is the total LOC wanted for one language
type Target struct {
	Language filegen.Language
	LOC      int
}

// Assignment is the budget of one library module
type Assignment struct {
	Module     string
	Language   filegen.Language
	LOCPerUnit float64
	FileCount  int
}

// LOC is the module's budget rounded to whole lines
func (a Assignment) LOC() int {
	return int(math.Round(a.LOCPerUnit))
}

// Plan is the budget of every library module, in graph order
type Plan struct {
	Assignments []Assignment
	LOCPerUnit  float64 // zero when overrides drove the plan
	byName      map[string]int
}

// Get returns the assignment of module
func (p *Plan) Get(module string) (Assignment, bool) {
	i, ok := p.byName[module]
	if !ok {
		return Assignment{}, false
	}
	return p.Assignments[i], true
}

// LanguageTotals sums the planned LOC per language
func (p *Plan) LanguageTotals(nodes []*moduletree.ModuleNode) map[filegen.Language]int {
	units := make(map[string]int, len(nodes))
	for _, n := range nodes {
		units[n.Name] = n.CodeUnits
	}
	totals := make(map[filegen.Language]int)
	for _, a := range p.Assignments {
		totals[a.Language] += int(math.Round(a.LOCPerUnit * float64(units[a.Module])))
	}
	return totals
}

// Allocator assigns languages and file counts to library modules. Sample
// sizes must be measured for every language before planning.
type Allocator struct {
	counter *Counter
	logger  *zap.SugaredLogger

	mu      sync.RWMutex
	samples map[filegen.Language]int
}

// NewAllocator creates an allocator measuring samples with counter
func NewAllocator(counter *Counter, logger *zap.SugaredLogger) *Allocator {
	return &Allocator{
		counter: counter,
		logger:  logger.Named("allocator"),
		samples: make(map[filegen.Language]int),
	}
}

// Measure counts the code lines of a representative file of its language
func (a *Allocator) Measure(ctx context.Context, sample *filegen.FileResult) (int, error) {
	n, err := a.counter.Count(ctx, sample.Text, sample.Language)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to measure %s sample", sample.Language)
	}
	if n <= 0 {
		return 0, errors.NewSizingError("%s sample file measured %d lines of code", sample.Language, n)
	}

	a.mu.Lock()
	a.samples[sample.Language] = n
	a.mu.Unlock()

	a.logger.Debugw("measured sample file",
		logger.FieldLanguage, sample.Language.String(),
		logger.FieldLOC, n)
	return n, nil
}

// SetSampleLOC records a sample size without counting a file
func (a *Allocator) SetSampleLOC(lang filegen.Language, n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.samples[lang] = n
}

// SampleLOC returns the measured sample size of lang
func (a *Allocator) SampleLOC(lang filegen.Language) (int, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n, ok := a.samples[lang]
	return n, ok
}

// FileCount is how many sample-sized files carry a module's budget. It fails
// with a sizing error when the module cannot fill a single file.
func (a *Allocator) FileCount(node *moduletree.ModuleNode, locPerUnit float64, lang filegen.Language) (int, error) {
	sample, ok := a.SampleLOC(lang)
	if !ok || sample <= 0 {
		return 0, errors.NewConfigError("no %s sample measured for module %s", lang, node.Name)
	}
	count := math.Max(float64(sample), locPerUnit) * float64(node.CodeUnits) / float64(sample)
	if count < 1 {
		return 0, errors.WithHint(
			errors.NewSizingError("lines of code count is too small for module %s to fit one file", node.Name),
			"increase the lines of code target")
	}
	return int(count), nil
}

// Plan budgets every library node. With overrides, each module's LOC and
// language come from them; otherwise targets are spread proportionally to
// code units and languages are handed out in graph order by LOC share.
func (a *Allocator) Plan(libs []*moduletree.ModuleNode, targets []Target, overrides Overrides) (*Plan, error) {
	plan := &Plan{byName: make(map[string]int, len(libs))}

	if overrides != nil {
		for _, n := range libs {
			o, err := overrides.Lookup(n.Name)
			if err != nil {
				return nil, err
			}
			if err := a.add(plan, n, o.Language, float64(o.LOC)); err != nil {
				return nil, err
			}
		}
		a.logger.Infow("allocated LOC budget from overrides", "modules", len(libs))
		return plan, nil
	}

	totalLOC := 0
	for _, t := range targets {
		totalLOC += t.LOC
	}
	totalUnits := moduletree.TotalCodeUnits(libs)
	if totalLOC <= 0 {
		return nil, errors.NewConfigError("total lines of code must be positive, got %d", totalLOC)
	}
	if totalUnits <= 0 {
		return nil, errors.NewConfigError("library modules carry no code units")
	}

	plan.LOCPerUnit = float64(totalLOC) / float64(totalUnits)
	quotas := Quotas(len(libs), targets)
	for i, n := range libs {
		if err := a.add(plan, n, LanguageAt(i, quotas), plan.LOCPerUnit); err != nil {
			return nil, err
		}
	}

	a.logger.Infow("allocated LOC budget",
		logger.FieldLOC, totalLOC,
		"loc_per_unit", plan.LOCPerUnit,
		"modules", len(libs))
	return plan, nil
}

func (a *Allocator) add(plan *Plan, n *moduletree.ModuleNode, lang filegen.Language, locPerUnit float64) error {
	count, err := a.FileCount(n, locPerUnit, lang)
	if err != nil {
		return err
	}
	plan.byName[n.Name] = len(plan.Assignments)
	plan.Assignments = append(plan.Assignments, Assignment{
		Module:     n.Name,
		Language:   lang,
		LOCPerUnit: locPerUnit,
		FileCount:  count,
	})
	return nil
}

// Quota is the exclusive upper module index of a language
type Quota struct {
	Language filegen.Language
	Until    int
}

// Quotas turns LOC targets into cumulative module index bounds. Each share is
// rounded to hundredths and its module count rounded up. Languages without
// LOC get no modules.
func Quotas(moduleCount int, targets []Target) []Quota {
	total := 0
	for _, t := range targets {
		total += t.LOC
	}
	if total <= 0 {
		return nil
	}

	var quotas []Quota
	until := 0
	for _, t := range targets {
		if t.LOC <= 0 {
			continue
		}
		percent := int(math.Round(float64(t.LOC) * 100 / float64(total)))
		until += (moduleCount*percent + 99) / 100
		quotas = append(quotas, Quota{Language: t.Language, Until: until})
	}
	return quotas
}

// LanguageAt picks the language of the idx-th library module. Indexes past
// every quota fall to the last language.
func LanguageAt(idx int, quotas []Quota) filegen.Language {
	for _, q := range quotas {
		if idx < q.Until {
			return q.Language
		}
	}
	if len(quotas) == 0 {
		return filegen.Swift
	}
	return quotas[len(quotas)-1].Language
}
