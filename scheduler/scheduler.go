// Package scheduler runs one generation task per library module with
// bounded parallelism. A module's task starts only after the tasks of all
// of its dependencies have published their results.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gleyba/uber-poet/errors"
	"github.com/gleyba/uber-poet/filegen"
	"github.com/gleyba/uber-poet/logger"
	"github.com/gleyba/uber-poet/moduletree"
)

// Task generates one module from the published results of its dependencies,
// given in the order of node.Deps
type Task func(ctx context.Context, node *moduletree.ModuleNode, deps []*filegen.ModuleResult) (*filegen.ModuleResult, error)

// future is the pending result of one module task. result and err are
// written once, before done is closed.
type future struct {
	done   chan struct{}
	result *filegen.ModuleResult
	err    error
}

func (f *future) publish(result *filegen.ModuleResult, err error) {
	f.result, f.err = result, err
	close(f.done)
}

// Scheduler dispatches module tasks. A scheduler runs one graph at a time.
type Scheduler struct {
	workers int
	logger  *zap.SugaredLogger

	mu      sync.Mutex
	futures map[string]*future
}

// New creates a scheduler running at most workers tasks at once. A
// non-positive count uses DefaultWorkers.
func New(workers int, l *zap.SugaredLogger) *Scheduler {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	return &Scheduler{
		workers: workers,
		logger:  l.Named("scheduler"),
	}
}

// Workers is the maximum number of tasks in flight
func (s *Scheduler) Workers() int {
	return s.workers
}

// Run executes task for every library node and returns the results by module
// name. The first failure cancels the run; tasks already started are drained
// before Run returns it. App nodes are not scheduled.
func (s *Scheduler) Run(ctx context.Context, nodes []*moduletree.ModuleNode, task Task) (map[string]*filegen.ModuleResult, error) {
	libs, err := moduletree.TopoSort(moduletree.Libraries(nodes))
	if err != nil {
		return nil, err
	}

	if warning := checkMemoryPressure(s.workers); warning != "" {
		s.logger.Warnw("Memory pressure warning", "warning", warning, logger.FieldWorkers, s.workers)
	}

	// Every future exists before the first task can look one up
	s.mu.Lock()
	s.futures = make(map[string]*future, len(libs))
	for _, n := range libs {
		s.futures[n.Name] = &future{done: make(chan struct{})}
	}
	s.mu.Unlock()

	start := time.Now()
	s.logger.Infow("starting module generation",
		"modules", len(libs),
		logger.FieldWorkers, s.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	// Submission follows topological order, so the earliest submitted task
	// in flight never waits on one that cannot get a worker
	for _, n := range libs {
		g.Go(func() error {
			result, err := s.runOne(gctx, n, task)
			s.lookup(n.Name).publish(result, err)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Errorw("module generation failed",
			logger.FieldError, err,
			logger.FieldDurationMS, time.Since(start).Milliseconds())
		return nil, err
	}

	results := make(map[string]*filegen.ModuleResult, len(libs))
	for _, n := range libs {
		results[n.Name] = s.lookup(n.Name).result
	}

	s.logger.Infow("module generation complete",
		"modules", len(libs),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return results, nil
}

func (s *Scheduler) runOne(ctx context.Context, n *moduletree.ModuleNode, task Task) (*filegen.ModuleResult, error) {
	deps, err := s.await(ctx, n)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Debugw("generating module", logger.FieldModule, n.Name, logger.FieldDeps, len(deps))
	start := time.Now()
	result, err := task(ctx, n, deps)
	if err != nil {
		return nil, errors.WrapEmitter(err, n.Name)
	}
	if result == nil {
		return nil, errors.WrapEmitter(errors.New("task returned no result"), n.Name)
	}
	s.logger.Debugw("generated module",
		logger.FieldModule, n.Name,
		logger.FieldFileCount, result.FileCount(),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return result, nil
}

// await blocks until every dependency of n has published, in n.Deps order
func (s *Scheduler) await(ctx context.Context, n *moduletree.ModuleNode) ([]*filegen.ModuleResult, error) {
	deps := make([]*filegen.ModuleResult, 0, len(n.Deps))
	for _, d := range n.Deps {
		f := s.lookup(d.Name)
		if f == nil {
			return nil, errors.NewConfigError("module %s depends on unscheduled module %s", n.Name, d.Name)
		}
		select {
		case <-f.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if f.err != nil {
			return nil, errors.Wrapf(f.err, "dependency %s of %s failed", d.Name, n.Name)
		}
		deps = append(deps, f.result)
	}
	return deps, nil
}

func (s *Scheduler) lookup(name string) *future {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.futures[name]
}
