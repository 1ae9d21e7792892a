package enhance

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
)

// Pool fans page images out to a bounded set of workers and reassembles the
// results in original page order. Enhancement across pages of one document is
// independent, so completion order is arbitrary; index tagging restores it.
type Pool struct {
	enhancer Enhancer
	workers  int
	logger   *slog.Logger
}

// PoolConfig configures an enhancement pool.
type PoolConfig struct {
	Enhancer Enhancer
	Workers  int // worker goroutines (default: runtime.NumCPU())
	Logger   *slog.Logger
}

// NewPool creates an enhancement pool.
func NewPool(cfg PoolConfig) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pool{
		enhancer: cfg.Enhancer,
		workers:  workers,
		logger:   logger.With("component", "enhance-pool", "workers", workers),
	}
}

type pageResult struct {
	index int
	path  string
	err   error
}

// EnhancePages enhances every page image and returns the replacement paths in
// the same order as the inputs. The first failure cancels remaining work and
// fails the whole batch; a partially enhanced document is worse than an
// unenhanced one because page substitution must be all-or-nothing.
func (p *Pool) EnhancePages(ctx context.Context, imagePaths []string, task Task) ([]string, error) {
	if len(imagePaths) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan pageResult, len(imagePaths))
	results := make(chan pageResult, len(imagePaths))

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					results <- pageResult{index: job.index, err: ctx.Err()}
					continue
				default:
				}

				enhanced, err := p.enhancer.Enhance(ctx, job.path, task)
				if err != nil {
					cancel()
					results <- pageResult{index: job.index, err: err}
					continue
				}
				results <- pageResult{index: job.index, path: enhanced}
			}
		}()
	}

	for i, path := range imagePaths {
		jobs <- pageResult{index: i, path: path}
	}
	close(jobs)
	wg.Wait()
	close(results)

	out := make([]string, len(imagePaths))
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil || firstErr == context.Canceled {
				firstErr = r.err
			}
			continue
		}
		out[r.index] = r.path
	}
	if firstErr != nil {
		return nil, firstErr
	}

	p.logger.Debug("enhanced pages", "count", len(imagePaths), "task", task)
	return out, nil
}
