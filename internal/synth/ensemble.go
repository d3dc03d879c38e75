package synth

import (
	"context"
	"sync"

	"github.com/san-kum/covplay/internal/metrics"
)

// Ensemble generates and summarizes numRuns runs concurrently, seeding run i
// with seedStart+i.
type Ensemble struct {
	base      Config
	numRuns   int
	seedStart int64
}

func NewEnsemble(base Config, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{base: base, numRuns: numRuns, seedStart: seedStart}
}

// Run returns one summary per run, in seed order.
func (e *Ensemble) Run(ctx context.Context) ([]metrics.Summary, error) {
	results := make([]metrics.Summary, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := e.base
			cfg.Seed = e.seedStart + int64(idx)

			run, err := New(cfg).Generate()
			if err != nil {
				errs[idx] = err
				return
			}
			series, err := metrics.Collect(ctx, run.Visited, run.Map, run.Grid)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx] = metrics.Summarize(series)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// MeanFinalCoverage averages the final coverage of summaries.
func MeanFinalCoverage(summaries []metrics.Summary) float64 {
	if len(summaries) == 0 {
		return 0
	}
	total := 0.0
	for _, s := range summaries {
		total += s.FinalCoverage
	}
	return total / float64(len(summaries))
}

