package transfer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/HemeraProtocol/seismic-verify/internal/logger"
	"github.com/HemeraProtocol/seismic-verify/pkg/solc"
)

// DefaultWorkers is the default concurrency bound.
const DefaultWorkers = 3

// Failure pairs a version with the reason it could not be transferred.
type Failure struct {
	Version string
	Reason  string
}

// Summary aggregates the outcomes of one run. Counting is order
// independent: the same outcome set always yields the same summary, and
// Failures are sorted by version.
type Summary struct {
	Uploaded int
	Skipped  int
	Failed   int
	Failures []Failure
}

// Err returns a non-nil error when at least one artifact failed. A run
// where everything was uploaded or skipped is a success.
func (s Summary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d artifacts failed to sync", s.Failed, s.Uploaded+s.Skipped+s.Failed)
}

// Orchestrator fans artifacts out to a fixed-size pool of goroutines
// sharing one Worker, and fans their outcomes back into a Summary.
type Orchestrator struct {
	worker  *Worker
	workers int
}

// NewOrchestrator creates an orchestrator dispatching to at most workers
// concurrent transfers. workers <= 0 selects DefaultWorkers.
func NewOrchestrator(worker *Worker, workers int) *Orchestrator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Orchestrator{worker: worker, workers: workers}
}

// Run processes every artifact exactly once and returns the aggregate
// summary. At most the configured number of artifacts are in flight at any
// moment, a single slow or failing artifact never stalls the rest beyond
// the concurrency bound, and per-artifact failures are recorded rather
// than aborting the run. Context cancellation stops dispatch; artifacts
// never dispatched are not counted.
func (o *Orchestrator) Run(ctx context.Context, artifacts []solc.Artifact) Summary {
	logger.Info("Starting sync", "artifacts", len(artifacts), "workers", o.workers)

	jobs := make(chan solc.Artifact)
	outcomes := make(chan Outcome)

	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for art := range jobs {
				outcomes <- o.worker.Process(ctx, art)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, art := range artifacts {
			select {
			case jobs <- art:
			case <-ctx.Done():
				logger.Warn("Sync cancelled, waiting for in-flight transfers", "error", ctx.Err())
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var summary Summary
	for out := range outcomes {
		switch out.Status {
		case Uploaded:
			summary.Uploaded++
		case SkippedExisting:
			summary.Skipped++
		case Failed:
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{
				Version: out.Version,
				Reason:  out.Err.Error(),
			})
		}
	}

	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].Version < summary.Failures[j].Version
	})

	logger.Info("Sync finished",
		"uploaded", summary.Uploaded,
		"skipped", summary.Skipped,
		"failed", summary.Failed)
	return summary
}
