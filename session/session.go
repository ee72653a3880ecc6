// Package session implements run_session: it enumerates selected jobs,
// dispatches them to a bounded worker pool, and funnels each result
// through the notification policy.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"oss.nandlabs.io/regular/collections"
	"oss.nandlabs.io/regular/job"
	"oss.nandlabs.io/regular/l3"
	"oss.nandlabs.io/regular/notify"
	"oss.nandlabs.io/regular/queue"
	"oss.nandlabs.io/regular/runner"
)

var logger = l3.Get()

// workItem is one unit of dispatch: the selection index (to preserve
// result ordering) and the job name to load and run.
type workItem struct {
	index int
	name  string
}

// Outcome pairs a job name with its run result, for callers that want
// the name alongside the Result without re-deriving it from the
// selection list.
type Outcome struct {
	Name   string
	Result runner.Result
}

// Run executes run_session: it loads cfg's available jobs (or the
// given names, if non-empty), runs each one through runner.Run, applies
// the notification policy through registry, and returns results in the
// same order as the input selection, regardless of completion order.
// Dispatch goes through a synchronized work queue feeding a bounded
// pool of worker goroutines sized from cfg.MaxWorkers (0 = unbounded).
func Run(cfg job.Config, force bool, names []string, registry *notify.Registry, outerEnv map[string]string) ([]Outcome, error) {
	selection, err := selectJobs(cfg.ConfigRoot, names)
	if err != nil {
		return nil, err
	}

	sweepStaleTickets(cfg.StateRoot)

	results := make([]Outcome, len(selection))
	queue := collections.NewSyncQueue[workItem]()
	for i, name := range selection {
		results[i] = Outcome{Name: name}
		if err := queue.Enqueue(workItem{index: i, name: name}); err != nil {
			return nil, fmt.Errorf("session: enqueue %s: %w", name, err)
		}
	}

	sem := newSemaphore(cfg.MaxWorkers)

	workerCount := len(selection)
	if cfg.MaxWorkers > 0 && cfg.MaxWorkers < workerCount {
		workerCount = cfg.MaxWorkers
	}

	var wg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				item, err := queue.Dequeue()
				if err != nil {
					return
				}
				sem.acquire()
				j, res := loadAndRun(cfg, item.name, force, outerEnv)
				sem.release()

				results[item.index].Result = res
				dispatch(res, j, registry)
			}
		}()
	}
	wg.Wait()

	return results, nil
}

// loadAndRun loads a job and, on success, runs it. The returned Job is
// the zero value when loading failed; its Notify field then defaults to
// NotifyOnError for the notification step.
func loadAndRun(cfg job.Config, name string, force bool, outerEnv map[string]string) (job.Job, runner.Result) {
	j, err := job.Load(cfg.ConfigRoot, name, outerEnv)
	if err != nil {
		logger.ErrorF("failed to load job %s: %v", name, err)
		return job.Job{}, runner.Result{Kind: runner.Error, Name: name, Message: err.Error()}
	}
	return j, runner.Run(cfg, j, force)
}

func dispatch(res runner.Result, j job.Job, registry *notify.Registry) {
	if registry == nil {
		return
	}
	if err := notify.Dispatch(j.Notify, res, registry.All()); err != nil {
		logger.ErrorF("notify dispatch for %s: %v", res.Name, err)
	}
}

// selectJobs resolves the available-jobs list (sorted subdirectories
// excluding reserved names) when names is empty, or echoes the given
// names otherwise; a name with no matching config-root directory is
// still dispatched and becomes an Error outcome when loaded/run.
func selectJobs(configRoot string, names []string) ([]string, error) {
	if len(names) == 0 {
		return job.AvailableJobs(configRoot)
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, nil
}

// sweepStaleTickets runs the best-effort queue cleanup described as
// optional in the original design ("a cleanup pass at session start
// MAY remove tickets whose exclusive lock is uncontended"): every
// per-job-named state subdirectory may hold a "queue" ticket
// directory left over from a crashed prior session, and each such
// directory gets one queue.Sweep pass before dispatch begins. Queue
// names need not match job names, but every job's queue directory is
// nested under the job/queue-named state subdirectory, so sweeping
// every immediate child of stateRoot covers all of them.
func sweepStaleTickets(stateRoot string) {
	entries, err := os.ReadDir(stateRoot)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		queueDir := filepath.Join(stateRoot, e.Name(), "queue")
		if _, err := os.Stat(queueDir); err != nil {
			continue
		}
		queue.Sweep(queueDir)
	}
}
