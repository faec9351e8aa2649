// Package schedule provides a goroutine-based runner for recurring jobs.
package schedule

import (
	"sync"
	"time"

	"holyverses/internal/devo"
)

// Runner executes registered jobs after an initial delay and then at a fixed
// period, one goroutine per job. Registering a key that is already present
// replaces the old job.
type Runner struct {
	mu     sync.Mutex
	jobs   map[string]chan struct{} // per-job stop signal
	wg     sync.WaitGroup
	logger devo.Logger
}

var _ devo.Scheduler = (*Runner)(nil)

func NewRunner(logger devo.Logger) *Runner {
	return &Runner{
		jobs:   make(map[string]chan struct{}),
		logger: logger,
	}
}

// RegisterRecurring schedules run to execute after initialDelay and then
// every period. A previously registered job under the same key is cancelled
// first.
func (r *Runner) RegisterRecurring(key string, initialDelay, period time.Duration, run func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stop, ok := r.jobs[key]; ok {
		close(stop)
	}
	stop := make(chan struct{})
	r.jobs[key] = stop

	r.wg.Add(1)
	go r.loop(key, initialDelay, period, run, stop)
}

func (r *Runner) loop(key string, initialDelay, period time.Duration, run func(), stop chan struct{}) {
	defer r.wg.Done()

	timer := time.NewTimer(initialDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-stop:
		return
	}
	r.runOnce(key, run)

	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.runOnce(key, run)
		case <-stop:
			return
		}
	}
}

// runOnce shields the runner from panicking jobs so one bad execution does
// not kill the recurring loop.
func (r *Runner) runOnce(key string, run func()) {
	defer func() {
		if v := recover(); v != nil {
			r.logger.Error("scheduled job panicked", "job", key, "panic", v)
		}
	}()
	run()
}

// Cancel stops the job registered under key, if any.
func (r *Runner) Cancel(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stop, ok := r.jobs[key]; ok {
		close(stop)
		delete(r.jobs, key)
	}
}

// Stop cancels every job and waits for running goroutines to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	for key, stop := range r.jobs {
		close(stop)
		delete(r.jobs, key)
	}
	r.mu.Unlock()

	r.wg.Wait()
}
