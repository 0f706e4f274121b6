// Package scheduler drives the named jobs on independent fixed intervals and
// lets them be triggered on demand. Jobs share nothing in memory; all state
// lives in the store.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"newsbot/internal/logger"
	"newsbot/internal/metrics"
)

// JobFunc is one unit of scheduled work.
type JobFunc func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	run      JobFunc
}

type Scheduler struct {
	mu   sync.Mutex
	jobs map[string]job
	stop chan struct{}
	wg   sync.WaitGroup
}

func New() *Scheduler {
	return &Scheduler{jobs: map[string]job{}}
}

// Register adds or replaces a named job.
func (s *Scheduler) Register(name string, interval time.Duration, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[name] = job{name: name, interval: interval, run: fn}
}

// JobNames lists the registered jobs for the health surface.
func (s *Scheduler) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start launches one ticker loop per job. Each tick runs in its own
// goroutine, so a slow run does not delay the next trigger; overlapping runs
// of the same job are possible and accepted.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, j, s.stop)
	}

	logger.Info("scheduler started", "jobs", len(s.jobs))
}

// loop takes the stop channel as a parameter so it never re-reads the field
// that Stop resets.
func (s *Scheduler) loop(ctx context.Context, j job, stop <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			go s.runJob(ctx, j)
		case <-ctx.Done():
			return
		case <-stop:
			return
		}
	}
}

// Trigger runs a job once, on demand, and reports its result.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("job %s is not registered", name)
	}

	return s.runJob(ctx, j)
}

// runJob isolates one invocation: a failure or panic is logged and counted,
// and the scheduler keeps running for the next trigger.
func (s *Scheduler) runJob(ctx context.Context, j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.name, r)
			logger.Error("job panicked", "job", j.name, "panic", r)
			metrics.Global.RecordError(err)
		}
	}()

	logger.Debug("job started", "job", j.name)

	if err := j.run(ctx); err != nil {
		logger.Error("job failed", "job", j.name, "error", err)
		metrics.Global.RecordError(err)
		return err
	}

	logger.Debug("job finished", "job", j.name)
	return nil
}

// Stop halts all ticker loops and waits for them to exit. In-flight job runs
// finish on their own. The mutex is released before the wait so Trigger and
// Register stay usable while loops drain.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	s.wg.Wait()

	logger.Info("scheduler stopped")
}
