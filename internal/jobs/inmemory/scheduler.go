package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/spendsense/internal/jobs"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Scheduler runs unique periodic jobs in-process. Each job runs at most once
// at a time; triggers that arrive while it is running are recorded as skipped.
// Suitable for single-instance deployments.
type Scheduler struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	entries map[string]*entry
	order   []string
	store   jobs.RunStore
	log     zerolog.Logger
	now     func() time.Time
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	stopped bool
}

type entry struct {
	job     jobs.PeriodicJob
	handler jobs.Handler
	busy    bool
}

// NewScheduler creates a new in-memory scheduler. store may be nil, in which
// case run history is not kept.
func NewScheduler(store jobs.RunStore, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		entries: make(map[string]*entry),
		store:   store,
		log:     log,
		now:     time.Now,
	}
}

// RegisterPeriodic implements the Runner interface. If a job with the same
// name is already registered the existing one is kept and false is returned.
// Jobs registered after Start begin ticking immediately.
func (s *Scheduler) RegisterPeriodic(job jobs.PeriodicJob, handler jobs.Handler) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[job.Name]; exists {
		s.log.Debug().Str("job", job.Name).Msg("Job already registered, keeping existing")
		return false
	}

	e := &entry{job: job, handler: handler}
	s.entries[job.Name] = e
	s.order = append(s.order, job.Name)

	if s.started && !s.stopped {
		s.startLoopLocked(e)
	}

	s.log.Info().
		Str("job", job.Name).
		Str("type", string(job.Type)).
		Dur("interval", job.Interval).
		Msg("Periodic job registered")
	return true
}

// Jobs returns the registered jobs in registration order.
func (s *Scheduler) Jobs() []jobs.PeriodicJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]jobs.PeriodicJob, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.entries[name].job)
	}
	return out
}

// Start runs every registered job once and then on its interval. It returns
// immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return jobs.ErrSchedulerStopped
	}
	if s.started {
		return nil
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	for _, name := range s.order {
		s.startLoopLocked(s.entries[name])
	}
	return nil
}

// startLoopLocked must be called with s.mu held.
func (s *Scheduler) startLoopLocked(e *entry) {
	if e.job.Interval <= 0 {
		return
	}
	s.wg.Add(1)
	go s.loop(s.ctx, e)
}

// loop runs the job once right away, then on every tick.
func (s *Scheduler) loop(ctx context.Context, e *entry) {
	defer s.wg.Done()

	if _, err := s.trigger(ctx, e, jobs.TriggerSchedule); err != nil {
		return
	}

	ticker := time.NewTicker(e.job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.trigger(ctx, e, jobs.TriggerSchedule); err != nil {
				return
			}
		}
	}
}

// RunNow implements the Runner interface. When the job is already running the
// returned run has status skipped.
func (s *Scheduler) RunNow(ctx context.Context, name string) (*jobs.JobRun, error) {
	s.mu.Lock()
	e, exists := s.entries[name]
	s.mu.Unlock()

	if !exists {
		return nil, fmt.Errorf("RunNow: %s: %w", name, jobs.ErrJobNotFound)
	}
	return s.trigger(ctx, e, jobs.TriggerManual)
}

func (s *Scheduler) trigger(ctx context.Context, e *entry, trigger jobs.RunTrigger) (*jobs.JobRun, error) {
	run := &jobs.JobRun{
		RunID:     uuid.NewString(),
		JobName:   e.job.Name,
		Type:      e.job.Type,
		Trigger:   trigger,
		StartedAt: s.now(),
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, jobs.ErrSchedulerStopped
	}
	if e.busy {
		s.mu.Unlock()
		run.Status = jobs.RunStatusSkipped
		completedAt := run.StartedAt
		run.CompletedAt = &completedAt
		s.save(ctx, run)
		s.log.Warn().Str("job", e.job.Name).Str("trigger", string(trigger)).Msg("Job still running, trigger skipped")
		return run, nil
	}
	e.busy = true
	s.wg.Add(1)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		e.busy = false
		s.mu.Unlock()
		s.wg.Done()
	}()

	run.Status = jobs.RunStatusRunning
	s.save(ctx, run)

	result, err := s.execute(ctx, e, run.StartedAt)

	completedAt := s.now()
	run.CompletedAt = &completedAt
	run.Result = result
	if err != nil {
		run.Status = jobs.RunStatusFailed
		run.Error = err.Error()
		s.log.Error().Err(err).Str("job", e.job.Name).Str("run_id", run.RunID).Msg("Job run failed")
	} else {
		run.Status = jobs.RunStatusCompleted
		s.log.Info().
			Str("job", e.job.Name).
			Str("run_id", run.RunID).
			Dur("duration", completedAt.Sub(run.StartedAt)).
			Msg("Job run completed")
	}
	s.save(ctx, run)

	return run, nil
}

// execute runs the handler, turning a panic into a failed run.
func (s *Scheduler) execute(ctx context.Context, e *entry, now time.Time) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("execute: %s panicked: %v", e.job.Name, r)
		}
	}()
	return e.handler(ctx, now)
}

func (s *Scheduler) save(ctx context.Context, run *jobs.JobRun) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		s.log.Warn().Err(err).Str("run_id", run.RunID).Msg("Failed to save job run")
	}
}

// Stop stops all tickers and waits for in-flight runs to complete or for ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ jobs.Runner = (*Scheduler)(nil)
