package jobs

import (
	"context"
	"errors"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeRecurringBilling re-bills recurring transactions that are due.
	JobTypeRecurringBilling JobType = "recurring_billing"
	// JobTypeBudgetCheck evaluates the month's spending against the budget.
	JobTypeBudgetCheck JobType = "budget_check"
)

// Names of the jobs the services register.
const (
	JobNameRecurringBilling = "recurring-billing"
	JobNameBudgetCheck      = "budget-check"
)

// RunStatus represents the state of a single job run.
type RunStatus string

const (
	// RunStatusRunning indicates the run is in progress.
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted indicates the run completed successfully.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed indicates the handler returned an error.
	RunStatusFailed RunStatus = "failed"
	// RunStatusSkipped indicates a trigger arrived while a previous run was still in progress.
	RunStatusSkipped RunStatus = "skipped"
)

// RunTrigger says what started a run.
type RunTrigger string

const (
	TriggerSchedule RunTrigger = "schedule"
	TriggerManual   RunTrigger = "manual"
)

var (
	// ErrJobNotFound is returned when no job is registered under a name.
	ErrJobNotFound = errors.New("job not found")
	// ErrSchedulerStopped is returned when triggering a job after Stop.
	ErrSchedulerStopped = errors.New("scheduler is stopped")
)

// PeriodicJob describes a unique job that runs on a fixed interval.
type PeriodicJob struct {
	// Name identifies the job. Registering a second job with the same name keeps the first.
	Name string `json:"name"`

	// Type is the kind of work the job does.
	Type JobType `json:"type"`

	// Interval is the time between scheduled runs.
	Interval time.Duration `json:"interval"`
}

// JobRun records one execution attempt of a periodic job.
type JobRun struct {
	RunID       string     `json:"run_id"`
	JobName     string     `json:"job_name"`
	Type        JobType    `json:"type"`
	Trigger     RunTrigger `json:"trigger"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`

	// Result is whatever the handler chose to report, e.g. a billing summary.
	Result interface{} `json:"result,omitempty"`
}

// Handler runs one execution of a periodic job. The returned value is stored
// as the run's result.
type Handler func(ctx context.Context, now time.Time) (interface{}, error)

// Runner triggers registered jobs.
type Runner interface {
	// RegisterPeriodic registers job unless a job with the same name exists.
	// It reports whether the job was newly registered.
	RegisterPeriodic(job PeriodicJob, handler Handler) bool

	// RunNow runs the named job immediately and waits for it to finish.
	RunNow(ctx context.Context, name string) (*JobRun, error)
}

// RunStore defines the interface for storing and retrieving job run history.
type RunStore interface {
	// SaveRun saves or updates a run.
	SaveRun(ctx context.Context, run *JobRun) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, runID string) (*JobRun, error)

	// ListRuns retrieves runs with optional filtering, newest first.
	ListRuns(ctx context.Context, filter RunFilter) ([]*JobRun, error)
}

// RunFilter defines filtering criteria for listing runs.
type RunFilter struct {
	// JobName filters runs by job name.
	JobName string

	// Status filters runs by status.
	Status RunStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
