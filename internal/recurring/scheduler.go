// Package recurring re-bills recurring transactions once per calendar month.
package recurring

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is where a recurring template stands in the current billing cycle.
type State string

const (
	StateNotYetDue State = "NOT_YET_DUE"
	StateDue       State = "DUE"
	StateBilled    State = "BILLED"
)

// RunSummary counts what happened to each template during one run.
type RunSummary struct {
	Evaluated     int `json:"evaluated"`
	NotYetDue     int `json:"not_yet_due"`
	AlreadyBilled int `json:"already_billed"`
	Billed        int `json:"billed"`
	Failed        int `json:"failed"`
}

// Scheduler evaluates recurring templates and records the ones that are due.
// Two runs of the same Scheduler must not overlap; the periodic job runner
// guarantees that.
type Scheduler struct {
	repo  Repository
	log   zerolog.Logger
	newID func() string
}

// NewScheduler creates a new Scheduler.
func NewScheduler(repo Repository, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		repo:  repo,
		log:   log,
		newID: uuid.NewString,
	}
}

// DaysInMonth returns the number of days in the month containing t.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// StartOfMonth returns the first instant of the month containing t, in t's location.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// TargetBillingDay is the anchor's day of month clamped to the length of
// now's month, so a template anchored on the 31st bills on the 28th or 29th
// in February. The anchor day is read in now's location; stores return
// timestamps in UTC.
func TargetBillingDay(anchor, now time.Time) int {
	day := anchor.In(now.Location()).Day()
	if last := DaysInMonth(now); day > last {
		return last
	}
	return day
}

// Evaluate returns the state of tpl at now. billedThisMonth is the result of
// the duplicate check and is only meaningful once the template is due.
func Evaluate(tpl domain.RecurringTemplate, now time.Time, billedThisMonth bool) State {
	if now.Day() < TargetBillingDay(tpl.OriginalDate, now) {
		return StateNotYetDue
	}
	if billedThisMonth {
		return StateBilled
	}
	return StateDue
}

// Run evaluates every recurring template at now. A failure on one template is
// logged and counted, and the remaining templates are still processed; only a
// failure to list the templates fails the run.
func (s *Scheduler) Run(ctx context.Context, now time.Time) (RunSummary, error) {
	templates, err := s.repo.ListRecurringTemplates(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("Run: list recurring templates: %w", err)
	}

	var summary RunSummary
	for _, tpl := range templates {
		summary.Evaluated++

		state, err := s.process(ctx, tpl, now)
		if err != nil {
			summary.Failed++
			s.log.Error().
				Err(err).
				Str("template_id", tpl.TransactionID).
				Str("description", tpl.Description).
				Msg("Recurring template failed")
			continue
		}

		switch state {
		case StateNotYetDue:
			summary.NotYetDue++
		case StateBilled:
			summary.AlreadyBilled++
		case StateDue:
			summary.Billed++
		}
	}

	s.log.Info().
		Int("evaluated", summary.Evaluated).
		Int("billed", summary.Billed).
		Int("already_billed", summary.AlreadyBilled).
		Int("not_yet_due", summary.NotYetDue).
		Int("failed", summary.Failed).
		Msg("Recurring billing run finished")

	return summary, nil
}

// process returns StateDue when it inserted a new record for tpl.
func (s *Scheduler) process(ctx context.Context, tpl domain.RecurringTemplate, now time.Time) (State, error) {
	if Evaluate(tpl, now, false) == StateNotYetDue {
		return StateNotYetDue, nil
	}

	billed, err := s.repo.ExistsSince(ctx, tpl.Description, tpl.Amount, StartOfMonth(now))
	if err != nil {
		return "", fmt.Errorf("process: duplicate check: %w", err)
	}
	if Evaluate(tpl, now, billed) == StateBilled {
		return StateBilled, nil
	}

	rec := &domain.TransactionRecord{
		TransactionID: s.newID(),
		Amount:        tpl.Amount,
		Direction:     tpl.Direction,
		Category:      tpl.Category,
		Description:   tpl.Description,
		IsRecurring:   true,
		Source:        domain.SourceRecurring,
		Date:          now,
	}
	if err := s.repo.InsertTransaction(ctx, rec); err != nil {
		return "", fmt.Errorf("process: insert transaction: %w", err)
	}

	s.log.Info().
		Str("template_id", tpl.TransactionID).
		Str("transaction_id", rec.TransactionID).
		Str("description", tpl.Description).
		Str("amount", tpl.Amount.String()).
		Msg("Recurring transaction billed")

	return StateDue, nil
}
