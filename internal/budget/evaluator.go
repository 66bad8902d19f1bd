// Package budget compares the month's outbound spending against a ceiling and
// raises alerts when thresholds are crossed.
package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Severity of a budget alert. The empty severity means no alert.
type Severity string

const (
	SeverityNone     Severity = ""
	SeverityWarning  Severity = "WARNING"
	SeverityExceeded Severity = "EXCEEDED"
)

var (
	// WarningRatio is the share of the ceiling at which a warning is raised.
	WarningRatio = decimal.RequireFromString("0.8")
	// ExceededRatio is the share of the ceiling at which the budget is exceeded.
	ExceededRatio = decimal.NewFromInt(1)
)

// Alert describes the state of the budget at evaluation time.
type Alert struct {
	Severity Severity        `json:"severity"`
	Spent    decimal.Decimal `json:"spent"`
	Ceiling  decimal.Decimal `json:"ceiling"`
	Ratio    decimal.Decimal `json:"ratio"`
	Since    time.Time       `json:"since"`
	At       time.Time       `json:"at"`
}

// Message renders the alert for a human reader.
func (a Alert) Message() string {
	pct := a.Ratio.Mul(decimal.NewFromInt(100)).Round(0)
	switch a.Severity {
	case SeverityExceeded:
		return fmt.Sprintf("Budget exceeded: spent ₹%s of ₹%s (%s%%)", a.Spent.StringFixed(2), a.Ceiling.StringFixed(2), pct)
	case SeverityWarning:
		return fmt.Sprintf("Budget warning: spent ₹%s of ₹%s (%s%%)", a.Spent.StringFixed(2), a.Ceiling.StringFixed(2), pct)
	default:
		return fmt.Sprintf("Budget ok: spent ₹%s of ₹%s", a.Spent.StringFixed(2), a.Ceiling.StringFixed(2))
	}
}

// Classify returns the severity for spent against ceiling. A ceiling that is
// zero or negative never alerts.
func Classify(spent, ceiling decimal.Decimal) (Severity, decimal.Decimal) {
	if !ceiling.IsPositive() {
		return SeverityNone, decimal.Zero
	}
	ratio := spent.Div(ceiling)
	switch {
	case ratio.GreaterThanOrEqual(ExceededRatio):
		return SeverityExceeded, ratio
	case ratio.GreaterThanOrEqual(WarningRatio):
		return SeverityWarning, ratio
	default:
		return SeverityNone, ratio
	}
}

// Evaluator checks the current month's spending against a fixed ceiling.
type Evaluator struct {
	source   ExpenseSource
	notifier Notifier
	ceiling  decimal.Decimal
	log      zerolog.Logger
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator(source ExpenseSource, notifier Notifier, ceiling decimal.Decimal, log zerolog.Logger) *Evaluator {
	return &Evaluator{
		source:   source,
		notifier: notifier,
		ceiling:  ceiling,
		log:      log,
	}
}

// Enabled reports whether a positive ceiling is configured.
func (e *Evaluator) Enabled() bool {
	return e.ceiling.IsPositive()
}

// Evaluate totals outbound spending since the start of now's month and
// notifies when the warning or exceeded threshold is reached. The returned
// alert has SeverityNone when nothing was sent.
func (e *Evaluator) Evaluate(ctx context.Context, now time.Time) (Alert, error) {
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	alert := Alert{Ceiling: e.ceiling, Since: since, At: now}

	if !e.Enabled() {
		e.log.Debug().Msg("Budget ceiling not set, skipping evaluation")
		return alert, nil
	}

	spent, err := e.source.SumOutboundSince(ctx, since)
	if err != nil {
		return alert, fmt.Errorf("Evaluate: sum outbound: %w", err)
	}
	alert.Spent = spent
	alert.Severity, alert.Ratio = Classify(spent, e.ceiling)

	e.log.Info().
		Str("spent", spent.StringFixed(2)).
		Str("ceiling", e.ceiling.StringFixed(2)).
		Str("severity", string(alert.Severity)).
		Msg("Budget evaluated")

	if alert.Severity == SeverityNone {
		return alert, nil
	}
	if err := e.notifier.Notify(ctx, alert); err != nil {
		return alert, fmt.Errorf("Evaluate: notify: %w", err)
	}
	return alert, nil
}

// LogNotifier writes alerts to a zerolog logger.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a notifier that logs alerts at warn level.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, alert Alert) error {
	n.log.Warn().
		Str("severity", string(alert.Severity)).
		Str("spent", alert.Spent.StringFixed(2)).
		Str("ceiling", alert.Ceiling.StringFixed(2)).
		Msg(alert.Message())
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
