package recurring_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/recurring"
	"github.com/dvloznov/spendsense/internal/recurring/mocks"
	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 9, 30, 0, 0, time.UTC)
}

func netflix() domain.RecurringTemplate {
	return domain.RecurringTemplate{
		TransactionID: "tpl-netflix",
		Amount:        decimal.RequireFromString("649.00"),
		Category:      domain.CategoryBills,
		Description:   "NETFLIX",
		Direction:     domain.DirectionOutbound,
		OriginalDate:  date(2024, time.January, 31),
	}
}

// memoryRepo is an in-memory Repository that behaves like the real stores.
type memoryRepo struct {
	mu        sync.Mutex
	templates []domain.RecurringTemplate
	records   []*domain.TransactionRecord
}

func (r *memoryRepo) ListRecurringTemplates(ctx context.Context) ([]domain.RecurringTemplate, error) {
	return r.templates, nil
}

func (r *memoryRepo) ExistsSince(ctx context.Context, description string, amount decimal.Decimal, since time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Description == description && rec.Amount.Equal(amount) && !rec.Date.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) InsertTransaction(ctx context.Context, rec *domain.TransactionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func TestTargetBillingDay(t *testing.T) {
	anchor31 := date(2024, time.January, 31)

	tests := []struct {
		name   string
		anchor time.Time
		now    time.Time
		want   int
	}{
		{"leap february", anchor31, date(2024, time.February, 10), 29},
		{"common february", anchor31, date(2025, time.February, 10), 28},
		{"thirty day month", anchor31, date(2024, time.April, 1), 30},
		{"long month keeps anchor", anchor31, date(2024, time.March, 1), 31},
		{"early anchor untouched", date(2024, time.January, 5), date(2024, time.February, 1), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recurring.TargetBillingDay(tt.anchor, tt.now))
		})
	}
}

func TestEvaluate(t *testing.T) {
	tpl := netflix()

	assert.Equal(t, recurring.StateNotYetDue, recurring.Evaluate(tpl, date(2025, time.February, 27), false))
	assert.Equal(t, recurring.StateDue, recurring.Evaluate(tpl, date(2025, time.February, 28), false))
	assert.Equal(t, recurring.StateBilled, recurring.Evaluate(tpl, date(2025, time.February, 28), true))

	assert.Equal(t, recurring.StateNotYetDue, recurring.Evaluate(tpl, date(2024, time.February, 28), false))
	assert.Equal(t, recurring.StateDue, recurring.Evaluate(tpl, date(2024, time.February, 29), false))
}

func TestTargetBillingDay_ReadsAnchorInLocalZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)

	// 2024-06-01 02:00 IST as returned by the store.
	anchor := time.Date(2024, time.May, 31, 20, 30, 0, 0, time.UTC)
	now := time.Date(2024, time.July, 1, 10, 0, 0, 0, ist)

	assert.Equal(t, 1, recurring.TargetBillingDay(anchor, now))

	tpl := netflix()
	tpl.OriginalDate = anchor
	assert.Equal(t, recurring.StateDue, recurring.Evaluate(tpl, now, false))
}

func TestStartOfMonth(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, time.June, 17, 22, 5, 0, 0, loc)
	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, loc), recurring.StartOfMonth(now))
}

func TestScheduler_Run_IsIdempotentWithinMonth(t *testing.T) {
	repo := &memoryRepo{templates: []domain.RecurringTemplate{netflix()}}
	s := recurring.NewScheduler(repo, zerolog.New(io.Discard))
	ctx := context.Background()

	first, err := s.Run(ctx, date(2025, time.February, 28))
	require.NoError(t, err)
	assert.Equal(t, recurring.RunSummary{Evaluated: 1, Billed: 1}, first)

	second, err := s.Run(ctx, date(2025, time.February, 28).Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, recurring.RunSummary{Evaluated: 1, AlreadyBilled: 1}, second)

	require.Len(t, repo.records, 1)
	rec := repo.records[0]
	assert.Equal(t, "NETFLIX", rec.Description)
	assert.True(t, rec.IsRecurring)
	assert.Equal(t, domain.SourceRecurring, rec.Source)
	assert.Equal(t, domain.DirectionOutbound, rec.Direction)
	assert.Equal(t, domain.CategoryBills, rec.Category)
	assert.Equal(t, date(2025, time.February, 28), rec.Date)
	assert.NotEmpty(t, rec.TransactionID)

	// Next month bills again.
	third, err := s.Run(ctx, date(2025, time.March, 31))
	require.NoError(t, err)
	assert.Equal(t, 1, third.Billed)
	assert.Len(t, repo.records, 2)
}

func TestScheduler_Run_NotYetDueSkipsDuplicateCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRepository(ctrl)
	repo.EXPECT().ListRecurringTemplates(gomock.Any()).Return([]domain.RecurringTemplate{netflix()}, nil)

	s := recurring.NewScheduler(repo, zerolog.New(io.Discard))
	summary, err := s.Run(context.Background(), date(2025, time.February, 27))

	require.NoError(t, err)
	assert.Equal(t, recurring.RunSummary{Evaluated: 1, NotYetDue: 1}, summary)
}

func TestScheduler_Run_ChecksDuplicatesFromStartOfMonth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tpl := netflix()
	now := date(2025, time.March, 31)

	repo := mocks.NewMockRepository(ctrl)
	gomock.InOrder(
		repo.EXPECT().ListRecurringTemplates(gomock.Any()).Return([]domain.RecurringTemplate{tpl}, nil),
		repo.EXPECT().
			ExistsSince(gomock.Any(), "NETFLIX", tpl.Amount, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)).
			Return(false, nil),
		repo.EXPECT().
			InsertTransaction(gomock.Any(), gomock.AssignableToTypeOf(&domain.TransactionRecord{})).
			DoAndReturn(func(_ context.Context, rec *domain.TransactionRecord) error {
				assert.Equal(t, now, rec.Date)
				assert.True(t, rec.Amount.Equal(tpl.Amount))
				return nil
			}),
	)

	s := recurring.NewScheduler(repo, zerolog.New(io.Discard))
	summary, err := s.Run(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Billed)
}

func TestScheduler_Run_IsolatesTemplateFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	broken := netflix()
	broken.Description = "SPOTIFY"
	insertFails := netflix()
	insertFails.Description = "GYM"
	healthy := netflix()

	repo := mocks.NewMockRepository(ctrl)
	repo.EXPECT().ListRecurringTemplates(gomock.Any()).
		Return([]domain.RecurringTemplate{broken, insertFails, healthy}, nil)
	repo.EXPECT().ExistsSince(gomock.Any(), "SPOTIFY", gomock.Any(), gomock.Any()).
		Return(false, errors.New("connection reset"))
	repo.EXPECT().ExistsSince(gomock.Any(), "GYM", gomock.Any(), gomock.Any()).Return(false, nil)
	repo.EXPECT().ExistsSince(gomock.Any(), "NETFLIX", gomock.Any(), gomock.Any()).Return(false, nil)
	repo.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *domain.TransactionRecord) error {
			if rec.Description == "GYM" {
				return errors.New("quota exceeded")
			}
			return nil
		}).Times(2)

	s := recurring.NewScheduler(repo, zerolog.New(io.Discard))
	summary, err := s.Run(context.Background(), date(2025, time.April, 30))

	require.NoError(t, err)
	assert.Equal(t, recurring.RunSummary{Evaluated: 3, Billed: 1, Failed: 2}, summary)
}

func TestScheduler_Run_ListFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRepository(ctrl)
	repo.EXPECT().ListRecurringTemplates(gomock.Any()).Return(nil, errors.New("table not found"))

	s := recurring.NewScheduler(repo, zerolog.New(io.Discard))
	_, err := s.Run(context.Background(), date(2025, time.April, 30))

	assert.ErrorContains(t, err, "table not found")
}
