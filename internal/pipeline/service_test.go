package pipeline_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/parser"
	"github.com/dvloznov/spendsense/internal/pipeline"
	"github.com/dvloznov/spendsense/internal/pipeline/mocks"
	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.June, 3, 14, 5, 0, 0, time.UTC)

func newService(store pipeline.TransactionStore, opts ...pipeline.Option) *pipeline.Service {
	opts = append([]pipeline.Option{pipeline.WithClock(func() time.Time { return fixedNow })}, opts...)
	return pipeline.NewService(store, zerolog.New(io.Discard), opts...)
}

func TestService_IngestSMS(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockTransactionStore(ctrl)
	var stored *domain.TransactionRecord
	store.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *domain.TransactionRecord) error {
			stored = rec
			return nil
		})

	rec, err := newService(store).IngestSMS(context.Background(), "Rs 450 spent on your Credit Card ending 1234 on 12May24 on SWIGGY. Avl Limit Rs 54,000")
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Same(t, stored, rec)
	assert.NotEmpty(t, rec.TransactionID)
	assert.True(t, decimal.NewFromInt(450).Equal(rec.Amount))
	assert.Equal(t, domain.DirectionOutbound, rec.Direction)
	assert.Equal(t, domain.CategoryFood, rec.Category)
	assert.Equal(t, "SWIGGY", rec.Description)
	assert.False(t, rec.IsRecurring)
	assert.Equal(t, domain.SourceSMS, rec.Source)
	assert.Equal(t, fixedNow, rec.Date)
}

func TestService_IngestSMS_Rejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rec, err := newService(mocks.NewMockTransactionStore(ctrl)).IngestSMS(context.Background(), "Your OTP is 123456")
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestService_IngestSMS_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockTransactionStore(ctrl)
	store.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))

	rec, err := newService(store).IngestSMS(context.Background(), "Paid Rs 10 to CHAI POINT")
	assert.ErrorContains(t, err, "insert failed")
	assert.Nil(t, rec)
}

func TestService_IngestNotification(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockTransactionStore(ctrl)
	store.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).Return(nil)

	rec, err := newService(store, pipeline.WithTagOrigin(true)).
		IngestNotification(context.Background(), "com.phonepe.app", "Paid ₹200 to Metro Store", "")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "[PhonePe] METRO STORE", rec.Description)
	assert.Equal(t, "com.phonepe.app", rec.Sender)
	assert.Equal(t, domain.SourceNotification, rec.Source)
}

func TestService_IngestNotification_CustomAllowList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockTransactionStore(ctrl)
	store.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).Return(nil)

	svc := newService(store, pipeline.WithParser(parser.New(parser.WithAllowedPackages("com.example.bank"))))

	rec, err := svc.IngestNotification(context.Background(), "com.example.bank", "Rs 99 debited", "Info: BESCOM BILL")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.CategoryBills, rec.Category)

	rec, err = svc.IngestNotification(context.Background(), "com.example.game", "Rs 99 debited", "")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestBuildRecord(t *testing.T) {
	tx := &domain.ParsedTransaction{
		Amount:       decimal.NewFromInt(100),
		Direction:    domain.DirectionInbound,
		Counterparty: "ACME PAYROLL",
		Category:     domain.CategoryOther,
		Origin:       domain.Origin{Source: domain.SourceSMS},
	}

	assert.Equal(t, "ACME PAYROLL", pipeline.BuildRecord(tx, "id-1", fixedNow, false).Description)
	assert.Equal(t, "[SMS] ACME PAYROLL", pipeline.BuildRecord(tx, "id-1", fixedNow, true).Description)

	tx.Origin = domain.Origin{Source: domain.SourceNotification, Sender: "com.example.wallet"}
	assert.Equal(t, "[com.example.wallet] ACME PAYROLL", pipeline.BuildRecord(tx, "id-1", fixedNow, true).Description)
}
