// Package pipeline turns captured messages into stored transactions.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/parser"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNoStorage is returned by IngestExport when no StorageService was configured.
var ErrNoStorage = errors.New("no storage service configured")

// appLabels are the short names used when tagging descriptions with their origin.
var appLabels = map[string]string{
	"com.google.android.apps.nbu.paisa.user": "GPay",
	"com.phonepe.app":                        "PhonePe",
	"net.one97.paytm":                        "Paytm",
	"in.org.npci.upiapp":                     "BHIM",
	"in.amazon.mShop.android.shopping":       "Amazon",
	"com.dreamplug.androidapp":               "CRED",
	"com.mobikwik_new":                       "MobiKwik",
	"com.sbi.lotusintouch":                   "YONO",
	"com.snapwork.hdfc":                      "HDFC",
	"com.csam.icici.bank.imobile":            "iMobile",
	"com.axis.mobile":                        "Axis",
	"com.msf.kbank.mobile":                   "Kotak",
}

// Service parses messages and persists the accepted ones.
type Service struct {
	parser    *parser.Parser
	store     TransactionStore
	storage   StorageService
	tagOrigin bool
	now       func() time.Time
	newID     func() string
	log       zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithParser replaces parser.Default.
func WithParser(p *parser.Parser) Option {
	return func(s *Service) { s.parser = p }
}

// WithStorage enables IngestExport.
func WithStorage(storage StorageService) Option {
	return func(s *Service) { s.storage = storage }
}

// WithTagOrigin prefixes descriptions with "[SMS] " or "[<app>] ".
func WithTagOrigin(tag bool) Option {
	return func(s *Service) { s.tagOrigin = tag }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service.
func NewService(store TransactionStore, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		parser: parser.Default,
		store:  store,
		now:    time.Now,
		newID:  uuid.NewString,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parser returns the parser the service uses.
func (s *Service) Parser() *parser.Parser {
	return s.parser
}

// AppLabel returns the short name for a notification package, or the package
// itself when unknown.
func AppLabel(pkg string) string {
	if label, ok := appLabels[pkg]; ok {
		return label
	}
	return pkg
}

// BuildRecord turns a parsed transaction into a storable record.
func BuildRecord(tx *domain.ParsedTransaction, id string, now time.Time, tagOrigin bool) *domain.TransactionRecord {
	description := tx.Counterparty
	if tagOrigin {
		switch tx.Origin.Source {
		case domain.SourceSMS:
			description = "[SMS] " + description
		case domain.SourceNotification:
			description = "[" + AppLabel(tx.Origin.Sender) + "] " + description
		}
	}

	return &domain.TransactionRecord{
		TransactionID: id,
		Amount:        tx.Amount,
		Direction:     tx.Direction,
		Category:      tx.Category,
		Description:   description,
		IsRecurring:   false,
		Source:        tx.Origin.Source,
		Sender:        tx.Origin.Sender,
		Date:          now,
	}
}

// IngestSMS parses an SMS body and stores it. Non-transactional text returns
// (nil, nil).
func (s *Service) IngestSMS(ctx context.Context, body string) (*domain.TransactionRecord, error) {
	return s.ingest(ctx, body, domain.Origin{Source: domain.SourceSMS})
}

// IngestNotification parses a notification from pkg and stores it.
// Notifications from packages outside the allow-list, or without a payment,
// return (nil, nil).
func (s *Service) IngestNotification(ctx context.Context, pkg, title, body string) (*domain.TransactionRecord, error) {
	return s.ingest(ctx, parser.JoinNotification(title, body), domain.Origin{Source: domain.SourceNotification, Sender: pkg})
}

func (s *Service) ingest(ctx context.Context, text string, origin domain.Origin) (*domain.TransactionRecord, error) {
	tx, reason := s.parser.ParseWithReason(text, origin)
	if tx == nil {
		s.log.Debug().
			Str("source", string(origin.Source)).
			Str("sender", origin.Sender).
			Str("reason", string(reason)).
			Msg("Message ignored")
		return nil, nil
	}

	rec := BuildRecord(tx, s.newID(), s.now(), s.tagOrigin)
	if err := s.store.InsertTransaction(ctx, rec); err != nil {
		return nil, fmt.Errorf("ingest: insert transaction: %w", err)
	}

	s.log.Info().
		Str("transaction_id", rec.TransactionID).
		Str("direction", string(rec.Direction)).
		Str("amount", rec.Amount.String()).
		Str("category", string(rec.Category)).
		Str("source", string(rec.Source)).
		Msg("Transaction stored")

	return rec, nil
}
