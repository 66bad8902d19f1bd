// Package parser turns bank SMS and payment-app notification text into
// structured transactions. Everything in this package is pure: no I/O, no
// clock, no shared mutable state. A Parser may be used from any number of
// goroutines.
package parser

import (
	"strings"

	"github.com/dvloznov/spendsense/internal/domain"
)

// Rejection explains why a text did not produce a transaction.
// It is diagnostic only; callers treat every rejection the same way.
type Rejection string

const (
	Accepted                     Rejection = ""
	RejectEmptyInput             Rejection = "empty_input"
	RejectNoAmountFound          Rejection = "no_amount_found"
	RejectNoDirectionKeyword     Rejection = "no_direction_keyword"
	RejectUnrecognizedSource     Rejection = "unrecognized_source"
	RejectIrrelevantNotification Rejection = "irrelevant_notification"
)

// DefaultMaxInputBytes bounds the text inspected per message.
const DefaultMaxInputBytes = 4096

// DefaultAllowedPackages are the payment and banking apps whose notifications
// are parsed.
var DefaultAllowedPackages = []string{
	"com.google.android.apps.nbu.paisa.user", // Google Pay
	"com.phonepe.app",
	"net.one97.paytm",
	"in.org.npci.upiapp", // BHIM
	"in.amazon.mShop.android.shopping",
	"com.dreamplug.androidapp", // CRED
	"com.mobikwik_new",
	"com.sbi.lotusintouch", // YONO
	"com.snapwork.hdfc",
	"com.csam.icici.bank.imobile",
	"com.axis.mobile",
	"com.msf.kbank.mobile", // Kotak
}

var notificationMoneyWords = []string{"paid", "sent", "debited", "received", "credited"}

// Parser holds the immutable configuration for parsing.
type Parser struct {
	allowed       map[string]struct{}
	maxInputBytes int
}

// Option configures a Parser.
type Option func(*Parser)

// WithAllowedPackages adds package identities to the notification allow-list.
func WithAllowedPackages(packages ...string) Option {
	return func(p *Parser) {
		for _, pkg := range packages {
			pkg = strings.TrimSpace(pkg)
			if pkg != "" {
				p.allowed[pkg] = struct{}{}
			}
		}
	}
}

// WithMaxInputBytes overrides DefaultMaxInputBytes. Non-positive values are ignored.
func WithMaxInputBytes(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxInputBytes = n
		}
	}
}

// New creates a Parser with the default allow-list plus any options.
func New(opts ...Option) *Parser {
	p := &Parser{
		allowed:       make(map[string]struct{}, len(DefaultAllowedPackages)),
		maxInputBytes: DefaultMaxInputBytes,
	}
	WithAllowedPackages(DefaultAllowedPackages...)(p)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Default is a Parser with the built-in allow-list.
var Default = New()

// ParseSMS parses an SMS body using the default parser.
func ParseSMS(body string) (*domain.ParsedTransaction, bool) {
	return Default.ParseSMS(body)
}

// ParseNotification parses a notification using the default parser.
func ParseNotification(pkg, title, body string) (*domain.ParsedTransaction, bool) {
	return Default.ParseNotification(pkg, title, body)
}

// IsAllowed reports whether notifications from pkg are eligible for parsing.
func (p *Parser) IsAllowed(pkg string) bool {
	_, ok := p.allowed[pkg]
	return ok
}

// ParseSMS parses an SMS body.
func (p *Parser) ParseSMS(body string) (*domain.ParsedTransaction, bool) {
	return p.Parse(body, domain.Origin{Source: domain.SourceSMS})
}

// ParseNotification parses a notification title and body posted by pkg.
func (p *Parser) ParseNotification(pkg, title, body string) (*domain.ParsedTransaction, bool) {
	return p.Parse(JoinNotification(title, body), domain.Origin{Source: domain.SourceNotification, Sender: pkg})
}

// Parse returns the transaction described by text, or false when text is not
// a transaction.
func (p *Parser) Parse(text string, origin domain.Origin) (*domain.ParsedTransaction, bool) {
	tx, reason := p.ParseWithReason(text, origin)
	return tx, reason == Accepted
}

// ParseWithReason is Parse that also reports why a text was rejected.
// It never panics, whatever the input.
func (p *Parser) ParseWithReason(text string, origin domain.Origin) (tx *domain.ParsedTransaction, reason Rejection) {
	defer func() {
		if r := recover(); r != nil {
			tx, reason = nil, RejectNoAmountFound
		}
	}()

	text = p.sanitize(text)
	if strings.TrimSpace(text) == "" {
		return nil, RejectEmptyInput
	}

	if origin.Source == domain.SourceNotification {
		if !p.IsAllowed(origin.Sender) {
			return nil, RejectUnrecognizedSource
		}
		if !looksLikePayment(text) {
			return nil, RejectIrrelevantNotification
		}
	}

	amount, direction, reason := extractAmountAndDirection(text)
	if reason != Accepted {
		return nil, reason
	}

	counterparty := ResolveMerchant(text, origin, direction)
	return &domain.ParsedTransaction{
		Amount:       amount,
		Direction:    direction,
		Counterparty: counterparty,
		Category:     ClassifyCategory(counterparty),
		Origin:       origin,
	}, Accepted
}

// sanitize makes text valid UTF-8 and caps its length on a rune boundary.
func (p *Parser) sanitize(text string) string {
	text = strings.ToValidUTF8(text, "�")
	if len(text) <= p.maxInputBytes {
		return text
	}
	cut := p.maxInputBytes
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// looksLikePayment is the cheap pre-filter applied to notifications before
// the regex cascade runs.
func looksLikePayment(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range notificationMoneyWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return strings.Contains(text, "₹")
}

// JoinNotification combines a notification title and body into one text.
func JoinNotification(title, body string) string {
	switch {
	case title == "":
		return body
	case body == "":
		return title
	default:
		return title + "\n" + body
	}
}
