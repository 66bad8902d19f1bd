package parser

import (
	"regexp"
	"strings"

	"github.com/dvloznov/spendsense/internal/domain"
)

// merchantRule is one step of the counterparty cascade. A rule either has a
// pattern whose first group is the candidate, a custom extract function, or a
// fixed label returned whenever the pattern matches.
type merchantRule struct {
	name        string
	pattern     *regexp.Regexp
	extract     func(text string) string
	label       string
	smsOnly     bool
	inboundOnly bool
}

var (
	avlLimitPattern = regexp.MustCompile(`(?i)\bavl\.?\s+limit`)

	// Trailing clauses that follow a merchant name in bank messages.
	clauseBoundary = regexp.MustCompile(`(?i)\s+(?:on|via|ref|avl|using|dated|txn|for|upi\s+ref)\b|\.\s|\(|\s+-\s`)

	boilerplateTokens = []string{"A/C", "ACCOUNT", "CARD", "BANK"}
)

// merchantRules is evaluated top to bottom; the first usable candidate wins.
// Bank-specific layouts sit above the generic prepositions so that the generic
// rules never consume text that belongs to a more specific format.
var merchantRules = []merchantRule{
	{
		name:    "standing_instruction",
		pattern: regexp.MustCompile(`(?i)\bfor\s+(.+?)\s+to\s+be\s+debited`),
	},
	{
		name:    "purpose_clause",
		pattern: regexp.MustCompile(`(?i)\b(?:debited|paid)\s+(?:for|towards)\s+([^\n]+)`),
	},
	{
		name:    "emi_auto_debit",
		pattern: regexp.MustCompile(`(?i)\b(?:emi|ecs)\b`),
		label:   domain.EMIAutoDebit,
	},
	{
		name:    "date_then_merchant",
		pattern: regexp.MustCompile(`(?is)\bon\s+\S+\s+on\s+(.+?)[\s.,]*\bavl\.?\s+limit`),
		smsOnly: true,
	},
	{
		name:    "line_before_limit",
		extract: lineBeforeLimit,
		smsOnly: true,
	},
	{
		name:    "after_reference",
		pattern: regexp.MustCompile(`(?i)\b(?:upi|ref)\b[^0-9\n]{0,12}\b\d{6,12}\b[\s:/.-]*([^\n]+)`),
	},
	{
		name:        "inbound_sender",
		pattern:     regexp.MustCompile(`(?i)\b(?:from|by)\s+([^\n]+)`),
		inboundOnly: true,
	},
	{
		name:    "generic_preposition",
		pattern: regexp.MustCompile(`(?i)(?:\bto\s+(?:vpa\s+)?|\b(?:at|vpa)\s+|\binfo[:-]\s*|\bupi/upi\s+)([^\n]+)`),
	},
}

// ResolveMerchant returns the counterparty named in text. It never fails:
// when no rule produces a usable name the direction fallback label is returned.
func ResolveMerchant(text string, origin domain.Origin, direction domain.Direction) string {
	counterparty, _ := resolveMerchant(text, origin, direction)
	return counterparty
}

// resolveMerchant also reports which rule produced the counterparty
// ("fallback" when none did).
func resolveMerchant(text string, origin domain.Origin, direction domain.Direction) (string, string) {
	for _, rule := range merchantRules {
		if !rule.appliesTo(origin.Source, direction) {
			continue
		}
		if candidate, ok := rule.resolve(text); ok {
			return candidate, rule.name
		}
	}
	return domain.FallbackCounterparty(direction), "fallback"
}

func (r merchantRule) appliesTo(source domain.Source, direction domain.Direction) bool {
	if r.smsOnly && source != domain.SourceSMS {
		return false
	}
	if r.inboundOnly && direction != domain.DirectionInbound {
		return false
	}
	return true
}

func (r merchantRule) resolve(text string) (string, bool) {
	if r.label != "" {
		return r.label, r.pattern.MatchString(text)
	}

	var raw string
	if r.extract != nil {
		raw = r.extract(text)
	} else if m := r.pattern.FindStringSubmatch(text); m != nil {
		raw = m[1]
	}

	candidate := normalizeCandidate(raw)
	if candidate == "" || isBoilerplate(candidate) {
		return "", false
	}
	return truncateRunes(candidate, domain.MaxCounterpartyLen), true
}

// lineBeforeLimit handles the multi-line card layout where the merchant sits
// on the line right above "Avl Limit".
func lineBeforeLimit(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !avlLimitPattern.MatchString(line) {
			continue
		}
		if i == 0 {
			return ""
		}
		prev := strings.ToLower(lines[i-1])
		// "ist" marks the timestamp line.
		if strings.Contains(prev, "ist") || strings.Contains(prev, "card") {
			return ""
		}
		return lines[i-1]
	}
	return ""
}

func normalizeCandidate(raw string) string {
	if loc := clauseBoundary.FindStringIndex(raw); loc != nil {
		raw = raw[:loc[0]]
	}
	candidate := strings.Join(strings.Fields(raw), " ")
	candidate = strings.Trim(candidate, " .,:;-*'\"()")
	return strings.ToUpper(candidate)
}

func isBoilerplate(candidate string) bool {
	for _, token := range boilerplateTokens {
		if strings.Contains(candidate, token) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}
