package parser

import (
	"regexp"
	"strings"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// Outbound phrasing is checked first: "sent ... refund credited" is an expense.
	outboundKeywords = regexp.MustCompile(`\b(?:debited|spent|paid|sent|deducted)\b`)
	inboundKeywords  = regexp.MustCompile(`\b(?:credited|received|added|deposited)\b`)

	// A currency marker followed by a comma-grouped number. More than two
	// decimals is malformed and rejected by findAmount.
	// Examples: "Rs. 1,00,000.00", "INR 1,250.50", "₹200".
	amountPattern = regexp.MustCompile(`(?i)(?:₹|\brs\.?|\binr)\s*([0-9][0-9,]*)(?:\.([0-9]+))?`)
)

// ExtractAmountAndDirection finds the transaction amount and the money
// direction in text. ok is false when either one is missing, the amount
// does not parse or it is not positive.
func ExtractAmountAndDirection(text string) (amount decimal.Decimal, direction domain.Direction, ok bool) {
	amount, direction, reason := extractAmountAndDirection(text)
	return amount, direction, reason == Accepted
}

func extractAmountAndDirection(text string) (decimal.Decimal, domain.Direction, Rejection) {
	direction, found := detectDirection(strings.ToLower(text))
	if !found {
		return decimal.Zero, "", RejectNoDirectionKeyword
	}

	amount, found := findAmount(text)
	if !found {
		return decimal.Zero, "", RejectNoAmountFound
	}

	return amount, direction, Accepted
}

// detectDirection expects lower-cased text.
func detectDirection(lower string) (domain.Direction, bool) {
	if outboundKeywords.MatchString(lower) {
		return domain.DirectionOutbound, true
	}
	if inboundKeywords.MatchString(lower) {
		return domain.DirectionInbound, true
	}
	return "", false
}

func findAmount(text string) (decimal.Decimal, bool) {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}

	digits := strings.ReplaceAll(m[1], ",", "")
	if fraction := m[2]; fraction != "" {
		if len(fraction) > 2 {
			return decimal.Zero, false
		}
		digits += "." + fraction
	}

	amount, err := decimal.NewFromString(digits)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}
