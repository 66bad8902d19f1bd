package parser

import (
	"testing"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestExtractAmountAndDirection(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantAmount    string
		wantDirection domain.Direction
		wantOK        bool
	}{
		{
			name:          "inr with grouping and paise",
			text:          "INR 1,250.50 debited via UPI to freshmart@upi",
			wantAmount:    "1250.50",
			wantDirection: domain.DirectionOutbound,
			wantOK:        true,
		},
		{
			name:          "indian lakh grouping",
			text:          "Rs. 1,00,000.00 credited to your account",
			wantAmount:    "100000",
			wantDirection: domain.DirectionInbound,
			wantOK:        true,
		},
		{
			name:          "rupee symbol without space",
			text:          "Paid ₹200 to Metro Store",
			wantAmount:    "200",
			wantDirection: domain.DirectionOutbound,
			wantOK:        true,
		},
		{
			name:          "lower case rs without dot",
			text:          "rs 75 deducted for parking",
			wantAmount:    "75",
			wantDirection: domain.DirectionOutbound,
			wantOK:        true,
		},
		{
			name:          "outbound keyword wins when both present",
			text:          "Rs 500 sent to Ravi and refund credited",
			wantAmount:    "500",
			wantDirection: domain.DirectionOutbound,
			wantOK:        true,
		},
		{
			name:          "inbound only",
			text:          "You have received INR 2,000 from ACME PAYROLL",
			wantAmount:    "2000",
			wantDirection: domain.DirectionInbound,
			wantOK:        true,
		},
		{
			name:   "otp has no direction keyword",
			text:   "Your OTP is 123456. Do not share it.",
			wantOK: false,
		},
		{
			name:   "price mention without direction",
			text:   "Flat 50% off! Shoes now at Rs 999 only",
			wantOK: false,
		},
		{
			name:   "direction keyword without amount",
			text:   "Your card has been debited",
			wantOK: false,
		},
		{
			name:   "zero amount rejected",
			text:   "Rs 0.00 debited from your account",
			wantOK: false,
		},
		{
			name:   "keyword inside another word does not count",
			text:   "We need your consent for Rs 100 cashback",
			wantOK: false,
		},
		{
			name:   "more than two decimals is malformed",
			text:   "Rs 12.345 debited from your account",
			wantOK: false,
		},
		{
			name:          "sentence full stop after amount",
			text:          "Rs 450. debited at SHELL",
			wantAmount:    "450",
			wantDirection: domain.DirectionOutbound,
			wantOK:        true,
		},
		{
			name:   "empty",
			text:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, direction, ok := ExtractAmountAndDirection(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(amount), "amount = %s", amount)
			assert.Equal(t, tt.wantDirection, direction)
		})
	}
}

func TestExtractAmountAndDirection_Reasons(t *testing.T) {
	_, _, reason := extractAmountAndDirection("Your OTP is 123456")
	assert.Equal(t, RejectNoDirectionKeyword, reason)

	_, _, reason = extractAmountAndDirection("Amount debited successfully")
	assert.Equal(t, RejectNoAmountFound, reason)

	_, _, reason = extractAmountAndDirection("Rs 12.345 debited")
	assert.Equal(t, RejectNoAmountFound, reason)
}
