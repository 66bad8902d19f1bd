package parser

import (
	"testing"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		counterparty string
		want         domain.Category
	}{
		{"SWIGGY BANGALORE", domain.CategoryFood},
		{"Zomato Ltd", domain.CategoryFood},
		{"DOMINOS PIZZA", domain.CategoryFood},
		{"UBER INDIA", domain.CategoryTransport},
		{"RAPIDO BIKE", domain.CategoryTransport},
		{"BESCOM", domain.CategoryBills},
		{"AIRTEL RECHARGE", domain.CategoryBills},
		{"FRESHMART@UPI", domain.CategoryShopping},
		{"METRO STORE", domain.CategoryShopping},
		{"PIZZA MART", domain.CategoryFood}, // food bucket is checked before shopping
		{"BILL STORE", domain.CategoryBills},
		{domain.FallbackOutbound, domain.CategoryOther},
		{"", domain.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.counterparty, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyCategory(tt.counterparty))
		})
	}
}
