package parser

import (
	"strings"

	"github.com/dvloznov/spendsense/internal/domain"
)

type categoryBucket struct {
	category domain.Category
	keywords []string
}

// Buckets are checked in order; a counterparty matching several buckets gets
// the first one.
var categoryBuckets = []categoryBucket{
	{category: domain.CategoryFood, keywords: []string{"swiggy", "zomato", "pizza"}},
	{category: domain.CategoryTransport, keywords: []string{"uber", "ola", "rapido"}},
	{category: domain.CategoryBills, keywords: []string{"bescom", "bill", "recharge"}},
	{category: domain.CategoryShopping, keywords: []string{"mart", "store"}},
}

// ClassifyCategory maps a counterparty to a spending category.
func ClassifyCategory(counterparty string) domain.Category {
	lower := strings.ToLower(counterparty)
	for _, bucket := range categoryBuckets {
		for _, keyword := range bucket.keywords {
			if strings.Contains(lower, keyword) {
				return bucket.category
			}
		}
	}
	return domain.CategoryOther
}
