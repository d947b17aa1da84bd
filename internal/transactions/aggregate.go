package transactions

import (
	"sort"

	"github.com/shopspring/decimal"
)

type priceBand struct {
	label string
	min   float64
}

// priceBands partition [0, inf) into lower-inclusive, upper-exclusive bands.
// Each band ends where the next one starts; the last one is open-ended.
var priceBands = []priceBand{
	{"0-100", 0},
	{"101-200", 100},
	{"201-300", 200},
	{"301-400", 300},
	{"401-500", 400},
	{"501-600", 500},
	{"601-700", 600},
	{"701-800", 700},
	{"801-900", 800},
	{"901-above", 900},
}

// BucketIndex returns the band holding price. Negative prices, which the
// data model forbids, land in the first band.
func BucketIndex(price float64) int {
	for i := len(priceBands) - 1; i > 0; i-- {
		if price >= priceBands[i].min {
			return i
		}
	}
	return 0
}

// Histogram counts records per price band. Every band is present, in
// boundary order, even when empty.
func Histogram(records []Transaction) []Bucket {
	buckets := make([]Bucket, len(priceBands))
	for i, b := range priceBands {
		buckets[i].BucketLabel = b.label
	}
	for _, t := range records {
		buckets[BucketIndex(t.Price)].Count++
	}
	return buckets
}

// CategoryBreakdown flattens grouped counts, dropping empty groups and
// sorting by category.
func CategoryBreakdown(counts map[string]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for category, n := range counts {
		if n <= 0 {
			continue
		}
		out = append(out, CategoryCount{Category: category, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// SumPrices adds prices exactly, avoiding float drift across many records.
func SumPrices(records []Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range records {
		sum = sum.Add(decimal.NewFromFloat(t.Price))
	}
	return sum
}
