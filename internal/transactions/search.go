package transactions

import (
	"strconv"
	"strings"
)

// Predicate is a case-insensitive substring match over title, description
// and the decimal rendering of price. The zero value matches everything.
type Predicate struct {
	Query string
}

// NewPredicate builds the match expression for a free-text query.
func NewPredicate(query string) Predicate {
	return Predicate{Query: query}
}

// IsEmpty reports whether the predicate matches every record.
func (p Predicate) IsEmpty() bool {
	return p.Query == ""
}

// Needle is the lower-cased query used for comparisons.
func (p Predicate) Needle() string {
	return strings.ToLower(p.Query)
}

// Matches reports whether t satisfies the predicate.
func (p Predicate) Matches(t Transaction) bool {
	if p.IsEmpty() {
		return true
	}
	needle := p.Needle()
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle) ||
		strings.Contains(PriceText(t.Price), needle)
}

// PriceText renders a price the way search sees it: shortest decimal form,
// no exponent, no trailing zeros (950 -> "950", 329.85 -> "329.85").
func PriceText(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
