package types

import (
	"sort"
	"strings"
)

// VariantAttribute is one name/value pair describing a product variant,
// e.g. {Name: "Color", Value: "Red"}.
type VariantAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// VariantAttributes is the full attribute set of a variant or of a cart
// selection. Stored as JSON on both product variants and order line items.
type VariantAttributes []VariantAttribute

// Matches reports set equality between two attribute sets, independent of
// ordering and of name casing. Cart payloads and catalog rows routinely
// disagree on attribute order, so comparison always goes through the
// normalized form.
func (v VariantAttributes) Matches(other VariantAttributes) bool {
	if len(v) != len(other) {
		return false
	}
	return v.normalizedKey() == other.normalizedKey()
}

func (v VariantAttributes) normalizedKey() string {
	pairs := make([]string, 0, len(v))
	for _, attr := range v {
		name := strings.ToLower(strings.TrimSpace(attr.Name))
		value := strings.TrimSpace(attr.Value)
		pairs = append(pairs, name+"="+value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "|")
}
