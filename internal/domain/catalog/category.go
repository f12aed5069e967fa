package catalog

import "strings"

// CategoryAll is the wildcard filter matching every product
const CategoryAll = "All"

// DefaultCategories is the storefront's fixed filter set
var DefaultCategories = []string{
	CategoryAll,
	"Engine Oils",
	"Gear Oils",
	"Hydraulic Oils",
	"Greases",
	"Industrial Lubricants",
}

// CategorySet is the enumerated set of filter values. "All" is always the
// first member.
type CategorySet struct {
	values []string
}

// NewCategorySet builds a set from the given names. Blank and duplicate
// names are dropped; "All" is inserted first if missing.
func NewCategorySet(names []string) CategorySet {
	values := []string{CategoryAll}
	seen := map[string]bool{strings.ToLower(CategoryAll): true}
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		values = append(values, n)
	}
	return CategorySet{values: values}
}

// Values returns the members in display order
func (s CategorySet) Values() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}

// Contains reports whether name is a member (exact match)
func (s CategorySet) Contains(name string) bool {
	for _, v := range s.values {
		if v == name {
			return true
		}
	}
	return false
}

// Resolve returns the member equal to name ignoring case
func (s CategorySet) Resolve(name string) (string, bool) {
	for _, v := range s.values {
		if strings.EqualFold(v, strings.TrimSpace(name)) {
			return v, true
		}
	}
	return "", false
}

// MatchesCategory reports whether a product category falls under filter.
// Matching is a case-insensitive substring test, so "Oils" style filters
// catch compound categories such as "Synthetic Engine Oils".
func MatchesCategory(productCategory, filter string) bool {
	if filter == CategoryAll {
		return true
	}
	return strings.Contains(strings.ToLower(productCategory), strings.ToLower(filter))
}

// Filter returns the products matching filter, in catalog order
func Filter(products []Product, filter string) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if MatchesCategory(p.Category, filter) {
			out = append(out, p)
		}
	}
	return out
}
