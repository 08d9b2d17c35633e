package domain

import "strings"

// FilterAny is the wildcard value for category, gender and size filters.
const FilterAny = "Any"

// DefaultPageSize is the catalog page size.
const DefaultPageSize = 12

// Filter is the transient browsing state used to derive a catalog view. It is
// never persisted.
type Filter struct {
	Category string
	Gender   string
	Size     string
	Colors   []string
	Query    string
}

// Match reports whether a product passes the filter: free-text query is a
// case-insensitive substring match on the title, category/gender/size match
// exactly unless "Any" (or empty), and a non-empty color selection matches
// when the product shares at least one color (OR semantics).
func (f Filter) Match(p Product) bool {
	if q := strings.TrimSpace(f.Query); q != "" {
		if !strings.Contains(strings.ToLower(p.Title), strings.ToLower(q)) {
			return false
		}
	}
	if !wildcardMatch(f.Category, p.Category) {
		return false
	}
	if !wildcardMatch(f.Gender, string(p.Gender)) {
		return false
	}
	if f.Size != "" && f.Size != FilterAny && !containsString(p.Sizes, f.Size) {
		return false
	}
	if len(f.Colors) > 0 {
		shared := false
		for _, c := range f.Colors {
			if p.HasColor(c) {
				shared = true
				break
			}
		}
		if !shared {
			return false
		}
	}
	return true
}

// FilterProducts returns the subset of products passing the filter, keeping
// catalog order.
func FilterProducts(products []Product, f Filter) []Product {
	out := []Product{}
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// PageCount is ceil(total / pageSize).
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Paginate slices a filtered result into a fixed-size page. Pages are
// 1-based; out-of-range pages yield an empty slice.
func Paginate(products []Product, page, pageSize int) []Product {
	if page < 1 || pageSize <= 0 {
		return []Product{}
	}
	start := (page - 1) * pageSize
	if start >= len(products) {
		return []Product{}
	}
	end := start + pageSize
	if end > len(products) {
		end = len(products)
	}
	return products[start:end]
}

func wildcardMatch(want, got string) bool {
	return want == "" || want == FilterAny || want == got
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
