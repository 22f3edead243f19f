package browse

import (
	"cmp"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/forms"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sort keys accepted by Apply
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortNameAsc   = "name_asc"
	SortNameDesc  = "name_desc"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter is the full browse state. Zero values disable the matching filter.
type Filter struct {
	Search       string
	Types        []domain.ProductType
	MinPrice     *float64 // major currency units, inclusive
	MaxPrice     *float64 // major currency units, inclusive
	CreatorIDs   []uuid.UUID
	FeaturedOnly bool
	Sort         string
	Page         int
	PageSize     int
}

// Page is one page of browse results
type Page struct {
	Items      []*domain.Product `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

var sortFuncs = map[string]func(a, b *domain.Product) int{
	SortNewest:    func(a, b *domain.Product) int { return b.CreatedAt.Compare(a.CreatedAt) },
	SortOldest:    func(a, b *domain.Product) int { return a.CreatedAt.Compare(b.CreatedAt) },
	SortNameAsc:   func(a, b *domain.Product) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
	SortNameDesc:  func(a, b *domain.Product) int { return cmp.Compare(strings.ToLower(b.Name), strings.ToLower(a.Name)) },
	SortPriceAsc:  func(a, b *domain.Product) int { return cmp.Compare(a.Price, b.Price) },
	SortPriceDesc: func(a, b *domain.Product) int { return cmp.Compare(b.Price, a.Price) },
}

// Apply filters, sorts and paginates products. The input slice is not modified.
func Apply(products []*domain.Product, f Filter) Page {
	f = normalize(f)

	matched := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if f.matches(p) {
			matched = append(matched, p)
		}
	}

	slices.SortStableFunc(matched, sortFuncs[f.Sort])

	total := len(matched)
	start := total
	// Compare before multiplying so huge page numbers cannot overflow
	if f.Page-1 <= total/f.PageSize {
		start = min((f.Page-1)*f.PageSize, total)
	}
	end := min(start+f.PageSize, total)

	return Page{
		Items:      matched[start:end],
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: (total + f.PageSize - 1) / f.PageSize,
	}
}

func normalize(f Filter) Filter {
	f.Search = strings.ToLower(strings.TrimSpace(f.Search))
	if _, ok := sortFuncs[f.Sort]; !ok {
		f.Sort = SortNewest
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return f
}

func (f Filter) matches(p *domain.Product) bool {
	if f.Search != "" &&
		!strings.Contains(strings.ToLower(p.Name), f.Search) &&
		!strings.Contains(strings.ToLower(p.Description), f.Search) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, p.Type) {
		return false
	}
	if len(f.CreatorIDs) > 0 && !slices.Contains(f.CreatorIDs, p.CreatorID) {
		return false
	}
	if f.FeaturedOnly && !p.Featured {
		return false
	}

	price := decimal.New(p.Price, -2)
	if f.MinPrice != nil && price.LessThan(decimal.NewFromFloat(*f.MinPrice)) {
		return false
	}
	if f.MaxPrice != nil && price.GreaterThan(decimal.NewFromFloat(*f.MaxPrice)) {
		return false
	}
	return true
}

// ParseFilter reads a Filter from query parameters. Malformed values are
// ignored rather than rejected.
//
//	?q=guide&type=course&type=download&min_price=10&max_price=50
//	&creator=<uuid>&featured=true&sort=price_asc&page=2&page_size=50
func ParseFilter(q url.Values) Filter {
	f := Filter{
		Search:   q.Get("q"),
		Sort:     q.Get("sort"),
		Page:     forms.ParseIntAtLeast(q.Get("page"), 1),
		PageSize: forms.ParseIntOr(q.Get("page_size"), DefaultPageSize),
	}

	for _, raw := range splitMulti(q["type"]) {
		if t := domain.ProductType(raw); t.Valid() {
			f.Types = append(f.Types, t)
		}
	}
	for _, raw := range splitMulti(q["creator"]) {
		if id, err := uuid.Parse(raw); err == nil {
			f.CreatorIDs = append(f.CreatorIDs, id)
		}
	}

	f.MinPrice = parsePrice(q.Get("min_price"))
	f.MaxPrice = parsePrice(q.Get("max_price"))
	f.FeaturedOnly, _ = strconv.ParseBool(q.Get("featured"))
	return f
}

// splitMulti accepts both repeated keys and comma-separated values
func splitMulti(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parsePrice(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}
