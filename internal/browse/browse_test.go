package browse

import (
	"net/url"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func float(v float64) *float64 { return &v }

func catalog() []*domain.Product {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	creatorA, creatorB := uuid.New(), uuid.New()
	return []*domain.Product{
		{ID: uuid.New(), CreatorID: creatorA, Type: domain.TypeCourse, Name: "Go Course", Description: "Learn Go", Price: 5000, CreatedAt: base},
		{ID: uuid.New(), CreatorID: creatorA, Type: domain.TypeDownload, Name: "Preset Pack", Description: "Photo presets", Price: 5100, Featured: true, CreatedAt: base.Add(time.Hour)},
		{ID: uuid.New(), CreatorID: creatorB, Type: domain.TypeAMA, Name: "ask me", Description: "Photography questions", Price: 1000, CreatedAt: base.Add(2 * time.Hour)},
		{ID: uuid.New(), CreatorID: creatorB, Type: domain.TypeCourse, Name: "Beginner photography", Description: "", Price: 0, Featured: true, CreatedAt: base.Add(3 * time.Hour)},
	}
}

func names(page Page) []string {
	out := make([]string, len(page.Items))
	for i, p := range page.Items {
		out[i] = p.Name
	}
	return out
}

func TestApply_PriceRangeIsInclusiveInMajorUnits(t *testing.T) {
	page := Apply(catalog(), Filter{MinPrice: float(10), MaxPrice: float(50)})

	got := names(page)
	if page.Total != 2 {
		t.Fatalf("expected 2 matches, got %v", got)
	}
	for _, n := range got {
		if n == "Preset Pack" {
			t.Errorf("price 5100 must be excluded from [10, 50]")
		}
	}
}

func TestApply_SearchIsCaseInsensitiveOverNameAndDescription(t *testing.T) {
	page := Apply(catalog(), Filter{Search: "PHOTO", Sort: SortOldest})

	got := names(page)
	want := []string{"Preset Pack", "ask me", "Beginner photography"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestApply_FiltersCompose(t *testing.T) {
	products := catalog()
	page := Apply(products, Filter{
		Types:        []domain.ProductType{domain.TypeCourse},
		CreatorIDs:   []uuid.UUID{products[3].CreatorID},
		FeaturedOnly: true,
	})

	if page.Total != 1 || page.Items[0].Name != "Beginner photography" {
		t.Errorf("unexpected result %v", names(page))
	}
}

func TestApply_Sorting(t *testing.T) {
	cases := []struct {
		sort  string
		first string
	}{
		{SortNewest, "Beginner photography"},
		{SortOldest, "Go Course"},
		{SortNameAsc, "ask me"},
		{SortNameDesc, "Preset Pack"},
		{SortPriceAsc, "Beginner photography"},
		{SortPriceDesc, "Preset Pack"},
		{"bogus", "Beginner photography"},
	}

	for _, tc := range cases {
		page := Apply(catalog(), Filter{Sort: tc.sort})
		if page.Items[0].Name != tc.first {
			t.Errorf("sort %q: expected %q first, got %v", tc.sort, tc.first, names(page))
		}
	}
}

func TestApply_Pagination(t *testing.T) {
	page := Apply(catalog(), Filter{Page: 2, PageSize: 3})
	if page.Total != 4 || len(page.Items) != 1 || page.TotalPages != 2 {
		t.Errorf("unexpected page %+v", page)
	}

	page = Apply(catalog(), Filter{Page: 9, PageSize: 3})
	if len(page.Items) != 0 {
		t.Errorf("page past the end should be empty")
	}

	page = Apply(catalog(), Filter{PageSize: 1000})
	if page.PageSize != MaxPageSize {
		t.Errorf("page size not capped: %d", page.PageSize)
	}
}

func TestApply_HugePageIsEmpty(t *testing.T) {
	f := ParseFilter(url.Values{"page": {"100000000000000000"}, "page_size": {"100"}})
	if f.Page != 100000000000000000 {
		t.Fatalf("page not parsed: %d", f.Page)
	}

	page := Apply(catalog(), f)
	if len(page.Items) != 0 || page.Total != 4 {
		t.Errorf("expected an empty page past the end, got %+v", page)
	}
}

func TestParseFilter(t *testing.T) {
	creator := uuid.New()
	q := url.Values{
		"q":         {"guide"},
		"type":      {"course,download", "spaceship"},
		"creator":   {creator.String(), "not-a-uuid"},
		"min_price": {"10"},
		"max_price": {"abc"},
		"featured":  {"true"},
		"sort":      {"price_asc"},
		"page":      {"-3"},
		"page_size": {"50"},
	}

	f := ParseFilter(q)
	if f.Search != "guide" || f.Sort != SortPriceAsc || !f.FeaturedOnly {
		t.Errorf("unexpected scalar fields %+v", f)
	}
	if len(f.Types) != 2 || f.Types[1] != domain.TypeDownload {
		t.Errorf("unexpected types %v", f.Types)
	}
	if len(f.CreatorIDs) != 1 || f.CreatorIDs[0] != creator {
		t.Errorf("unexpected creators %v", f.CreatorIDs)
	}
	if f.MinPrice == nil || *f.MinPrice != 10 || f.MaxPrice != nil {
		t.Errorf("unexpected price bounds %v %v", f.MinPrice, f.MaxPrice)
	}
	if f.Page != 1 || f.PageSize != 50 {
		t.Errorf("unexpected paging %d/%d", f.Page, f.PageSize)
	}
}

// Feature: creator-storefront, Property 6: Every browse result satisfies every active filter
func TestProperty_ResultsSatisfyFilters(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("results respect the price bounds", prop.ForAll(
		func(prices []int64, lo, hi int64) bool {
			if lo > hi {
				lo, hi = hi, lo
			}
			products := make([]*domain.Product, len(prices))
			for i, p := range prices {
				products[i] = &domain.Product{ID: uuid.New(), Price: p}
			}

			minPrice, maxPrice := float64(lo), float64(hi)
			page := Apply(products, Filter{MinPrice: &minPrice, MaxPrice: &maxPrice, PageSize: MaxPageSize})

			expected := 0
			for _, p := range prices {
				if p >= lo*100 && p <= hi*100 {
					expected++
				}
			}
			if page.Total != expected {
				return false
			}
			for _, p := range page.Items {
				if p.Price < lo*100 || p.Price > hi*100 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(0, 20000)),
		gen.Int64Range(0, 200),
		gen.Int64Range(0, 200),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
