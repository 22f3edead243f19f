package offers

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrBundleNotFound = errors.New("bundle not found")
	ErrUpsellNotFound = errors.New("upsell not found")
	ErrBundleTooSmall = errors.New("a bundle needs at least two distinct products")
	ErrSelfUpsell     = errors.New("a product cannot upsell itself")
)

// Bundle sells several products together at a percentage discount
type Bundle struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name" validate:"required,max=200"`
	ProductIDs  []uuid.UUID `json:"product_ids" validate:"required,min=2"`
	DiscountPct float64     `json:"discount_pct" validate:"gte=0,lte=100"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Upsell offers a second product at a discount after the first is chosen
type Upsell struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id" validate:"required"`
	OfferProductID uuid.UUID `json:"offer_product_id" validate:"required"`
	DiscountPct    float64   `json:"discount_pct" validate:"gte=0,lte=100"`
	Headline       string    `json:"headline" validate:"max=200"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store keeps bundles and upsells in memory, in creation order
type Store struct {
	mu      sync.RWMutex
	bundles []Bundle
	upsells []Upsell
}

func NewStore() *Store {
	return &Store{}
}

// CreateBundle stores b with duplicate product IDs removed
func (s *Store) CreateBundle(b Bundle) (Bundle, error) {
	ids := make([]uuid.UUID, 0, len(b.ProductIDs))
	for _, id := range b.ProductIDs {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	if len(ids) < 2 {
		return Bundle{}, ErrBundleTooSmall
	}

	b.ID = uuid.New()
	b.ProductIDs = ids
	b.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundles = append(s.bundles, b)
	return b, nil
}

// ListBundles returns bundles oldest first
func (s *Store) ListBundles() []Bundle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Bundle{}, s.bundles...)
}

func (s *Store) DeleteBundle(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.bundles, func(b Bundle) bool { return b.ID == id })
	if i < 0 {
		return ErrBundleNotFound
	}
	s.bundles = slices.Delete(s.bundles, i, i+1)
	return nil
}

func (s *Store) CreateUpsell(u Upsell) (Upsell, error) {
	if u.ProductID == u.OfferProductID {
		return Upsell{}, ErrSelfUpsell
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsells = append(s.upsells, u)
	return u, nil
}

// ListUpsells returns upsells oldest first
func (s *Store) ListUpsells() []Upsell {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Upsell{}, s.upsells...)
}

func (s *Store) DeleteUpsell(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.upsells, func(u Upsell) bool { return u.ID == id })
	if i < 0 {
		return ErrUpsellNotFound
	}
	s.upsells = slices.Delete(s.upsells, i, i+1)
	return nil
}

// BundlePrice sums the item prices in cents and applies the bundle discount,
// rounding half up to the nearest cent
func BundlePrice(prices []int64, discountPct float64) int64 {
	total := decimal.Zero
	for _, p := range prices {
		total = total.Add(decimal.NewFromInt(p))
	}
	return discounted(total, discountPct)
}

// UpsellPrice is the offer product's price in cents after the upsell discount
func UpsellPrice(price int64, discountPct float64) int64 {
	return discounted(decimal.NewFromInt(price), discountPct)
}

func discounted(amount decimal.Decimal, pct float64) int64 {
	pct = min(max(pct, 0), 100)
	factor := decimal.NewFromInt(100).Sub(decimal.NewFromFloat(pct)).Div(decimal.NewFromInt(100))
	return amount.Mul(factor).Round(0).IntPart()
}
