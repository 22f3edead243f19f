package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProductType discriminates the type-specific field group of a product
type ProductType string

const (
	TypeDownload     ProductType = "download"
	TypeCourse       ProductType = "course"
	TypeMembership   ProductType = "membership"
	TypeWebinar      ProductType = "webinar"
	TypeConsultation ProductType = "consultation"
	TypeAffiliate    ProductType = "affiliate"
	TypeExternalLink ProductType = "external_link"
	TypeLeadMagnet   ProductType = "lead_magnet"
	TypeTicket       ProductType = "ticket"
	TypePhysical     ProductType = "physical"
	TypeService      ProductType = "service"
	TypeAMA          ProductType = "ama"
)

// ProductTypes lists every supported product type in display order
var ProductTypes = []ProductType{
	TypeDownload,
	TypeCourse,
	TypeMembership,
	TypeWebinar,
	TypeConsultation,
	TypeAffiliate,
	TypeExternalLink,
	TypeLeadMagnet,
	TypeTicket,
	TypePhysical,
	TypeService,
	TypeAMA,
}

// Valid reports whether t is one of the known product types
func (t ProductType) Valid() bool {
	for _, known := range ProductTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Product is a storefront product. A product without PublishedAt is a draft.
type Product struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	CreatorID     uuid.UUID   `json:"creator_id" db:"creator_id"`
	Type          ProductType `json:"type" db:"type"`
	Name          string      `json:"name" db:"name"`
	Description   string      `json:"description" db:"description"`
	Price         int64       `json:"price" db:"price"`
	DiscountPrice *int64      `json:"discount_price,omitempty" db:"discount_price"`
	ThumbnailURL  string      `json:"thumbnail_url" db:"thumbnail_url"`
	Featured      bool        `json:"featured" db:"featured"`
	PublishedAt   *time.Time  `json:"published_at,omitempty" db:"published_at"`
	Details       Details     `json:"details,omitempty" db:"details"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// IsPublished reports whether the product is visible in public listings
func (p *Product) IsPublished() bool {
	return p.PublishedAt != nil
}

// EffectivePrice returns the discount price when one is set, else the price
func (p *Product) EffectivePrice() int64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// Clone returns a deep copy of the product
func (p *Product) Clone() *Product {
	c := *p
	if p.DiscountPrice != nil {
		v := *p.DiscountPrice
		c.DiscountPrice = &v
	}
	if p.PublishedAt != nil {
		v := *p.PublishedAt
		c.PublishedAt = &v
	}
	if p.Details != nil {
		c.Details = p.Details.clone()
	}
	return &c
}

type productJSON struct {
	ID            uuid.UUID       `json:"id"`
	CreatorID     uuid.UUID       `json:"creator_id"`
	Type          ProductType     `json:"type"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         int64           `json:"price"`
	DiscountPrice *int64          `json:"discount_price,omitempty"`
	ThumbnailURL  string          `json:"thumbnail_url"`
	Featured      bool            `json:"featured"`
	PublishedAt   *time.Time      `json:"published_at,omitempty"`
	Details       json.RawMessage `json:"details,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// MarshalJSON encodes the product with its active details group
func (p Product) MarshalJSON() ([]byte, error) {
	out := productJSON{
		ID:            p.ID,
		CreatorID:     p.CreatorID,
		Type:          p.Type,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		ThumbnailURL:  p.ThumbnailURL,
		Featured:      p.Featured,
		PublishedAt:   p.PublishedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.Details != nil {
		raw, err := json.Marshal(p.Details)
		if err != nil {
			return nil, err
		}
		out.Details = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the details group selected by the type field
func (p *Product) UnmarshalJSON(data []byte) error {
	var in productJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	details, err := DecodeDetails(in.Type, in.Details)
	if err != nil {
		return err
	}

	*p = Product{
		ID:            in.ID,
		CreatorID:     in.CreatorID,
		Type:          in.Type,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		DiscountPrice: in.DiscountPrice,
		ThumbnailURL:  in.ThumbnailURL,
		Featured:      in.Featured,
		PublishedAt:   in.PublishedAt,
		Details:       details,
		CreatedAt:     in.CreatedAt,
		UpdatedAt:     in.UpdatedAt,
	}
	return nil
}

// Creator owns products. A non-empty PaymentAccountID means payment sync is configured.
type Creator struct {
	ID               uuid.UUID `json:"id" db:"id"`
	DisplayName      string    `json:"display_name" db:"display_name"`
	Email            string    `json:"email" db:"email"`
	PaymentAccountID string    `json:"payment_account_id,omitempty" db:"payment_account_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// HasPaymentIntegration reports whether writes should be mirrored to the payment processor
func (c *Creator) HasPaymentIntegration() bool {
	return c != nil && c.PaymentAccountID != ""
}

// ErrUnknownProductType is returned when a type discriminator is not recognized
type ErrUnknownProductType struct {
	Type ProductType
}

func (e ErrUnknownProductType) Error() string {
	return fmt.Sprintf("unknown product type %q", string(e.Type))
}
