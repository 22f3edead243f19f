package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/domain"
)

// ProductChangeSet is a sparse product update. Nil fields are left untouched.
type ProductChangeSet struct {
	Type          *domain.ProductType
	Name          *string
	Description   *string
	Price         *int64
	DiscountPrice *int64
	ClearDiscount bool
	ThumbnailURL  *string
	Featured      *bool
	PublishedAt   *time.Time
	Unpublish     bool
	Details       domain.Details
}

// FullChangeSet replaces every mutable column with the values of p
func FullChangeSet(p *domain.Product) ProductChangeSet {
	cs := ProductChangeSet{
		Type:          &p.Type,
		Name:          &p.Name,
		Description:   &p.Description,
		Price:         &p.Price,
		DiscountPrice: p.DiscountPrice,
		ClearDiscount: p.DiscountPrice == nil,
		ThumbnailURL:  &p.ThumbnailURL,
		Featured:      &p.Featured,
		PublishedAt:   p.PublishedAt,
		Unpublish:     p.PublishedAt == nil,
		Details:       p.Details,
	}
	return cs
}

// IsEmpty reports whether the change set would not touch any column
func (c ProductChangeSet) IsEmpty() bool {
	return c.Type == nil && c.Name == nil && c.Description == nil && c.Price == nil &&
		c.DiscountPrice == nil && !c.ClearDiscount && c.ThumbnailURL == nil &&
		c.Featured == nil && c.PublishedAt == nil && !c.Unpublish && c.Details == nil
}

// Apply merges the change set into p
func (c ProductChangeSet) Apply(p *domain.Product) {
	if c.Type != nil {
		p.Type = *c.Type
	}
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Description != nil {
		p.Description = *c.Description
	}
	if c.Price != nil {
		p.Price = *c.Price
	}
	if c.ClearDiscount {
		p.DiscountPrice = nil
	} else if c.DiscountPrice != nil {
		v := *c.DiscountPrice
		p.DiscountPrice = &v
	}
	if c.ThumbnailURL != nil {
		p.ThumbnailURL = *c.ThumbnailURL
	}
	if c.Featured != nil {
		p.Featured = *c.Featured
	}
	if c.Unpublish {
		p.PublishedAt = nil
	} else if c.PublishedAt != nil {
		v := *c.PublishedAt
		p.PublishedAt = &v
	}
	if c.Details != nil {
		p.Details = domain.CloneDetails(c.Details)
	}
}

func (c ProductChangeSet) toMap() (map[string]interface{}, error) {
	m := map[string]interface{}{}
	if c.Type != nil {
		m["type"] = *c.Type
	}
	if c.Name != nil {
		m["name"] = *c.Name
	}
	if c.Description != nil {
		m["description"] = *c.Description
	}
	if c.Price != nil {
		m["price"] = *c.Price
	}
	if c.ClearDiscount {
		m["discount_price"] = nil
	} else if c.DiscountPrice != nil {
		m["discount_price"] = *c.DiscountPrice
	}
	if c.ThumbnailURL != nil {
		m["thumbnail_url"] = *c.ThumbnailURL
	}
	if c.Featured != nil {
		m["featured"] = *c.Featured
	}
	if c.Unpublish {
		m["published_at"] = nil
	} else if c.PublishedAt != nil {
		m["published_at"] = *c.PublishedAt
	}
	if c.Details != nil {
		raw, err := encodeDetails(c.Details)
		if err != nil {
			return nil, err
		}
		m["details"] = raw
	}
	return m, nil
}

func encodeDetails(d domain.Details) (string, error) {
	if d == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s details: %w", d.ProductType(), err)
	}
	return string(raw), nil
}
