package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/forms"
	"storefront/internal/panels"
)

var (
	ErrTypeLocked     = errors.New("product type cannot change in this flow")
	ErrNoTypeSelected = errors.New("select a product type first")
	ErrNotPhysical    = errors.New("only physical products have variants")
	ErrUnknownMessage = errors.New("unknown message kind")
)

// Message is one update to a session's draft
type Message interface {
	apply(s *Session) error
}

// SelectType switches the draft to another product type. The field group
// of the previous type is stashed and restored when switching back.
type SelectType struct {
	Type domain.ProductType `json:"type"`
}

// UpdateCore shallow-merges the non-nil core fields into the draft
type UpdateCore struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Price         *int64  `json:"price"`
	DiscountPrice *int64  `json:"discount_price"`
	ClearDiscount bool    `json:"clear_discount"`
	ThumbnailURL  *string `json:"thumbnail_url"`
	Featured      *bool   `json:"featured"`
}

// UpdateDetails forwards a typed change to the active type's panel
type UpdateDetails struct {
	Change json.RawMessage `json:"change"`
}

type AddItem struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type RemoveItem struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// GenerateVariantsMessage rebuilds the variant list of a physical draft
type GenerateVariantsMessage struct{}

// UpdateVariant edits one generated variant of a physical draft
type UpdateVariant struct {
	panels.VariantChange
}

// Apply runs msg against the session. A failed message leaves the draft untouched.
func (s *Session) Apply(msg Message) error {
	if err := msg.apply(s); err != nil {
		return err
	}
	s.touch()
	return nil
}

func (m SelectType) apply(s *Session) error {
	if !m.Type.Valid() {
		return domain.ErrUnknownProductType{Type: m.Type}
	}
	if s.Draft.Type == m.Type {
		return nil
	}
	if s.Shape == ShapePhysical {
		return ErrTypeLocked
	}

	next, ok := s.Stash[m.Type]
	if !ok {
		var err error
		if next, err = domain.NewDetails(m.Type); err != nil {
			return err
		}
	}

	if s.Draft.Type != "" && s.Draft.Details != nil {
		if s.Stash == nil {
			s.Stash = map[domain.ProductType]domain.Details{}
		}
		s.Stash[s.Draft.Type] = s.Draft.Details
	}
	delete(s.Stash, m.Type)

	s.Draft.Type = m.Type
	s.Draft.Details = next
	return nil
}

func (m UpdateCore) apply(s *Session) error {
	if m.ThumbnailURL != nil && !forms.IsValidURL(strings.TrimSpace(*m.ThumbnailURL)) {
		return &panels.FieldError{Field: "thumbnail_url", Message: "must be a valid URL"}
	}

	d := s.Draft
	if m.Name != nil {
		d.Name = *m.Name
	}
	if m.Description != nil {
		d.Description = *m.Description
	}
	if m.Price != nil {
		d.Price = max(*m.Price, 0)
	}
	if m.ClearDiscount {
		d.DiscountPrice = nil
	} else if m.DiscountPrice != nil {
		v := max(*m.DiscountPrice, 0)
		d.DiscountPrice = &v
	}
	if m.ThumbnailURL != nil {
		d.ThumbnailURL = strings.TrimSpace(*m.ThumbnailURL)
	}
	if m.Featured != nil {
		d.Featured = *m.Featured
	}
	return nil
}

func activePanel(s *Session) (panels.Panel, error) {
	if s.Draft.Type == "" {
		return nil, ErrNoTypeSelected
	}
	return panels.For(s.Draft.Type)
}

func (m UpdateDetails) apply(s *Session) error {
	p, err := activePanel(s)
	if err != nil {
		return err
	}
	next, err := p.Apply(s.Draft.Details, m.Change)
	if err != nil {
		return err
	}
	s.Draft.Details = next
	return nil
}

func (m AddItem) apply(s *Session) error {
	p, err := activePanel(s)
	if err != nil {
		return err
	}
	next, err := p.AddItem(s.Draft.Details, m.Field, m.Value)
	if err != nil {
		return err
	}
	s.Draft.Details = next
	return nil
}

func (m RemoveItem) apply(s *Session) error {
	p, err := activePanel(s)
	if err != nil {
		return err
	}
	next, err := p.RemoveItem(s.Draft.Details, m.Field, m.Value)
	if err != nil {
		return err
	}
	s.Draft.Details = next
	return nil
}

func (GenerateVariantsMessage) apply(s *Session) error {
	d, ok := s.Draft.Details.(domain.PhysicalDetails)
	if !ok {
		return ErrNotPhysical
	}
	d = domain.CloneDetails(d).(domain.PhysicalDetails)
	d.Variants = GenerateVariants(d, s.Draft.Price)
	s.Draft.Details = d
	return nil
}

func (m UpdateVariant) apply(s *Session) error {
	if _, ok := s.Draft.Details.(domain.PhysicalDetails); !ok {
		return ErrNotPhysical
	}
	change, err := json.Marshal(map[string]panels.VariantChange{"update_variant": m.VariantChange})
	if err != nil {
		return err
	}
	return UpdateDetails{Change: change}.apply(s)
}

// Envelope is the wire form of a message: {"kind": "...", "payload": {...}}
type Envelope struct {
	Kind    string          `json:"kind" validate:"required"`
	Payload json.RawMessage `json:"payload"`
}

// Decode turns an envelope into a typed message
func (e Envelope) Decode() (Message, error) {
	var msg Message
	switch e.Kind {
	case "select_type":
		msg = &SelectType{}
	case "update_core":
		msg = &UpdateCore{}
	case "update_details":
		// the payload is the panel change itself
		return UpdateDetails{Change: e.Payload}, nil
	case "add_item":
		msg = &AddItem{}
	case "remove_item":
		msg = &RemoveItem{}
	case "generate_variants":
		return GenerateVariantsMessage{}, nil
	case "update_variant":
		msg = &UpdateVariant{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, e.Kind)
	}

	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, msg); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", e.Kind, err)
		}
	}

	switch m := msg.(type) {
	case *SelectType:
		return *m, nil
	case *UpdateCore:
		return *m, nil
	case *AddItem:
		return *m, nil
	case *RemoveItem:
		return *m, nil
	case *UpdateVariant:
		return *m, nil
	}
	return msg, nil
}
