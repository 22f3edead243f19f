package panels

import (
	"fmt"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

// VariantChange edits one generated variant, addressed by SKU
type VariantChange struct {
	SKU        string             `json:"sku"`
	NewSKU     *string            `json:"new_sku"`
	Price      *int64             `json:"price"`
	Stock      *int               `json:"stock"`
	Weight     *float64           `json:"weight"`
	Dimensions *domain.Dimensions `json:"dimensions"`
}

type PhysicalChange struct {
	SKU                  *string                 `json:"sku"`
	Quantity             *int                    `json:"quantity"`
	Weight               *float64                `json:"weight"`
	Dimensions           *domain.Dimensions      `json:"dimensions"`
	ShippingClass        *string                 `json:"shipping_class"`
	AffiliateEnabled     *bool                   `json:"affiliate_enabled"`
	AffiliateURL         *string                 `json:"affiliate_url"`
	AffiliateCommission  *float64                `json:"affiliate_commission"`
	Notes                *string                 `json:"notes"`
	AddAttribute         *domain.CustomAttribute `json:"add_attribute"`
	RemoveAttribute      *string                 `json:"remove_attribute"`
	AddAttributeValue    *domain.AttributeValue  `json:"add_attribute_value"`
	RemoveAttributeValue *domain.AttributeValue  `json:"remove_attribute_value"`
	UpdateVariant        *VariantChange          `json:"update_variant"`
}

var shippingClasses = map[string]bool{"standard": true, "express": true, "oversized": true, "fragile": true, "freight": true}

func init() {
	register(&panel[domain.PhysicalDetails, PhysicalChange]{
		typ:   domain.TypePhysical,
		merge: mergePhysical,
		lists: map[string]listField[domain.PhysicalDetails]{
			"shipping_restrictions": {
				get: func(d domain.PhysicalDetails) []string { return d.ShippingRestrictions },
				set: func(d *domain.PhysicalDetails, v []string) { d.ShippingRestrictions = v },
			},
			"sizes": {
				get: func(d domain.PhysicalDetails) []string { return d.Sizes },
				set: func(d *domain.PhysicalDetails, v []string) { d.Sizes = v },
			},
			"colors": {
				get: func(d domain.PhysicalDetails) []string { return d.Colors },
				set: func(d *domain.PhysicalDetails, v []string) { d.Colors = v },
			},
			"materials": {
				get: func(d domain.PhysicalDetails) []string { return d.Materials },
				set: func(d *domain.PhysicalDetails, v []string) { d.Materials = v },
			},
			"tags": {
				get: func(d domain.PhysicalDetails) []string { return d.Tags },
				set: func(d *domain.PhysicalDetails, v []string) { d.Tags = v },
			},
		},
		preview: previewPhysical,
	})
}

func mergePhysical(d domain.PhysicalDetails, c PhysicalChange) (domain.PhysicalDetails, error) {
	if err := setURL("affiliate_url", &d.AffiliateURL, c.AffiliateURL); err != nil {
		return d, err
	}
	if c.ShippingClass != nil {
		class := strings.TrimSpace(*c.ShippingClass)
		if class != "" && !shippingClasses[class] {
			return d, &FieldError{Field: "shipping_class", Message: "unsupported shipping class"}
		}
		d.ShippingClass = class
	}

	setText(&d.SKU, c.SKU)
	setFloor(&d.Quantity, c.Quantity)
	setFloorFloat(&d.Weight, c.Weight)
	if c.Dimensions != nil {
		d.Dimensions = floorDimensions(*c.Dimensions)
	}
	set(&d.AffiliateEnabled, c.AffiliateEnabled)
	if c.AffiliateCommission != nil {
		d.AffiliateCommission = min(max(*c.AffiliateCommission, 0), 100)
	}
	set(&d.Notes, c.Notes)

	if c.AddAttribute != nil {
		d.CustomAttributes = addAttribute(d.CustomAttributes, *c.AddAttribute)
	}
	if c.RemoveAttribute != nil {
		d.CustomAttributes = removeAttribute(d.CustomAttributes, *c.RemoveAttribute)
	}
	if c.AddAttributeValue != nil {
		d.CustomAttributes = editAttributeValues(d.CustomAttributes, *c.AddAttributeValue, AddUnique)
	}
	if c.RemoveAttributeValue != nil {
		d.CustomAttributes = editAttributeValues(d.CustomAttributes, *c.RemoveAttributeValue, Remove)
	}

	if c.UpdateVariant != nil {
		variants, err := updateVariant(d.Variants, *c.UpdateVariant)
		if err != nil {
			return d, err
		}
		d.Variants = variants
	}
	return d, nil
}

func floorDimensions(dim domain.Dimensions) domain.Dimensions {
	return domain.Dimensions{
		Length: max(dim.Length, 0),
		Width:  max(dim.Width, 0),
		Height: max(dim.Height, 0),
	}
}

func addAttribute(attrs []domain.CustomAttribute, in domain.CustomAttribute) []domain.CustomAttribute {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return attrs
	}
	for _, a := range attrs {
		if a.Name == name {
			return attrs
		}
	}

	var values []string
	for _, v := range in.Values {
		values = AddUnique(values, v)
	}

	out := make([]domain.CustomAttribute, 0, len(attrs)+1)
	out = append(out, attrs...)
	return append(out, domain.CustomAttribute{Name: name, Values: values})
}

func removeAttribute(attrs []domain.CustomAttribute, name string) []domain.CustomAttribute {
	name = strings.TrimSpace(name)
	out := make([]domain.CustomAttribute, 0, len(attrs))
	for _, a := range attrs {
		if a.Name != name {
			out = append(out, a)
		}
	}
	if len(out) == len(attrs) {
		return attrs
	}
	return out
}

func editAttributeValues(attrs []domain.CustomAttribute, av domain.AttributeValue, op func([]string, string) []string) []domain.CustomAttribute {
	name := strings.TrimSpace(av.Name)
	out := make([]domain.CustomAttribute, len(attrs))
	copy(out, attrs)
	for i, a := range out {
		if a.Name == name {
			out[i].Values = op(a.Values, av.Value)
		}
	}
	return out
}

func updateVariant(variants []domain.Variant, c VariantChange) ([]domain.Variant, error) {
	idx := -1
	for i, v := range variants {
		if v.SKU == c.SKU {
			idx = i
			break
		}
	}
	if idx < 0 {
		return variants, &FieldError{Field: "update_variant", Message: fmt.Sprintf("no variant with SKU %q", c.SKU)}
	}

	out := make([]domain.Variant, len(variants))
	copy(out, variants)
	v := out[idx]
	if c.NewSKU != nil && strings.TrimSpace(*c.NewSKU) != "" {
		sku := strings.TrimSpace(*c.NewSKU)
		for i, other := range variants {
			if i != idx && other.SKU == sku {
				return variants, &FieldError{Field: "update_variant", Message: fmt.Sprintf("SKU %q is already used by another variant", sku)}
			}
		}
		v.SKU = sku
	}
	if c.Price != nil {
		v.Price = max(*c.Price, 0)
	}
	setFloor(&v.Stock, c.Stock)
	setFloorFloat(&v.Weight, c.Weight)
	if c.Dimensions != nil {
		v.Dimensions = floorDimensions(*c.Dimensions)
	}
	out[idx] = v
	return out, nil
}

func previewPhysical(d domain.PhysicalDetails) []PreviewLine {
	dims := fmt.Sprintf("%g x %g x %g cm", d.Dimensions.Length, d.Dimensions.Width, d.Dimensions.Height)
	lines := []PreviewLine{
		line("SKU", orDash(d.SKU)),
		line("In stock", strconv.Itoa(d.Quantity)),
		line("Weight", strconv.FormatFloat(d.Weight, 'f', -1, 64)+" kg"),
		line("Dimensions", dims),
		line("Shipping class", orDash(d.ShippingClass)),
		line("Ships except to", joinOrDash(d.ShippingRestrictions)),
		line("Variants", strconv.Itoa(len(d.Variants))),
	}
	if d.AffiliateEnabled {
		lines = append(lines, line("Affiliate commission", strconv.FormatFloat(d.AffiliateCommission, 'f', -1, 64)+"%"))
	}
	return lines
}
