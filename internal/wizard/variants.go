package wizard

import (
	"strings"

	"storefront/internal/domain"
)

type attributeList struct {
	name   string
	values []string
}

// attributeLists collects the non-empty variant axes in declaration order:
// size, color, material, then custom attributes
func attributeLists(d domain.PhysicalDetails) []attributeList {
	var lists []attributeList
	add := func(name string, values []string) {
		if len(values) > 0 {
			lists = append(lists, attributeList{name: name, values: values})
		}
	}

	add("size", d.Sizes)
	add("color", d.Colors)
	add("material", d.Materials)
	for _, a := range d.CustomAttributes {
		add(a.Name, a.Values)
	}
	return lists
}

// GenerateVariants returns the Cartesian product of every non-empty
// attribute list, each variant defaulted from the base product. The result
// replaces any existing variants. With no attributes the current variants
// are returned unchanged.
func GenerateVariants(d domain.PhysicalDetails, basePrice int64) []domain.Variant {
	lists := attributeLists(d)
	if len(lists) == 0 {
		return d.Variants
	}

	combos := [][]domain.AttributeValue{{}}
	for _, l := range lists {
		next := make([][]domain.AttributeValue, 0, len(combos)*len(l.values))
		for _, combo := range combos {
			for _, v := range l.values {
				c := make([]domain.AttributeValue, len(combo), len(combo)+1)
				copy(c, combo)
				next = append(next, append(c, domain.AttributeValue{Name: l.name, Value: v}))
			}
		}
		combos = next
	}

	variants := make([]domain.Variant, 0, len(combos))
	for _, combo := range combos {
		variants = append(variants, domain.Variant{
			SKU:        variantSKU(d.SKU, combo),
			Attributes: combo,
			Price:      basePrice,
			Stock:      d.Quantity,
			Weight:     d.Weight,
			Dimensions: d.Dimensions,
		})
	}
	return variants
}

func variantSKU(base string, combo []domain.AttributeValue) string {
	values := make([]string, len(combo))
	for i, av := range combo {
		values[i] = av.Value
	}
	return strings.ReplaceAll(base+"-"+strings.Join(values, "-"), " ", "-")
}
