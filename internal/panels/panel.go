package panels

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/forms"
)

var (
	ErrUnknownPanel  = errors.New("no settings panel for product type")
	ErrUnknownField  = errors.New("unknown list field")
	ErrDetailsType   = errors.New("details do not belong to this panel")
	ErrInvalidChange = errors.New("invalid change payload")
)

// FieldError rejects a change because one field value is invalid
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PreviewLine is one row of the read-only summary a panel renders
type PreviewLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Panel owns the field group of one product type. Panels never mutate
// the details they are given; every operation returns a new value.
type Panel interface {
	Type() domain.ProductType
	// Apply shallow-merges the fields present in change into current
	Apply(current domain.Details, change json.RawMessage) (domain.Details, error)
	AddItem(current domain.Details, field, value string) (domain.Details, error)
	RemoveItem(current domain.Details, field, value string) (domain.Details, error)
	Preview(current domain.Details) []PreviewLine
	ListFields() []string
}

var registry = map[domain.ProductType]Panel{}

func register(p Panel) {
	registry[p.Type()] = p
}

// For returns the settings panel of t
func For(t domain.ProductType) (Panel, error) {
	p, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPanel, string(t))
	}
	return p, nil
}

// AddUnique appends the trimmed item unless it is empty or already present.
// The input slice is never modified.
func AddUnique(list []string, item string) []string {
	item = strings.TrimSpace(item)
	if item == "" {
		return list
	}
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, list...)
	return append(out, item)
}

// Remove drops every occurrence of item. Removing a missing item is a no-op.
func Remove(list []string, item string) []string {
	item = strings.TrimSpace(item)
	found := false
	for _, existing := range list {
		if existing == item {
			found = true
			break
		}
	}
	if !found {
		return list
	}
	out := make([]string, 0, len(list)-1)
	for _, existing := range list {
		if existing != item {
			out = append(out, existing)
		}
	}
	return out
}

type listField[D any] struct {
	get func(D) []string
	set func(*D, []string)
}

// panel is the shared implementation behind every product type. D is the
// details struct and C the typed change decoded from the wire.
type panel[D domain.Details, C any] struct {
	typ     domain.ProductType
	merge   func(D, C) (D, error)
	lists   map[string]listField[D]
	preview func(D) []PreviewLine
}

func (p *panel[D, C]) Type() domain.ProductType { return p.typ }

func (p *panel[D, C]) current(d domain.Details) (D, error) {
	if d == nil {
		empty, err := domain.NewDetails(p.typ)
		if err != nil {
			var zero D
			return zero, err
		}
		return empty.(D), nil
	}
	cur, ok := domain.CloneDetails(d).(D)
	if !ok {
		var zero D
		return zero, fmt.Errorf("%w: got %s, want %s", ErrDetailsType, d.ProductType(), p.typ)
	}
	return cur, nil
}

func (p *panel[D, C]) Apply(current domain.Details, change json.RawMessage) (domain.Details, error) {
	cur, err := p.current(current)
	if err != nil {
		return current, err
	}

	var c C
	dec := json.NewDecoder(bytes.NewReader(change))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return current, fmt.Errorf("%w: %v", ErrInvalidChange, err)
	}

	next, err := p.merge(cur, c)
	if err != nil {
		return current, err
	}
	return next, nil
}

func (p *panel[D, C]) list(field string) (listField[D], error) {
	lf, ok := p.lists[field]
	if !ok {
		return lf, fmt.Errorf("%w: %s has no list %q", ErrUnknownField, p.typ, field)
	}
	return lf, nil
}

func (p *panel[D, C]) AddItem(current domain.Details, field, value string) (domain.Details, error) {
	lf, err := p.list(field)
	if err != nil {
		return current, err
	}
	cur, err := p.current(current)
	if err != nil {
		return current, err
	}
	lf.set(&cur, AddUnique(lf.get(cur), value))
	return cur, nil
}

func (p *panel[D, C]) RemoveItem(current domain.Details, field, value string) (domain.Details, error) {
	lf, err := p.list(field)
	if err != nil {
		return current, err
	}
	cur, err := p.current(current)
	if err != nil {
		return current, err
	}
	lf.set(&cur, Remove(lf.get(cur), value))
	return cur, nil
}

func (p *panel[D, C]) Preview(current domain.Details) []PreviewLine {
	cur, err := p.current(current)
	if err != nil {
		return nil
	}
	return p.preview(cur)
}

func (p *panel[D, C]) ListFields() []string {
	fields := make([]string, 0, len(p.lists))
	for name := range p.lists {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setText(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setFloor(dst *int, src *int) {
	if src != nil {
		*dst = max(*src, 0)
	}
}

func setFloorFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = max(*src, 0)
	}
}

func setURL(field string, dst *string, src *string) error {
	if src == nil {
		return nil
	}
	v := strings.TrimSpace(*src)
	if !forms.IsValidURL(v) {
		return &FieldError{Field: field, Message: "must be a valid URL"}
	}
	*dst = v
	return nil
}

func line(label, value string) PreviewLine {
	return PreviewLine{Label: label, Value: value}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
