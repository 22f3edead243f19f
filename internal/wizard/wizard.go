package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

// Shape selects the step sequence of a wizard session
type Shape string

const (
	// ShapeStandard is type selection, details, review
	ShapeStandard Shape = "standard"
	// ShapePhysical is the six-step flow dedicated to physical goods
	ShapePhysical Shape = "physical"
)

var shapeSteps = map[Shape][]string{
	ShapeStandard: {"type", "details", "review"},
	ShapePhysical: {"basic-info", "inventory-pricing", "shipping", "variations", "affiliate-info", "additional"},
}

var ErrUnknownShape = errors.New("unknown wizard shape")

// StepError blocks a step transition with one message for the top of the form
type StepError struct {
	Step    string
	Message string
}

func (e *StepError) Error() string {
	return e.Message
}

// Session is one creator's in-progress product draft. It is owned by a
// single wizard for the duration of editing.
type Session struct {
	ID        string
	CreatorID uuid.UUID
	Shape     Shape
	// Step is 1-based and always within [1, len(Steps())]
	Step  int
	Draft *domain.Product
	// Stash keeps the field groups of types the draft was switched away from
	Stash     map[domain.ProductType]domain.Details
	Banner    string
	UpdatedAt time.Time
}

// New starts an empty session. Physical sessions start with the physical type selected.
func New(creatorID uuid.UUID, shape Shape) (*Session, error) {
	if _, ok := shapeSteps[shape]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, string(shape))
	}

	s := &Session{
		ID:        uuid.NewString(),
		CreatorID: creatorID,
		Shape:     shape,
		Step:      1,
		Draft:     &domain.Product{CreatorID: creatorID},
		Stash:     map[domain.ProductType]domain.Details{},
		UpdatedAt: time.Now().UTC(),
	}
	if shape == ShapePhysical {
		s.Draft.Type = domain.TypePhysical
		s.Draft.Details = domain.PhysicalDetails{}
	}
	return s, nil
}

// FromProduct hydrates a session from a stored product for editing. The
// standard flow opens on the details step since the type is already chosen.
func FromProduct(p *domain.Product, shape Shape) (*Session, error) {
	s, err := New(p.CreatorID, shape)
	if err != nil {
		return nil, err
	}
	if shape == ShapePhysical && p.Type != domain.TypePhysical {
		return nil, fmt.Errorf("%w: physical flow cannot edit a %s product", ErrTypeLocked, p.Type)
	}

	s.Draft = p.Clone()
	if s.Draft.Details == nil && s.Draft.Type != "" {
		details, err := domain.NewDetails(s.Draft.Type)
		if err != nil {
			return nil, err
		}
		s.Draft.Details = details
	}
	if shape == ShapeStandard {
		s.Step = 2
	}
	return s, nil
}

// Steps returns the step names of the session's shape
func (s *Session) Steps() []string {
	return shapeSteps[s.Shape]
}

// StepName returns the name of the active step
func (s *Session) StepName() string {
	return s.Steps()[s.Step-1]
}

// Next validates the active step and advances. At the last step it is a no-op.
func (s *Session) Next() error {
	if s.Step >= len(s.Steps()) {
		return nil
	}
	if err := s.Validate(s.Step); err != nil {
		s.Banner = err.Error()
		return err
	}
	s.Banner = ""
	s.Step++
	s.touch()
	return nil
}

// Previous moves back one step without validation. At the first step it is a no-op.
func (s *Session) Previous() {
	if s.Step <= 1 {
		return
	}
	s.Step--
	s.touch()
}

// DismissBanner clears the page-level message
func (s *Session) DismissBanner() {
	s.Banner = ""
}

// ValidateAll checks every step in order and returns the first failure
func (s *Session) ValidateAll() error {
	for step := 1; step <= len(s.Steps()); step++ {
		if err := s.Validate(step); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}

type sessionJSON struct {
	ID        string                                 `json:"id"`
	CreatorID uuid.UUID                              `json:"creator_id"`
	Shape     Shape                                  `json:"shape"`
	Step      int                                    `json:"step"`
	StepName  string                                 `json:"step_name"`
	Steps     []string                               `json:"steps"`
	Draft     *domain.Product                        `json:"draft"`
	Stash     map[domain.ProductType]json.RawMessage `json:"stash,omitempty"`
	Banner    string                                 `json:"banner,omitempty"`
	UpdatedAt time.Time                              `json:"updated_at"`
}

// MarshalJSON encodes the session, including stashed field groups
func (s Session) MarshalJSON() ([]byte, error) {
	out := sessionJSON{
		ID:        s.ID,
		CreatorID: s.CreatorID,
		Shape:     s.Shape,
		Step:      s.Step,
		Steps:     shapeSteps[s.Shape],
		Draft:     s.Draft,
		Banner:    s.Banner,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Step >= 1 && s.Step <= len(out.Steps) {
		out.StepName = out.Steps[s.Step-1]
	}
	if len(s.Stash) > 0 {
		out.Stash = make(map[domain.ProductType]json.RawMessage, len(s.Stash))
		for t, d := range s.Stash {
			raw, err := json.Marshal(d)
			if err != nil {
				return nil, err
			}
			out.Stash[t] = raw
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a session and restores its stash
func (s *Session) UnmarshalJSON(data []byte) error {
	var in sessionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	steps, ok := shapeSteps[in.Shape]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownShape, string(in.Shape))
	}

	stash := make(map[domain.ProductType]domain.Details, len(in.Stash))
	for t, raw := range in.Stash {
		d, err := domain.DecodeDetails(t, raw)
		if err != nil {
			return err
		}
		stash[t] = d
	}

	draft := in.Draft
	if draft == nil {
		draft = &domain.Product{CreatorID: in.CreatorID}
	}

	*s = Session{
		ID:        in.ID,
		CreatorID: in.CreatorID,
		Shape:     in.Shape,
		Step:      min(max(in.Step, 1), len(steps)),
		Draft:     draft,
		Stash:     stash,
		Banner:    in.Banner,
		UpdatedAt: in.UpdatedAt,
	}
	return nil
}
