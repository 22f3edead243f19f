package wizard

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"
)

// Persister writes a finished draft to durable storage. A product with a
// zero ID is created, any other is replaced.
type Persister interface {
	SaveProduct(ctx context.Context, p *domain.Product) (*domain.Product, error)
}

// Save serializes the draft and hands it to the persister. Publishing
// requires every step to validate and stamps PublishedAt; a draft save
// leaves it unset. On failure the draft is left as it was and the error is
// kept as the session banner for a retry.
func (s *Session) Save(ctx context.Context, persister Persister, publish bool) error {
	if publish {
		if err := s.ValidateAll(); err != nil {
			s.Banner = err.Error()
			return err
		}
	}

	candidate := s.Draft.Clone()
	candidate.CreatorID = s.CreatorID
	if publish {
		now := time.Now().UTC()
		candidate.PublishedAt = &now
	} else {
		candidate.PublishedAt = nil
	}

	saved, err := persister.SaveProduct(ctx, candidate)
	if err != nil {
		s.Banner = "Failed to save product. Please try again."
		return fmt.Errorf("failed to save draft: %w", err)
	}

	s.Draft = saved
	s.Banner = ""
	s.touch()
	return nil
}
