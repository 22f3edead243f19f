package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/browse"
	"storefront/internal/domain"
	"storefront/internal/payments"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrForbidden      = errors.New("product belongs to another creator")
	ErrInvalidProduct = errors.New("invalid product")
)

// SyncDispatcher hands catalog changes to the payment processor bridge without waiting
type SyncDispatcher interface {
	Dispatch(req payments.SyncRequest) error
}

// ProductService defines the interface for product business logic
type ProductService interface {
	Create(ctx context.Context, creatorID uuid.UUID, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, creatorID, id uuid.UUID, changes repository.ProductChangeSet) (*domain.Product, error)
	Publish(ctx context.Context, creatorID, id uuid.UUID) (*domain.Product, error)
	Unpublish(ctx context.Context, creatorID, id uuid.UUID) (*domain.Product, error)
	Get(ctx context.Context, creatorID, id uuid.UUID) (*domain.Product, error)
	GetPublished(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListMine(ctx context.Context, creatorID uuid.UUID) ([]*domain.Product, error)
	Browse(ctx context.Context, filter browse.Filter) (browse.Page, error)
	Delete(ctx context.Context, creatorID, id uuid.UUID) error
	SaveProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	creatorRepo repository.CreatorRepository
	dispatcher  SyncDispatcher
	currency    string
	logger      *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	creatorRepo repository.CreatorRepository,
	dispatcher SyncDispatcher,
	currency string,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		creatorRepo: creatorRepo,
		dispatcher:  dispatcher,
		currency:    currency,
		logger:      logger,
	}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidProduct, msg)
}

// validate checks the invariants every stored product must hold
func validate(p *domain.Product) error {
	if !p.Type.Valid() {
		return invalid("unknown product type")
	}
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name is required")
	}
	if p.Price < 0 {
		return invalid("price cannot be negative")
	}
	if p.DiscountPrice != nil && *p.DiscountPrice < 0 {
		return invalid("discount price cannot be negative")
	}
	if p.Details != nil && p.Details.ProductType() != p.Type {
		return invalid(fmt.Sprintf("%s details do not match type %s", p.Details.ProductType(), p.Type))
	}
	return nil
}

// Create stores a new product for the creator. A product with PublishedAt set is created published.
func (s *productService) Create(ctx context.Context, creatorID uuid.UUID, product *domain.Product) (*domain.Product, error) {
	p := product.Clone()
	p.ID = uuid.New()
	p.CreatorID = creatorID
	if p.Details == nil && p.Type.Valid() {
		p.Details, _ = domain.NewDetails(p.Type)
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	action := payments.ActionCreate
	if p.IsPublished() {
		action = payments.ActionPublish
	}
	s.sync(ctx, action, p)
	return p, nil
}

// Update applies a sparse change set to an owned product. Changing the type
// without new details resets the details to the new type's empty group.
func (s *productService) Update(ctx context.Context, creatorID, id uuid.UUID, changes repository.ProductChangeSet) (*domain.Product, error) {
	current, err := s.owned(ctx, creatorID, id)
	if err != nil {
		return nil, err
	}

	if changes.Type != nil && *changes.Type != current.Type && changes.Details == nil {
		if changes.Details, err = domain.NewDetails(*changes.Type); err != nil {
			return nil, invalid(err.Error())
		}
	}

	next := current.Clone()
	changes.Apply(next)
	if err := validate(next); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, id, changes); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	updated, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.sync(ctx, transition(current, updated), updated)
	return updated, nil
}

// Publish stamps the publish time, making the product visible in browse
func (s *productService) Publish(ctx context.Context, creatorID, id uuid.UUID) (*domain.Product, error) {
	now := time.Now().UTC()
	return s.Update(ctx, creatorID, id, repository.ProductChangeSet{PublishedAt: &now})
}

// Unpublish turns the product back into a draft
func (s *productService) Unpublish(ctx context.Context, creatorID, id uuid.UUID) (*domain.Product, error) {
	return s.Update(ctx, creatorID, id, repository.ProductChangeSet{Unpublish: true})
}

// Get returns one of the creator's products, draft or published
func (s *productService) Get(ctx context.Context, creatorID, id uuid.UUID) (*domain.Product, error) {
	return s.owned(ctx, creatorID, id)
}

// GetPublished returns a product only if it is published
func (s *productService) GetPublished(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsPublished() {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (s *productService) ListMine(ctx context.Context, creatorID uuid.UUID) ([]*domain.Product, error) {
	return s.productRepo.ListByCreator(ctx, creatorID)
}

// Browse runs the filter pipeline over every published product
func (s *productService) Browse(ctx context.Context, filter browse.Filter) (browse.Page, error) {
	products, err := s.productRepo.ListPublished(ctx)
	if err != nil {
		return browse.Page{}, err
	}
	return browse.Apply(products, filter), nil
}

func (s *productService) Delete(ctx context.Context, creatorID, id uuid.UUID) error {
	if _, err := s.owned(ctx, creatorID, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// SaveProduct persists a finished wizard draft. A zero ID creates the
// product, any other ID replaces every mutable field of the stored one.
func (s *productService) SaveProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.ID == uuid.Nil {
		return s.Create(ctx, product.CreatorID, product)
	}

	p := product.Clone()
	if p.Details == nil && p.Type.Valid() {
		p.Details, _ = domain.NewDetails(p.Type)
	}
	return s.Update(ctx, product.CreatorID, product.ID, repository.FullChangeSet(p))
}

func (s *productService) owned(ctx context.Context, creatorID, id uuid.UUID) (*domain.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CreatorID != creatorID {
		return nil, ErrForbidden
	}
	return p, nil
}

func transition(before, after *domain.Product) payments.Action {
	switch {
	case !before.IsPublished() && after.IsPublished():
		return payments.ActionPublish
	case before.IsPublished() && !after.IsPublished():
		return payments.ActionUnpublish
	default:
		return payments.ActionUpdate
	}
}

// sync mirrors the change to the payment processor when the creator has an
// account connected. Failures are logged and never reach the caller.
func (s *productService) sync(ctx context.Context, action payments.Action, p *domain.Product) {
	if s.dispatcher == nil {
		return
	}

	creator, err := s.creatorRepo.FindByID(ctx, p.CreatorID)
	if err != nil {
		s.logger.Warn("Skipping payment sync, creator lookup failed",
			zap.String("product_id", p.ID.String()),
			zap.Error(err),
		)
		return
	}
	if !creator.HasPaymentIntegration() {
		return
	}

	if err := s.dispatcher.Dispatch(payments.NewSyncRequest(action, p, creator, s.currency)); err != nil {
		s.logger.Warn("Failed to queue payment sync",
			zap.String("product_id", p.ID.String()),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}
