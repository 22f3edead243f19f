package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrEmptyChangeSet  = errors.New("change set has no fields")
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var productColumns = []string{
	"id", "creator_id", "type", "name", "description", "price", "discount_price",
	"thumbnail_url", "featured", "published_at", "details", "created_at", "updated_at",
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id uuid.UUID, changes ProductChangeSet) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*domain.Product, error)
	ListPublished(ctx context.Context) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product with its details serialized as JSON
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	details, err := encodeDetails(product.Details)
	if err != nil {
		return err
	}

	_, err = psql.Insert("products").
		SetMap(map[string]interface{}{
			"id":             product.ID,
			"creator_id":     product.CreatorID,
			"type":           product.Type,
			"name":           product.Name,
			"description":    product.Description,
			"price":          product.Price,
			"discount_price": product.DiscountPrice,
			"thumbnail_url":  product.ThumbnailURL,
			"featured":       product.Featured,
			"published_at":   product.PublishedAt,
			"details":        details,
			"created_at":     product.CreatedAt,
			"updated_at":     product.UpdatedAt,
		}).
		RunWith(r.db).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update writes only the columns present in the change set and bumps updated_at
func (r *productRepository) Update(ctx context.Context, id uuid.UUID, changes ProductChangeSet) error {
	if changes.IsEmpty() {
		return ErrEmptyChangeSet
	}

	set, err := changes.toMap()
	if err != nil {
		return err
	}
	set["updated_at"] = time.Now().UTC()

	result, err := psql.Update("products").
		Where("id = ?", id).
		SetMap(set).
		RunWith(r.db).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := psql.Delete("products").
		Where("id = ?", id).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID, draft or published
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	row := psql.Select(productColumns...).
		From("products").
		Where("id = ?", id).
		RunWith(r.db).
		QueryRowContext(ctx)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// ListByCreator returns a creator's products including drafts, newest first
func (r *productRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*domain.Product, error) {
	return r.list(ctx, psql.Select(productColumns...).
		From("products").
		Where("creator_id = ?", creatorID).
		OrderBy("created_at DESC"))
}

// ListPublished returns every published product, newest first
func (r *productRepository) ListPublished(ctx context.Context) ([]*domain.Product, error) {
	return r.list(ctx, psql.Select(productColumns...).
		From("products").
		Where("published_at IS NOT NULL").
		OrderBy("created_at DESC"))
}

func (r *productRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*domain.Product, error) {
	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func scanProduct(row squirrel.RowScanner) (*domain.Product, error) {
	var (
		product       = &domain.Product{}
		discountPrice sql.NullInt64
		publishedAt   sql.NullTime
		details       []byte
	)

	err := row.Scan(
		&product.ID,
		&product.CreatorID,
		&product.Type,
		&product.Name,
		&product.Description,
		&product.Price,
		&discountPrice,
		&product.ThumbnailURL,
		&product.Featured,
		&publishedAt,
		&details,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if discountPrice.Valid {
		v := discountPrice.Int64
		product.DiscountPrice = &v
	}
	if publishedAt.Valid {
		v := publishedAt.Time
		product.PublishedAt = &v
	}

	product.Details, err = domain.DecodeDetails(product.Type, details)
	if err != nil {
		return nil, err
	}

	return product, nil
}
