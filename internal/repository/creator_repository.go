package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrCreatorNotFound      = errors.New("creator not found")
	ErrCreatorAlreadyExists = errors.New("creator with this email already exists")
)

const uniqueViolation = "23505"

// CreatorRepository defines the interface for creator data access
type CreatorRepository interface {
	Create(ctx context.Context, creator *domain.Creator) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Creator, error)
}

type creatorRepository struct {
	db *sql.DB
}

// NewCreatorRepository creates a new instance of CreatorRepository
func NewCreatorRepository(db *sql.DB) CreatorRepository {
	return &creatorRepository{db: db}
}

// Create inserts a new creator. An empty payment account is stored as NULL.
func (r *creatorRepository) Create(ctx context.Context, creator *domain.Creator) error {
	_, err := psql.Insert("creators").
		SetMap(map[string]interface{}{
			"id":                 creator.ID,
			"display_name":       creator.DisplayName,
			"email":              creator.Email,
			"payment_account_id": nullString(creator.PaymentAccountID),
			"created_at":         creator.CreatedAt,
		}).
		RunWith(r.db).
		ExecContext(ctx)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrCreatorAlreadyExists
		}
		return fmt.Errorf("failed to create creator: %w", err)
	}

	return nil
}

// FindByID retrieves a creator by ID
func (r *creatorRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Creator, error) {
	creator := &domain.Creator{}
	var paymentAccountID sql.NullString

	err := psql.Select("id", "display_name", "email", "payment_account_id", "created_at").
		From("creators").
		Where("id = ?", id).
		RunWith(r.db).
		QueryRowContext(ctx).
		Scan(
			&creator.ID,
			&creator.DisplayName,
			&creator.Email,
			&paymentAccountID,
			&creator.CreatedAt,
		)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCreatorNotFound
		}
		return nil, fmt.Errorf("failed to find creator by ID: %w", err)
	}

	creator.PaymentAccountID = paymentAccountID.String
	return creator, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
