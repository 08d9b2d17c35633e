package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FavoriteRepository stores per-user favorite product ids with set semantics:
// membership, not multiplicity. Add and Remove are the relational rendering
// of an atomic set-union / set-remove, so repeated adds and removes of the
// same id are observable no-ops.
type FavoriteRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type favoriteRepository struct {
	db *sql.DB
}

// NewFavoriteRepository creates a new instance of FavoriteRepository
func NewFavoriteRepository(db *sql.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// List retrieves a user's favorite product ids, oldest membership first.
func (r *favoriteRepository) List(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT product_id
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []uuid.UUID{}
	for rows.Next() {
		var productID uuid.UUID
		if err := rows.Scan(&productID); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, productID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}

	return favorites, nil
}

// IsFavorite reports membership for a single product id.
func (r *favoriteRepository) IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND product_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}

	return exists, nil
}

// Add records a favorite. Adding an existing membership is a no-op.
func (r *favoriteRepository) Add(ctx context.Context, userID, productID uuid.UUID) error {
	query := `
		INSERT INTO favorites (user_id, product_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, userID, productID, time.Now()); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}

	return nil
}

// Remove deletes a membership. Removing a non-member is a no-op.
func (r *favoriteRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`

	if _, err := r.db.ExecContext(ctx, query, userID, productID); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}

	return nil
}
