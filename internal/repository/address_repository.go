package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shopfront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrAddressNotFound = errors.New("address not found")
)

// AddressRepository stores a user's named delivery addresses. Ids are
// server-assigned and deletion is by id only.
type AddressRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]domain.Address, error)
	FindByID(ctx context.Context, userID, addressID uuid.UUID) (*domain.Address, error)
	Add(ctx context.Context, address *domain.Address) error
	Remove(ctx context.Context, userID, addressID uuid.UUID) error
}

type addressRepository struct {
	db *sql.DB
}

// NewAddressRepository creates a new instance of AddressRepository
func NewAddressRepository(db *sql.DB) AddressRepository {
	return &addressRepository{db: db}
}

// List retrieves a user's addresses in creation order.
func (r *addressRepository) List(ctx context.Context, userID uuid.UUID) ([]domain.Address, error) {
	query := `
		SELECT id, user_id, label, delivery_address, created_at
		FROM addresses
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	addresses := []domain.Address{}
	for rows.Next() {
		var address domain.Address
		err := rows.Scan(
			&address.ID,
			&address.UserID,
			&address.Label,
			&address.DeliveryAddress,
			&address.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, address)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addresses, nil
}

// FindByID retrieves one address, scoped to its owner.
func (r *addressRepository) FindByID(ctx context.Context, userID, addressID uuid.UUID) (*domain.Address, error) {
	query := `
		SELECT id, user_id, label, delivery_address, created_at
		FROM addresses
		WHERE id = $1 AND user_id = $2
	`

	address := &domain.Address{}
	err := r.db.QueryRowContext(ctx, query, addressID, userID).Scan(
		&address.ID,
		&address.UserID,
		&address.Label,
		&address.DeliveryAddress,
		&address.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to find address: %w", err)
	}

	return address, nil
}

// Add inserts a new address using parameterized queries
func (r *addressRepository) Add(ctx context.Context, address *domain.Address) error {
	query := `
		INSERT INTO addresses (id, user_id, label, delivery_address, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		address.ID,
		address.UserID,
		address.Label,
		address.DeliveryAddress,
		address.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to add address: %w", err)
	}

	return nil
}

// Remove deletes an address by id, scoped to its owner.
func (r *addressRepository) Remove(ctx context.Context, userID, addressID uuid.UUID) error {
	query := `DELETE FROM addresses WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, addressID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove address: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAddressNotFound
	}

	return nil
}
