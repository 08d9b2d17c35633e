package service

import (
	"context"
	"fmt"
	"time"

	"shopfront/internal/domain"
	"shopfront/internal/repository"

	"github.com/google/uuid"
)

// ProfileService owns the per-user storefront profile: favorites and the
// address book. Identity is supplied by the caller; authentication is
// enforced at the transport boundary.
type ProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)

	ListFavorites(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	AddFavorite(ctx context.Context, userID, productID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error

	ListAddresses(ctx context.Context, userID uuid.UUID) ([]domain.Address, error)
	GetAddress(ctx context.Context, userID, addressID uuid.UUID) (*domain.Address, error)
	AddAddress(ctx context.Context, userID uuid.UUID, label, deliveryAddress string) (*domain.Address, error)
	RemoveAddress(ctx context.Context, userID, addressID uuid.UUID) error
}

type profileService struct {
	userRepo     repository.UserRepository
	favoriteRepo repository.FavoriteRepository
	addressRepo  repository.AddressRepository
}

// NewProfileService creates a new instance of ProfileService
func NewProfileService(
	userRepo repository.UserRepository,
	favoriteRepo repository.FavoriteRepository,
	addressRepo repository.AddressRepository,
) ProfileService {
	return &profileService{
		userRepo:     userRepo,
		favoriteRepo: favoriteRepo,
		addressRepo:  addressRepo,
	}
}

// GetProfile assembles the user's profile view: identity, favorites and
// addresses.
func (s *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile user: %w", err)
	}

	favorites, err := s.favoriteRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile favorites: %w", err)
	}

	addresses, err := s.addressRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile addresses: %w", err)
	}

	return &domain.Profile{
		User:      *user,
		Favorites: favorites,
		Addresses: addresses,
	}, nil
}

// ListFavorites returns the user's favorite product ids.
func (s *profileService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.favoriteRepo.List(ctx, userID)
}

// IsFavorite reports membership for one product id.
func (s *profileService) IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	return s.favoriteRepo.IsFavorite(ctx, userID, productID)
}

// AddFavorite records a favorite; adding an existing membership is a no-op.
func (s *profileService) AddFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	return s.favoriteRepo.Add(ctx, userID, productID)
}

// RemoveFavorite drops a favorite; removing a non-member is a no-op.
func (s *profileService) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	return s.favoriteRepo.Remove(ctx, userID, productID)
}

// ListAddresses returns the user's addresses in creation order.
func (s *profileService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]domain.Address, error) {
	return s.addressRepo.List(ctx, userID)
}

// GetAddress retrieves one address, scoped to its owner. Checkout resolves
// the chosen address through this.
func (s *profileService) GetAddress(ctx context.Context, userID, addressID uuid.UUID) (*domain.Address, error) {
	return s.addressRepo.FindByID(ctx, userID, addressID)
}

// AddAddress stores a new address with a server-assigned id and returns the
// stored value.
func (s *profileService) AddAddress(ctx context.Context, userID uuid.UUID, label, deliveryAddress string) (*domain.Address, error) {
	address := &domain.Address{
		ID:              uuid.New(),
		UserID:          userID,
		Label:           label,
		DeliveryAddress: deliveryAddress,
		CreatedAt:       time.Now(),
	}

	if err := s.addressRepo.Add(ctx, address); err != nil {
		return nil, err
	}

	return address, nil
}

// RemoveAddress deletes an address by id, scoped to its owner.
func (s *profileService) RemoveAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.addressRepo.Remove(ctx, userID, addressID)
}
