package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopfront/internal/domain"
	"shopfront/internal/messaging"
	"shopfront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrNoAddress = errors.New("delivery address is required")
)

// OrderCreatedEvent is the payload handed to the fulfillment pipeline when a
// checkout commits.
type OrderCreatedEvent struct {
	OrderID   uuid.UUID          `json:"order_id"`
	UserID    uuid.UUID          `json:"user_id"`
	Total     float64            `json:"total"`
	Status    domain.OrderStatus `json:"status"`
	Address   domain.Address     `json:"address"`
	ItemCount int                `json:"item_count"`
	CreatedAt time.Time          `json:"created_at"`
}

// OrderService turns a cart into an immutable order record. Checkout is the
// only write path; orders never change after creation from the storefront
// side.
type OrderService interface {
	Checkout(ctx context.Context, userID uuid.UUID, items []domain.CartItem, address domain.Address, idempotencyKey string) (*domain.Order, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error)
}

type orderService struct {
	orderRepo  repository.OrderRepository
	publisher  messaging.Publisher
	orderTopic string
	logger     *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	publisher messaging.Publisher,
	orderTopic string,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		publisher:  publisher,
		orderTopic: orderTopic,
		logger:     logger,
	}
}

// Checkout validates the cart and address, prices the order at call time, and
// persists it with a deep snapshot of the cart lines. A repeated call with
// the same idempotency key returns the order created the first time instead
// of creating a duplicate.
func (s *orderService) Checkout(ctx context.Context, userID uuid.UUID, items []domain.CartItem, address domain.Address, idempotencyKey string) (*domain.Order, error) {
	// The replay lookup runs before any precondition: a client retrying after
	// a lost response has already had its cart cleared, and must still get the
	// original order back.
	if idempotencyKey != "" {
		existing, err := s.orderRepo.FindByIdempotencyKey(ctx, userID, idempotencyKey)
		if err == nil {
			return existing, nil
		}
		if err != repository.ErrOrderNotFound {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
	}

	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if address.DeliveryAddress == "" {
		return nil, ErrNoAddress
	}

	order := &domain.Order{
		ID:             uuid.New(),
		UserID:         userID,
		Items:          domain.CloneLines(items),
		Total:          domain.CheckoutTotal(items),
		Address:        address,
		Status:         domain.OrderStatusPending,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      time.Now(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		// A concurrent checkout with the same key may have won the unique
		// index race; hand back its order instead of surfacing the conflict.
		if idempotencyKey != "" {
			existing, findErr := s.orderRepo.FindByIdempotencyKey(ctx, userID, idempotencyKey)
			if findErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// The order is committed at this point. A broker outage must not fail
	// the checkout; fulfillment can reconcile from the orders table.
	event := OrderCreatedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total,
		Status:    order.Status,
		Address:   order.Address,
		ItemCount: domain.ItemCount(order.Items),
		CreatedAt: order.CreatedAt,
	}
	if err := s.publisher.PublishEvent(ctx, s.orderTopic, order.UserID.String(), event); err != nil {
		s.logger.Warn("failed to publish order created event",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}

	return order, nil
}

// Get retrieves one order, scoped to its owner. An order belonging to another
// user is indistinguishable from a missing one.
func (s *orderService) Get(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

// ListByUser retrieves the user's order history, most recent first.
func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}
