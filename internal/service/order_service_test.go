package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"shopfront/internal/domain"
	"shopfront/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

type mockOrderRepository struct {
	orders      map[uuid.UUID]*domain.Order
	createCalls int
	createErr   error
	// raceWinner appears in storage at insert time, simulating a concurrent
	// checkout that committed between the replay lookup and our Create.
	raceWinner *domain.Order
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{
		orders: make(map[uuid.UUID]*domain.Order),
	}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	m.createCalls++
	if m.createErr != nil {
		if m.raceWinner != nil {
			m.orders[m.raceWinner.ID] = m.raceWinner
		}
		return m.createErr
	}
	stored := *order
	m.orders[order.ID] = &stored
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, exists := m.orders[id]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepository) FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*domain.Order, error) {
	for _, order := range m.orders {
		if order.UserID == userID && order.IdempotencyKey == key {
			return order, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	orders := []domain.Order{}
	for _, order := range m.orders {
		if order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

type mockPublisher struct {
	events []any
	err    error
}

func (m *mockPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func testCartItems() []domain.CartItem {
	return []domain.CartItem{
		{
			Product: domain.Product{
				ID:       uuid.New(),
				Title:    "Canvas Sneaker",
				Price:    100,
				Discount: 0.1,
			},
			Quantity: 2,
		},
		{
			Product: domain.Product{
				ID:    uuid.New(),
				Title: "Wool Beanie",
				Price: 25,
			},
			Quantity: 1,
		},
	}
}

func testAddress() domain.Address {
	return domain.Address{
		ID:              uuid.New(),
		Label:           "Home",
		DeliveryAddress: "12 Elm Street, Springfield",
	}
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	service := NewOrderService(newMockOrderRepository(), &mockPublisher{}, "orders.created", zap.NewNop())

	_, err := service.Checkout(context.Background(), uuid.New(), nil, testAddress(), "")
	if err != ErrEmptyCart {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutRejectsMissingAddress(t *testing.T) {
	service := NewOrderService(newMockOrderRepository(), &mockPublisher{}, "orders.created", zap.NewNop())

	_, err := service.Checkout(context.Background(), uuid.New(), testCartItems(), domain.Address{}, "")
	if err != ErrNoAddress {
		t.Errorf("expected ErrNoAddress, got %v", err)
	}
}

func TestCheckoutPricesOrderAtCallTime(t *testing.T) {
	orderRepo := newMockOrderRepository()
	service := NewOrderService(orderRepo, &mockPublisher{}, "orders.created", zap.NewNop())

	items := testCartItems()
	order, err := service.Checkout(context.Background(), uuid.New(), items, testAddress(), "")
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	// 2 * 100 * 0.9 + 25 + shipping
	want := 180.0 + 25.0 + domain.ShippingFee
	if math.Abs(order.Total-want) > 1e-9 {
		t.Errorf("expected total %.2f, got %.2f", want, order.Total)
	}
	if order.Status != domain.OrderStatusPending {
		t.Errorf("expected status pending, got %s", order.Status)
	}
}

func TestCheckoutSnapshotIsImmuneToCartMutation(t *testing.T) {
	orderRepo := newMockOrderRepository()
	service := NewOrderService(orderRepo, &mockPublisher{}, "orders.created", zap.NewNop())

	items := testCartItems()
	order, err := service.Checkout(context.Background(), uuid.New(), items, testAddress(), "")
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	// Mutating the cart lines after checkout must not reach the order.
	items[0].Product.Price = 1
	items[0].Quantity = 99

	stored, err := orderRepo.FindByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if stored.Items[0].Product.Price != 100 {
		t.Errorf("order snapshot price changed: got %.2f", stored.Items[0].Product.Price)
	}
	if stored.Items[0].Quantity != 2 {
		t.Errorf("order snapshot quantity changed: got %d", stored.Items[0].Quantity)
	}
}

func TestCheckoutIdempotencyReplay(t *testing.T) {
	orderRepo := newMockOrderRepository()
	service := NewOrderService(orderRepo, &mockPublisher{}, "orders.created", zap.NewNop())
	ctx := context.Background()
	userID := uuid.New()

	first, err := service.Checkout(ctx, userID, testCartItems(), testAddress(), "key-1")
	if err != nil {
		t.Fatalf("first Checkout failed: %v", err)
	}

	second, err := service.Checkout(ctx, userID, testCartItems(), testAddress(), "key-1")
	if err != nil {
		t.Fatalf("replayed Checkout failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("replay created a new order: %s vs %s", second.ID, first.ID)
	}
	if orderRepo.createCalls != 1 {
		t.Errorf("expected 1 Create call, got %d", orderRepo.createCalls)
	}

	// A different key creates a fresh order.
	third, err := service.Checkout(ctx, userID, testCartItems(), testAddress(), "key-2")
	if err != nil {
		t.Fatalf("Checkout with new key failed: %v", err)
	}
	if third.ID == first.ID {
		t.Error("distinct keys must create distinct orders")
	}
}

func TestCheckoutReplayAfterCartCleared(t *testing.T) {
	orderRepo := newMockOrderRepository()
	service := NewOrderService(orderRepo, &mockPublisher{}, "orders.created", zap.NewNop())
	ctx := context.Background()
	userID := uuid.New()

	first, err := service.Checkout(ctx, userID, testCartItems(), testAddress(), "key-replay")
	if err != nil {
		t.Fatalf("first Checkout failed: %v", err)
	}

	// The client lost the response, the handler already cleared the cart.
	// Retrying with the same key and an empty cart must return the original
	// order, not ErrEmptyCart.
	replayed, err := service.Checkout(ctx, userID, nil, domain.Address{}, "key-replay")
	if err != nil {
		t.Fatalf("replay after cart cleared failed: %v", err)
	}
	if replayed.ID != first.ID {
		t.Errorf("replay returned a different order: %s vs %s", replayed.ID, first.ID)
	}
	if orderRepo.createCalls != 1 {
		t.Errorf("expected 1 Create call, got %d", orderRepo.createCalls)
	}
}

func TestCheckoutReturnsRaceWinnerOnUniqueConflict(t *testing.T) {
	orderRepo := newMockOrderRepository()
	service := NewOrderService(orderRepo, &mockPublisher{}, "orders.created", zap.NewNop())
	ctx := context.Background()
	userID := uuid.New()

	winner := &domain.Order{
		ID:             uuid.New(),
		UserID:         userID,
		Total:          domain.ShippingFee,
		Status:         domain.OrderStatusPending,
		IdempotencyKey: "key-race",
		CreatedAt:      time.Now(),
	}
	orderRepo.raceWinner = winner
	orderRepo.createErr = errors.New("duplicate key value violates unique constraint \"idx_orders_idempotency\"")

	order, err := service.Checkout(ctx, userID, testCartItems(), testAddress(), "key-race")
	if err != nil {
		t.Fatalf("Checkout must recover from the unique conflict: %v", err)
	}
	if order.ID != winner.ID {
		t.Errorf("expected the winner's order, got %s", order.ID)
	}

	// Without a key there is nothing to recover; the failure surfaces.
	if _, err := service.Checkout(ctx, userID, testCartItems(), testAddress(), ""); err == nil {
		t.Error("expected Create failure to surface without an idempotency key")
	}
}

func TestCheckoutSurvivesPublishFailure(t *testing.T) {
	orderRepo := newMockOrderRepository()
	publisher := &mockPublisher{err: errors.New("broker unreachable")}
	service := NewOrderService(orderRepo, publisher, "orders.created", zap.NewNop())

	order, err := service.Checkout(context.Background(), uuid.New(), testCartItems(), testAddress(), "")
	if err != nil {
		t.Fatalf("Checkout must not fail on publish error: %v", err)
	}

	if _, err := orderRepo.FindByID(context.Background(), order.ID); err != nil {
		t.Errorf("order was not persisted: %v", err)
	}
}

func TestCheckoutPublishesOrderCreatedEvent(t *testing.T) {
	publisher := &mockPublisher{}
	service := NewOrderService(newMockOrderRepository(), publisher, "orders.created", zap.NewNop())

	order, err := service.Checkout(context.Background(), uuid.New(), testCartItems(), testAddress(), "")
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(publisher.events))
	}
	event, ok := publisher.events[0].(OrderCreatedEvent)
	if !ok {
		t.Fatalf("unexpected event type %T", publisher.events[0])
	}
	if event.OrderID != order.ID {
		t.Errorf("event order id mismatch: %s vs %s", event.OrderID, order.ID)
	}
	if event.ItemCount != 3 {
		t.Errorf("expected item count 3, got %d", event.ItemCount)
	}
}

func TestGetOrderScopedToOwner(t *testing.T) {
	orderRepo := newMockOrderRepository()
	service := NewOrderService(orderRepo, &mockPublisher{}, "orders.created", zap.NewNop())
	ctx := context.Background()
	owner := uuid.New()

	order, err := service.Checkout(ctx, owner, testCartItems(), testAddress(), "")
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if _, err := service.Get(ctx, owner, order.ID); err != nil {
		t.Errorf("owner should see the order: %v", err)
	}
	if _, err := service.Get(ctx, uuid.New(), order.ID); err != repository.ErrOrderNotFound {
		t.Errorf("expected ErrOrderNotFound for another user, got %v", err)
	}
}

func TestProperty_OrderHistoryMostRecentFirst(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("orders come back newest first regardless of creation order", prop.ForAll(
		func(count int) bool {
			orderRepo := newMockOrderRepository()
			userID := uuid.New()
			base := time.Now()

			for i := 0; i < count; i++ {
				order := &domain.Order{
					ID:        uuid.New(),
					UserID:    userID,
					Total:     domain.ShippingFee,
					Status:    domain.OrderStatusPending,
					CreatedAt: base.Add(time.Duration(i) * time.Minute),
				}
				if err := orderRepo.Create(context.Background(), order); err != nil {
					return false
				}
			}

			service := NewOrderService(orderRepo, &mockPublisher{}, "orders.created", zap.NewNop())
			orders, err := service.ListByUser(context.Background(), userID)
			if err != nil || len(orders) != count {
				return false
			}

			for i := 1; i < len(orders); i++ {
				if orders[i].CreatedAt.After(orders[i-1].CreatedAt) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
