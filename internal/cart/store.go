// Package cart holds per-user carts in memory and mirrors them to Redis so a
// cart survives a process restart. The in-memory copy is authoritative for a
// running session; Redis writes are best effort and a failed write never
// corrupts the cart.
package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"shopfront/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "cart:"

// Store is the session cart store. Each user's cart has a single writer (the
// owning session); the mutex guards the map across sessions.
type Store struct {
	mu     sync.RWMutex
	carts  map[uuid.UUID][]domain.CartItem
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStore creates a cart store backed by the given Redis client. A nil
// client disables persistence entirely.
func NewStore(redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		carts:  make(map[uuid.UUID][]domain.CartItem),
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
	}
}

// Items returns the user's cart lines, loading the persisted snapshot on a
// process-local miss. Callers receive a copy.
func (s *Store) Items(ctx context.Context, userID uuid.UUID) []domain.CartItem {
	s.mu.RLock()
	items, ok := s.carts[userID]
	s.mu.RUnlock()

	if !ok {
		items = s.load(ctx, userID)
		s.mu.Lock()
		if existing, raced := s.carts[userID]; raced {
			items = existing
		} else {
			s.carts[userID] = items
		}
		s.mu.Unlock()
	}

	return domain.CloneLines(items)
}

// AddItem merges a product into the cart: an existing line keeps its stored
// snapshot and gains quantity, a new product starts a line at quantity 1.
func (s *Store) AddItem(ctx context.Context, userID uuid.UUID, product domain.Product) []domain.CartItem {
	return s.mutate(ctx, userID, func(items []domain.CartItem) []domain.CartItem {
		return domain.AddLine(items, product)
	})
}

// RemoveItem drops a line; removing an absent line is a no-op.
func (s *Store) RemoveItem(ctx context.Context, userID, productID uuid.UUID) []domain.CartItem {
	return s.mutate(ctx, userID, func(items []domain.CartItem) []domain.CartItem {
		return domain.RemoveLine(items, productID)
	})
}

// UpdateQuantity sets a line's quantity absolutely; zero or below removes it.
func (s *Store) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) []domain.CartItem {
	return s.mutate(ctx, userID, func(items []domain.CartItem) []domain.CartItem {
		return domain.SetQuantity(items, productID, quantity)
	})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context, userID uuid.UUID) {
	s.mutate(ctx, userID, func([]domain.CartItem) []domain.CartItem {
		return []domain.CartItem{}
	})
}

// Subtotal is the discounted sum over the user's lines.
func (s *Store) Subtotal(ctx context.Context, userID uuid.UUID) float64 {
	return domain.Subtotal(s.Items(ctx, userID))
}

// ItemCount sums quantities across the user's lines.
func (s *Store) ItemCount(ctx context.Context, userID uuid.UUID) int {
	return domain.ItemCount(s.Items(ctx, userID))
}

func (s *Store) mutate(ctx context.Context, userID uuid.UUID, fn func([]domain.CartItem) []domain.CartItem) []domain.CartItem {
	s.mu.Lock()
	items, ok := s.carts[userID]
	if !ok {
		s.mu.Unlock()
		loaded := s.load(ctx, userID)
		s.mu.Lock()
		if existing, raced := s.carts[userID]; raced {
			items = existing
		} else {
			items = loaded
		}
	}

	items = fn(items)
	s.carts[userID] = items
	snapshot := domain.CloneLines(items)
	s.mu.Unlock()

	s.persist(ctx, userID, snapshot)
	return snapshot
}

// persist mirrors the full line set to Redis. Failures are logged and
// swallowed: the running session's in-memory cart stays authoritative.
func (s *Store) persist(ctx context.Context, userID uuid.UUID, items []domain.CartItem) {
	if s.redis == nil {
		return
	}

	key := keyPrefix + userID.String()

	if len(items) == 0 {
		if err := s.redis.Del(ctx, key).Err(); err != nil {
			s.logger.Warn("Failed to clear persisted cart",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
		return
	}

	payload, err := json.Marshal(items)
	if err != nil {
		s.logger.Warn("Failed to encode cart for persistence",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return
	}

	if err := s.redis.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("Failed to persist cart",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}

func (s *Store) load(ctx context.Context, userID uuid.UUID) []domain.CartItem {
	if s.redis == nil {
		return []domain.CartItem{}
	}

	payload, err := s.redis.Get(ctx, keyPrefix+userID.String()).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Failed to load persisted cart",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
		return []domain.CartItem{}
	}

	var items []domain.CartItem
	if err := json.Unmarshal(payload, &items); err != nil {
		s.logger.Warn("Discarding corrupt persisted cart",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return []domain.CartItem{}
	}

	return items
}
