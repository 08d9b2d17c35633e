package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfillment state of an order. Transitions past pending
// are driven by the external fulfillment process, never by the storefront.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Address is a named delivery address owned by exactly one user. Addresses
// are added and removed, never edited in place.
type Address struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"-" db:"user_id"`
	Label           string    `json:"label" db:"label"`
	DeliveryAddress string    `json:"delivery_address" db:"delivery_address"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Order is an immutable checkout record: a deep snapshot of the cart lines,
// the total computed at checkout time, and the chosen address.
type Order struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	UserID         uuid.UUID   `json:"user_id" db:"user_id"`
	Items          []CartItem  `json:"items"`
	Total          float64     `json:"total" db:"total"`
	Address        Address     `json:"address"`
	Status         OrderStatus `json:"status" db:"status"`
	IdempotencyKey string      `json:"-" db:"idempotency_key"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}
