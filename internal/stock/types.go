package stock

import (
	"errors"
	"time"
)

// Stock mutation operations.
const (
	OperationSet       = "set"
	OperationIncrement = "increment"
	OperationDecrement = "decrement"
)

// DefaultAlertThreshold applies when a product has no configured alert.
const DefaultAlertThreshold = 10

// Movement reasons recorded by the order triggers.
const (
	ReasonOrderPlaced    = "Order placed"
	ReasonOrderCancelled = "Order cancelled"
)

// SystemActor marks movements written by the order triggers.
const SystemActor = "system"

var (
	ErrInvalidOperation = errors.New("unknown stock operation")
	ErrInvalidQuantity  = errors.New("quantity must not be negative")
)

// Movement is an immutable audit record of one stock change. Movements are
// append-only; ordering by CreatedAt reconstructs a product's stock history.
type Movement struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	PreviousStock int       `json:"previous_stock"`
	NewStock      int       `json:"new_stock"`
	Quantity      int       `json:"quantity"` // signed: negative for decrement
	Operation     string    `json:"operation"`
	Reason        string    `json:"reason,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	OrderID       string    `json:"order_id,omitempty"`
	ActorID       string    `json:"actor_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Alert is the per-product low-stock threshold configuration, keyed by
// product id (at most one per product).
type Alert struct {
	ProductID string    `json:"product_id"`
	Threshold int       `json:"threshold"`
	Active    bool      `json:"active"`
	UpdatedBy string    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}
