package order

import (
	"encoding/json"
	"time"
)

// Event types published on the order topic. The stock reconciliation
// consumer reacts to these instead of mutating stock inline, matching the
// trigger split in the Lambda deployment.
const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

// Envelope wraps order events on the bus.
type Envelope struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

type OrderCreated struct {
	Order Order `json:"order"`
}

// OrderStatusChanged carries both statuses so consumers can act on
// transitions (edge-triggered) rather than on states.
type OrderStatusChanged struct {
	OrderID        string `json:"order_id"`
	UserID         string `json:"user_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	Items          []Item `json:"items"`
}

// NewEnvelope marshals an event payload into a bus envelope.
func NewEnvelope(eventType string, data any) (*Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		EventType: eventType,
		Data:      raw,
		Timestamp: time.Now(),
	}, nil
}
