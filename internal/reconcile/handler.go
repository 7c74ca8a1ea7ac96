package reconcile

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/storefront/internal/order"
	"github.com/example/storefront/internal/stock"
)

// Handler drives order-triggered stock reconciliation. The same handler
// backs the Kafka consumer (local mode) and the Lambda stream handler
// (cloud mode).
type Handler struct {
	ledger *stock.Ledger
}

func NewHandler(ledger *stock.Ledger) *Handler {
	return &Handler{ledger: ledger}
}

// HandleEvent processes one order event from the bus.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var env order.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		log.Printf("[StockSync] Failed to unmarshal event: %v", err)
		return err
	}

	switch env.EventType {
	case order.EventOrderCreated:
		var e order.OrderCreated
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return err
		}
		log.Printf("[StockSync] Order %s created, decrementing stock for %d items", e.Order.ID, len(e.Order.Items))
		return h.ledger.ApplyOrderPlaced(ctx, e.Order)

	case order.EventOrderStatusChanged:
		var e order.OrderStatusChanged
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return err
		}
		// Edge-triggered: only the transition into cancelled restores stock.
		if e.PreviousStatus != order.StatusCancelled && e.NewStatus == order.StatusCancelled {
			log.Printf("[StockSync] Order %s cancelled, restoring stock for %d items", e.OrderID, len(e.Items))
			return h.ledger.RestoreOrderCancelled(ctx, order.Order{ID: e.OrderID, Items: e.Items})
		}
	}

	return nil
}

// HandleChange processes one order document mutation from the DynamoDB
// stream, where the edge is derived from the old and new images.
func (h *Handler) HandleChange(ctx context.Context, oldOrder, newOrder *order.Order) error {
	if newOrder == nil {
		return nil // REMOVE; nothing to reconcile
	}
	if oldOrder == nil {
		log.Printf("[StockSync] Order %s created, decrementing stock for %d items", newOrder.ID, len(newOrder.Items))
		return h.ledger.ApplyOrderPlaced(ctx, *newOrder)
	}
	if oldOrder.Status != order.StatusCancelled && newOrder.Status == order.StatusCancelled {
		log.Printf("[StockSync] Order %s cancelled, restoring stock for %d items", newOrder.ID, len(newOrder.Items))
		return h.ledger.RestoreOrderCancelled(ctx, *newOrder)
	}
	return nil
}
