package stock

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/order"
)

// ApplyOrderPlaced decrements stock for every line item of a freshly
// created order, clamping at zero, and batch-commits all products and
// movements together. Alert evaluation runs per item after the commit.
//
// Line items referencing unknown products are skipped with a log entry:
// the order already exists and must not be held hostage by stock state.
func (l *Ledger) ApplyOrderPlaced(ctx context.Context, o order.Order) error {
	return l.reconcileOrder(ctx, o, OperationDecrement, ReasonOrderPlaced, true)
}

// RestoreOrderCancelled increments stock for every line item of a
// cancelled order. Stock only rises here, so no alert evaluation runs.
// Callers are responsible for edge-triggering: this must run exactly once
// per not-cancelled to cancelled transition.
func (l *Ledger) RestoreOrderCancelled(ctx context.Context, o order.Order) error {
	return l.reconcileOrder(ctx, o, OperationIncrement, ReasonOrderCancelled, false)
}

func (l *Ledger) reconcileOrder(ctx context.Context, o order.Order, operation, reason string, evaluate bool) error {
	type stockLevel struct {
		productID string
		newStock  int
	}

	batch := l.store.NewBatch()
	var levels []stockLevel

	for _, item := range o.Items {
		if item.Quantity <= 0 {
			continue
		}

		var p catalog.Product
		ok, err := l.store.Get(ctx, store.CollectionProducts, item.ProductID, &p)
		if err != nil {
			return fmt.Errorf("failed to load product %s for order %s: %w", item.ProductID, o.ID, err)
		}
		if !ok {
			log.Printf("[StockLedger] Order %s references unknown product %s, skipping", o.ID, item.ProductID)
			continue
		}

		previous := p.Stock
		newStock, delta, err := nextStock(previous, item.Quantity, operation)
		if err != nil {
			return err
		}

		p.Stock = newStock
		p.UpdatedAt = time.Now()
		batch.Put(store.CollectionProducts, p.ID, &p)
		l.appendMovement(batch, Movement{
			ProductID:     p.ID,
			PreviousStock: previous,
			NewStock:      newStock,
			Quantity:      delta,
			Operation:     operation,
			Reason:        reason,
			OrderID:       o.ID,
			ActorID:       SystemActor,
		})
		levels = append(levels, stockLevel{productID: p.ID, newStock: newStock})
	}

	if batch.Size() == 0 {
		return nil
	}
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit stock reconciliation for order %s: %w", o.ID, err)
	}

	if evaluate {
		for _, lv := range levels {
			l.evaluateAlert(ctx, lv.productID, lv.newStock)
		}
	}
	return nil
}
