package stock

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/notification"
)

// Notifier delivers admin notifications emitted by alert evaluation.
type Notifier interface {
	Notify(ctx context.Context, n notification.Notification) error
}

// Ledger maintains current stock per product and the append-only movement
// log. Every mutation writes the product and exactly one movement in a
// single atomic batch.
type Ledger struct {
	store    store.DocumentStore
	notifier Notifier
}

func NewLedger(ds store.DocumentStore, notifier Notifier) *Ledger {
	return &Ledger{store: ds, notifier: notifier}
}

type ApplyInput struct {
	ProductID string
	Quantity  int
	Operation string
	Reason    string
	Notes     string
	OrderID   string
	ActorID   string
}

type ApplyResult struct {
	ProductID     string `json:"product_id"`
	PreviousStock int    `json:"previous_stock"`
	NewStock      int    `json:"new_stock"`
}

// Apply mutates a single product's stock. A decrement below zero clamps to
// zero; that is not an error. Alert evaluation runs after the commit and
// never fails the mutation.
func (l *Ledger) Apply(ctx context.Context, in ApplyInput) (*ApplyResult, error) {
	if in.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	var p catalog.Product
	ok, err := l.store.Get(ctx, store.CollectionProducts, in.ProductID, &p)
	if err != nil {
		return nil, err
	}
	if !ok || !p.Active {
		return nil, catalog.ErrProductNotFound
	}

	previous := p.Stock
	newStock, delta, err := nextStock(previous, in.Quantity, in.Operation)
	if err != nil {
		return nil, err
	}

	p.Stock = newStock
	p.UpdatedAt = time.Now()

	batch := l.store.NewBatch()
	batch.Put(store.CollectionProducts, p.ID, &p)
	l.appendMovement(batch, Movement{
		ProductID:     p.ID,
		PreviousStock: previous,
		NewStock:      newStock,
		Quantity:      delta,
		Operation:     in.Operation,
		Reason:        in.Reason,
		Notes:         in.Notes,
		OrderID:       in.OrderID,
		ActorID:       in.ActorID,
	})
	if err := batch.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stock update for %s: %w", p.ID, err)
	}

	l.evaluateAlert(ctx, p.ID, newStock)

	return &ApplyResult{
		ProductID:     p.ID,
		PreviousStock: previous,
		NewStock:      newStock,
	}, nil
}

type BulkItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Operation string `json:"operation"`
}

type BulkItemResult struct {
	ProductID     string `json:"product_id"`
	Success       bool   `json:"success"`
	PreviousStock int    `json:"previous_stock,omitempty"`
	NewStock      int    `json:"new_stock,omitempty"`
	Error         string `json:"error,omitempty"`
}

type BulkResult struct {
	Results      []BulkItemResult `json:"results"`
	TotalUpdated int              `json:"total_updated"`
}

// BulkApply applies a list of stock mutations. Per-item validation failures
// (missing product, bad operation) are recorded in the result list and do
// not abort the batch; every item that passes validation is written in one
// atomic commit, so validated items all succeed or all fail together.
//
// Unlike Apply, the bulk path performs no alert evaluation.
func (l *Ledger) BulkApply(ctx context.Context, items []BulkItem, reason, actorID string) (*BulkResult, error) {
	batch := l.store.NewBatch()
	results := make([]BulkItemResult, 0, len(items))
	updated := 0

	for _, item := range items {
		res, err := l.stageBulkItem(ctx, batch, item, reason, actorID)
		if err != nil {
			// Infrastructure failure while reading; abort the whole call.
			return nil, err
		}
		if res.Success {
			updated++
		}
		results = append(results, res)
	}

	if updated > 0 {
		if err := batch.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit bulk stock update: %w", err)
		}
	}

	return &BulkResult{Results: results, TotalUpdated: updated}, nil
}

func (l *Ledger) stageBulkItem(ctx context.Context, batch store.WriteBatch, item BulkItem, reason, actorID string) (BulkItemResult, error) {
	fail := func(err error) BulkItemResult {
		return BulkItemResult{ProductID: item.ProductID, Error: err.Error()}
	}

	if item.Quantity < 0 {
		return fail(ErrInvalidQuantity), nil
	}

	var p catalog.Product
	ok, err := l.store.Get(ctx, store.CollectionProducts, item.ProductID, &p)
	if err != nil {
		return BulkItemResult{}, err
	}
	if !ok || !p.Active {
		return fail(catalog.ErrProductNotFound), nil
	}

	previous := p.Stock
	newStock, delta, err := nextStock(previous, item.Quantity, item.Operation)
	if err != nil {
		return fail(err), nil
	}

	p.Stock = newStock
	p.UpdatedAt = time.Now()
	batch.Put(store.CollectionProducts, p.ID, &p)
	l.appendMovement(batch, Movement{
		ProductID:     p.ID,
		PreviousStock: previous,
		NewStock:      newStock,
		Quantity:      delta,
		Operation:     item.Operation,
		Reason:        reason,
		ActorID:       actorID,
	})

	return BulkItemResult{
		ProductID:     p.ID,
		Success:       true,
		PreviousStock: previous,
		NewStock:      newStock,
	}, nil
}

// SetAlert upserts the low-stock threshold configuration for a product.
func (l *Ledger) SetAlert(ctx context.Context, productID string, threshold int, actorID string) (*Alert, error) {
	if threshold <= 0 {
		return nil, ErrInvalidQuantity
	}

	var p catalog.Product
	ok, err := l.store.Get(ctx, store.CollectionProducts, productID, &p)
	if err != nil {
		return nil, err
	}
	if !ok || !p.Active {
		return nil, catalog.ErrProductNotFound
	}

	a := &Alert{
		ProductID: productID,
		Threshold: threshold,
		Active:    true,
		UpdatedBy: actorID,
		UpdatedAt: time.Now(),
	}
	if err := l.store.Put(ctx, store.CollectionAlerts, productID, a); err != nil {
		return nil, err
	}
	return a, nil
}

// nextStock computes the post-mutation stock and the signed movement
// quantity. Decrements floor at zero but still record the full requested
// quantity.
func nextStock(current, quantity int, operation string) (newStock, delta int, err error) {
	switch operation {
	case OperationSet:
		return quantity, quantity, nil
	case OperationIncrement:
		return current + quantity, quantity, nil
	case OperationDecrement:
		newStock = current - quantity
		if newStock < 0 {
			newStock = 0
		}
		return newStock, -quantity, nil
	default:
		return 0, 0, ErrInvalidOperation
	}
}

func (l *Ledger) appendMovement(batch store.WriteBatch, m Movement) {
	m.ID = uuid.New().String()
	m.CreatedAt = time.Now()
	batch.Put(store.CollectionMovements, m.ID, &m)
}

// evaluateAlert decides whether the new stock level warrants an admin
// notification. It is fire-and-forget: every failure is logged and
// swallowed, so mutation success never depends on notification success.
func (l *Ledger) evaluateAlert(ctx context.Context, productID string, newStock int) {
	var a Alert
	ok, err := l.store.Get(ctx, store.CollectionAlerts, productID, &a)
	if err != nil {
		log.Printf("[StockLedger] Alert lookup failed for %s: %v", productID, err)
		return
	}

	threshold := DefaultAlertThreshold
	if ok {
		if !a.Active {
			return
		}
		if a.Threshold > 0 {
			threshold = a.Threshold
		}
	}

	if newStock > threshold {
		return
	}

	var p catalog.Product
	ok, err = l.store.Get(ctx, store.CollectionProducts, productID, &p)
	if err != nil || !ok {
		log.Printf("[StockLedger] Product lookup failed for alert on %s: %v", productID, err)
		return
	}

	priority := notification.PriorityMedium
	title := "Low stock warning"
	if newStock == 0 {
		priority = notification.PriorityHigh
		title = "Out of stock"
	}

	n := notification.Notification{
		Type:       notification.TypeLowStock,
		Title:      title,
		Message:    fmt.Sprintf("%s has %d units left (threshold %d)", p.Name, newStock, threshold),
		Priority:   priority,
		TargetRole: notification.RoleAdmin,
		Data: map[string]any{
			"product_id":   p.ID,
			"product_name": p.Name,
			"stock":        newStock,
			"threshold":    threshold,
		},
	}
	if err := l.notifier.Notify(ctx, n); err != nil {
		log.Printf("[StockLedger] Failed to send low stock notification for %s: %v", productID, err)
	}
}
