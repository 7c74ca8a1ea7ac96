package order

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/infrastructure/store"
)

// EventPublisher publishes order events to the bus. Satisfied by
// kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Service owns order documents. It never touches stock: order writes
// publish events (local mode) or surface on the document stream (cloud
// mode), and the stock triggers react to those. A publish failure is
// therefore logged, never rolled back into the order write.
type Service struct {
	store     store.DocumentStore
	publisher EventPublisher // optional
}

func NewService(ds store.DocumentStore, publisher EventPublisher) *Service {
	return &Service{store: ds, publisher: publisher}
}

// Place creates an order from the user's cart and clears the cart in the
// same batch.
func (s *Service) Place(ctx context.Context, userID string) (*Order, error) {
	cartID := cart.CartID(userID)
	var c cart.Cart
	ok, err := s.store.Get(ctx, store.CollectionCarts, cartID, &c)
	if err != nil {
		return nil, err
	}
	if !ok || len(c.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	items := make([]Item, 0, len(c.Items))
	total := 0.0
	for _, ci := range c.Items {
		var p catalog.Product
		ok, err := s.store.Get(ctx, store.CollectionProducts, ci.ProductID, &p)
		if err != nil {
			return nil, err
		}
		if !ok || !p.Active {
			return nil, catalog.ErrProductNotFound
		}
		items = append(items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  ci.Quantity,
			Price:     p.SalePrice,
		})
		total += p.SalePrice * float64(ci.Quantity)
	}

	now := time.Now()
	o := &Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Items:     items,
		Total:     total,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	batch := s.store.NewBatch()
	batch.Put(store.CollectionOrders, o.ID, o)
	batch.Delete(store.CollectionCarts, cartID)
	if err := batch.Commit(ctx); err != nil {
		return nil, err
	}

	s.publish(ctx, o.ID, EventOrderCreated, OrderCreated{Order: *o})
	return o, nil
}

// Cancel transitions an order to cancelled. Cancelling an already-cancelled
// order is a no-op so the restoration trigger fires at most once per order.
func (s *Service) Cancel(ctx context.Context, orderID, reason string) (*Order, error) {
	var o Order
	ok, err := s.store.Get(ctx, store.CollectionOrders, orderID, &o)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrderNotFound
	}
	if o.Status == StatusCancelled {
		return &o, nil
	}
	if o.Status == StatusShipped || o.Status == StatusDelivered {
		return nil, ErrOrderNotCancelable
	}

	previous := o.Status
	o.Status = StatusCancelled
	o.CancelReason = reason
	o.UpdatedAt = time.Now()
	if err := s.store.Put(ctx, store.CollectionOrders, o.ID, &o); err != nil {
		return nil, err
	}

	s.publish(ctx, o.ID, EventOrderStatusChanged, OrderStatusChanged{
		OrderID:        o.ID,
		UserID:         o.UserID,
		PreviousStatus: previous,
		NewStatus:      StatusCancelled,
		Items:          o.Items,
	})
	return &o, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	ok, err := s.store.Get(ctx, store.CollectionOrders, orderID, &o)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

// ListByUser returns a user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	raw, err := s.store.List(ctx, store.CollectionOrders)
	if err != nil {
		return nil, err
	}

	orders := make([]*Order, 0)
	for _, doc := range raw {
		var o Order
		if err := json.Unmarshal(doc, &o); err != nil {
			continue
		}
		if o.UserID == userID {
			orders = append(orders, &o)
		}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *Service) publish(ctx context.Context, key, eventType string, data any) {
	if s.publisher == nil {
		return
	}
	env, err := NewEnvelope(eventType, data)
	if err != nil {
		log.Printf("[Order] Failed to encode %s event for %s: %v", eventType, key, err)
		return
	}
	if err := s.publisher.Publish(ctx, key, env); err != nil {
		log.Printf("[Order] Failed to publish %s event for %s: %v", eventType, key, err)
	}
}
