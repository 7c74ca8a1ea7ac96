package reconcile

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/notification"
	"github.com/example/storefront/internal/order"
	"github.com/example/storefront/internal/stock"
)

func newTestHandler(t *testing.T) (*Handler, *store.MemoryStore) {
	t.Helper()
	ds := store.NewMemoryStore()
	ledger := stock.NewLedger(ds, notification.NewService(ds, nil))
	return NewHandler(ledger), ds
}

func seedProduct(t *testing.T, ds *store.MemoryStore, id string, stockLevel int) {
	t.Helper()
	p := catalog.Product{ID: id, Name: "Widget", Price: 20, SalePrice: 20, Stock: stockLevel, Active: true}
	require.NoError(t, ds.Put(context.Background(), store.CollectionProducts, id, &p))
}

func productStock(t *testing.T, ds *store.MemoryStore, id string) int {
	t.Helper()
	var p catalog.Product
	ok, err := ds.Get(context.Background(), store.CollectionProducts, id, &p)
	require.NoError(t, err)
	require.True(t, ok)
	return p.Stock
}

func encodeEvent(t *testing.T, eventType string, data any) []byte {
	t.Helper()
	env, err := order.NewEnvelope(eventType, data)
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return raw
}

func TestHandler_HandleEvent_OrderCreated(t *testing.T) {
	handler, ds := newTestHandler(t)
	seedProduct(t, ds, "p1", 50)

	o := order.Order{
		ID:     "o1",
		UserID: "u1",
		Items:  []order.Item{{ProductID: "p1", Quantity: 4, Price: 20}},
		Status: order.StatusPending,
	}
	value := encodeEvent(t, order.EventOrderCreated, order.OrderCreated{Order: o})

	require.NoError(t, handler.HandleEvent(context.Background(), []byte("o1"), value))
	assert.Equal(t, 46, productStock(t, ds, "p1"))
}

func TestHandler_HandleEvent_CancellationRestores(t *testing.T) {
	handler, ds := newTestHandler(t)
	seedProduct(t, ds, "p1", 46)

	items := []order.Item{{ProductID: "p1", Quantity: 4, Price: 20}}
	value := encodeEvent(t, order.EventOrderStatusChanged, order.OrderStatusChanged{
		OrderID:        "o1",
		UserID:         "u1",
		PreviousStatus: order.StatusPending,
		NewStatus:      order.StatusCancelled,
		Items:          items,
	})

	require.NoError(t, handler.HandleEvent(context.Background(), []byte("o1"), value))
	assert.Equal(t, 50, productStock(t, ds, "p1"))
}

func TestHandler_HandleEvent_NonCancellationTransitionIgnored(t *testing.T) {
	handler, ds := newTestHandler(t)
	seedProduct(t, ds, "p1", 46)

	value := encodeEvent(t, order.EventOrderStatusChanged, order.OrderStatusChanged{
		OrderID:        "o1",
		PreviousStatus: order.StatusPending,
		NewStatus:      order.StatusConfirmed,
		Items:          []order.Item{{ProductID: "p1", Quantity: 4}},
	})

	require.NoError(t, handler.HandleEvent(context.Background(), []byte("o1"), value))
	assert.Equal(t, 46, productStock(t, ds, "p1"))
}

func TestHandler_HandleEvent_CancelledToCancelledIsNoOp(t *testing.T) {
	handler, ds := newTestHandler(t)
	seedProduct(t, ds, "p1", 46)

	value := encodeEvent(t, order.EventOrderStatusChanged, order.OrderStatusChanged{
		OrderID:        "o1",
		PreviousStatus: order.StatusCancelled,
		NewStatus:      order.StatusCancelled,
		Items:          []order.Item{{ProductID: "p1", Quantity: 4}},
	})

	require.NoError(t, handler.HandleEvent(context.Background(), []byte("o1"), value))
	assert.Equal(t, 46, productStock(t, ds, "p1"), "repeat cancellation must not restore twice")
}

func TestHandler_HandleEvent_MalformedPayload(t *testing.T) {
	handler, _ := newTestHandler(t)
	err := handler.HandleEvent(context.Background(), []byte("o1"), []byte("not json"))
	assert.Error(t, err)
}

func TestHandler_HandleChange(t *testing.T) {
	placed := &order.Order{
		ID:     "o1",
		Items:  []order.Item{{ProductID: "p1", Quantity: 4}},
		Status: order.StatusPending,
	}
	cancelled := *placed
	cancelled.Status = order.StatusCancelled

	t.Run("insert decrements", func(t *testing.T) {
		handler, ds := newTestHandler(t)
		seedProduct(t, ds, "p1", 50)

		require.NoError(t, handler.HandleChange(context.Background(), nil, placed))
		assert.Equal(t, 46, productStock(t, ds, "p1"))
	})

	t.Run("cancellation edge restores once", func(t *testing.T) {
		handler, ds := newTestHandler(t)
		seedProduct(t, ds, "p1", 46)

		require.NoError(t, handler.HandleChange(context.Background(), placed, &cancelled))
		assert.Equal(t, 50, productStock(t, ds, "p1"))

		// Replaying the already-cancelled state must not restore again.
		require.NoError(t, handler.HandleChange(context.Background(), &cancelled, &cancelled))
		assert.Equal(t, 50, productStock(t, ds, "p1"))
	})

	t.Run("remove is ignored", func(t *testing.T) {
		handler, ds := newTestHandler(t)
		seedProduct(t, ds, "p1", 46)

		require.NoError(t, handler.HandleChange(context.Background(), placed, nil))
		assert.Equal(t, 46, productStock(t, ds, "p1"))
	})
}
