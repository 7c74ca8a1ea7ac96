package order

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/infrastructure/store"
)

type publishedEvent struct {
	key      string
	envelope Envelope
}

type fakePublisher struct {
	events []publishedEvent
}

func (f *fakePublisher) Publish(_ context.Context, key string, event any) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	f.events = append(f.events, publishedEvent{key: key, envelope: env})
	return nil
}

func newTestService(t *testing.T) (*Service, *store.MemoryStore, *fakePublisher) {
	t.Helper()
	ds := store.NewMemoryStore()
	pub := &fakePublisher{}
	return NewService(ds, pub), ds, pub
}

func seedCatalogAndCart(t *testing.T, ds *store.MemoryStore, userID string) {
	t.Helper()
	ctx := context.Background()

	p := catalog.Product{ID: "p1", Name: "Widget", Price: 30, SalePrice: 25, Stock: 10, Active: true}
	require.NoError(t, ds.Put(ctx, store.CollectionProducts, p.ID, &p))

	c := cart.Cart{
		ID:     cart.CartID(userID),
		UserID: userID,
		Items:  []cart.Item{{ProductID: "p1", Name: "Widget", Quantity: 2, Price: 25}},
		Total:  50,
	}
	require.NoError(t, ds.Put(ctx, store.CollectionCarts, c.ID, &c))
}

func TestService_Place(t *testing.T) {
	svc, ds, pub := newTestService(t)
	seedCatalogAndCart(t, ds, "u1")
	ctx := context.Background()

	o, err := svc.Place(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, StatusPending, o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, 25.0, o.Items[0].Price, "order captures the current sale price")
	assert.Equal(t, 50.0, o.Total)

	// Cart is consumed in the same commit as the order write.
	ok, err := ds.Get(ctx, store.CollectionCarts, cart.CartID("u1"), &cart.Cart{})
	require.NoError(t, err)
	assert.False(t, ok)

	require.Len(t, pub.events, 1)
	assert.Equal(t, EventOrderCreated, pub.events[0].envelope.EventType)
	assert.Equal(t, o.ID, pub.events[0].key)
}

func TestService_Place_EmptyCart(t *testing.T) {
	svc, _, pub := newTestService(t)

	_, err := svc.Place(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Empty(t, pub.events)
}

func TestService_Cancel(t *testing.T) {
	svc, ds, pub := newTestService(t)
	seedCatalogAndCart(t, ds, "u1")
	ctx := context.Background()

	o, err := svc.Place(ctx, "u1")
	require.NoError(t, err)
	pub.events = nil

	cancelled, err := svc.Cancel(ctx, o.ID, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, "changed my mind", cancelled.CancelReason)

	require.Len(t, pub.events, 1)
	assert.Equal(t, EventOrderStatusChanged, pub.events[0].envelope.EventType)

	var e OrderStatusChanged
	require.NoError(t, json.Unmarshal(pub.events[0].envelope.Data, &e))
	assert.Equal(t, StatusPending, e.PreviousStatus)
	assert.Equal(t, StatusCancelled, e.NewStatus)
	assert.Len(t, e.Items, 1)
}

func TestService_Cancel_AlreadyCancelledIsNoOp(t *testing.T) {
	svc, ds, pub := newTestService(t)
	seedCatalogAndCart(t, ds, "u1")
	ctx := context.Background()

	o, err := svc.Place(ctx, "u1")
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, o.ID, "first")
	require.NoError(t, err)
	pub.events = nil

	again, err := svc.Cancel(ctx, o.ID, "second")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, again.Status)
	assert.Equal(t, "first", again.CancelReason, "repeat cancellation changes nothing")
	assert.Empty(t, pub.events, "repeat cancellation must not publish another event")
}

func TestService_Cancel_ShippedNotCancelable(t *testing.T) {
	svc, ds, _ := newTestService(t)
	ctx := context.Background()

	o := Order{ID: "o1", UserID: "u1", Status: StatusShipped}
	require.NoError(t, ds.Put(ctx, store.CollectionOrders, o.ID, &o))

	_, err := svc.Cancel(ctx, "o1", "")
	assert.ErrorIs(t, err, ErrOrderNotCancelable)
}

func TestService_Cancel_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Cancel(context.Background(), "missing", "")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestService_ListByUser_NewestFirst(t *testing.T) {
	svc, ds, _ := newTestService(t)
	ctx := context.Background()

	for i, id := range []string{"o1", "o2", "o3"} {
		o := Order{ID: id, UserID: "u1", Status: StatusPending}
		o.CreatedAt = o.CreatedAt.AddDate(0, 0, i) // zero time plus i days
		require.NoError(t, ds.Put(ctx, store.CollectionOrders, id, &o))
	}
	other := Order{ID: "ox", UserID: "u2", Status: StatusPending}
	require.NoError(t, ds.Put(ctx, store.CollectionOrders, "ox", &other))

	orders, err := svc.ListByUser(ctx, "u1")
	require.NoError(t, err)

	require.Len(t, orders, 3)
	assert.Equal(t, "o3", orders[0].ID)
	assert.Equal(t, "o1", orders[2].ID)
}
