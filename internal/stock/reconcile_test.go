package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/order"
)

func testOrder(id string, items ...order.Item) order.Order {
	return order.Order{ID: id, UserID: "u1", Items: items, Status: order.StatusPending}
}

func orderLine(productID string, quantity int) order.Item {
	return order.Item{ProductID: productID, Quantity: quantity, Price: 25.0}
}

func TestLedger_ApplyOrderPlaced(t *testing.T) {
	ledger, ds, notifier := newTestLedger(t)
	seedProduct(t, ds, "p1", 50)
	seedProduct(t, ds, "p2", 8)

	o := testOrder("o1", orderLine("p1", 3), orderLine("p2", 2))
	require.NoError(t, ledger.ApplyOrderPlaced(context.Background(), o))

	assert.Equal(t, 47, productStock(t, ds, "p1"))
	assert.Equal(t, 6, productStock(t, ds, "p2"))

	movements := listMovements(t, ds)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, OperationDecrement, m.Operation)
		assert.Equal(t, ReasonOrderPlaced, m.Reason)
		assert.Equal(t, "o1", m.OrderID)
		assert.Equal(t, SystemActor, m.ActorID)
	}

	// p2 dropped to 6, below the default threshold.
	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, "p2", notifier.notifications[0].Data["product_id"])
}

func TestLedger_ApplyOrderPlaced_ClampsAtZero(t *testing.T) {
	ledger, ds, _ := newTestLedger(t)
	seedProduct(t, ds, "p1", 2)

	o := testOrder("o1", orderLine("p1", 5))
	require.NoError(t, ledger.ApplyOrderPlaced(context.Background(), o))

	assert.Equal(t, 0, productStock(t, ds, "p1"))

	movements := listMovements(t, ds)
	require.Len(t, movements, 1)
	assert.Equal(t, -5, movements[0].Quantity)
	assert.Equal(t, 0, movements[0].NewStock)
}

func TestLedger_ApplyOrderPlaced_SkipsUnknownProducts(t *testing.T) {
	ledger, ds, _ := newTestLedger(t)
	seedProduct(t, ds, "p1", 10)

	o := testOrder("o1", orderLine("ghost", 2), orderLine("p1", 1))
	require.NoError(t, ledger.ApplyOrderPlaced(context.Background(), o))

	assert.Equal(t, 9, productStock(t, ds, "p1"))
	assert.Len(t, listMovements(t, ds), 1)
}

func TestLedger_ApplyOrderPlaced_EmptyOrderNoWrites(t *testing.T) {
	ledger, ds, _ := newTestLedger(t)

	require.NoError(t, ledger.ApplyOrderPlaced(context.Background(), testOrder("o1")))
	assert.Empty(t, listMovements(t, ds))
}

func TestLedger_RestoreOrderCancelled(t *testing.T) {
	ledger, ds, notifier := newTestLedger(t)
	seedProduct(t, ds, "p1", 5)

	o := testOrder("o1", orderLine("p1", 3))
	require.NoError(t, ledger.RestoreOrderCancelled(context.Background(), o))

	assert.Equal(t, 8, productStock(t, ds, "p1"))

	movements := listMovements(t, ds)
	require.Len(t, movements, 1)
	assert.Equal(t, OperationIncrement, movements[0].Operation)
	assert.Equal(t, ReasonOrderCancelled, movements[0].Reason)
	assert.Equal(t, 3, movements[0].Quantity)
	assert.Equal(t, "o1", movements[0].OrderID)

	// Restoration only raises stock, so it never evaluates alerts even
	// when the level is still below threshold.
	assert.Empty(t, notifier.notifications)
}

func productStock(t *testing.T, ds *store.MemoryStore, id string) int {
	t.Helper()
	var p catalog.Product
	ok, err := ds.Get(context.Background(), store.CollectionProducts, id, &p)
	require.NoError(t, err)
	require.True(t, ok)
	return p.Stock
}
