package restock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/notification"
)

type fakeNotifier struct {
	notifications []notification.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n notification.Notification) error {
	f.notifications = append(f.notifications, n)
	return nil
}

func newTestService(t *testing.T) (*Service, *store.MemoryStore, *fakeNotifier) {
	t.Helper()
	ds := store.NewMemoryStore()
	notifier := &fakeNotifier{}
	return NewService(ds, notifier), ds, notifier
}

func seedProduct(t *testing.T, ds *store.MemoryStore, id string, active bool) {
	t.Helper()
	p := catalog.Product{ID: id, Name: "Widget", Price: 20, SalePrice: 20, Stock: 2, Active: active}
	require.NoError(t, ds.Put(context.Background(), store.CollectionProducts, id, &p))
}

func TestService_Create(t *testing.T) {
	svc, ds, notifier := newTestService(t)
	seedProduct(t, ds, "p1", true)

	r, err := svc.Create(context.Background(), CreateInput{
		ProductID:         "p1",
		RequestedQuantity: 50,
		Priority:          PriorityNormal,
		Notes:             "running low before weekend",
		RequestedBy:       "u1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "Widget", r.ProductName)
	assert.Equal(t, "open", r.Status)

	require.Len(t, notifier.notifications, 1)
	n := notifier.notifications[0]
	assert.Equal(t, notification.TypeRestockRequest, n.Type)
	assert.Equal(t, notification.PriorityMedium, n.Priority)
	assert.Equal(t, notification.RoleAdmin, n.TargetRole)
	assert.Equal(t, "running low before weekend", n.Data["notes"])
}

func TestService_Create_UrgentEscalatesPriority(t *testing.T) {
	svc, ds, notifier := newTestService(t)
	seedProduct(t, ds, "p1", true)

	_, err := svc.Create(context.Background(), CreateInput{
		ProductID:         "p1",
		RequestedQuantity: 10,
		Priority:          PriorityUrgent,
	})
	require.NoError(t, err)

	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, notification.PriorityHigh, notifier.notifications[0].Priority)
}

func TestService_Create_Validation(t *testing.T) {
	svc, ds, _ := newTestService(t)
	seedProduct(t, ds, "p1", true)
	seedProduct(t, ds, "p2", false)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{ProductID: "p1", RequestedQuantity: 0, Priority: PriorityLow})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Create(ctx, CreateInput{ProductID: "p1", RequestedQuantity: 5, Priority: "asap"})
	assert.ErrorIs(t, err, ErrInvalidPriority)

	_, err = svc.Create(ctx, CreateInput{ProductID: "missing", RequestedQuantity: 5, Priority: PriorityLow})
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	_, err = svc.Create(ctx, CreateInput{ProductID: "p2", RequestedQuantity: 5, Priority: PriorityLow})
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}
