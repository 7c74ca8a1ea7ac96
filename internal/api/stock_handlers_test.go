package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/notification"
	"github.com/example/storefront/internal/stock"
)

func newTestStockHandlers(t *testing.T) (*StockHandlers, *store.MemoryStore) {
	t.Helper()
	ds := store.NewMemoryStore()
	ledger := stock.NewLedger(ds, notification.NewService(ds, nil))
	return NewStockHandlers(ledger, nil), ds
}

func seedProduct(t *testing.T, ds *store.MemoryStore, id string, stockLevel int) {
	t.Helper()
	p := catalog.Product{ID: id, Name: "Widget", Price: 20, SalePrice: 20, Stock: stockLevel, Active: true}
	require.NoError(t, ds.Put(context.Background(), store.CollectionProducts, id, &p))
}

func adminRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	claims := &auth.Claims{UserID: "admin-1", Email: "admin@example.com", Role: "admin"}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
}

func TestStockHandlers_UpdateStock(t *testing.T) {
	handlers, ds := newTestStockHandlers(t)
	seedProduct(t, ds, "p1", 10)

	req := adminRequest(http.MethodPost, "/admin/stock", `{"product_id":"p1","quantity":4,"operation":"decrement","reason":"Damaged"}`)
	rec := httptest.NewRecorder()
	handlers.UpdateStock(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	var result stock.ApplyResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 10, result.PreviousStock)
	assert.Equal(t, 6, result.NewStock)
}

func TestStockHandlers_UpdateStock_Errors(t *testing.T) {
	handlers, ds := newTestStockHandlers(t)
	seedProduct(t, ds, "p1", 10)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantKind string
	}{
		{"missing product_id", `{"quantity":1,"operation":"set"}`, http.StatusBadRequest, CodeInvalidArgument},
		{"unknown product", `{"product_id":"nope","quantity":1,"operation":"set"}`, http.StatusNotFound, CodeNotFound},
		{"bad operation", `{"product_id":"p1","quantity":1,"operation":"double"}`, http.StatusBadRequest, CodeInvalidArgument},
		{"negative quantity", `{"product_id":"p1","quantity":-1,"operation":"set"}`, http.StatusBadRequest, CodeInvalidArgument},
		{"malformed body", `{`, http.StatusBadRequest, CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlers.UpdateStock(rec, adminRequest(http.MethodPost, "/admin/stock", tt.body))

			assert.Equal(t, tt.wantCode, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantKind, resp.Code)
		})
	}
}

func TestStockHandlers_BulkUpdateStock(t *testing.T) {
	handlers, ds := newTestStockHandlers(t)
	seedProduct(t, ds, "p1", 10)

	body := `{"updates":[{"product_id":"p1","quantity":5,"operation":"increment"},{"product_id":"nope","quantity":1,"operation":"set"}],"reason":"Recount"}`
	rec := httptest.NewRecorder()
	handlers.BulkUpdateStock(rec, adminRequest(http.MethodPost, "/admin/stock/bulk", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	var result stock.BulkResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.TotalUpdated)
	require.Len(t, result.Results, 2)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
}

func TestStockHandlers_BulkUpdateStock_TooManyItems(t *testing.T) {
	handlers, _ := newTestStockHandlers(t)

	updates := make([]string, maxBulkItems+1)
	for i := range updates {
		updates[i] = `{"product_id":"p1","quantity":1,"operation":"set"}`
	}
	body := `{"updates":[` + strings.Join(updates, ",") + `]}`

	rec := httptest.NewRecorder()
	handlers.BulkUpdateStock(rec, adminRequest(http.MethodPost, "/admin/stock/bulk", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "too many updates")
}

func TestStockHandlers_SetStockAlert(t *testing.T) {
	handlers, ds := newTestStockHandlers(t)
	seedProduct(t, ds, "p1", 10)

	rec := httptest.NewRecorder()
	handlers.SetStockAlert(rec, adminRequest(http.MethodPost, "/admin/stock/alerts", `{"product_id":"p1","threshold":20}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	var alert stock.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alert))
	assert.Equal(t, 20, alert.Threshold)
	assert.True(t, alert.Active)
	assert.Equal(t, "admin-1", alert.UpdatedBy)
}

func TestStockHandlers_InventoryReport(t *testing.T) {
	handlers, ds := newTestStockHandlers(t)
	seedProduct(t, ds, "p1", 0)
	seedProduct(t, ds, "p2", 100)

	rec := httptest.NewRecorder()
	handlers.InventoryReport(rec, adminRequest(http.MethodGet, "/admin/inventory/report", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	var report stock.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Summary.TotalProducts)
	assert.Equal(t, 1, report.Summary.OutOfStock)
}

func TestStockHandlers_StockMovements(t *testing.T) {
	handlers, ds := newTestStockHandlers(t)
	seedProduct(t, ds, "p1", 10)

	rec := httptest.NewRecorder()
	handlers.UpdateStock(rec, adminRequest(http.MethodPost, "/admin/stock", `{"product_id":"p1","quantity":2,"operation":"decrement"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handlers.StockMovements(rec, adminRequest(http.MethodGet, "/admin/stock/movements?product_id=p1", ""))

	require.Equal(t, http.StatusOK, rec.Code)

	var movements []stock.Movement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movements))
	require.Len(t, movements, 1)
	assert.Equal(t, -2, movements[0].Quantity)
	assert.Equal(t, "admin-1", movements[0].ActorID)
}

func TestStockHandlers_StockMovements_RequiresProductID(t *testing.T) {
	handlers, _ := newTestStockHandlers(t)

	rec := httptest.NewRecorder()
	handlers.StockMovements(rec, adminRequest(http.MethodGet, "/admin/stock/movements", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "product_id")
}
