package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/stock"
)

// maxBulkItems caps one bulk update call.
const maxBulkItems = 50

// ReportCache holds a rendered inventory report between requests. Optional;
// without one every report request rebuilds from the store.
type ReportCache interface {
	Get(ctx context.Context) (*stock.Report, bool)
	Set(ctx context.Context, report *stock.Report)
	Invalidate(ctx context.Context)
}

type StockHandlers struct {
	ledger *stock.Ledger
	cache  ReportCache // optional
}

func NewStockHandlers(ledger *stock.Ledger, cache ReportCache) *StockHandlers {
	return &StockHandlers{ledger: ledger, cache: cache}
}

type UpdateStockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Operation string `json:"operation"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
}

// UpdateStock applies a single stock mutation.
func (h *StockHandlers) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var req UpdateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorCode(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body")
		return
	}
	if req.ProductID == "" {
		respondErrorCode(w, http.StatusBadRequest, CodeInvalidArgument, "product_id is required")
		return
	}

	result, err := h.ledger.Apply(r.Context(), stock.ApplyInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Operation: req.Operation,
		Reason:    req.Reason,
		Notes:     req.Notes,
		ActorID:   middleware.GetUserID(r.Context()),
	})
	if err != nil {
		respondError(w, err)
		return
	}

	h.invalidateReport(r.Context())
	respondSuccess(w, http.StatusOK, result)
}

type BulkUpdateStockRequest struct {
	Updates []stock.BulkItem `json:"updates"`
	Reason  string           `json:"reason"`
}

// BulkUpdateStock applies up to maxBulkItems mutations with per-item error
// isolation.
func (h *StockHandlers) BulkUpdateStock(w http.ResponseWriter, r *http.Request) {
	var req BulkUpdateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorCode(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body")
		return
	}
	if len(req.Updates) == 0 {
		respondErrorCode(w, http.StatusBadRequest, CodeInvalidArgument, "updates is required")
		return
	}
	if len(req.Updates) > maxBulkItems {
		respondErrorCode(w, http.StatusBadRequest, CodeInvalidArgument, "too many updates in one bulk request")
		return
	}

	result, err := h.ledger.BulkApply(r.Context(), req.Updates, req.Reason, middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}

	h.invalidateReport(r.Context())
	respondSuccess(w, http.StatusOK, result)
}

type SetAlertRequest struct {
	ProductID string `json:"product_id"`
	Threshold int    `json:"threshold"`
}

// SetStockAlert configures the low-stock threshold for a product.
func (h *StockHandlers) SetStockAlert(w http.ResponseWriter, r *http.Request) {
	var req SetAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorCode(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body")
		return
	}
	if req.ProductID == "" {
		respondErrorCode(w, http.StatusBadRequest, CodeInvalidArgument, "product_id is required")
		return
	}

	alert, err := h.ledger.SetAlert(r.Context(), req.ProductID, req.Threshold, middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}

	h.invalidateReport(r.Context())
	respondSuccess(w, http.StatusOK, alert)
}

// InventoryReport returns the stock status report, served from cache when
// fresh.
func (h *StockHandlers) InventoryReport(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		if report, ok := h.cache.Get(r.Context()); ok {
			respondSuccess(w, http.StatusOK, report)
			return
		}
	}

	report, err := h.ledger.BuildReport(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	if h.cache != nil {
		h.cache.Set(r.Context(), report)
	}
	respondSuccess(w, http.StatusOK, report)
}

// StockMovements returns the audit trail for one product, newest first.
func (h *StockHandlers) StockMovements(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		respondErrorCode(w, http.StatusBadRequest, CodeInvalidArgument, "product_id is required")
		return
	}

	movements, err := h.ledger.Movements(r.Context(), productID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, movements)
}

func (h *StockHandlers) invalidateReport(ctx context.Context) {
	if h.cache != nil {
		h.cache.Invalidate(ctx)
	}
}
