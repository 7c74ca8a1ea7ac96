package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/notification"
	"github.com/example/storefront/internal/order"
	"github.com/example/storefront/internal/restock"
)

type Handlers struct {
	catalog       *catalog.Service
	carts         *cart.Service
	orders        *order.Service
	notifications *notification.Service
}

func NewHandlers(catalogSvc *catalog.Service, carts *cart.Service, orders *order.Service, notifications *notification.Service) *Handlers {
	return &Handlers{
		catalog:       catalogSvc,
		carts:         carts,
		orders:        orders,
		notifications: notifications,
	}
}

// Product handlers

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondErrorCode(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body")
		return
	}

	p, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListActive(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	var in catalog.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondErrorCode(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body")
		return
	}

	p, err := h.catalog.Update(r.Context(), id, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	if err := h.catalog.Deactivate(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "product deactivated"})
}

// Cart handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorCode(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body")
		return
	}

	c, err := h.carts.AddItem(r.Context(), middleware.GetUserID(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID := extractPathParam(r.URL.Path, "/cart/items/")
	c, err := h.carts.RemoveItem(r.Context(), middleware.GetUserID(r.Context()), productID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// Order handlers

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Place(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/cancel")

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if o.UserID != middleware.GetUserID(r.Context()) && !isAdmin(r) {
		respondErrorCode(w, http.StatusForbidden, CodePermissionDenied, "not your order")
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/cancel")

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if o.UserID != middleware.GetUserID(r.Context()) && !isAdmin(r) {
		respondErrorCode(w, http.StatusForbidden, CodePermissionDenied, "not your order")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	cancelled, err := h.orders.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cancelled)
}

// Restock request handlers

type RestockHandlers struct {
	restock *restock.Service
}

func NewRestockHandlers(svc *restock.Service) *RestockHandlers {
	return &RestockHandlers{restock: svc}
}

type RestockRequestResponse struct {
	RequestID         string `json:"request_id"`
	ProductID         string `json:"product_id"`
	RequestedQuantity int    `json:"requested_quantity"`
	Priority          string `json:"priority"`
	Status            string `json:"status"`
}

func (h *RestockHandlers) CreateRestockRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID         string `json:"product_id"`
		RequestedQuantity int    `json:"requested_quantity"`
		Priority          string `json:"priority"`
		Notes             string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorCode(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body")
		return
	}

	created, err := h.restock.Create(r.Context(), restock.CreateInput{
		ProductID:         req.ProductID,
		RequestedQuantity: req.RequestedQuantity,
		Priority:          req.Priority,
		Notes:             req.Notes,
		RequestedBy:       middleware.GetUserID(r.Context()),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, RestockRequestResponse{
		RequestID:         created.ID,
		ProductID:         created.ProductID,
		RequestedQuantity: created.RequestedQuantity,
		Priority:          created.Priority,
		Status:            created.Status,
	})
}

// Notification handlers

func (h *Handlers) GetNotifications(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetUserFromContext(r.Context())
	notifications, err := h.notifications.List(r.Context(), claims.Role)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/admin/notifications/"), "/read")
	if err := h.notifications.MarkRead(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "notification marked read"})
}

// Helpers

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

func isAdmin(r *http.Request) bool {
	claims, ok := middleware.GetUserFromContext(r.Context())
	return ok && claims.Role == "admin"
}
