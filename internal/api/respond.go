package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/notification"
	"github.com/example/storefront/internal/order"
	"github.com/example/storefront/internal/restock"
	"github.com/example/storefront/internal/stock"
	"github.com/example/storefront/internal/user"
)

// Error kinds surfaced to clients.
const (
	CodeUnauthenticated  = "unauthenticated"
	CodePermissionDenied = "permission-denied"
	CodeNotFound         = "not-found"
	CodeInvalidArgument  = "invalid-argument"
	CodeInternal         = "internal"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondSuccess flattens payload into an object carrying the success flag.
// Callers key toast behavior off that flag, so mutation and report responses
// all carry it.
func respondSuccess(w http.ResponseWriter, status int, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		respondError(w, err)
		return
	}
	body := map[string]any{}
	if err := json.Unmarshal(raw, &body); err != nil {
		respondError(w, err)
		return
	}
	body["success"] = true
	respondJSON(w, status, body)
}

func respondErrorCode(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Success: false, Code: code, Error: message})
}

// respondError maps domain errors to HTTP status and error kind. Unknown
// errors are logged server-side and reported as internal without leaking
// detail.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, notification.ErrNotificationNotFound),
		errors.Is(err, user.ErrUserNotFound):
		respondErrorCode(w, http.StatusNotFound, CodeNotFound, err.Error())

	case errors.Is(err, stock.ErrInvalidOperation),
		errors.Is(err, stock.ErrInvalidQuantity),
		errors.Is(err, catalog.ErrInvalidProduct),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrOrderNotCancelable),
		errors.Is(err, restock.ErrInvalidPriority),
		errors.Is(err, restock.ErrInvalidQuantity),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, user.ErrEmailTaken):
		respondErrorCode(w, http.StatusBadRequest, CodeInvalidArgument, err.Error())

	case errors.Is(err, user.ErrInvalidCredentials):
		respondErrorCode(w, http.StatusUnauthorized, CodeUnauthenticated, err.Error())

	default:
		log.Printf("[API] Internal error: %v", err)
		respondErrorCode(w, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}
