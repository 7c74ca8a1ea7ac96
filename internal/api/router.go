package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/user"
)

type RouterConfig struct {
	Handlers     *Handlers
	StockHandler *StockHandlers
	AuthHandler  *AuthHandlers
	Restock      *RestockHandlers
	JWT          *auth.JWTService
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	authed := middleware.AuthMiddleware(cfg.JWT)
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(user.RoleAdmin)(h))
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Auth
	mux.HandleFunc("/auth/register", methodOnly(http.MethodPost, cfg.AuthHandler.Register))
	mux.HandleFunc("/auth/login", methodOnly(http.MethodPost, cfg.AuthHandler.Login))
	mux.HandleFunc("/auth/logout", methodOnly(http.MethodPost, cfg.AuthHandler.Logout))
	mux.Handle("/auth/me", authed(http.HandlerFunc(cfg.AuthHandler.Me)))

	// Products: browsing is public, mutations are admin.
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg.Handlers.GetProducts(w, r)
		case http.MethodPost:
			adminOnly(cfg.Handlers.CreateProduct).ServeHTTP(w, r)
		default:
			methodNotAllowed(w)
		}
	})
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg.Handlers.GetProduct(w, r)
		case http.MethodPut:
			adminOnly(cfg.Handlers.UpdateProduct).ServeHTTP(w, r)
		case http.MethodDelete:
			adminOnly(cfg.Handlers.DeleteProduct).ServeHTTP(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	// Cart
	mux.Handle("/cart", authed(methodOnly(http.MethodGet, cfg.Handlers.GetCart)))
	mux.Handle("/cart/items", authed(methodOnly(http.MethodPost, cfg.Handlers.AddToCart)))
	mux.Handle("/cart/items/", authed(methodOnly(http.MethodDelete, cfg.Handlers.RemoveFromCart)))

	// Orders
	mux.Handle("/orders", authed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg.Handlers.GetOrders(w, r)
		case http.MethodPost:
			cfg.Handlers.PlaceOrder(w, r)
		default:
			methodNotAllowed(w)
		}
	})))
	mux.Handle("/orders/", authed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/cancel") && r.Method == http.MethodPost:
			cfg.Handlers.CancelOrder(w, r)
		case r.Method == http.MethodGet:
			cfg.Handlers.GetOrder(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	// Restock requests: any authenticated user may file one.
	mux.Handle("/restock-requests", authed(methodOnly(http.MethodPost, cfg.Restock.CreateRestockRequest)))

	// Admin: stock ledger
	mux.Handle("/admin/stock", adminOnly(methodOnly(http.MethodPost, cfg.StockHandler.UpdateStock)))
	mux.Handle("/admin/stock/bulk", adminOnly(methodOnly(http.MethodPost, cfg.StockHandler.BulkUpdateStock)))
	mux.Handle("/admin/stock/alerts", adminOnly(methodOnly(http.MethodPost, cfg.StockHandler.SetStockAlert)))
	mux.Handle("/admin/stock/movements", adminOnly(methodOnly(http.MethodGet, cfg.StockHandler.StockMovements)))
	mux.Handle("/admin/inventory/report", adminOnly(methodOnly(http.MethodGet, cfg.StockHandler.InventoryReport)))

	// Admin: notifications
	mux.Handle("/admin/notifications", adminOnly(methodOnly(http.MethodGet, cfg.Handlers.GetNotifications)))
	mux.Handle("/admin/notifications/", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/read") && r.Method == http.MethodPost {
			cfg.Handlers.MarkNotificationRead(w, r)
			return
		}
		methodNotAllowed(w)
	}))

	return withLogging(mux)
}

func methodOnly(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			methodNotAllowed(w)
			return
		}
		h(w, r)
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	respondErrorCode(w, http.StatusMethodNotAllowed, CodeInvalidArgument, "method not allowed")
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
