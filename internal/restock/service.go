package restock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/notification"
)

// Request priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

var (
	ErrInvalidPriority = errors.New("unknown restock priority")
	ErrInvalidQuantity = errors.New("requested quantity must be positive")
)

// Request asks an admin to reorder stock for a product. Any authenticated
// user may file one.
type Request struct {
	ID                string    `json:"id"`
	ProductID         string    `json:"product_id"`
	ProductName       string    `json:"product_name"`
	RequestedQuantity int       `json:"requested_quantity"`
	Priority          string    `json:"priority"`
	Notes             string    `json:"notes,omitempty"`
	Status            string    `json:"status"`
	RequestedBy       string    `json:"requested_by"`
	CreatedAt         time.Time `json:"created_at"`
}

// Notifier delivers the admin heads-up for a new request.
type Notifier interface {
	Notify(ctx context.Context, n notification.Notification) error
}

type Service struct {
	store    store.DocumentStore
	notifier Notifier
}

func NewService(ds store.DocumentStore, notifier Notifier) *Service {
	return &Service{store: ds, notifier: notifier}
}

type CreateInput struct {
	ProductID         string
	RequestedQuantity int
	Priority          string
	Notes             string
	RequestedBy       string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Request, error) {
	if in.RequestedQuantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	switch in.Priority {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
	default:
		return nil, ErrInvalidPriority
	}

	var p catalog.Product
	ok, err := s.store.Get(ctx, store.CollectionProducts, in.ProductID, &p)
	if err != nil {
		return nil, err
	}
	if !ok || !p.Active {
		return nil, catalog.ErrProductNotFound
	}

	r := &Request{
		ID:                uuid.New().String(),
		ProductID:         p.ID,
		ProductName:       p.Name,
		RequestedQuantity: in.RequestedQuantity,
		Priority:          in.Priority,
		Notes:             in.Notes,
		Status:            "open",
		RequestedBy:       in.RequestedBy,
		CreatedAt:         time.Now(),
	}
	if err := s.store.Put(ctx, store.CollectionRestockRequests, r.ID, r); err != nil {
		return nil, err
	}

	s.notifyAdmins(ctx, r)
	return r, nil
}

// notifyAdmins is best-effort, like the ledger's alert path.
func (s *Service) notifyAdmins(ctx context.Context, r *Request) {
	priority := notification.PriorityMedium
	if r.Priority == PriorityUrgent {
		priority = notification.PriorityHigh
	}

	err := s.notifier.Notify(ctx, notification.Notification{
		Type:       notification.TypeRestockRequest,
		Title:      "Restock requested",
		Message:    fmt.Sprintf("%d units of %s requested (%s priority)", r.RequestedQuantity, r.ProductName, r.Priority),
		Priority:   priority,
		TargetRole: notification.RoleAdmin,
		Data: map[string]any{
			"request_id":         r.ID,
			"product_id":         r.ProductID,
			"product_name":       r.ProductName,
			"requested_quantity": r.RequestedQuantity,
			"priority":           r.Priority,
			"notes":              r.Notes,
		},
	})
	if err != nil {
		log.Printf("[Restock] Failed to notify admins about request %s: %v", r.ID, err)
	}
}
