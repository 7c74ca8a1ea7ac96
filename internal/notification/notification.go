package notification

import "time"

// Notification types.
const (
	TypeLowStock       = "low_stock"
	TypeRestockRequest = "restock_request"
)

// Priorities.
const (
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Target roles.
const RoleAdmin = "admin"

// Notification is a side-effect record surfaced on the admin dashboard and
// forwarded by the notifier as email. The ledger only ever creates these;
// reading and dismissing happens through the admin endpoints.
type Notification struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Data       map[string]any `json:"data,omitempty"`
	Priority   string         `json:"priority"`
	TargetRole string         `json:"target_role"`
	Read       bool           `json:"read"`
	CreatedAt  time.Time      `json:"created_at"`
}
