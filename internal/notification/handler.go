package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// EmailSender delivers notification emails. Satisfied by email.Service.
type EmailSender interface {
	SendLowStockAlert(to, productName string, stock, threshold int) error
	SendRestockRequest(to, productName string, quantity int, priority, notes string) error
}

// Handler consumes notifications from the bus and emails the admin
// recipients. Delivery is log-and-continue: a failed recipient never
// blocks the rest, and the consumer never retries.
type Handler struct {
	sender     EmailSender
	recipients []string
}

func NewHandler(sender EmailSender, recipients []string) *Handler {
	return &Handler{sender: sender, recipients: recipients}
}

// HandleMessage processes one notification from the bus.
func (h *Handler) HandleMessage(ctx context.Context, key, value []byte) error {
	var n Notification
	if err := json.Unmarshal(value, &n); err != nil {
		return fmt.Errorf("unmarshal notification: %w", err)
	}
	return h.Handle(ctx, &n)
}

// Handle emails a single notification to every recipient.
func (h *Handler) Handle(_ context.Context, n *Notification) error {
	if len(h.recipients) == 0 {
		log.Printf("[Notifier] No recipients configured, skipping notification %s", n.ID)
		return nil
	}

	for _, to := range h.recipients {
		var err error
		switch n.Type {
		case TypeLowStock:
			err = h.sender.SendLowStockAlert(to,
				dataString(n.Data, "product_name"),
				dataInt(n.Data, "stock"),
				dataInt(n.Data, "threshold"))
		case TypeRestockRequest:
			err = h.sender.SendRestockRequest(to,
				dataString(n.Data, "product_name"),
				dataInt(n.Data, "requested_quantity"),
				dataString(n.Data, "priority"),
				dataString(n.Data, "notes"))
		default:
			log.Printf("[Notifier] Unknown notification type %q, skipping %s", n.Type, n.ID)
			return nil
		}
		if err != nil {
			log.Printf("[Notifier] Failed to email %s for notification %s: %v", to, n.ID, err)
			continue
		}
		log.Printf("[Notifier] Emailed %s notification %s to %s", n.Type, n.ID, to)
	}
	return nil
}

func dataString(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func dataInt(data map[string]any, key string) int {
	switch v := data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
