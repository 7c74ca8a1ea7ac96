package notification

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/infrastructure/store"
)

var ErrNotificationNotFound = errors.New("notification not found")

// EventPublisher publishes notifications to the bus for the notifier
// process. Satisfied by kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Service persists notifications and forwards them to the bus. The bus
// publish is best-effort: the notifier only drives emails, so a publish
// failure is logged and the stored notification stands.
type Service struct {
	store     store.DocumentStore
	publisher EventPublisher // optional
}

func NewService(ds store.DocumentStore, publisher EventPublisher) *Service {
	return &Service{store: ds, publisher: publisher}
}

func (s *Service) Notify(ctx context.Context, n Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if err := s.store.Put(ctx, store.CollectionNotifications, n.ID, &n); err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, n.ID, n); err != nil {
			log.Printf("[Notification] Failed to publish notification %s: %v", n.ID, err)
		}
	}
	return nil
}

// List returns notifications for a role, newest first.
func (s *Service) List(ctx context.Context, role string) ([]*Notification, error) {
	raw, err := s.store.List(ctx, store.CollectionNotifications)
	if err != nil {
		return nil, err
	}

	notifications := make([]*Notification, 0, len(raw))
	for _, doc := range raw {
		var n Notification
		if err := json.Unmarshal(doc, &n); err != nil {
			continue
		}
		if n.TargetRole == role {
			notifications = append(notifications, &n)
		}
	}
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

// MarkRead flags a notification as read.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	var n Notification
	ok, err := s.store.Get(ctx, store.CollectionNotifications, id, &n)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	n.Read = true
	return s.store.Put(ctx, store.CollectionNotifications, id, &n)
}
