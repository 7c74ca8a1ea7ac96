package store

import (
	"context"
	"encoding/json"
)

// Collection names for storefront documents.
const (
	CollectionProducts        = "products"
	CollectionMovements       = "movements"
	CollectionAlerts          = "alerts"
	CollectionNotifications   = "notifications"
	CollectionOrders          = "orders"
	CollectionCarts           = "carts"
	CollectionUsers           = "users"
	CollectionRestockRequests = "restock_requests"
)

// DocumentStore is the document database abstraction. Implementations:
// DynamoStore (cloud), PostgresStore (local), MemoryStore (tests).
type DocumentStore interface {
	// Get reads a document into out. The boolean reports whether it exists.
	Get(ctx context.Context, collection, id string, out any) (bool, error)

	// Put writes a single document, overwriting any existing one.
	Put(ctx context.Context, collection, id string, doc any) error

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// List returns every document in a collection, ordered by id.
	List(ctx context.Context, collection string) ([]json.RawMessage, error)

	// NewBatch starts an atomic write batch.
	NewBatch() WriteBatch
}

// WriteBatch accumulates writes that commit as one atomic unit: either every
// write is applied or none is. Later writes to the same document win.
type WriteBatch interface {
	Put(collection, id string, doc any)
	Delete(collection, id string)
	Commit(ctx context.Context) error

	// Size returns the number of accumulated writes.
	Size() int
}
