package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-memory DocumentStore used in tests and local
// development without a database.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]json.RawMessage // collection -> id -> document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]json.RawMessage)}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string, out any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[collection][id]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode document %s/%s: %w", collection, id, err)
	}
	return true, nil
}

func (s *MemoryStore) Put(ctx context.Context, collection, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", collection, id, err)
	}
	s.mu.Lock()
	s.putLocked(collection, id, raw)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	delete(s.data[collection], id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data[collection]))
	for id := range s.data[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	docs := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, s.data[collection][id])
	}
	return docs, nil
}

func (s *MemoryStore) NewBatch() WriteBatch {
	return &memoryBatch{store: s}
}

func (s *MemoryStore) putLocked(collection, id string, raw json.RawMessage) {
	if s.data[collection] == nil {
		s.data[collection] = make(map[string]json.RawMessage)
	}
	s.data[collection][id] = raw
}

type memoryWrite struct {
	collection string
	id         string
	doc        json.RawMessage // nil means delete
	err        error
}

type memoryBatch struct {
	store  *MemoryStore
	writes []memoryWrite
}

func (b *memoryBatch) Put(collection, id string, doc any) {
	raw, err := json.Marshal(doc)
	b.writes = append(b.writes, memoryWrite{collection: collection, id: id, doc: raw, err: err})
}

func (b *memoryBatch) Delete(collection, id string) {
	b.writes = append(b.writes, memoryWrite{collection: collection, id: id})
}

func (b *memoryBatch) Size() int {
	return len(b.writes)
}

// Commit applies all writes under a single lock. Encoding errors surface
// here, before anything is applied.
func (b *memoryBatch) Commit(ctx context.Context) error {
	for _, w := range b.writes {
		if w.err != nil {
			return fmt.Errorf("failed to encode document %s/%s: %w", w.collection, w.id, w.err)
		}
	}

	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	for _, w := range b.writes {
		if w.doc == nil {
			delete(b.store.data[w.collection], w.id)
			continue
		}
		b.store.putLocked(w.collection, w.id, w.doc)
	}
	return nil
}
