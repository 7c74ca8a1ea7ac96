package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// ConnectPostgres opens a PostgreSQL connection and verifies it.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

// PostgresStore implements DocumentStore on a single documents table,
// used in local mode instead of DynamoDB.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// InitSchema creates the documents table if it does not exist.
func (s *PostgresStore) InitSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string, out any) (bool, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode document %s/%s: %w", collection, id, err)
	}
	return true, nil
}

func (s *PostgresStore) Put(ctx context.Context, collection, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", collection, id, err)
	}
	_, err = s.db.ExecContext(ctx, upsertDocument, collection, id, raw, time.Now())
	if err != nil {
		return fmt.Errorf("failed to put document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 ORDER BY id`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan document in %s: %w", collection, err)
		}
		docs = append(docs, json.RawMessage(raw))
	}
	return docs, rows.Err()
}

func (s *PostgresStore) NewBatch() WriteBatch {
	return &postgresBatch{store: s}
}

const upsertDocument = `
	INSERT INTO documents (collection, id, data, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (collection, id) DO UPDATE SET
		data = EXCLUDED.data,
		updated_at = EXCLUDED.updated_at`

type postgresWrite struct {
	collection string
	id         string
	doc        json.RawMessage // nil means delete
	err        error
}

type postgresBatch struct {
	store  *PostgresStore
	writes []postgresWrite
}

func (b *postgresBatch) Put(collection, id string, doc any) {
	raw, err := json.Marshal(doc)
	b.writes = append(b.writes, postgresWrite{collection: collection, id: id, doc: raw, err: err})
}

func (b *postgresBatch) Delete(collection, id string) {
	b.writes = append(b.writes, postgresWrite{collection: collection, id: id})
}

func (b *postgresBatch) Size() int {
	return len(b.writes)
}

// Commit runs all writes in one transaction: all or nothing.
func (b *postgresBatch) Commit(ctx context.Context) error {
	for _, w := range b.writes {
		if w.err != nil {
			return fmt.Errorf("failed to encode document %s/%s: %w", w.collection, w.id, w.err)
		}
	}

	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, w := range b.writes {
		if w.doc == nil {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM documents WHERE collection = $1 AND id = $2`,
				w.collection, w.id)
		} else {
			_, err = tx.ExecContext(ctx, upsertDocument, w.collection, w.id, []byte(w.doc), now)
		}
		if err != nil {
			return fmt.Errorf("failed to write document %s/%s: %w", w.collection, w.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}
