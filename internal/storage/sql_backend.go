package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	documentsdb "smart-pantry/internal/storage/documents_db"
)

// SQLBackend keeps one row per (namespace, key) in the documents table.
type SQLBackend struct {
	db        *sql.DB
	queries   *documentsdb.Queries
	namespace string
}

// NewSQLBackend scopes the documents table to a namespace.
func NewSQLBackend(db *sql.DB, namespace string) *SQLBackend {
	return &SQLBackend{
		db:        db,
		queries:   documentsdb.New(db),
		namespace: namespace,
	}
}

func (b *SQLBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.queries.GetDocument(ctx, documentsdb.GetDocumentParams{
		Namespace: b.namespace,
		Key:       key,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", key, err)
	}
	return []byte(data), nil
}

// PutMany upserts all documents in one transaction.
func (b *SQLBackend) PutMany(ctx context.Context, docs map[string][]byte) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := b.queries.WithTx(tx)
	now := time.Now().UTC()
	for _, key := range sortedKeys(docs) {
		err := q.UpsertDocument(ctx, documentsdb.UpsertDocumentParams{
			Namespace: b.namespace,
			Key:       key,
			Data:      string(docs[key]),
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert document %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (b *SQLBackend) DeleteAll(ctx context.Context) error {
	if _, err := b.queries.DeleteNamespace(ctx, b.namespace); err != nil {
		return fmt.Errorf("failed to delete namespace %s: %w", b.namespace, err)
	}
	return nil
}

func sortedKeys(docs map[string][]byte) []string {
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
