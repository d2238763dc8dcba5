package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Document keys. Each is an independent JSON document; a missing key is not an error.
const (
	KeyUser         = "user"
	KeyInventory    = "inventory"
	KeyShoppingList = "shoppingList"
	KeySavedRecipes = "savedRecipes"
	KeyRatings      = "ratings"
	KeyMealPlan     = "mealPlan"
	KeyHousehold    = "household"
	KeyTheme        = "theme"

	// KeyHouseholdLink holds the namespace of a household joined by invite.
	KeyHouseholdLink = "householdLink"
)

// ErrNotFound is returned by a Backend when the key has never been written.
var ErrNotFound = errors.New("document not found")

// Backend stores raw JSON documents for a single namespace.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// PutMany writes every document. Backends that can do so apply the
	// whole batch atomically.
	PutMany(ctx context.Context, docs map[string][]byte) error
	DeleteAll(ctx context.Context) error
}

// DocumentStore serialises typed values to JSON documents on a Backend.
type DocumentStore struct {
	backend Backend
	log     *zap.Logger
}

// NewDocumentStore wraps a backend.
func NewDocumentStore(backend Backend, log *zap.Logger) *DocumentStore {
	return &DocumentStore{backend: backend, log: log}
}

// Load decodes the document stored under key. An absent, unreadable or
// corrupt document yields fallback; corruption is logged, never returned.
func Load[T any](ctx context.Context, s *DocumentStore, key string, fallback T) T {
	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return fallback
	}
	if err != nil {
		s.log.Warn("failed to read document, using default", zap.String("key", key), zap.Error(err))
		return fallback
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.log.Warn("corrupt document replaced by default", zap.String("key", key), zap.Error(err))
		return fallback
	}
	return v
}

// Exists reports whether key has been written, even if it holds an empty value.
func (s *DocumentStore) Exists(ctx context.Context, key string) bool {
	_, err := s.backend.Get(ctx, key)
	return err == nil
}

// Save persists a single document.
func (s *DocumentStore) Save(ctx context.Context, key string, value any) error {
	return s.SaveAll(ctx, map[string]any{key: value})
}

// SaveAll persists several documents through one backend write.
func (s *DocumentStore) SaveAll(ctx context.Context, docs map[string]any) error {
	raw := make(map[string][]byte, len(docs))
	for key, value := range docs {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal document %s: %w", key, err)
		}
		raw[key] = data
	}
	if err := s.backend.PutMany(ctx, raw); err != nil {
		return fmt.Errorf("failed to save documents: %w", err)
	}
	return nil
}

// Clear removes every document of the namespace.
func (s *DocumentStore) Clear(ctx context.Context) error {
	if err := s.backend.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}
	return nil
}
