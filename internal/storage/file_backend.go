package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores one JSON file per key under a per-namespace directory.
type FileBackend struct {
	basePath string
}

// NewFileBackend creates the namespace directory under basePath.
func NewFileBackend(basePath, namespace string) (*FileBackend, error) {
	dir := filepath.Join(basePath, sanitizeNamespace(namespace))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return &FileBackend{basePath: dir}, nil
}

// sanitizeNamespace makes the namespace safe for directory names.
func sanitizeNamespace(ns string) string {
	return strings.NewReplacer(":", "-", "/", "-", "\\", "-").Replace(ns)
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.basePath, key+".json")
}

func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document file: %w", err)
	}
	return data, nil
}

// PutMany writes each document to a temp file and renames it into place.
// Each file is replaced atomically; the batch as a whole is not.
func (b *FileBackend) PutMany(_ context.Context, docs map[string][]byte) error {
	for _, key := range sortedKeys(docs) {
		tmp, err := os.CreateTemp(b.basePath, key+".*.tmp")
		if err != nil {
			return fmt.Errorf("failed to create temp file: %w", err)
		}
		if _, err := tmp.Write(docs[key]); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return fmt.Errorf("failed to write document file: %w", err)
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return fmt.Errorf("failed to close document file: %w", err)
		}
		if err := os.Rename(tmp.Name(), b.path(key)); err != nil {
			os.Remove(tmp.Name())
			return fmt.Errorf("failed to replace document file %s: %w", key, err)
		}
	}
	return nil
}

// DeleteAll removes every document file of the namespace.
func (b *FileBackend) DeleteAll(_ context.Context) error {
	matches, err := filepath.Glob(filepath.Join(b.basePath, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to glob document files: %w", err)
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			return fmt.Errorf("failed to remove document file %s: %w", match, err)
		}
	}
	return nil
}
