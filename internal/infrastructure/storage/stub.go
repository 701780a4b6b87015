package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/propman/backend/internal/domain/leasing"
)

// StubDocumentStorage is an in-memory DocumentStorage for development and
// tests. It records stored documents by key instead of uploading them.
type StubDocumentStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewStubDocumentStorage creates a new StubDocumentStorage
func NewStubDocumentStorage() *StubDocumentStorage {
	return &StubDocumentStorage{
		objects: make(map[string][]byte),
	}
}

// Ensure StubDocumentStorage implements DocumentStorage
var _ leasing.DocumentStorage = (*StubDocumentStorage)(nil)

// StoreDocument records the document in memory and returns its key
func (s *StubDocumentStorage) StoreDocument(ctx context.Context, leaseID int64, file *leasing.PendingFile) (string, error) {
	if leaseID <= 0 {
		return "", errors.New("lease ID is required")
	}
	if file == nil || len(file.Content) == 0 {
		return "", errors.New("file content is required")
	}

	key := DocumentKey(leaseID, file.Name)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), file.Content...)

	return key, nil
}

// Count returns the number of stored documents
func (s *StubDocumentStorage) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Keys returns the keys of all stored documents
func (s *StubDocumentStorage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}
