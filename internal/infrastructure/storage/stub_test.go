package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/propman/backend/internal/domain/leasing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubDocumentStorage_StoreDocument(t *testing.T) {
	t.Run("stores document and returns key", func(t *testing.T) {
		stub := NewStubDocumentStorage()

		file := leasing.NewPendingFile("lease-agreement.pdf", "application/pdf", []byte("pdf content"))

		key, err := stub.StoreDocument(context.Background(), 900123, file)

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(key, "leases/900123/documents/"))
		assert.True(t, strings.HasSuffix(key, ".pdf"))
		assert.Equal(t, 1, stub.Count())
	})

	t.Run("rejects missing lease ID", func(t *testing.T) {
		stub := NewStubDocumentStorage()

		file := leasing.NewPendingFile("doc.pdf", "application/pdf", []byte("x"))

		_, err := stub.StoreDocument(context.Background(), 0, file)
		assert.Error(t, err)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		stub := NewStubDocumentStorage()

		file := leasing.NewPendingFile("doc.pdf", "application/pdf", nil)

		_, err := stub.StoreDocument(context.Background(), 900123, file)
		assert.Error(t, err)
	})

	t.Run("keys are unique per document", func(t *testing.T) {
		stub := NewStubDocumentStorage()

		file := leasing.NewPendingFile("doc.pdf", "application/pdf", []byte("x"))

		key1, err := stub.StoreDocument(context.Background(), 900123, file)
		require.NoError(t, err)
		key2, err := stub.StoreDocument(context.Background(), 900123, file)
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
		assert.Len(t, stub.Keys(), 2)
	})
}

func TestDocumentKey(t *testing.T) {
	t.Run("keeps lowercase file extension", func(t *testing.T) {
		key := DocumentKey(42, "Signed Lease.PDF")

		assert.True(t, strings.HasPrefix(key, "leases/42/documents/"))
		assert.True(t, strings.HasSuffix(key, ".pdf"))
	})

	t.Run("handles names without extension", func(t *testing.T) {
		key := DocumentKey(42, "README")

		assert.True(t, strings.HasPrefix(key, "leases/42/documents/"))
		assert.False(t, strings.Contains(key, "."))
	})
}
