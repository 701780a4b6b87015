package storage

import (
	"testing"

	"github.com/propman/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewS3DocumentStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3DocumentStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		}
		_, err := NewS3DocumentStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			SecretAccessKey: "test-secret",
		}
		_, err := NewS3DocumentStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:      "test-bucket",
			AccessKeyID: "test-key",
		}
		_, err := NewS3DocumentStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config creates storage", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			Region:          "us-east-1",
			Endpoint:        "http://localhost:9000",
			ForcePathStyle:  true,
		}
		storage, err := NewS3DocumentStorage(cfg, WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		require.NotNil(t, storage)
		assert.Equal(t, "test-bucket", storage.GetBucket())
	})

	t.Run("endpoint without scheme gets https prefix", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
			Endpoint:        "storage.example.com",
		}
		storage, err := NewS3DocumentStorage(cfg)
		require.NoError(t, err)
		require.NotNil(t, storage)
	})

	t.Run("empty region defaults to us-east-1", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		}
		storage, err := NewS3DocumentStorage(cfg)
		require.NoError(t, err)
		require.NotNil(t, storage)
	})
}
