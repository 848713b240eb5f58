package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	infraconfig "github.com/cartoprint/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func baseS3Config() *infraconfig.StorageConfig {
	return &infraconfig.StorageConfig{
		Bucket:            "posters",
		AccessKey:         "test-key",
		SecretKey:         "test-secret",
		Endpoint:          "http://localhost:9000",
		Region:            "us-east-1",
		UsePathStyle:      true,
		PresignExpiration: 15 * time.Minute,
	}
}

func TestNewS3Store_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3Store(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := baseS3Config()
		cfg.Bucket = ""
		_, err := NewS3Store(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		cfg := baseS3Config()
		cfg.AccessKey = ""
		_, err := NewS3Store(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		cfg := baseS3Config()
		cfg.SecretKey = ""
		_, err := NewS3Store(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config creates store", func(t *testing.T) {
		store, err := NewS3Store(baseS3Config())
		require.NoError(t, err)
		require.NotNil(t, store)
		assert.Equal(t, "posters", store.Bucket())
		assert.Equal(t, 15*time.Minute, store.presignExpiration)
	})

	t.Run("adds scheme to bare endpoint", func(t *testing.T) {
		cfg := baseS3Config()
		cfg.Endpoint = "localhost:9000"
		cfg.UseSSL = true
		store, err := NewS3Store(cfg)
		require.NoError(t, err)
		require.NotNil(t, store)
	})

	t.Run("default presign expiration is 15 minutes", func(t *testing.T) {
		cfg := baseS3Config()
		cfg.PresignExpiration = 0
		store, err := NewS3Store(cfg)
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, store.presignExpiration)
	})
}

func TestNew_S3EnsuresBucket(t *testing.T) {
	t.Run("existing bucket passes startup", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		cfg := baseS3Config()
		cfg.Backend = "s3"
		cfg.Endpoint = srv.URL

		store, err := New(cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.NotNil(t, store)
	})

	t.Run("missing bucket is created at startup", func(t *testing.T) {
		var created bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodHead:
				w.WriteHeader(http.StatusNotFound)
			case http.MethodPut:
				created = true
				w.WriteHeader(http.StatusOK)
			default:
				w.WriteHeader(http.StatusMethodNotAllowed)
			}
		}))
		defer srv.Close()

		cfg := baseS3Config()
		cfg.Backend = "s3"
		cfg.Endpoint = srv.URL

		_, err := New(cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.True(t, created)
	})
}

func TestS3StoreOptions(t *testing.T) {
	t.Run("WithLogger sets custom logger", func(t *testing.T) {
		store, err := NewS3Store(baseS3Config(), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.NotNil(t, store.logger)
	})

	t.Run("WithPresignExpiration sets custom duration", func(t *testing.T) {
		store, err := NewS3Store(baseS3Config(), WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, store.presignExpiration)
	})
}

func TestS3StoreDownloadURL(t *testing.T) {
	store, err := NewS3Store(baseS3Config())
	require.NoError(t, err)

	t.Run("invalid key returns error", func(t *testing.T) {
		url, _, err := store.DownloadURL(context.Background(), "", "poster.png", 0)
		require.Error(t, err)
		assert.Empty(t, url)
	})

	t.Run("generates presigned URL", func(t *testing.T) {
		url, expiresAt, err := store.DownloadURL(context.Background(), "ord-1", "poster.png", time.Hour)
		require.NoError(t, err)
		assert.True(t, strings.Contains(url, "localhost:9000"))
		assert.True(t, strings.Contains(url, "posters"))
		assert.True(t, strings.Contains(url, "orders/ord-1/poster.png") ||
			strings.Contains(url, "orders%2Ford-1%2Fposter.png"))
		assert.True(t, expiresAt.After(time.Now()))
	})
}

func TestS3StoreRejectsPathEscape(t *testing.T) {
	store, err := NewS3Store(baseS3Config())
	require.NoError(t, err)
	ctx := context.Background()

	assert.Error(t, store.Put(ctx, "../ord", "poster.png", []byte("x"), "image/png"))

	_, err = store.Get(ctx, "ord-1", "../poster.png")
	assert.Error(t, err)

	_, err = store.Exists(ctx, "ord-1", "a/b.png")
	assert.Error(t, err)
}
