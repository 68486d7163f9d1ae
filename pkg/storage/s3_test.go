package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/storefront-api/internal/config"
)

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"banners/a.png":        "banners/a.png",
		"/banners/a.png":       "banners/a.png",
		"  products\\b.webp  ": "products/b.webp",
		"../secret":            "",
		"a/../../b":            "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeKey(in), in)
	}
}

func TestNewS3Storage_IncompleteConfig(t *testing.T) {
	_, err := NewS3Storage(config.StorageConfig{Bucket: "media"})
	assert.Error(t, err)
}

func TestNewS3Storage_PublicURL(t *testing.T) {
	s, err := NewS3Storage(config.StorageConfig{
		Bucket:          " media ",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Endpoint:        "minio.local:9000/",
		PublicBaseURL:   "https://cdn.example.com/",
		PathStyle:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, "media", s.bucket)
	assert.Equal(t, "https://cdn.example.com", s.publicBaseURL)
}

func TestNoopStorage(t *testing.T) {
	_, err := NoopStorage{}.Put(context.Background(), "a.png", []byte{1}, "image/png")
	assert.Error(t, err)
	assert.NoError(t, NoopStorage{}.Delete(context.Background(), "a.png"))
}
