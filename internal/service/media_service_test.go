package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/config"
	"github.com/yourusername/storefront-api/internal/domain/entity"
	apperrors "github.com/yourusername/storefront-api/internal/pkg/errors"
)

var testPNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newTestMediaService(store *MockStorage, analyzer ImageAnalyzer, remover BackgroundRemover) *MediaService {
	svc := NewMediaService(store, analyzer, remover, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestMediaService_Upload_StoresUnderDatedKey(t *testing.T) {
	store := new(MockStorage)
	svc := newTestMediaService(store, nil, nil)

	store.On("Put", mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "banners/2026/03/") && strings.HasSuffix(key, ".png")
	}), testPNG, "image/png").Return("https://cdn.example/banners/x.png", nil)

	res, err := svc.Upload(context.Background(), "banners", "Hero.PNG", testPNG)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/banners/x.png", res.URL)
	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, len(testPNG), res.Size)
	store.AssertExpectations(t)
}

func TestMediaService_Upload_Rejections(t *testing.T) {
	store := new(MockStorage)
	svc := newTestMediaService(store, nil, nil)

	tests := []struct {
		name     string
		folder   string
		filename string
		data     []byte
	}{
		{"unknown folder", "secrets", "a.png", testPNG},
		{"bad extension", "products", "a.svg", testPNG},
		{"empty file", "products", "a.png", nil},
		{"disguised content", "products", "a.png", []byte("<html><script>alert(1)</script></html>")},
		{"too large", "products", "a.png", append(append([]byte{}, testPNG...), make([]byte, MaxImageBytes)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), tt.folder, tt.filename, tt.data)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestMediaService_Rehost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(testPNG)
	}))
	defer srv.Close()

	store := new(MockStorage)
	store.On("Put", mock.Anything, testPNG, "image/png").Return("https://cdn.example/products/y.png", nil)
	svc := newTestMediaService(store, nil, nil)

	url, err := svc.Rehost(context.Background(), srv.URL+"/a.png", "products")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/products/y.png", url)

	_, err = svc.Rehost(context.Background(), srv.URL+"/missing.png", "products")
	assert.Error(t, err)
}

func TestMediaService_Analyze(t *testing.T) {
	svc := newTestMediaService(new(MockStorage), nil, nil)
	_, err := svc.Analyze(context.Background(), "https://cdn/a.jpg")
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)

	analyzer := new(MockAnalyzer)
	analyzer.On("Analyze", "https://cdn/a.jpg").Return(&ImageAnalysis{Name: "Mug", Tags: []string{"kitchen"}}, nil)
	svc = newTestMediaService(new(MockStorage), analyzer, nil)

	_, err = svc.Analyze(context.Background(), "file:///etc/passwd")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	analysis, err := svc.Analyze(context.Background(), "https://cdn/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Mug", analysis.Name)
}

func TestMediaService_RemoveBackground(t *testing.T) {
	var gotKey, gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		gotURL = r.FormValue("image_url")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(testPNG)
	}))
	defer srv.Close()

	remover := NewHTTPBackgroundRemover(config.BackgroundRemovalConfig{APIURL: srv.URL, APIKey: "k-1", TimeoutSec: 5})
	require.NotNil(t, remover)

	store := new(MockStorage)
	store.On("Put", mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, "products/") }), testPNG, "image/png").
		Return("https://cdn.example/products/nobg.png", nil)
	svc := newTestMediaService(store, nil, remover)

	res, err := svc.RemoveBackground(context.Background(), "https://cdn/raw.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/products/nobg.png", res.URL)
	assert.Equal(t, "k-1", gotKey)
	assert.Equal(t, "https://cdn/raw.jpg", gotURL)
}

func TestMediaService_RemoveBackground_Upstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "credits exhausted", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	remover := NewHTTPBackgroundRemover(config.BackgroundRemovalConfig{APIURL: srv.URL, APIKey: "k-1"})
	svc := newTestMediaService(new(MockStorage), nil, remover)

	_, err := svc.RemoveBackground(context.Background(), "https://cdn/raw.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "402")
}

func TestNewHTTPBackgroundRemover_Unconfigured(t *testing.T) {
	assert.Nil(t, NewHTTPBackgroundRemover(config.BackgroundRemovalConfig{APIURL: "https://api.example"}))
}

func TestNewImageAnalyzer_Providers(t *testing.T) {
	assert.Nil(t, NewImageAnalyzer(config.AIConfig{Provider: "openai"}))
	assert.IsType(t, &OpenAIAnalyzer{}, NewImageAnalyzer(config.AIConfig{Provider: "openai", APIKey: "k"}))
	assert.IsType(t, &AnthropicAnalyzer{}, NewImageAnalyzer(config.AIConfig{Provider: "anthropic", APIKey: "k"}))
}

func TestParseImageAnalysis(t *testing.T) {
	content := "Here you go:\n```json\n{\"name\": \" Ceramic Mug \", \"description\": \"350ml\", \"category\": \"Kitchen\"}\n```"
	analysis, err := parseImageAnalysis(content)
	require.NoError(t, err)
	assert.Equal(t, "Ceramic Mug", analysis.Name)
	assert.Equal(t, "Kitchen", analysis.Category)
	assert.NotNil(t, analysis.Tags)

	_, err = parseImageAnalysis("I cannot see the image")
	assert.Error(t, err)

	_, err = parseImageAnalysis("{not json}")
	assert.Error(t, err)
}

func TestOrderStatusEmail_RendersTable(t *testing.T) {
	order := &entity.Order{
		ID:     42,
		Status: entity.OrderStatusShipped,
		Total:  12.5,
		Items: []entity.OrderItem{
			{ProductName: "Mug | large", Quantity: 2, UnitPrice: 5},
			{ProductName: "Tea", Quantity: 1, UnitPrice: 2.5},
		},
	}

	md := orderStatusMarkdown(order)
	assert.Contains(t, md, "# Order #42")
	assert.Contains(t, md, `Mug \| large`)

	html, err := renderMarkdown(md)
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<strong>shipped</strong>")
	assert.Contains(t, html, "10.00")
}
