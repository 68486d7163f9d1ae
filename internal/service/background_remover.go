package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/yourusername/storefront-api/internal/config"
)

// BackgroundRemover возвращает изображение без фона (PNG)
type BackgroundRemover interface {
	Remove(ctx context.Context, imageURL string) ([]byte, error)
}

// HTTPBackgroundRemover вызывает внешний API в формате remove.bg:
// multipart-форма с image_url, ключ в заголовке X-Api-Key, в ответ PNG.
type HTTPBackgroundRemover struct {
	apiURL string
	apiKey string
	client *http.Client
}

// NewHTTPBackgroundRemover создаёт клиента; без URL или ключа возвращает nil
func NewHTTPBackgroundRemover(cfg config.BackgroundRemovalConfig) BackgroundRemover {
	if strings.TrimSpace(cfg.APIURL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPBackgroundRemover{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}
}

func (r *HTTPBackgroundRemover) Remove(ctx context.Context, imageURL string) ([]byte, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("image_url", imageURL); err != nil {
		return nil, err
	}
	if err := form.WriteField("size", "auto"); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.apiURL, &body)
	if err != nil {
		return nil, fmt.Errorf("build background removal request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("X-Api-Key", r.apiKey)
	req.Header.Set("Accept", "image/png")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("background removal request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read background removal response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("background removal failed: status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
