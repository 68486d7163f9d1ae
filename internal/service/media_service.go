package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/yourusername/storefront-api/internal/pkg/errors"
	"github.com/yourusername/storefront-api/pkg/storage"
)

// MaxImageBytes — максимальный размер загружаемого изображения
const MaxImageBytes = 10 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var allowedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

var mediaFolders = map[string]bool{
	"products": true, "banners": true, "promos": true, "categories": true,
}

// UploadResult описывает сохранённый файл
type UploadResult struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// MediaService загружает изображения, анализирует их и удаляет фон
type MediaService struct {
	storage    storage.ObjectStorage
	analyzer   ImageAnalyzer
	remover    BackgroundRemover
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewMediaService создаёт медиа-сервис. analyzer и remover могут быть nil, если не настроены.
func NewMediaService(
	objectStorage storage.ObjectStorage,
	analyzer ImageAnalyzer,
	remover BackgroundRemover,
	httpClient *http.Client,
	logger *zap.Logger,
) *MediaService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &MediaService{
		storage:    objectStorage,
		analyzer:   analyzer,
		remover:    remover,
		httpClient: httpClient,
		logger:     logger.Named("media"),
		now:        time.Now,
	}
}

// Upload проверяет расширение, размер и реальный тип файла и кладёт его в хранилище
func (s *MediaService) Upload(ctx context.Context, folder, filename string, data []byte) (*UploadResult, error) {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		folder = "products"
	}
	if !mediaFolders[folder] {
		return nil, fmt.Errorf("%w: unknown folder %q", apperrors.ErrValidation, folder)
	}
	if ext := strings.ToLower(path.Ext(filename)); !allowedImageExts[ext] {
		return nil, fmt.Errorf("%w: file type %q is not allowed", apperrors.ErrValidation, ext)
	}
	return s.store(ctx, folder, data)
}

// Rehost скачивает изображение по ссылке и сохраняет его у себя
func (s *MediaService) Rehost(ctx context.Context, sourceURL, folder string) (string, error) {
	data, err := s.download(ctx, sourceURL)
	if err != nil {
		return "", err
	}
	res, err := s.store(ctx, folder, data)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

// Analyze предлагает название, описание, категорию и теги по фото товара
func (s *MediaService) Analyze(ctx context.Context, imageURL string) (*ImageAnalysis, error) {
	if s.analyzer == nil {
		return nil, fmt.Errorf("%w: image analysis is not configured", apperrors.ErrUnavailable)
	}
	if !isHTTPURL(imageURL) {
		return nil, fmt.Errorf("%w: image_url must be an http(s) url", apperrors.ErrValidation)
	}
	started := s.now()
	analysis, err := s.analyzer.Analyze(ctx, imageURL)
	if err != nil {
		s.logger.Warn("image analysis failed", zap.String("url", imageURL), zap.Error(err))
		return nil, err
	}
	s.logger.Info("image analyzed", zap.String("url", imageURL), zap.Duration("took", s.now().Sub(started)))
	return analysis, nil
}

// RemoveBackground отдаёт изображение во внешний сервис и сохраняет полученный PNG
func (s *MediaService) RemoveBackground(ctx context.Context, imageURL string) (*UploadResult, error) {
	if s.remover == nil {
		return nil, fmt.Errorf("%w: background removal is not configured", apperrors.ErrUnavailable)
	}
	if !isHTTPURL(imageURL) {
		return nil, fmt.Errorf("%w: image_url must be an http(s) url", apperrors.ErrValidation)
	}
	data, err := s.remover.Remove(ctx, imageURL)
	if err != nil {
		s.logger.Warn("background removal failed", zap.String("url", imageURL), zap.Error(err))
		return nil, err
	}
	return s.store(ctx, "products", data)
}

func (s *MediaService) store(ctx context.Context, folder string, data []byte) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", apperrors.ErrValidation)
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", apperrors.ErrValidation, MaxImageBytes)
	}

	mtype := mimetype.Detect(data)
	ext, ok := allowedImageTypes[mtype.String()]
	if !ok {
		return nil, fmt.Errorf("%w: content type %s is not an allowed image", apperrors.ErrValidation, mtype.String())
	}

	key := fmt.Sprintf("%s/%s/%s%s", folder, s.now().UTC().Format("2006/01"), uuid.NewString(), ext)
	url, err := s.storage.Put(ctx, key, data, mtype.String())
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	s.logger.Debug("image stored", zap.String("key", key), zap.Int("size", len(data)))
	return &UploadResult{URL: url, Key: key, ContentType: mtype.String(), Size: len(data)}, nil
}

func (s *MediaService) download(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}
