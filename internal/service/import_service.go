package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/config"
	"github.com/yourusername/storefront-api/internal/domain/entity"
	"github.com/yourusername/storefront-api/internal/domain/repository"
	apperrors "github.com/yourusername/storefront-api/internal/pkg/errors"
	"github.com/yourusername/storefront-api/internal/service/productimport"
)

// ImportReport — итог массового импорта. Ошибки и предупреждения идут плоским списком по строкам.
type ImportReport struct {
	Total    int      `json:"total"`
	Created  int      `json:"created"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (r *ImportReport) fail(issue productimport.Issue) {
	r.Failed++
	r.Errors = append(r.Errors, issue.String())
}

func (r *ImportReport) skip(issue productimport.Issue) {
	r.Skipped++
	r.Warnings = append(r.Warnings, issue.String())
}

// ImageRehoster переносит внешнее изображение в наше хранилище
type ImageRehoster interface {
	Rehost(ctx context.Context, sourceURL, prefix string) (string, error)
}

// ImportService импортирует товары из xlsx/csv построчно
type ImportService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	images       ImageRehoster
	cfg          config.ImportConfig
	logger       *zap.Logger
}

// NewImportService создаёт сервис импорта. images может быть nil: тогда ссылки сохраняются как есть.
func NewImportService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	images ImageRehoster,
	cfg config.ImportConfig,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		images:       images,
		cfg:          cfg,
		logger:       logger.Named("import"),
	}
}

// Import разбирает файл и вставляет товары по одному. Ошибка отдельной строки
// попадает в отчёт и не прерывает импорт; ошибка самого файла возвращается целиком.
func (s *ImportService) Import(ctx context.Context, filename string, r io.Reader) (*ImportReport, error) {
	sheet, err := productimport.Read(filename, r, s.cfg.MaxRows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	categories, err := s.categoryRepo.List(false)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	resolver := productimport.NewCategoryResolver(categories, s.cfg.FallbackCategoryID)

	batch, err := productimport.Normalize(sheet, resolver)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	report := &ImportReport{
		Total:    len(sheet.Rows),
		Errors:   []string{},
		Warnings: []string{},
	}
	for _, issue := range batch.Invalid {
		report.fail(issue)
	}
	for _, issue := range batch.Duplicates {
		report.skip(issue)
	}

	for _, candidate := range batch.Candidates {
		if err := ctx.Err(); err != nil {
			// клиент ушёл: оставшиеся строки считаем неудачными
			report.fail(productimport.Issue{Line: candidate.Line, Name: candidate.Name, Reason: "import cancelled"})
			continue
		}
		s.importRow(ctx, candidate, report)
	}

	s.logger.Info("product import finished",
		zap.String("file", filename),
		zap.Int("total", report.Total),
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (s *ImportService) importRow(ctx context.Context, c productimport.Candidate, report *ImportReport) {
	exists, err := s.productRepo.ExistsByName(c.Name)
	if err != nil {
		report.fail(productimport.Issue{Line: c.Line, Name: c.Name, Reason: fmt.Sprintf("duplicate check failed: %v", err)})
		return
	}
	if exists {
		report.skip(productimport.Issue{Line: c.Line, Name: c.Name, Reason: "product already exists"})
		return
	}

	imageURL := c.ImageURL
	if imageURL != "" && s.images != nil && s.cfg.RehostImages && isHTTPURL(imageURL) {
		fetchCtx, cancel := context.WithTimeout(ctx, s.imageTimeout())
		hosted, err := s.images.Rehost(fetchCtx, imageURL, "products")
		cancel()
		if err != nil {
			report.Warnings = append(report.Warnings,
				productimport.Issue{Line: c.Line, Name: c.Name, Reason: fmt.Sprintf("image kept at original url: %v", err)}.String())
		} else {
			imageURL = hosted
		}
	}

	product := &entity.Product{
		Name:        c.Name,
		Description: c.Description,
		Price:       c.Price,
		Stock:       c.Stock,
		CategoryID:  c.CategoryID,
		Images:      entity.StringArray{},
		IsActive:    true,
	}
	if imageURL != "" {
		product.Images = entity.StringArray{imageURL}
	}

	if err := s.productRepo.Create(product); err != nil {
		report.fail(productimport.Issue{Line: c.Line, Name: c.Name, Reason: fmt.Sprintf("insert failed: %v", err)})
		return
	}
	report.Created++
}

func (s *ImportService) imageTimeout() time.Duration {
	if s.cfg.ImageTimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.cfg.ImageTimeoutSec) * time.Second
}

func isHTTPURL(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
