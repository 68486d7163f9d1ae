package service

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/domain/entity"
	"github.com/yourusername/storefront-api/internal/domain/repository"
	apperrors "github.com/yourusername/storefront-api/internal/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CategoryInput — данные для создания и изменения категории
type CategoryInput struct {
	Name      string `json:"name" binding:"required,max=200"`
	NameAr    string `json:"name_ar" binding:"max=200"`
	Slug      string `json:"slug" binding:"max=200"`
	ImageURL  string `json:"image_url" binding:"max=1024"`
	SortOrder int    `json:"sort_order"`
	IsActive  *bool  `json:"is_active"`
}

// ProductInput — данные для создания и изменения товара
type ProductInput struct {
	Name        string   `json:"name" binding:"required,max=300"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"gte=0"`
	Stock       int      `json:"stock" binding:"gte=0"`
	CategoryID  uint     `json:"category_id" binding:"required"`
	Images      []string `json:"images" binding:"max=10"`
	IsActive    *bool    `json:"is_active"`
}

// ProductQuery — параметры списка товаров
type ProductQuery struct {
	CategoryID      *uint
	Search          string
	Sort            repository.ProductSort
	Page            int
	PageSize        int
	IncludeInactive bool
}

// ProductPage — страница товаров
type ProductPage struct {
	Items    []entity.Product `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// CatalogService управляет категориями и товарами
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	logger       *zap.Logger
}

// NewCatalogService создаёт сервис каталога
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       logger.Named("catalog"),
	}
}

// ListCategories возвращает категории; для витрины только активные
func (s *CatalogService) ListCategories(activeOnly bool) ([]entity.Category, error) {
	return s.categoryRepo.List(activeOnly)
}

// CreateCategory создаёт категорию
func (s *CatalogService) CreateCategory(in CategoryInput) (*entity.Category, error) {
	category := &entity.Category{IsActive: true}
	applyCategoryInput(category, in)

	if err := s.categoryRepo.Create(category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.logger.Info("category created", zap.Uint("id", category.ID), zap.String("slug", category.Slug))
	return category, nil
}

// UpdateCategory изменяет категорию
func (s *CatalogService) UpdateCategory(id uint, in CategoryInput) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	applyCategoryInput(category, in)

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

// DeleteCategory удаляет категорию, если в ней нет товаров
func (s *CatalogService) DeleteCategory(id uint) error {
	count, err := s.categoryRepo.CountProducts(id)
	if err != nil {
		return fmt.Errorf("count category products: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: category #%d still has %d products", apperrors.ErrConflict, id, count)
	}
	if err := s.categoryRepo.Delete(id); err != nil {
		return err
	}
	s.logger.Info("category deleted", zap.Uint("id", id))
	return nil
}

// ListProducts возвращает страницу товаров
func (s *CatalogService) ListProducts(q ProductQuery) (*ProductPage, error) {
	page, size := normalizePage(q.Page, q.PageSize)
	items, total, err := s.productRepo.List(repository.ProductFilter{
		CategoryID: q.CategoryID,
		Search:     q.Search,
		ActiveOnly: !q.IncludeInactive,
		Sort:       q.Sort,
		Limit:      size,
		Offset:     (page - 1) * size,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if items == nil {
		items = []entity.Product{}
	}
	return &ProductPage{Items: items, Total: total, Page: page, PageSize: size}, nil
}

// GetProduct возвращает товар; для витрины неактивный товар считается отсутствующим
func (s *CatalogService) GetProduct(id uint, includeInactive bool) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !includeInactive {
		return nil, fmt.Errorf("product #%d: %w", id, apperrors.ErrNotFound)
	}
	return product, nil
}

// CreateProduct создаёт товар
func (s *CatalogService) CreateProduct(in ProductInput) (*entity.Product, error) {
	if err := s.ensureCategory(in.CategoryID); err != nil {
		return nil, err
	}
	product := &entity.Product{IsActive: true}
	applyProductInput(product, in)

	if err := s.productRepo.Create(product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.logger.Info("product created", zap.Uint("id", product.ID), zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct изменяет товар
func (s *CatalogService) UpdateProduct(id uint, in ProductInput) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product.CategoryID != in.CategoryID {
		if err := s.ensureCategory(in.CategoryID); err != nil {
			return nil, err
		}
	}
	applyProductInput(product, in)
	product.Category = nil

	if err := s.productRepo.Update(product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

// DeleteProduct удаляет товар
func (s *CatalogService) DeleteProduct(id uint) error {
	if err := s.productRepo.Delete(id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.Uint("id", id))
	return nil
}

// exportColumns совпадают с алиасами импорта, поэтому выгрузка годится как шаблон
var exportColumns = []interface{}{"Name", "Description", "Price", "Stock", "Category", "Image"}

// ExportProducts пишет каталог в xlsx через StreamWriter
func (s *CatalogService) ExportProducts(w io.Writer) error {
	products, err := s.productRepo.ListAll()
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}
	if err := sw.SetRow("A1", exportColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, p := range products {
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		row := []interface{}{
			sanitizeForExcel(p.Name),
			sanitizeForExcel(p.Description),
			p.Price,
			p.Stock,
			sanitizeForExcel(category),
			sanitizeForExcel(p.Images.First()),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush xlsx: %w", err)
	}
	return f.Write(w)
}

func (s *CatalogService) ensureCategory(id uint) error {
	if _, err := s.categoryRepo.GetByID(id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: category #%d does not exist", apperrors.ErrValidation, id)
		}
		return err
	}
	return nil
}

func applyCategoryInput(c *entity.Category, in CategoryInput) {
	c.Name = strings.TrimSpace(in.Name)
	c.NameAr = strings.TrimSpace(in.NameAr)
	c.ImageURL = strings.TrimSpace(in.ImageURL)
	c.SortOrder = in.SortOrder
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	switch slug := slugify(in.Slug); {
	case slug != "":
		c.Slug = slug
	case c.Slug == "":
		c.Slug = slugify(c.Name)
		if c.Slug == "" {
			c.Slug = "category-" + uuid.NewString()[:8]
		}
	}
}

func applyProductInput(p *entity.Product, in ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price
	p.Stock = in.Stock
	p.CategoryID = in.CategoryID
	p.Images = entity.StringArray{}
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			p.Images = append(p.Images, img)
		}
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-"), "-")
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
