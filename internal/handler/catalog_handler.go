package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/domain/repository"
	"github.com/yourusername/storefront-api/internal/handler/helper"
	"github.com/yourusername/storefront-api/internal/middleware"
	"github.com/yourusername/storefront-api/internal/service"
)

// CatalogHandler обрабатывает запросы категорий и товаров
type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler создает обработчик каталога
func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, logger: logger.Named("catalog_handler")}
}

// --- Категории ---

// ListCategories возвращает активные категории
// GET /api/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	h.listCategories(c, true)
}

// AdminListCategories возвращает все категории
// GET /api/admin/categories
func (h *CatalogHandler) AdminListCategories(c *gin.Context) {
	h.listCategories(c, false)
}

func (h *CatalogHandler) listCategories(c *gin.Context, activeOnly bool) {
	categories, err := h.catalogService.ListCategories(activeOnly)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": categories})
}

// CreateCategory создает категорию
// POST /api/admin/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req service.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	category, err := h.catalogService.CreateCategory(req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory изменяет категорию
// PUT /api/admin/categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var req service.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	category, err := h.catalogService.UpdateCategory(middleware.UintParam(c, "category_id"), req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory удаляет пустую категорию
// DELETE /api/admin/categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.catalogService.DeleteCategory(middleware.UintParam(c, "category_id")); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Товары ---

// ListProducts возвращает активные товары витрины
// GET /api/products?category_id=&q=&sort=&page=&page_size=
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	h.listProducts(c, false)
}

// AdminListProducts возвращает товары, включая скрытые
// GET /api/admin/products
func (h *CatalogHandler) AdminListProducts(c *gin.Context) {
	h.listProducts(c, !helper.Bool(c, "active_only"))
}

func (h *CatalogHandler) listProducts(c *gin.Context, includeInactive bool) {
	page, pageSize := helper.Pagination(c)
	result, err := h.catalogService.ListProducts(service.ProductQuery{
		CategoryID:      helper.OptionalUint(c, "category_id"),
		Search:          c.Query("q"),
		Sort:            repository.ProductSort(c.Query("sort")),
		Page:            page,
		PageSize:        pageSize,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetProduct возвращает товар витрины
// GET /api/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	h.getProduct(c, false)
}

// AdminGetProduct возвращает товар, даже если он скрыт
// GET /api/admin/products/:id
func (h *CatalogHandler) AdminGetProduct(c *gin.Context) {
	h.getProduct(c, true)
}

func (h *CatalogHandler) getProduct(c *gin.Context, includeInactive bool) {
	product, err := h.catalogService.GetProduct(middleware.UintParam(c, "product_id"), includeInactive)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct создает товар
// POST /api/admin/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	product, err := h.catalogService.CreateProduct(req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct изменяет товар
// PUT /api/admin/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	product, err := h.catalogService.UpdateProduct(middleware.UintParam(c, "product_id"), req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct удаляет товар
// DELETE /api/admin/products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalogService.DeleteProduct(middleware.UintParam(c, "product_id")); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportProducts выгружает каталог в xlsx; файл годится как шаблон импорта
// GET /api/admin/products/export
func (h *CatalogHandler) ExportProducts(c *gin.Context) {
	filename := fmt.Sprintf("products_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.catalogService.ExportProducts(c.Writer); err != nil {
		h.logger.Error("product export failed", zap.Error(err))
		if !c.Writer.Written() {
			c.Header("Content-Disposition", "")
			handleError(c, h.logger, err)
		}
		return
	}
}
