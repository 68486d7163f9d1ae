package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/handler/dto"
	"github.com/yourusername/storefront-api/internal/service"
	"github.com/yourusername/storefront-api/internal/service/homelayout"
)

// HomeContentService — операции главной страницы, нужные обработчику
type HomeContentService interface {
	GetLayout(ctx context.Context) (*service.HomeContent, error)
	Preview(ctx context.Context) (homelayout.Layout, error)
	PublicHome(ctx context.Context) (homelayout.Layout, error)
	SaveLayout(ctx context.Context, content service.HomeContent) (*service.HomeContent, error)
}

// HomeHandler обрабатывает запросы главной страницы
type HomeHandler struct {
	homeService HomeContentService
	logger      *zap.Logger
}

// NewHomeHandler создает обработчик главной страницы
func NewHomeHandler(homeService HomeContentService, logger *zap.Logger) *HomeHandler {
	return &HomeHandler{homeService: homeService, logger: logger.Named("home_handler")}
}

// GetHome возвращает собранную главную страницу для приложения
// GET /api/home
func (h *HomeHandler) GetHome(c *gin.Context) {
	layout, err := h.homeService.PublicHome(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	if layout.Items == nil {
		layout.Items = []homelayout.Item{}
	}
	c.JSON(http.StatusOK, dto.HomeResponse{Items: layout.Items})
}

// GetLayout возвращает три коллекции для редактора
// GET /api/admin/home
func (h *HomeHandler) GetLayout(c *gin.Context) {
	content, err := h.homeService.GetLayout(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// Preview возвращает раскладку вместе с неактивными секциями
// GET /api/admin/home/preview
func (h *HomeHandler) Preview(c *gin.Context) {
	layout, err := h.homeService.Preview(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewHomePreviewResponse(layout))
}

// SaveLayout сохраняет все три коллекции одним пакетом
// PUT /api/admin/home
func (h *HomeHandler) SaveLayout(c *gin.Context) {
	var req service.HomeContent
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	saved, err := h.homeService.SaveLayout(c.Request.Context(), req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
