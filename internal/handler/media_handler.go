package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/handler/dto"
	"github.com/yourusername/storefront-api/internal/service"
)

// MediaHandler обрабатывает загрузку изображений и AI-операции над ними
type MediaHandler struct {
	mediaService *service.MediaService
	logger       *zap.Logger
}

// NewMediaHandler создает медиа-обработчик
func NewMediaHandler(mediaService *service.MediaService, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{mediaService: mediaService, logger: logger.Named("media_handler")}
}

// Upload загружает изображение в хранилище
// POST /api/admin/media/upload (multipart: file, folder)
func (h *MediaHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxImageBytes+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required: " + err.Error()})
		return
	}
	if fileHeader.Size > service.MaxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d bytes", service.MaxImageBytes)})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxImageBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}

	result, err := h.mediaService.Upload(c.Request.Context(), c.PostForm("folder"), fileHeader.Filename, data)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Analyze предлагает карточку товара по фото
// POST /api/admin/media/analyze
func (h *MediaHandler) Analyze(c *gin.Context) {
	var req dto.ImageURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	analysis, err := h.mediaService.Analyze(c.Request.Context(), req.ImageURL)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// RemoveBackground удаляет фон и сохраняет результат как PNG
// POST /api/admin/media/remove-background
func (h *MediaHandler) RemoveBackground(c *gin.Context) {
	var req dto.ImageURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.mediaService.RemoveBackground(c.Request.Context(), req.ImageURL)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
