package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/service"
)

// ProductImporter — импорт товаров из файла
type ProductImporter interface {
	Import(ctx context.Context, filename string, r io.Reader) (*service.ImportReport, error)
}

// ImportHandler принимает файлы массового импорта
type ImportHandler struct {
	importer     ProductImporter
	maxFileBytes int64
	logger       *zap.Logger
}

// NewImportHandler создает обработчик импорта
func NewImportHandler(importer ProductImporter, maxFileBytes int64, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{importer: importer, maxFileBytes: maxFileBytes, logger: logger.Named("import_handler")}
}

// ImportProducts импортирует товары из xlsx или csv
// POST /api/admin/products/import (multipart, поле file)
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	if h.maxFileBytes > 0 {
		// запас на служебные части multipart
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileBytes+1<<20)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required: " + err.Error()})
		return
	}
	if h.maxFileBytes > 0 && fileHeader.Size > h.maxFileBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d bytes", h.maxFileBytes)})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()

	report, err := h.importer.Import(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
