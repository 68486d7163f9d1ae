package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/domain/entity"
	"github.com/yourusername/storefront-api/internal/handler/dto"
	"github.com/yourusername/storefront-api/internal/handler/helper"
	"github.com/yourusername/storefront-api/internal/middleware"
	"github.com/yourusername/storefront-api/internal/service"
)

// OrderManager — операции с заказами, нужные обработчику
type OrderManager interface {
	PlaceOrder(userID, email string, in service.PlaceOrderInput) (*entity.Order, error)
	ListMyOrders(userID string, page, pageSize int) ([]entity.Order, error)
	GetMyOrder(userID string, orderID uint) (*entity.Order, error)
	ListOrders(status string, page, pageSize int) (*service.OrderPage, error)
	UpdateStatus(ctx context.Context, orderID uint, status string, expectedVersion *int) (*entity.Order, error)
}

// OrderHandler обрабатывает запросы заказов
type OrderHandler struct {
	orders OrderManager
	logger *zap.Logger
}

// NewOrderHandler создает обработчик заказов
func NewOrderHandler(orders OrderManager, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger.Named("order_handler")}
}

// PlaceOrder оформляет заказ текущего пользователя
// POST /api/orders
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req service.PlaceOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.orders.PlaceOrder(userID, c.GetString(middleware.ContextEmail), req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListMyOrders возвращает заказы текущего пользователя
// GET /api/orders/my
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	page, pageSize := helper.Pagination(c)
	orders, err := h.orders.ListMyOrders(userID, page, pageSize)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": orders})
}

// GetMyOrder возвращает заказ текущего пользователя
// GET /api/orders/:id
func (h *OrderHandler) GetMyOrder(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	order, err := h.orders.GetMyOrder(userID, middleware.UintParam(c, "order_id"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListOrders возвращает заказы для админки
// GET /api/admin/orders?status=&page=&page_size=
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, pageSize := helper.Pagination(c)
	result, err := h.orders.ListOrders(c.Query("status"), page, pageSize)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateStatus меняет статус заказа
// PUT /api/admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), middleware.UintParam(c, "order_id"), req.Status, req.Version)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
