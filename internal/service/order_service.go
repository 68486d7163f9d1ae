package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/domain/entity"
	"github.com/yourusername/storefront-api/internal/domain/repository"
	apperrors "github.com/yourusername/storefront-api/internal/pkg/errors"
	"github.com/yourusername/storefront-api/internal/websocket"
)

const maxOrderLines = 50

// OrderNotifier доставляет realtime-события пользователю
type OrderNotifier interface {
	SendToUser(ctx context.Context, userID string, event websocket.Event) error
}

// OrderLineInput — позиция создаваемого заказа
type OrderLineInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// PlaceOrderInput — данные нового заказа
type PlaceOrderInput struct {
	Items   []OrderLineInput `json:"items" binding:"required,min=1,dive"`
	Address string           `json:"address" binding:"max=500"`
	Phone   string           `json:"phone" binding:"max=32"`
}

// OrderPage — страница заказов
type OrderPage struct {
	Items    []entity.Order `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// OrderService оформляет заказы и меняет их статусы
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	notifier    OrderNotifier
	email       EmailService
	logger      *zap.Logger
}

// NewOrderService создаёт сервис заказов
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	notifier OrderNotifier,
	email EmailService,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		notifier:    notifier,
		email:       email,
		logger:      logger.Named("orders"),
	}
}

// PlaceOrder фиксирует цены и названия товаров и создаёт заказ со списанием остатков
func (s *OrderService) PlaceOrder(userID, email string, in PlaceOrderInput) (*entity.Order, error) {
	lines, err := mergeOrderLines(in.Items)
	if err != nil {
		return nil, err
	}

	order := &entity.Order{
		UserID:        userID,
		CustomerEmail: normalizeEmail(email),
		Status:        entity.OrderStatusPending,
		Version:       1,
		Address:       strings.TrimSpace(in.Address),
		Phone:         strings.TrimSpace(in.Phone),
		Items:         make([]entity.OrderItem, 0, len(lines)),
	}

	for _, line := range lines {
		product, err := s.productRepo.GetByID(line.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: product #%d does not exist", apperrors.ErrValidation, line.ProductID)
			}
			return nil, err
		}
		if !product.IsActive {
			return nil, fmt.Errorf("%w: product #%d is not available", apperrors.ErrValidation, line.ProductID)
		}
		if !product.InStock(line.Quantity) {
			return nil, fmt.Errorf("%w: only %d of product #%d in stock", apperrors.ErrConflict, product.Stock, product.ID)
		}

		item := entity.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    line.Quantity,
		}
		order.Items = append(order.Items, item)
		order.Total += item.Subtotal()
	}
	order.Total = math.Round(order.Total*100) / 100

	if err := s.orderRepo.CreateWithStock(order); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrConflict, err)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order placed",
		zap.Uint("order_id", order.ID),
		zap.String("user_id", userID),
		zap.Int("lines", len(order.Items)),
		zap.Float64("total", order.Total))
	return order, nil
}

// ListMyOrders возвращает заказы покупателя
func (s *OrderService) ListMyOrders(userID string, page, pageSize int) ([]entity.Order, error) {
	page, pageSize = normalizePage(page, pageSize)
	orders, err := s.orderRepo.ListByUser(userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	return orders, nil
}

// GetMyOrder возвращает заказ, если он принадлежит пользователю
func (s *OrderService) GetMyOrder(userID string, orderID uint) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		// чужой заказ выглядит как отсутствующий
		return nil, fmt.Errorf("order #%d: %w", orderID, apperrors.ErrNotFound)
	}
	return order, nil
}

// ListOrders возвращает страницу заказов для админки
func (s *OrderService) ListOrders(status string, page, pageSize int) (*OrderPage, error) {
	if status != "" && !entity.IsKnownOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, status)
	}
	page, pageSize = normalizePage(page, pageSize)
	orders, total, err := s.orderRepo.List(status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	return &OrderPage{Items: orders, Total: total, Page: page, PageSize: pageSize}, nil
}

// UpdateStatus переводит заказ в новый статус. expectedVersion (если задан) должен
// совпасть с текущей версией заказа. После записи событие с новой версией уходит
// владельцу заказа, а письмо отправляется без гарантии доставки.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status string, expectedVersion *int) (*entity.Order, error) {
	if !entity.IsKnownOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, status)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if expectedVersion != nil && *expectedVersion != order.Version {
		return nil, fmt.Errorf("%w: order #%d is at version %d, not %d", apperrors.ErrConflict, orderID, order.Version, *expectedVersion)
	}
	if !order.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: cannot change order #%d from %s to %s", apperrors.ErrConflict, orderID, order.Status, status)
	}

	if err := s.orderRepo.UpdateStatus(orderID, status, order.Version); err != nil {
		if errors.Is(err, repository.ErrStaleOrderVersion) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrConflict, err)
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}
	order.Status = status
	order.Version++
	order.UpdatedAt = time.Now()

	s.logger.Info("order status changed",
		zap.Uint("order_id", orderID),
		zap.String("status", status),
		zap.Int("version", order.Version))

	s.notify(ctx, order)
	return order, nil
}

func (s *OrderService) notify(ctx context.Context, order *entity.Order) {
	if s.notifier != nil {
		event, err := websocket.NewEvent(websocket.EventOrderStatus, websocket.OrderStatusData{
			OrderID:   order.ID,
			Status:    order.Status,
			Version:   order.Version,
			UpdatedAt: order.UpdatedAt,
		})
		if err == nil {
			err = s.notifier.SendToUser(ctx, order.UserID, event)
		}
		if err != nil {
			s.logger.Warn("order status push failed", zap.Uint("order_id", order.ID), zap.Error(err))
		}
	}

	if s.email != nil {
		emailCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := s.email.SendOrderStatus(emailCtx, order); err != nil {
			s.logger.Warn("order status email failed", zap.Uint("order_id", order.ID), zap.Error(err))
		}
	}
}

// mergeOrderLines складывает повторяющиеся товары в одну позицию, сохраняя порядок
func mergeOrderLines(items []OrderLineInput) ([]OrderLineInput, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", apperrors.ErrValidation)
	}
	if len(items) > maxOrderLines {
		return nil, fmt.Errorf("%w: order has more than %d lines", apperrors.ErrValidation, maxOrderLines)
	}

	merged := make([]OrderLineInput, 0, len(items))
	index := make(map[uint]int, len(items))
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: invalid item (product_id=%d, quantity=%d)", apperrors.ErrValidation, item.ProductID, item.Quantity)
		}
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}
