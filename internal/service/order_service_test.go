package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/domain/entity"
	"github.com/yourusername/storefront-api/internal/domain/repository"
	apperrors "github.com/yourusername/storefront-api/internal/pkg/errors"
	"github.com/yourusername/storefront-api/internal/websocket"
)

type orderMocks struct {
	orders   *MockOrderRepo
	products *MockProductRepo
	notifier *MockNotifier
	email    *MockEmailService
}

func newTestOrderService() (*OrderService, orderMocks) {
	m := orderMocks{
		orders:   new(MockOrderRepo),
		products: new(MockProductRepo),
		notifier: new(MockNotifier),
		email:    new(MockEmailService),
	}
	return NewOrderService(m.orders, m.products, m.notifier, m.email, zap.NewNop()), m
}

func TestOrderService_PlaceOrder_SnapshotsPrices(t *testing.T) {
	svc, m := newTestOrderService()

	m.products.On("GetByID", uint(1)).Return(&entity.Product{ID: 1, Name: "Mug", Price: 4.10, Stock: 10, IsActive: true}, nil)
	m.products.On("GetByID", uint(2)).Return(&entity.Product{ID: 2, Name: "Tea", Price: 2.35, Stock: 1, IsActive: true}, nil)
	m.orders.On("CreateWithStock", mock.Anything).Return(nil)

	order, err := svc.PlaceOrder("user-1", " Buyer@Example.com ", PlaceOrderInput{
		Items: []OrderLineInput{
			{ProductID: 1, Quantity: 1},
			{ProductID: 2, Quantity: 1},
			{ProductID: 1, Quantity: 2},
		},
		Address: " Riyadh ",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, 1, order.Version)
	assert.Equal(t, "buyer@example.com", order.CustomerEmail)
	assert.Equal(t, "Riyadh", order.Address)
	require.Len(t, order.Items, 2, "repeated products are merged")
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, "Mug", order.Items[0].ProductName)
	assert.Equal(t, 14.65, order.Total)
}

func TestOrderService_PlaceOrder_InsufficientStock(t *testing.T) {
	svc, m := newTestOrderService()

	m.products.On("GetByID", uint(1)).Return(&entity.Product{ID: 1, Price: 1, Stock: 1, IsActive: true}, nil)

	_, err := svc.PlaceOrder("user-1", "", PlaceOrderInput{Items: []OrderLineInput{{ProductID: 1, Quantity: 2}}})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	m.orders.AssertNotCalled(t, "CreateWithStock", mock.Anything)
}

func TestOrderService_PlaceOrder_StockRaceMapsToConflict(t *testing.T) {
	svc, m := newTestOrderService()

	m.products.On("GetByID", uint(1)).Return(&entity.Product{ID: 1, Price: 1, Stock: 5, IsActive: true}, nil)
	m.orders.On("CreateWithStock", mock.Anything).Return(repository.ErrInsufficientStock)

	_, err := svc.PlaceOrder("user-1", "", PlaceOrderInput{Items: []OrderLineInput{{ProductID: 1, Quantity: 2}}})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestOrderService_PlaceOrder_InvalidItems(t *testing.T) {
	svc, m := newTestOrderService()

	_, err := svc.PlaceOrder("user-1", "", PlaceOrderInput{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.PlaceOrder("user-1", "", PlaceOrderInput{Items: []OrderLineInput{{ProductID: 1, Quantity: 0}}})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	m.products.On("GetByID", uint(9)).Return(nil, apperrors.ErrNotFound)
	_, err = svc.PlaceOrder("user-1", "", PlaceOrderInput{Items: []OrderLineInput{{ProductID: 9, Quantity: 1}}})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	m.products.On("GetByID", uint(8)).Return(&entity.Product{ID: 8, Stock: 5, IsActive: false}, nil)
	_, err = svc.PlaceOrder("user-1", "", PlaceOrderInput{Items: []OrderLineInput{{ProductID: 8, Quantity: 1}}})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestOrderService_GetMyOrder_ForeignOrderIsNotFound(t *testing.T) {
	svc, m := newTestOrderService()
	m.orders.On("GetByID", uint(5)).Return(&entity.Order{ID: 5, UserID: "someone-else"}, nil)

	_, err := svc.GetMyOrder("user-1", 5)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOrderService_UpdateStatus_NotifiesWithNewVersion(t *testing.T) {
	svc, m := newTestOrderService()

	m.orders.On("GetByID", uint(5)).Return(&entity.Order{ID: 5, UserID: "user-1", Status: entity.OrderStatusPending, Version: 3}, nil)
	m.orders.On("UpdateStatus", uint(5), entity.OrderStatusConfirmed, 3).Return(nil)

	var pushed websocket.Event
	m.notifier.On("SendToUser", "user-1", mock.Anything).
		Run(func(args mock.Arguments) { pushed = args.Get(1).(websocket.Event) }).
		Return(nil)
	m.email.On("SendOrderStatus", mock.Anything).Return(errors.New("resend down"))

	expected := 3
	order, err := svc.UpdateStatus(context.Background(), 5, entity.OrderStatusConfirmed, &expected)
	require.NoError(t, err, "email failure must not fail the status change")

	assert.Equal(t, entity.OrderStatusConfirmed, order.Status)
	assert.Equal(t, 4, order.Version)

	assert.Equal(t, websocket.EventOrderStatus, pushed.Type)
	var data websocket.OrderStatusData
	require.NoError(t, json.Unmarshal(pushed.Data, &data))
	assert.Equal(t, uint(5), data.OrderID)
	assert.Equal(t, entity.OrderStatusConfirmed, data.Status)
	assert.Equal(t, 4, data.Version)

	m.email.AssertExpectations(t)
}

func TestOrderService_UpdateStatus_Rejections(t *testing.T) {
	svc, m := newTestOrderService()
	m.orders.On("GetByID", uint(5)).Return(&entity.Order{ID: 5, UserID: "user-1", Status: entity.OrderStatusShipped, Version: 2}, nil)

	_, err := svc.UpdateStatus(context.Background(), 5, "lost", nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	stale := 1
	_, err = svc.UpdateStatus(context.Background(), 5, entity.OrderStatusDelivered, &stale)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = svc.UpdateStatus(context.Background(), 5, entity.OrderStatusCancelled, nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	m.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	m.notifier.AssertNotCalled(t, "SendToUser", mock.Anything, mock.Anything)
}

func TestOrderService_UpdateStatus_ConcurrentChange(t *testing.T) {
	svc, m := newTestOrderService()
	m.orders.On("GetByID", uint(5)).Return(&entity.Order{ID: 5, UserID: "user-1", Status: entity.OrderStatusShipped, Version: 2}, nil)
	m.orders.On("UpdateStatus", uint(5), entity.OrderStatusDelivered, 2).Return(repository.ErrStaleOrderVersion)

	_, err := svc.UpdateStatus(context.Background(), 5, entity.OrderStatusDelivered, nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	m.notifier.AssertNotCalled(t, "SendToUser", mock.Anything, mock.Anything)
}

func TestOrderService_ListOrders_UnknownStatus(t *testing.T) {
	svc, _ := newTestOrderService()
	_, err := svc.ListOrders("teleported", 1, 20)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
