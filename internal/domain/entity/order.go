package entity

import (
	"time"
)

// Константы статусов заказа
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// orderTransitions описывает допустимые переходы статусов
var orderTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// IsKnownOrderStatus проверяет, что статус существует
func IsKnownOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order представляет заказ покупателя.
// Version увеличивается при каждой смене статуса; клиенты отбрасывают
// realtime-события с версией не больше уже известной.
type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        string      `gorm:"size:64;not null;index" json:"user_id"`
	CustomerEmail string      `gorm:"size:255" json:"customer_email,omitempty"`
	Status        string      `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Total         float64     `gorm:"type:numeric(12,2);not null;default:0" json:"total"`
	Version       int         `gorm:"not null;default:1" json:"version"`
	Address       string      `gorm:"size:500" json:"address,omitempty"`
	Phone         string      `gorm:"size:32" json:"phone,omitempty"`
	Items         []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Order) TableName() string {
	return "orders"
}

// CanTransitionTo проверяет, разрешён ли переход в новый статус
func (o *Order) CanTransitionTo(status string) bool {
	for _, next := range orderTransitions[o.Status] {
		if next == status {
			return true
		}
	}
	return false
}

// IsFinal проверяет, что заказ в конечном статусе
func (o *Order) IsFinal() bool {
	return len(orderTransitions[o.Status]) == 0
}

// OrderItem — позиция заказа со снимком цены и названия на момент покупки
type OrderItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     uint    `gorm:"not null;index" json:"order_id"`
	ProductID   uint    `gorm:"not null;index" json:"product_id"`
	ProductName string  `gorm:"size:300;not null" json:"product_name"`
	UnitPrice   float64 `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Quantity    int     `gorm:"not null" json:"quantity"`
}

// TableName определяет имя таблицы для GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal возвращает сумму позиции
func (i OrderItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}
