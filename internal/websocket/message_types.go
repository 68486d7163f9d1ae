package websocket

import (
	"encoding/json"
	"time"
)

// Типы событий, которые сервер отправляет клиентам
const (
	// EventOrderStatus сообщает о смене статуса заказа
	EventOrderStatus = "order:status"

	// EventPong отвечает на ping клиента
	EventPong = "pong"
)

// Типы сообщений от клиента
const (
	// ClientPing — проверка соединения со стороны приложения
	ClientPing = "ping"
)

// Event — конверт любого сообщения по websocket
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent упаковывает данные в конверт
func NewEvent(eventType string, data interface{}) (Event, error) {
	if data == nil {
		return Event{Type: eventType}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Data: raw}, nil
}

// OrderStatusData — содержимое события order:status.
// Клиент отбрасывает событие, если Version не больше уже известной ему версии заказа.
type OrderStatusData struct {
	OrderID   uint      `json:"order_id"`
	Status    string    `json:"status"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}
