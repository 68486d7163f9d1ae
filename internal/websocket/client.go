package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время, которое разрешено клиенту читать следующее сообщение.
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения: клиент шлёт только ping
	maxMessageSize = 512

	// Размер буфера по умолчанию для очереди исходящих сообщений
	defaultClientBufferSize = 32
)

// Client является посредником между WebSocket соединением и hub.
// Очередь send закрывает только хаб; ответы на ping идут через control.
type Client struct {
	UserID       string
	ConnectionID string

	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	control chan []byte
	logger  *zap.Logger
}

// NewClient создает клиента для соединения пользователя
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	connectionID := uuid.NewString()
	return &Client{
		UserID:       userID,
		ConnectionID: connectionID,
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, hub.sendBuffer),
		control:      make(chan []byte, 4),
		logger:       hub.logger.With(zap.String("user_id", userID), zap.String("conn_id", connectionID)),
	}
}

// Serve регистрирует клиента и запускает pumps. Возвращается сразу.
func (c *Client) Serve() error {
	if err := c.hub.Register(c); err != nil {
		c.conn.Close()
		return err
	}
	go c.writePump()
	go c.readPump()
	return nil
}

// readPump читает сообщения клиента до ошибки или закрытия соединения
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info("websocket read error", zap.Error(err))
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.handleMessage(message)
	}
}

func (c *Client) handleMessage(message []byte) {
	var in Event
	if err := json.Unmarshal(message, &in); err != nil {
		c.logger.Debug("ignoring malformed client message", zap.Error(err))
		return
	}
	switch in.Type {
	case ClientPing:
		pong, _ := json.Marshal(Event{Type: EventPong})
		select {
		case c.control <- pong:
		default:
		}
	default:
		c.logger.Debug("ignoring client message", zap.String("type", in.Type))
	}
}

// writePump отправляет сообщения клиенту из очередей send и control
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// хаб закрыл очередь
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("websocket write error", zap.Error(err))
				return
			}

		case message := <-c.control:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
