package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrHubStopped возвращается при обращении к остановленному хабу
var ErrHubStopped = errors.New("websocket hub is stopped")

// HubOptions — настройки хаба
type HubOptions struct {
	// PubSub включает кластерный режим: события идут через канал Channel
	// и доставляются подключениям на всех экземплярах. nil — только локальная доставка.
	PubSub  PubSubProvider
	Channel string

	// SendBuffer — размер очереди исходящих сообщений клиента
	SendBuffer int
}

type delivery struct {
	userID    string
	eventType string
	payload   []byte
}

// Hub хранит подключения пользователей. Реестром владеет только горутина Run.
type Hub struct {
	instanceID string
	pubsub     PubSubProvider
	channel    string
	sendBuffer int

	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}

	metrics *HubMetrics
	logger  *zap.Logger
}

// NewHub создает хаб; перед использованием нужно запустить Run
func NewHub(opts HubOptions, logger *zap.Logger) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultClientBufferSize
	}
	if opts.Channel == "" {
		opts.Channel = "storefront:orders"
	}
	instanceID := uuid.NewString()
	return &Hub{
		instanceID: instanceID,
		pubsub:     opts.PubSub,
		channel:    opts.Channel,
		sendBuffer: opts.SendBuffer,
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery),
		done:       make(chan struct{}),
		metrics:    NewHubMetrics(),
		logger:     logger.Named("ws_hub").With(zap.String("instance_id", instanceID)),
	}
}

// Run обрабатывает регистрации и доставку до отмены ctx. После выхода
// все очереди клиентов закрыты, а их write pump завершает соединения.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	var cluster <-chan []byte
	if h.pubsub != nil {
		ch, err := h.pubsub.Subscribe(ctx, h.channel)
		if err != nil {
			return fmt.Errorf("subscribe to cluster channel: %w", err)
		}
		cluster = ch
		h.logger.Info("cluster mode enabled", zap.String("channel", h.channel))
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil

		case c := <-h.register:
			set, ok := h.clients[c.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.UserID] = set
			}
			set[c] = struct{}{}
			h.metrics.connected(len(h.clients))
			h.logger.Debug("client registered", zap.String("user_id", c.UserID), zap.String("conn_id", c.ConnectionID))

		case c := <-h.unregister:
			h.remove(c)

		case d := <-h.deliver:
			h.deliverLocal(d)

		case raw, ok := <-cluster:
			if !ok {
				// подписка закрылась раньше ctx: продолжаем локально
				h.logger.Warn("cluster subscription closed")
				cluster = nil
				continue
			}
			var env clusterEnvelope
			if err := json.Unmarshal(raw, &env); err != nil {
				h.logger.Warn("bad cluster message", zap.Error(err))
				continue
			}
			h.deliverLocal(delivery{userID: env.UserID, eventType: eventTypeOf(env.Payload), payload: env.Payload})
		}
	}
}

// Done закрывается после остановки Run
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Register добавляет клиента в реестр
func (h *Hub) Register(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Unregister убирает клиента и закрывает его очередь
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// SendToUser доставляет событие всем подключениям пользователя.
// В кластерном режиме событие публикуется в Redis и доставляется каждым экземпляром,
// включая текущий.
func (h *Hub) SendToUser(ctx context.Context, userID string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if h.pubsub != nil {
		env, err := json.Marshal(clusterEnvelope{UserID: userID, Payload: payload})
		if err != nil {
			return fmt.Errorf("marshal cluster envelope: %w", err)
		}
		if err := h.pubsub.Publish(ctx, h.channel, env); err != nil {
			// кластер недоступен: доставляем хотя бы локальным подключениям
			h.logger.Warn("cluster publish failed, delivering locally", zap.Error(err))
			if localErr := h.enqueue(ctx, delivery{userID: userID, eventType: event.Type, payload: payload}); localErr != nil {
				return localErr
			}
			return err
		}
		return nil
	}

	return h.enqueue(ctx, delivery{userID: userID, eventType: event.Type, payload: payload})
}

// Metrics возвращает метрики хаба
func (h *Hub) Metrics() map[string]interface{} {
	return h.metrics.Snapshot()
}

func (h *Hub) enqueue(ctx context.Context, d delivery) error {
	select {
	case h.deliver <- d:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) deliverLocal(d delivery) {
	set := h.clients[d.userID]
	sent := 0
	for c := range set {
		select {
		case c.send <- d.payload:
			sent++
		default:
			// медленный клиент: закрываем, приложение переподключится и перечитает заказ
			h.logger.Warn("client send buffer full, closing", zap.String("user_id", c.UserID), zap.String("conn_id", c.ConnectionID))
			h.metrics.dropped(true)
			h.remove(c)
		}
	}
	if sent > 0 {
		h.metrics.delivered(d.eventType, sent)
	}
}

func (h *Hub) remove(c *Client) {
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	h.metrics.disconnected(len(h.clients))
	h.logger.Debug("client unregistered", zap.String("user_id", c.UserID), zap.String("conn_id", c.ConnectionID))
}

func (h *Hub) closeAll() {
	for _, set := range h.clients {
		for c := range set {
			h.remove(c)
		}
	}
}

func eventTypeOf(payload []byte) string {
	var e struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &e); err != nil {
		return "unknown"
	}
	return e.Type
}
