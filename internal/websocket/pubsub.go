package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// clusterEnvelope — сообщение между экземплярами API через Redis
type clusterEnvelope struct {
	UserID  string `json:"user_id"`
	Payload []byte `json:"payload"`
}

// RedisPubSub реализует PubSubProvider поверх Redis Pub/Sub
type RedisPubSub struct {
	client redis.UniversalClient
	logger *zap.Logger

	mu   sync.Mutex
	subs map[*redis.PubSub]struct{}
}

// NewRedisPubSub создает Redis Pub/Sub провайдер, используя существующий UniversalClient.
// Клиент закрывает вызывающая сторона.
func NewRedisPubSub(client redis.UniversalClient, logger *zap.Logger) (*RedisPubSub, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil for RedisPubSub")
	}
	return &RedisPubSub{
		client: client,
		logger: logger.Named("pubsub"),
		subs:   make(map[*redis.PubSub]struct{}),
	}, nil
}

// Publish публикует сообщение в указанный канал
func (p *RedisPubSub) Publish(ctx context.Context, channel string, message []byte) error {
	if err := p.client.Publish(ctx, channel, message).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe подписывается на канал Redis и пересылает сообщения до отмены ctx
func (p *RedisPubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	pubsub := p.client.Subscribe(ctx, channel)
	// Ждем подтверждения подписки
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to redis channel %s: %w", channel, err)
	}

	p.mu.Lock()
	p.subs[pubsub] = struct{}{}
	p.mu.Unlock()
	p.logger.Info("subscribed", zap.String("channel", channel))

	msgCh := make(chan []byte, 100)
	go func() {
		defer func() {
			p.mu.Lock()
			delete(p.subs, pubsub)
			p.mu.Unlock()
			pubsub.Close()
			close(msgCh)
		}()

		redisCh := pubsub.Channel()
		for {
			select {
			case msg, ok := <-redisCh:
				if !ok {
					p.logger.Warn("redis channel closed", zap.String("channel", channel))
					return
				}
				select {
				case msgCh <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return msgCh, nil
}

// Close закрывает активные подписки
func (p *RedisPubSub) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for sub := range p.subs {
		if err := sub.Close(); err != nil {
			lastErr = err
		}
		delete(p.subs, sub)
	}
	return lastErr
}
