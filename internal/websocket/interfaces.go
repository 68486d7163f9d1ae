package websocket

import "context"

// PubSubProvider определяет интерфейс для провайдеров публикации/подписки
type PubSubProvider interface {
	// Publish публикует сообщение в указанный канал
	Publish(ctx context.Context, channel string, message []byte) error

	// Subscribe подписывается на указанный канал и возвращает канал для сообщений.
	// Канал закрывается после отмены ctx.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)

	// Close освобождает ресурсы
	Close() error
}
