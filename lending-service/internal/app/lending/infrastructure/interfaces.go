package infrastructure

import "context"

// MessagePublisher интерфейс для отправки событий жизненного цикла займов (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
