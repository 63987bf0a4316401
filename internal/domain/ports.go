package domain

import (
	"context"
	"time"
)

// OrderStore — транзакционное хранилище агрегата заказа.
type OrderStore interface {
	// CreateOrderWithItems атомарно сохраняет заказ вместе с позициями.
	CreateOrderWithItems(ctx context.Context, order Order) (Order, error)
	// CountOrders возвращает количество заказов, подходящих под фильтр.
	CountOrders(ctx context.Context, filter OrderFilter) (int64, error)
	// FindOrders возвращает окно заказов в порядке вставки. Позиции не загружаются.
	FindOrders(ctx context.Context, filter OrderFilter, skip, take int) ([]Order, error)
	// FindOrderByID возвращает заказ с позициями или ErrOrderNotFound.
	FindOrderByID(ctx context.Context, id string) (Order, error)
	// UpdateOrderStatus меняет статус и возвращает обновлённый заказ или ErrOrderNotFound.
	UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) (Order, error)
}

// ProductValidator проверяет товары одним запросом к сервису товаров.
type ProductValidator interface {
	// Validate возвращает снимки найденных товаров. Порядок не гарантируется.
	// Ошибки оборачивают ErrUpstreamUnavailable или ErrUpstreamRejected.
	Validate(ctx context.Context, ids []ProductID) ([]ProductSnapshot, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(ctx context.Context, event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
