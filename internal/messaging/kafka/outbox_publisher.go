package kafka

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// OutboxTopicPublisher публикует outbox-сообщения в заданный Kafka topic.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher создаёт Kafka-паблишер для transactional outbox.
func NewOutboxPublisher(producer *Producer, topic string) *OutboxTopicPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OutboxTopicPublisher{
		producer: producer,
		topic:    topic,
	}
}

// Topic возвращает topic назначения.
func (p *OutboxTopicPublisher) Topic() string {
	return p.topic
}

// Publish отправляет событие с ключом заказа.
func (p *OutboxTopicPublisher) Publish(ctx context.Context, event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("%w: kafka outbox publisher is not initialized", domain.ErrOutboxPublish)
	}

	headers := map[string]string{
		HeaderEventType:     event.EventType,
		HeaderAggregateType: event.AggregateType,
		HeaderOutboxID:      event.ID,
	}
	return p.producer.PublishJSON(ctx, p.topic, PartitionKey(event), NewEnvelope(event, p.producer.now()), headers)
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
