package kafka

import (
	"encoding/json"
	"time"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// Topics для событий заказов.
const (
	TopicOrderEvents     = "orders.events"
	TopicDeadLetterQueue = "orders.dlq"
)

// Kafka headers публикуемых сообщений.
const (
	HeaderEventType     = "x-event-type"
	HeaderAggregateType = "x-aggregate-type"
	HeaderOutboxID      = "x-outbox-id"
)

// Envelope — конверт события заказа в topic.
type Envelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// NewEnvelope упаковывает outbox-сообщение.
func NewEnvelope(msg domain.OutboxMessage, at time.Time) Envelope {
	env := Envelope{
		ID:            msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		PublishedAt:   at.UTC(),
	}
	if json.Valid(msg.Payload) {
		env.Payload = json.RawMessage(msg.Payload)
	}
	return env
}

// PartitionKey — ключ партиционирования: события одного заказа попадают в одну партицию.
func PartitionKey(msg domain.OutboxMessage) string {
	if msg.AggregateID != "" {
		return msg.AggregateID
	}
	return msg.ID
}
