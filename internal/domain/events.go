package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Типы событий заказа, публикуемых через outbox.
const (
	EventTypeOrderCreated       = "order.created"
	EventTypeOrderStatusChanged = "order.status_changed"

	AggregateTypeOrder = "order"
)

// OrderEvent — полезная нагрузка событий заказа.
type OrderEvent struct {
	EventType      string          `json:"event_type"`
	OrderID        string          `json:"order_id"`
	Status         OrderStatus     `json:"status"`
	PreviousStatus OrderStatus     `json:"previous_status,omitempty"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalItems     int32           `json:"total_items"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// NewOrderEvent собирает событие по состоянию заказа.
func NewOrderEvent(eventType string, order Order, previous OrderStatus, at time.Time) OrderEvent {
	return OrderEvent{
		EventType:      eventType,
		OrderID:        order.ID,
		Status:         order.Status,
		PreviousStatus: previous,
		TotalAmount:    order.TotalAmount,
		TotalItems:     order.TotalItems,
		OccurredAt:     at.UTC(),
	}
}

// OutboxMessage сериализует событие в сообщение outbox.
func (e OrderEvent) OutboxMessage() (OutboxMessage, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return OutboxMessage{}, fmt.Errorf("marshal %s event: %w", e.EventType, err)
	}
	return OutboxMessage{
		AggregateType: AggregateTypeOrder,
		AggregateID:   e.OrderID,
		EventType:     e.EventType,
		Payload:       payload,
	}, nil
}
