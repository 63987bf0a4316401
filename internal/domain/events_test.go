package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestOrderEvent_OutboxMessage(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	order := Order{ID: "order-1", Status: OrderStatusDelivered, TotalAmount: decimal.RequireFromString("10.5"), TotalItems: 2}

	msg, err := NewOrderEvent(EventTypeOrderStatusChanged, order, OrderStatusPending, at).OutboxMessage()
	if err != nil {
		t.Fatalf("outbox message: %v", err)
	}
	if msg.AggregateType != AggregateTypeOrder || msg.AggregateID != "order-1" || msg.EventType != EventTypeOrderStatusChanged {
		t.Fatalf("unexpected message: %+v", msg)
	}

	var decoded map[string]any
	if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if decoded["status"] != "DELIVERED" || decoded["previous_status"] != "PENDING" || decoded["total_amount"] != "10.5" {
		t.Fatalf("unexpected payload: %v", decoded)
	}
}

func TestOrderEvent_CreatedOmitsPreviousStatus(t *testing.T) {
	msg, err := NewOrderEvent(EventTypeOrderCreated, Order{ID: "order-2", Status: OrderStatusPending}, "", time.Now()).OutboxMessage()
	if err != nil {
		t.Fatalf("outbox message: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if _, ok := decoded["previous_status"]; ok {
		t.Fatalf("previous_status must be omitted for creation: %v", decoded)
	}
}
