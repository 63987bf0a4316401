package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
	"github.com/vladislavdragonenkov/orders/internal/service/outbox"
)

// createOrchestrator собирает оркестратор. События пишутся в outbox только при наличии Kafka,
// иначе их некому доставлять.
func createOrchestrator(deps *runtimeDependencies, eventsEnabled bool, m *metrics.OrderMetrics, logger *log.Entry) *orders.Orchestrator {
	options := []orders.Option{
		orders.WithLogger(logger.WithField("component", "orders")),
		orders.WithMetrics(m),
	}
	if eventsEnabled {
		options = append(options, orders.WithOutbox(deps.outboxRepo))
	}
	return orders.NewOrchestrator(deps.store, deps.products, options...)
}

// createOutboxWorker собирает воркер доставки событий в orders.events с DLQ orders.dlq.
func createOutboxWorker(deps *runtimeDependencies, producer *kafka.Producer, cfg Config, logger *log.Entry) *outbox.Worker {
	return outbox.NewWorker(
		deps.outboxRepo,
		kafka.NewOutboxPublisher(producer, kafka.TopicOrderEvents),
		outbox.WithDLQPublisher(kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue)),
		outbox.WithLogger(logger.WithField("component", "outbox-worker")),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
	)
}
