// Пакет outbox доставляет события заказов из transactional outbox во внешний брокер.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

const (
	defaultPollInterval   = 1 * time.Second
	defaultBatchSize      = 100
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
)

var (
	publishAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_outbox_publish_attempts_total",
		Help: "Outbox publish attempts grouped by result.",
	}, []string{"result"})
	pendingRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orders_outbox_pending_records",
		Help: "Pending records in the order events outbox.",
	})
	oldestPendingAge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orders_outbox_oldest_pending_age_seconds",
		Help: "Age in seconds of the oldest pending outbox record.",
	})
)

// WorkerOptions задаёт параметры outbox worker.
type WorkerOptions struct {
	Logger         *log.Entry
	DLQPublisher   domain.OutboxPublisher
	PollInterval   time.Duration
	BatchSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// Option настраивает Worker.
type Option func(*WorkerOptions)

// WithLogger задаёт logger для воркера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *WorkerOptions) {
		opts.Logger = logger
	}
}

// WithDLQPublisher задаёт publisher для отправки в DLQ после исчерпания попыток.
func WithDLQPublisher(publisher domain.OutboxPublisher) Option {
	return func(opts *WorkerOptions) {
		opts.DLQPublisher = publisher
	}
}

// WithPollInterval задаёт частоту опроса outbox.
func WithPollInterval(interval time.Duration) Option {
	return func(opts *WorkerOptions) {
		opts.PollInterval = interval
	}
}

// WithBatchSize задаёт размер батча.
func WithBatchSize(batchSize int) Option {
	return func(opts *WorkerOptions) {
		opts.BatchSize = batchSize
	}
}

// WithMaxAttempts задаёт число попыток публикации перед failed/DLQ.
func WithMaxAttempts(maxAttempts int) Option {
	return func(opts *WorkerOptions) {
		opts.MaxAttempts = maxAttempts
	}
}

// WithRetryBaseDelay задаёт базовую задержку exponential backoff.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(opts *WorkerOptions) {
		opts.RetryBaseDelay = delay
	}
}

// Worker публикует pending-события заказов.
type Worker struct {
	repo      domain.OutboxRepository
	publisher domain.OutboxPublisher
	dlq       domain.OutboxPublisher
	logger    *log.Entry
	opts      WorkerOptions
}

// NewWorker создаёт outbox worker.
func NewWorker(repo domain.OutboxRepository, publisher domain.OutboxPublisher, options ...Option) *Worker {
	opts := WorkerOptions{
		PollInterval:   defaultPollInterval,
		BatchSize:      defaultBatchSize,
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
	}
	for _, option := range options {
		option(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = log.WithField("component", "outbox-worker")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBaseDelay < 0 {
		opts.RetryBaseDelay = 0
	}

	return &Worker{
		repo:      repo,
		publisher: publisher,
		dlq:       opts.DLQPublisher,
		logger:    opts.Logger,
		opts:      opts,
	}
}

// Run опрашивает outbox до отмены ctx и возвращает ctx.Err().
func (w *Worker) Run(ctx context.Context) error {
	if w.repo == nil || w.publisher == nil {
		w.logger.Warn("outbox worker is disabled: repo or publisher is nil")
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	w.ProcessOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce выполняет один цикл: забирает батч и публикует каждое событие.
func (w *Worker) ProcessOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	w.refreshBacklogMetrics(ctx)

	batch, err := w.repo.PullPending(ctx, w.opts.BatchSize)
	if err != nil {
		w.logger.WithError(err).Warn("failed to pull pending outbox messages")
		return
	}
	if len(batch) == 0 {
		return
	}

	for _, msg := range batch {
		if ctx.Err() != nil {
			return
		}
		w.handle(ctx, msg)
	}

	w.refreshBacklogMetrics(ctx)
}

func (w *Worker) handle(ctx context.Context, msg domain.OutboxMessage) {
	entry := w.logger.WithFields(log.Fields{
		"outbox_id":  msg.ID,
		"order_id":   msg.AggregateID,
		"event_type": msg.EventType,
	})

	err := w.publishWithRetry(ctx, msg)
	if err == nil {
		if markErr := w.repo.MarkSent(ctx, msg.ID); markErr != nil {
			entry.WithError(markErr).Warn("failed to mark outbox message as sent")
		}
		return
	}
	if ctx.Err() != nil {
		// Сообщение остаётся pending и будет отправлено после рестарта.
		return
	}

	entry.WithError(err).Error("outbox publish failed after retries")
	publishAttempts.WithLabelValues("failed").Inc()

	if dlqErr := w.publishToDLQ(ctx, msg, err); dlqErr != nil {
		entry.WithError(dlqErr).Warn("failed to publish to DLQ")
		publishAttempts.WithLabelValues("dlq_failed").Inc()
	}
	if markErr := w.repo.MarkFailed(ctx, msg.ID); markErr != nil {
		entry.WithError(markErr).Warn("failed to mark outbox message as failed")
	}
}

func (w *Worker) publishWithRetry(ctx context.Context, msg domain.OutboxMessage) error {
	var lastErr error

	for attempt := 1; attempt <= w.opts.MaxAttempts; attempt++ {
		err := w.publisher.Publish(ctx, msg)
		if err == nil {
			publishAttempts.WithLabelValues("sent").Inc()
			return nil
		}
		lastErr = err
		publishAttempts.WithLabelValues("retry_error").Inc()

		if attempt >= w.opts.MaxAttempts {
			break
		}

		delay := w.retryBackoff(attempt)
		if delay <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", domain.ErrOutboxPublish, w.opts.MaxAttempts, lastErr)
}

func (w *Worker) refreshBacklogMetrics(ctx context.Context) {
	stats, err := w.repo.Stats(ctx)
	if err != nil {
		w.logger.WithError(err).Warn("failed to collect outbox backlog stats")
		return
	}

	pendingRecords.Set(float64(stats.PendingCount))
	if stats.PendingCount == 0 || stats.OldestPendingAt.IsZero() {
		oldestPendingAge.Set(0)
		return
	}

	age := time.Since(stats.OldestPendingAt).Seconds()
	if age < 0 {
		age = 0
	}
	oldestPendingAge.Set(age)
}

// retryBackoff возвращает base * 2^(attempt-1) с насыщением.
func (w *Worker) retryBackoff(attempt int) time.Duration {
	base := w.opts.RetryBaseDelay
	if base <= 0 {
		return 0
	}
	if attempt <= 1 {
		return base
	}

	const maxDuration = time.Duration(1<<63 - 1)
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDuration/2 {
			return maxDuration
		}
		delay *= 2
	}
	return delay
}

type dlqEnvelope struct {
	OutboxID       string          `json:"outbox_id"`
	AggregateType  string          `json:"aggregate_type"`
	AggregateID    string          `json:"aggregate_id"`
	EventType      string          `json:"event_type"`
	Payload        json.RawMessage `json:"payload"`
	PublishError   string          `json:"publish_error"`
	DLQPublishedAt time.Time       `json:"dlq_published_at"`
}

func (w *Worker) publishToDLQ(ctx context.Context, msg domain.OutboxMessage, publishErr error) error {
	if w.dlq == nil {
		return nil
	}

	envelope := dlqEnvelope{
		OutboxID:       msg.ID,
		AggregateType:  msg.AggregateType,
		AggregateID:    msg.AggregateID,
		EventType:      msg.EventType,
		PublishError:   publishErr.Error(),
		DLQPublishedAt: time.Now().UTC(),
	}
	if json.Valid(msg.Payload) {
		envelope.Payload = msg.Payload
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal dlq payload: %w", err)
	}

	dead := msg
	dead.Payload = payload
	if err := w.dlq.Publish(ctx, dead); err != nil {
		return fmt.Errorf("publish to dlq: %w", err)
	}
	return nil
}
