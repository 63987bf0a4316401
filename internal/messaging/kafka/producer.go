package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

const defaultClientID = "orders-service"

var errProducerNotInitialized = errors.New("kafka producer is not initialized")

// Producer публикует события заказов в Kafka.
type Producer struct {
	producer sarama.SyncProducer
	logger   *log.Entry
	now      func() time.Time
}

// NewConfig возвращает конфигурацию идемпотентного sync producer.
func NewConfig(clientID string) *sarama.Config {
	if clientID == "" {
		clientID = defaultClientID
	}

	config := sarama.NewConfig()
	config.ClientID = clientID
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	return config
}

// NewProducer подключается к брокерам.
func NewProducer(brokers []string, logger *log.Entry) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are not configured")
	}

	producer, err := sarama.NewSyncProducer(brokers, NewConfig(defaultClientID))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewProducerFromSync(producer, logger), nil
}

// NewProducerFromSync оборачивает готовый sarama.SyncProducer (в том числе mocks.SyncProducer).
func NewProducerFromSync(producer sarama.SyncProducer, logger *log.Entry) *Producer {
	if logger == nil {
		logger = log.WithField("component", "kafka-producer")
	}
	return &Producer{
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
}

// PublishJSON сериализует value и отправляет его в topic.
func (p *Producer) PublishJSON(ctx context.Context, topic, key string, value any, headers map[string]string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.Send(ctx, topic, key, data, headers)
}

// Send синхронно отправляет сообщение. Отменённый ctx прерывает отправку до обращения к брокеру.
func (p *Producer) Send(ctx context.Context, topic, key string, value []byte, headers map[string]string) error {
	if p == nil || p.producer == nil {
		return errProducerNotInitialized
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(value),
		Timestamp: p.now(),
	}
	for name, v := range headers {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte(name), Value: []byte(v)})
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"topic": topic,
			"key":   key,
		}).Error("failed to send message to kafka")
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.logger.WithFields(log.Fields{
		"topic":     topic,
		"key":       key,
		"partition": partition,
		"offset":    offset,
	}).Debug("message sent to kafka")

	return nil
}

// Close закрывает producer.
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
