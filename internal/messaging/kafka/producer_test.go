package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	return logger.WithField("component", "kafka-producer-test")
}

func TestProducer_Send(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicOrderEvents {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "order-1" {
			return errors.New("unexpected key " + string(key))
		}
		if len(msg.Headers) != 1 || string(msg.Headers[0].Key) != HeaderEventType {
			return errors.New("event type header is missing")
		}
		return nil
	})

	producer := NewProducerFromSync(mockProducer, testLogger())
	err := producer.Send(context.Background(), TopicOrderEvents, "order-1", []byte(`{}`), map[string]string{HeaderEventType: "order.created"})
	require.NoError(t, err)
	require.NoError(t, mockProducer.Close())
}

func TestProducer_SendError(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := NewProducerFromSync(mockProducer, testLogger())
	err := producer.PublishJSON(context.Background(), TopicOrderEvents, "order-1", map[string]string{"a": "b"}, nil)
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, mockProducer.Close())
}

func TestProducer_SendCanceledContext(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerFromSync(mockProducer, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := producer.Send(ctx, TopicOrderEvents, "order-1", []byte(`{}`), nil)
	require.ErrorIs(t, err, context.Canceled)
	require.NoError(t, mockProducer.Close())
}

func TestProducer_MarshalError(t *testing.T) {
	producer := NewProducerFromSync(mocks.NewSyncProducer(t, nil), testLogger())
	err := producer.PublishJSON(context.Background(), TopicOrderEvents, "k", make(chan int), nil)
	require.Error(t, err)
}

func TestProducer_NilSafe(t *testing.T) {
	var producer *Producer
	require.ErrorIs(t, producer.Send(context.Background(), TopicOrderEvents, "k", nil, nil), errProducerNotInitialized)
	require.NoError(t, producer.Close())

	_, err := NewProducer(nil, nil)
	require.Error(t, err)
}

func TestNewConfig(t *testing.T) {
	config := NewConfig("")
	require.Equal(t, defaultClientID, config.ClientID)
	require.True(t, config.Producer.Idempotent)
	require.Equal(t, sarama.WaitForAll, config.Producer.RequiredAcks)
	require.Equal(t, sarama.CompressionSnappy, config.Producer.Compression)
	require.Equal(t, 1, config.Net.MaxOpenRequests)
	require.True(t, config.Producer.Return.Successes)
	require.NoError(t, config.Validate())
}

func TestProducer_UsesClockForTimestamp(t *testing.T) {
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if !msg.Timestamp.Equal(at) {
			return errors.New("unexpected timestamp " + msg.Timestamp.String())
		}
		return nil
	})

	producer := NewProducerFromSync(mockProducer, testLogger())
	producer.now = func() time.Time { return at }
	require.NoError(t, producer.Send(context.Background(), TopicOrderEvents, "k", []byte(`1`), nil))
	require.NoError(t, mockProducer.Close())
}
