package events

import (
	"context"
	"encoding/json"
	"time"

	skafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Writer is the subset of kafka.Writer the producer needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Publisher forwards keyed JSON messages to a broker.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// KafkaProducer is a Publisher backed by a kafka writer.
type KafkaProducer struct {
	writer Writer
	logger *zap.Logger
}

// NewKafkaProducer writes to topic on the given brokers. Writes are
// asynchronous: Publish only enqueues, and delivery failures are logged by
// the writer's completion callback.
func NewKafkaProducer(brokers []string, topic string, logger *zap.Logger) *KafkaProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return NewKafkaProducerWithWriter(newKafkaWriter(brokers, topic, logger), logger)
}

func newKafkaWriter(brokers []string, topic string, logger *zap.Logger) *skafka.Writer {
	return &skafka.Writer{
		Addr:         skafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &skafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: skafka.RequireOne,
		Async:        true,
		Completion:   deliveryLogger(topic, logger),
	}
}

// deliveryLogger reports failed async batches.
func deliveryLogger(topic string, logger *zap.Logger) func([]skafka.Message, error) {
	return func(msgs []skafka.Message, err error) {
		if err == nil {
			return
		}
		keys := make([]string, 0, len(msgs))
		for _, m := range msgs {
			keys = append(keys, string(m.Key))
		}
		logger.Error("kafka delivery failed",
			zap.String("topic", topic),
			zap.Int("messages", len(msgs)),
			zap.Strings("keys", keys),
			zap.Error(err))
	}
}

// NewKafkaProducerWithWriter allows injecting a test writer.
func NewKafkaProducerWithWriter(w Writer, logger *zap.Logger) *KafkaProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaProducer{writer: w, logger: logger}
}

// Publish marshals value to JSON and writes one message with key. The write
// is detached from ctx cancellation so a finished request does not drop it.
func (p *KafkaProducer) Publish(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		p.logger.Error("marshal kafka value", zap.String("key", key), zap.Error(err))
		return err
	}
	msg := skafka.Message{Key: []byte(key), Value: b, Time: time.Now()}
	if err := p.writer.WriteMessages(context.WithoutCancel(ctx), msg); err != nil {
		p.logger.Error("kafka write", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Close closes the underlying writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every message. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NopPublisher) Close() error { return nil }
