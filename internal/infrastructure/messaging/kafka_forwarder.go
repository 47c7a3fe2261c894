// Package messaging forwards domain events to Kafka for downstream consumers
// such as the warehouse and accounting integrations.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/infrastructure/config"
	"github.com/aurum/jewelstore/internal/infrastructure/event"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrForwarderClosed is returned after Close
var ErrForwarderClosed = errors.New("kafka forwarder closed")

// Header keys set on every forwarded message
const (
	HeaderEventType     = "event_type"
	HeaderEventID       = "event_id"
	HeaderAggregateType = "aggregate_type"
)

// messageWriter is the part of *kafka.Writer the forwarder uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaForwarder publishes every domain event to one topic keyed by aggregate id,
// so events of the same bill or shipment stay ordered within a partition.
type KafkaForwarder struct {
	writer     messageWriter
	serializer *event.EventSerializer
	topic      string
	timeout    time.Duration
	logger     *zap.Logger
	closed     atomic.Bool
}

// NewKafkaForwarder creates a forwarder writing to cfg.Topic
func NewKafkaForwarder(cfg *config.KafkaConfig, serializer *event.EventSerializer, logger *zap.Logger) (*KafkaForwarder, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Transport: &kafka.Transport{
			Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				dialer := &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true, KeepAlive: 30 * time.Second}
				return dialer.DialContext(ctx, network, address)
			},
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Sugar().Errorf("kafka writer: "+msg, args...)
		}),
	}
	return newKafkaForwarder(writer, serializer, cfg.Topic, cfg.WriteTimeout, logger), nil
}

func newKafkaForwarder(w messageWriter, serializer *event.EventSerializer, topic string, timeout time.Duration, logger *zap.Logger) *KafkaForwarder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &KafkaForwarder{writer: w, serializer: serializer, topic: topic, timeout: timeout, logger: logger}
}

// EventTypes implements shared.EventHandler
func (f *KafkaForwarder) EventTypes() []string {
	return event.AllEventTypes()
}

// Handle implements shared.EventHandler
func (f *KafkaForwarder) Handle(ctx context.Context, ev shared.DomainEvent) error {
	if f.closed.Load() {
		return ErrForwarderClosed
	}
	msg, err := f.toMessage(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("forward %s to %s: %w", ev.EventType(), f.topic, err)
	}
	f.logger.Debug("event forwarded",
		zap.String("topic", f.topic),
		zap.String("event_type", ev.EventType()),
		zap.String("event_id", ev.EventID().String()),
	)
	return nil
}

func (f *KafkaForwarder) toMessage(ev shared.DomainEvent) (kafka.Message, error) {
	value, err := f.serializer.Serialize(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("serialize %s: %w", ev.EventType(), err)
	}
	return kafka.Message{
		Key:   []byte(ev.AggregateID().String()),
		Value: value,
		Time:  ev.OccurredAt(),
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(ev.EventType())},
			{Key: HeaderEventID, Value: []byte(ev.EventID().String())},
			{Key: HeaderAggregateType, Value: []byte(ev.AggregateType())},
		},
	}, nil
}

// Close flushes pending writes
func (f *KafkaForwarder) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.writer.Close()
}

var _ shared.EventHandler = (*KafkaForwarder)(nil)
