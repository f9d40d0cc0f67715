// Package events announces collection replacements to downstream consumers
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/metrics"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ChangeEvent is published after a collection was replaced
type ChangeEvent struct {
	Collection string    `json:"collection"`
	IDs        []string  `json:"ids"`
	Backend    string    `json:"backend"`
	At         time.Time `json:"at"`
}

// Publisher delivers change events
type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
	Close() error
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ChangeEvent) error { return nil }
func (NopPublisher) Close() error                               { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON keyed by collection
type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher for topic
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		WriteTimeout:           10 * time.Second,
		ReadTimeout:            10 * time.Second,
		AllowAutoTopicCreation: true,
		ErrorLogger:            kafka.LoggerFunc(logger.Sugar().Errorf),
	}

	return &KafkaPublisher{writer: writer, logger: logger}
}

// New returns a Kafka publisher when brokers are configured
func New(brokers []string, topic string, logger *zap.Logger) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	logger.Info("Publishing change events", zap.Strings("brokers", brokers), zap.String("topic", topic))
	return NewKafkaPublisher(brokers, topic, logger)
}

// Publish writes one event
func (p *KafkaPublisher) Publish(ctx context.Context, event ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Collection),
		Value: payload,
		Time:  event.At,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(event.Collection, "failed").Inc()
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	metrics.EventsPublishedTotal.WithLabelValues(event.Collection, "ok").Inc()
	p.logger.Debug("Published change event",
		zap.String("collection", event.Collection),
		zap.Int("records", len(event.IDs)),
	)
	return nil
}

// Close flushes pending messages
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
