package repository

import (
	"context"
	"fmt"

	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
)

// KafkaRunPublisher emits pipeline-run events to a Kafka topic so
// downstream consumers (alerting, portfolio tooling) see fresh
// predictions without polling the dashboard.
type KafkaRunPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	l        *applogger.Logger
}

func NewKafkaRunPublisher(producer *pkgkafka.Producer, topic string) *KafkaRunPublisher {
	return &KafkaRunPublisher{producer: producer, topic: topic}
}

// SetLogger injects a structured logger.
func (p *KafkaRunPublisher) SetLogger(l *applogger.Logger) { p.l = l }

// PublishRun sends one event, JSON-encoded, keyed by nothing (events are
// small and ordering across tickers does not matter).
func (p *KafkaRunPublisher) PublishRun(ctx context.Context, event any) error {
	if err := p.producer.Publish(ctx, p.topic, nil, event); err != nil {
		if p.l != nil {
			p.l.Error("publish run event", applogger.Error(err))
		}
		return fmt.Errorf("publish run event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying producer.
func (p *KafkaRunPublisher) Close() error {
	return p.producer.Close()
}
