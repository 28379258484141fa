// Package kafka publishes generated alerts to a Kafka topic so
// downstream consumers (dashboards, notification fan-out) can react
// without polling the CSV store.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/harithj/lanka-sitrep/internal/config"
	"github.com/harithj/lanka-sitrep/internal/domain"
)

// Publisher produces alert messages to the configured topic.
// It implements collector.AlertPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the alert topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes and produces one alert.
func (p *Publisher) Publish(ctx context.Context, a domain.AlertRecord) error {
	msg, err := serializeToMessage(a)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an alert into a Kafka message keyed by
// alert ID, with routing headers for filtering consumers.
func serializeToMessage(a domain.AlertRecord) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "category", Value: []byte(a.Category)},
			{Key: "severity", Value: []byte(a.Severity)},
			{Key: "location", Value: []byte(a.Location)},
		},
	}, nil
}
