// Package kafka publishes run summaries to a Kafka topic so downstream
// consumers (the dashboard's refresh trigger, alerting) learn about
// completed reconciliations without polling the output directory.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/energy-weather-recon/internal/config"
	"github.com/couchcryptid/energy-weather-recon/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
)

// Announcer produces one message per completed run to the announce
// topic. It implements pipeline.Announcer.
type Announcer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewAnnouncer creates a Kafka producer for the configured announce topic.
func NewAnnouncer(cfg *config.Config, logger *slog.Logger) *Announcer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAnnounceTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Announcer{writer: w, logger: logger}
}

// Announce serializes and publishes one run summary.
func (a *Announcer) Announce(ctx context.Context, summary pipeline.RunSummary) error {
	msg, err := serializeSummary(summary)
	if err != nil {
		return err
	}
	return a.writer.WriteMessages(ctx, msg)
}

// Close releases the underlying Kafka writer.
func (a *Announcer) Close() error {
	return a.writer.Close()
}

// serializeSummary marshals a run summary into a Kafka message keyed by
// run date, so compacted topics retain the latest run per day.
func serializeSummary(summary pipeline.RunSummary) (kafkago.Message, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize run summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(summary.RunDate),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "nothing_to_do", Value: []byte(fmt.Sprintf("%t", summary.NothingToDo))},
		},
	}, nil
}
