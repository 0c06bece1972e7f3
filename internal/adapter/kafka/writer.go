package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/bielim/country-risk-etl/internal/config"
	"github.com/bielim/country-risk-etl/internal/domain"
)

// Writer produces adjusted results to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple adjusted results to the sink
// Kafka topic in a single WriteMessages call for efficiency.
func (w *Writer) LoadBatch(ctx context.Context, results []domain.CountryRiskResult) error {
	if len(results) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(results))
	for i := range results {
		msg, err := serializeToMessage(results[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a CountryRiskResult into a Kafka message keyed
// by normalized country name, so one country's results stay in one partition.
func serializeToMessage(result domain.CountryRiskResult) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize risk result: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(domain.NormalizeCountry(result.Country)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "country", Value: []byte(result.Country)},
			{Key: "adjusted_at", Value: []byte(result.AdjustedAt.Format(time.RFC3339))},
		},
	}, nil
}
