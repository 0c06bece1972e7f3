package kafka

import (
	"context"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/bielim/country-risk-etl/internal/config"
	"github.com/bielim/country-risk-etl/internal/domain"
)

// Reader consumes raw risk result messages from the source topic.
// It implements pipeline.BatchExtractor.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a Kafka consumer for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaSourceTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // explicit commits only
	})
	return &Reader{reader: r, logger: logger}
}

// ExtractBatch fetches up to batchSize messages. It blocks for the first
// message, then drains whatever else arrives within a short window so a slow
// topic still yields single-message batches promptly.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawResult, error) {
	first, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}

	batch := make([]domain.RawResult, 0, batchSize)
	batch = append(batch, r.mapMessage(first))

	for len(batch) < batchSize {
		drainCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		msg, err := r.reader.FetchMessage(drainCtx)
		cancel()
		if err != nil {
			break
		}
		batch = append(batch, r.mapMessage(msg))
	}
	return batch, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessage converts a Kafka message to a domain RawResult, wiring the
// offset commit back to the consumer group.
func (r *Reader) mapMessage(msg kafkago.Message) domain.RawResult {
	return mapMessageToRawResult(msg, func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	})
}

func mapMessageToRawResult(msg kafkago.Message, commit func(ctx context.Context) error) domain.RawResult {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.RawResult{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Commit:    commit,
	}
}
