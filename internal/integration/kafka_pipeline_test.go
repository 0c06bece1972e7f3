//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bielim/country-risk-etl/internal/adapter/kafka"
	"github.com/bielim/country-risk-etl/internal/config"
	"github.com/bielim/country-risk-etl/internal/domain"
	"github.com/bielim/country-risk-etl/internal/observability"
	"github.com/bielim/country-risk-etl/internal/pipeline"
)

const (
	testSourceTopic = "test-source"
	testSinkTopic   = "test-sink"
)

// adjustedMessage holds a deserialized message read from the sink topic.
type adjustedMessage struct {
	Result  domain.CountryRiskResult
	Key     string
	Headers map[string]string
}

// readAdjusted reads a single message from the sink consumer and deserializes it.
func readAdjusted(ctx context.Context, t *testing.T, consumer *kafkago.Reader) adjustedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var result domain.CountryRiskResult
	require.NoError(t, json.Unmarshal(msg.Value, &result), "unmarshal sink message")

	return adjustedMessage{
		Result:  result,
		Key:     string(msg.Key),
		Headers: headers,
	}
}

func riskPayload(t *testing.T, country string, damages ...float64) []byte {
	t.Helper()
	payload, err := json.Marshal(domain.CountryRiskResult{
		Country: country,
		Hazards: []domain.HazardResult{{Peril: domain.PerilTC, Damages: damages}},
	})
	require.NoError(t, err)
	return payload
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (extractor)
// and kafka.Writer (loader) correctly round-trip a message through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:     []string{broker},
		KafkaSourceTopic: testSourceTopic,
		KafkaSinkTopic:   testSinkTopic,
		KafkaGroupID:     fmt.Sprintf("test-reader-%d", time.Now().UnixNano()),
	}

	payload := riskPayload(t, "Lemuria", 10, 20)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("test-key"),
		Value: payload,
	}))

	// Extract via kafka.Reader. Retry because the consumer group may need
	// time to rebalance before partitions are assigned.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawResult
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("test-key"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")

	require.NoError(t, raw.Commit(ctx))

	// Transform the raw message into an adjusted result.
	adjuster := pipeline.NewLossAdjuster(testIndicatorTable(), domain.AdjustOptions{}, discardLogger())
	adjusted, err := adjuster.Transform(ctx, raw)
	require.NoError(t, err)

	// Load via kafka.Writer.
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.LoadBatch(ctx, []domain.CountryRiskResult{adjusted}))

	// Read from the sink topic and verify key, headers, and value.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	am := readAdjusted(ctx, t, consumer)
	assert.Equal(t, "LEMURIA", am.Key)
	assert.Equal(t, "Lemuria", am.Headers["country"])
	_, err = time.Parse(time.RFC3339, am.Headers["adjusted_at"])
	assert.NoError(t, err, "adjusted_at should be valid RFC3339")

	assert.Equal(t, "Lemuria", am.Result.Country)
	require.Len(t, am.Result.Hazards, 1)
	assert.Equal(t, expectedFactor(t), am.Result.DamageFactor)
	// Damages must be rescaled upward for a positive-factor country.
	require.Len(t, am.Result.Hazards[0].Damages, 2)
	assert.Greater(t, am.Result.Hazards[0].Damages[0], 10.0)
	assert.Greater(t, am.Result.Hazards[0].Damages[1], 20.0)
}

// TestPipelineEndToEnd wires the full pipeline (Reader → LossAdjuster →
// Writer) with real Kafka and verifies every country comes out adjusted.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:     []string{broker},
		KafkaSourceTopic: testSourceTopic,
		KafkaSinkTopic:   testSinkTopic,
		KafkaGroupID:     fmt.Sprintf("test-pipeline-%d", time.Now().UnixNano()),
	}

	// One message per country, several events each.
	payloads := [][]byte{
		riskPayload(t, "Atlantis", 1, 2, 3),
		riskPayload(t, "Lemuria", 4, 5),
	}

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, 0, len(payloads))
	for i, p := range payloads {
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(fmt.Sprintf("record-%d", i)),
			Value: p,
		})
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	adjuster := pipeline.NewLossAdjuster(testIndicatorTable(), domain.AdjustOptions{}, discardLogger())

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, adjuster, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := map[string]adjustedMessage{}
	for len(received) < len(payloads) {
		am := readAdjusted(ctx, t, consumer)
		received[am.Result.Country] = am
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	// Atlantis has a zero damage factor: damages pass through unchanged.
	atlantis, ok := received["Atlantis"]
	require.True(t, ok, "expected Atlantis on sink topic")
	assert.Zero(t, atlantis.Result.DamageFactor)
	assert.Equal(t, domain.EventDamageSet{1, 2, 3}, atlantis.Result.Hazards[0].Damages)
	assert.False(t, atlantis.Result.AdjustedAt.IsZero(), "missing adjusted_at stamp")

	// Lemuria's positive factor inflates every event.
	lemuria, ok := received["Lemuria"]
	require.True(t, ok, "expected Lemuria on sink topic")
	assert.Equal(t, expectedFactor(t), lemuria.Result.DamageFactor)
	for i, d := range lemuria.Result.Hazards[0].Damages {
		assert.Greater(t, d, []float64{4, 5}[i], "event %d should be rescaled upward", i)
	}
}

// TestPipelineTransformError verifies that a poison-pill message is skipped
// and the pipeline continues processing valid messages.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:     []string{broker},
		KafkaSourceTopic: testSourceTopic,
		KafkaSinkTopic:   testSinkTopic,
		KafkaGroupID:     fmt.Sprintf("test-poison-%d", time.Now().UnixNano()),
	}

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	// Publish: invalid JSON, an unknown country, then a valid message.
	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("unknown"), Value: riskPayload(t, "Shangri-La", 7)},
		kafkago.Message{Key: []byte("good"), Value: riskPayload(t, "Atlantis", 1)},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	adjuster := pipeline.NewLossAdjuster(testIndicatorTable(), domain.AdjustOptions{}, discardLogger())

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, adjuster, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	am := readAdjusted(ctx, t, consumer)
	assert.Equal(t, "Atlantis", am.Result.Country)

	// Verify no second message arrives (both poison pills were skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
