//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net"
	"strconv"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/bielim/country-risk-etl/internal/domain"
)

// startKafka launches a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve broker address")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testIndicatorTable returns an extended table with two synthetic countries:
// Atlantis with a zero damage factor and Lemuria with a positive one.
func testIndicatorTable() *domain.IndicatorTable {
	rows := []domain.IndicatorRow{
		{
			// Strong economy: the raw factor is negative and bottoms out at 0.
			Country: "Atlantis", IncomeGroup: 1, InsurancePenetration: 12,
			Reserves: 200, GDPToday: 100, GovernmentDebt: 0.9,
			IndustryShareGDP: 0.1, SupplyChainResilience: 100,
			RiskQualityIndex: 100, CompetitivenessIndex: 7, HazardExposureIndex: 10,
		},
		{
			Country: "Lemuria", IncomeGroup: 4, InsurancePenetration: 2,
			Reserves: 2, GDPToday: 40, GovernmentDebt: 0.8,
			IndustryShareGDP: 0.4, SupplyChainResilience: 40,
			RiskQualityIndex: 30, CompetitivenessIndex: 2.8, HazardExposureIndex: 8,
		},
	}
	return domain.NewIndicatorTable(rows, true, "integration-test")
}

// expectedFactor recomputes Lemuria's damage factor for assertions.
func expectedFactor(t *testing.T) float64 {
	t.Helper()
	row, err := testIndicatorTable().Lookup("Lemuria")
	require.NoError(t, err)
	breakdown, err := domain.CountryDamageFactor(row, true)
	require.NoError(t, err)
	require.False(t, math.IsNaN(breakdown.Factor))
	return breakdown.Factor
}
