//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	domain "travelogy/pkg/domain"
	audit "travelogy/pkg/platform/audit"
	auditkafka "travelogy/pkg/platform/audit/store/kafka"
	"travelogy/pkg/testutil/containers"
)

func TestKafkaStore_AppendRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := containers.NewRedpandaContainer(t)
	const topic = "travelogy.audit.test"

	store, err := auditkafka.New(ctx, broker.Brokers, topic)
	require.NoError(t, err)
	defer store.Close()

	userID := domain.NewUserID()
	event := audit.Event{
		Category:    audit.CategoryCompliance,
		Timestamp:   time.Now().UTC(),
		UserID:      userID,
		Action:      string(audit.EventConsentGranted),
		ConsentType: "analytics",
		Granted:     true,
		IPAddress:   "203.0.113.7",
		RequestID:   "req-123",
	}
	require.NoError(t, store.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, userID.String(), string(records[0].Key))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(records[0].Value, &payload))
	require.Equal(t, "consent_granted", payload["action"])
	require.Equal(t, "analytics", payload["consent_type"])
	require.Equal(t, true, payload["granted"])
	require.Equal(t, userID.String(), payload["user_id"])
}
