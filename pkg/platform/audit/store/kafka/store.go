// Package kafka publishes audit events to the compliance topic. Kafka is the
// durable sink for the audit feed; the producer is fire-and-forget from the
// caller's perspective because the worker already decouples it from requests.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "travelogy/pkg/platform/audit"
)

// Store produces audit events as JSON records keyed by user ID so per-user
// history stays ordered within a partition.
type Store struct {
	client *kgo.Client
	topic  string
}

// New connects to the brokers and ensures the audit topic exists.
func New(ctx context.Context, brokers []string, topic string) (*Store, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Store{client: client, topic: topic}, nil
}

// ensureTopic creates the topic if missing; already-exists is not an error.
func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopics(ctx, 3, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, res := range resp {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %s: %w", res.Topic, res.Err)
		}
	}
	return nil
}

// payload is the wire structure published to the topic.
type payload struct {
	Category    string `json:"category"`
	Timestamp   string `json:"timestamp"`
	UserID      string `json:"user_id,omitempty"`
	Email       string `json:"email,omitempty"`
	Action      string `json:"action"`
	Reason      string `json:"reason,omitempty"`
	ConsentType string `json:"consent_type,omitempty"`
	Granted     *bool  `json:"granted,omitempty"`
	IPAddress   string `json:"ip_address,omitempty"`
	UserAgent   string `json:"user_agent,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// Append produces the event synchronously. The audit worker is the only
// caller, so a broker stall never blocks a request.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	p := payload{
		Category:    string(event.Category),
		Timestamp:   event.Timestamp.Format(time.RFC3339Nano),
		Action:      event.Action,
		Reason:      event.Reason,
		ConsentType: event.ConsentType,
		IPAddress:   event.IPAddress,
		UserAgent:   event.UserAgent,
		RequestID:   event.RequestID,
		Email:       event.Email,
	}
	if !event.UserID.IsNil() {
		p.UserID = event.UserID.String()
	}
	if event.ConsentType != "" {
		granted := event.Granted
		p.Granted = &granted
	}

	value, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(p.UserID),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes outstanding records and releases the client.
func (s *Store) Close() {
	s.client.Close()
}
