// Package kafka publishes appended decision records to a Kafka topic so
// dashboards and downstream consumers can tail the decision stream without
// polling the store.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/twmb/franz-go/pkg/kgo"

	"casetrail/internal/domain"
)

type Sink struct {
	client *kgo.Client
	topic  string
}

func NewSink(brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

// Publish produces one record, keyed by case so per-case ordering survives
// partitioning.
func (s *Sink) Publish(ctx context.Context, record domain.DecisionRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal decision record: %w", err)
	}

	rec := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(record.CaseID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "record_id", Value: []byte(strconv.FormatUint(record.RecordID, 10))},
		},
	}
	if err := s.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce decision record: %w", err)
	}
	return nil
}

func (s *Sink) Close() {
	s.client.Close()
}
