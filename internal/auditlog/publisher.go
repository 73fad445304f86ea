package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"leicca/pkg/platform/sentinel"
)

// Publisher mirrors audit events to downstream consumers. Publishing is best
// effort: the store is the source of truth and a publish failure never blocks
// or fails the append.
type Publisher interface {
	Publish(ctx context.Context, event AuditEvent) error
	Close()
}

// KafkaPublisher emits one record per audit event, keyed by reference id so
// all events of a record land in one partition, in order.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher connects to the given brokers.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: connect audit brokers: %v", sentinel.ErrUnavailable, err)
	}
	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.ReferenceID),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil && p.logger != nil {
			p.logger.Warn("audit event publish failed",
				"event_id", event.ID,
				"event_type", event.EventType,
				"error", err,
			)
		}
	})
	return nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}
