package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/bookloop/order-escrow-service/internal/contracts"
)

// KafkaPublisher writes event envelopes to one topic per event type, keyed
// by the envelope partition key.
type KafkaPublisher struct {
	writer       *kafka.Writer
	topicByEvent map[string]string
	defaultTopic string
}

func NewKafkaPublisher(brokers []string, topicByEvent map[string]string, defaultTopic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topicByEvent: topicByEvent,
		defaultTopic: defaultTopic,
	}, nil
}

func (p *KafkaPublisher) publish(ctx context.Context, event contracts.EventEnvelope) error {
	topic := event.EventType
	if mapped, ok := p.topicByEvent[event.EventType]; ok && mapped != "" {
		topic = mapped
	} else if p.defaultTopic != "" {
		topic = p.defaultTopic
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(event.PartitionKey),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

func (p *KafkaPublisher) PublishDomain(ctx context.Context, event contracts.EventEnvelope) error {
	return p.publish(ctx, event)
}

func (p *KafkaPublisher) PublishAnalytics(ctx context.Context, event contracts.EventEnvelope) error {
	return p.publish(ctx, event)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// KafkaDLQPublisher writes dead-letter records to a single DLQ topic.
type KafkaDLQPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaDLQPublisher(brokers []string, topic string) (*KafkaDLQPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka dlq publisher requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka dlq publisher requires a topic")
	}
	return &KafkaDLQPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
	}, nil
}

func (p *KafkaDLQPublisher) PublishDLQ(ctx context.Context, record contracts.DLQRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal dlq record: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(record.OriginalEvent.PartitionKey),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

func (p *KafkaDLQPublisher) Close() error {
	return p.writer.Close()
}
