package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"PriceSentinel/internal/model"
)

// alertEvent is the JSON payload published for every alert.
type alertEvent struct {
	EventType string       `json:"event_type"`
	Alert     *model.Alert `json:"alert"`
	Timestamp time.Time    `json:"timestamp"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes alerts as events keyed by item id.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &KafkaPublisher{writer: writer, topic: topic}
}

func (p *KafkaPublisher) Notify(ctx context.Context, a *model.Alert) error {
	event := alertEvent{
		EventType: "ALERT_" + string(a.Kind),
		Alert:     a,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}
	msg := kafka.Message{Key: []byte(a.ItemID), Value: data}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write alert to kafka topic %s: %w", p.topic, err)
	}
	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
