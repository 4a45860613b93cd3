package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/segmentio/kafka-go"
)

// Event names published on the user lifecycle stream.
const (
	UserRegistered = "user.registered"
	UserCreated    = "user.created"
	UserUpdated    = "user.updated"
	UserDeleted    = "user.deleted"
	PasswordReset  = "user.password_reset"
)

// Publisher emits application events. Publishing is best-effort:
// failures are logged, never surfaced to the request path.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any)
}

type envelope struct {
	Event string    `json:"event"`
	Data  any       `json:"data"`
	TS    time.Time `json:"ts"`
}

// KafkaPublisher writes events to a Kafka topic keyed by event name.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Publish marshals the event envelope and hands it to Kafka.
func (p *KafkaPublisher) Publish(ctx context.Context, event string, payload any) {
	value, err := json.Marshal(envelope{Event: event, Data: payload, TS: time.Now().UTC()})
	if err != nil {
		logger.Log.Errorw("failed to marshal event", "event", event, "err", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event),
		Value: value,
	})
	if err != nil {
		logger.Log.Errorw("failed to publish event", "event", event, "err", err)
	}
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops all events. Used when no brokers are configured.
type NopPublisher struct{}

// NewNopPublisher creates a NopPublisher.
func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

// Publish does nothing.
func (p *NopPublisher) Publish(context.Context, string, any) {}
