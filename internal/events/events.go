package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Topic carrying all reservation lifecycle events.
const TopicReservations = "cantine.reservations"

// Event types published by the reservation service.
const (
	EventReservationCreated       = "reservation.created"
	EventReservationDeleted       = "reservation.deleted"
	EventReservationStatusChanged = "reservation.status_changed"
)

// Event is the envelope wrapping every published payload.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope for the given type and payload.
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "cantine-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// ReservationEventData is the payload for reservation lifecycle events.
type ReservationEventData struct {
	ReservationID uint   `json:"reservation_id"`
	UserID        uint   `json:"user_id"`
	Date          string `json:"date"`
	Benevole      bool   `json:"benevole"`
	ActorID       uint   `json:"actor_id"`
}

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

type watermillPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewKafkaEventPublisher publishes events to Kafka.
func NewKafkaEventPublisher(brokers []string, logger *slog.Logger) (EventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &watermillPublisher{publisher: publisher, logger: logger}, nil
}

// NewGoChannelEventPublisher publishes events in-process. Used when no
// broker is configured.
func NewGoChannelEventPublisher(logger *slog.Logger) EventPublisher {
	publisher := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewSlogLogger(logger),
	)

	return &watermillPublisher{publisher: publisher, logger: logger}
}

func (p *watermillPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", event.Type)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	return nil
}

func (p *watermillPublisher) Close() error {
	return p.publisher.Close()
}
