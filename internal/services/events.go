package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	EventProfileUpserted   = "profile.upserted"
	EventExperienceAdded   = "experience.added"
	EventExperienceRemoved = "experience.removed"
	EventEducationAdded    = "education.added"
	EventEducationRemoved  = "education.removed"
	// EventAccountDeleted lets owners of user content (posts) clean up after an account.
	EventAccountDeleted = "account.deleted"
)

type Event struct {
	Type       string    `json:"type"`
	OwnerID    string    `json:"owner_id"`
	RecordID   string    `json:"record_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by owner id, so one owner's events stay
// ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OwnerID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
