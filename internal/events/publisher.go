package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/config"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/log"
)

// Envelope event names.
const (
	EventMessageCreated = "message_created"
	EventMemberJoined   = "member_joined"
	EventMemberLeft     = "member_left"
)

// Envelope is the wire shape of a published domain event.
type Envelope struct {
	Event       string      `json:"event"`
	CommunityID string      `json:"community_id"`
	Payload     interface{} `json:"payload,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Publisher emits domain events to the message bus. Publish failures are
// logged by callers, never propagated to the request path.
type Publisher interface {
	Publish(ctx context.Context, event, communityID string, payload interface{}) error
	Close() error
}

// KafkaPublisher implements Publisher on Kafka, keyed by community id so
// per-community ordering is preserved.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a Kafka-backed publisher.
func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(cfg.Brokers, ",")...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event, communityID string, payload interface{}) error {
	data, err := json.Marshal(Envelope{
		Event:       event,
		CommunityID: communityID,
		Payload:     payload,
		Timestamp:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(communityID),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Ctx(ctx).Debug().
		Str("event", event).
		Str(log.FieldCommunityID, communityID).
		Msg("published event")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event, communityID string, payload interface{}) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
