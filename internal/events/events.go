// Package events publishes domain events emitted by the services.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Type names a domain event.
type Type string

const (
	UserRegistered   Type = "user.registered"
	ResourceCreated  Type = "resource.created"
	ResourceViewed   Type = "resource.viewed"
	ResourcePinned   Type = "resource.pinned"
	ResourceUnpinned Type = "resource.unpinned"
	TaskCreated      Type = "task.created"
	TaskUpdated      Type = "task.updated"
	TaskDeleted      Type = "task.deleted"
)

// Event is a single domain change.
type Event struct {
	Type       Type      `json:"type"`
	UserID     int64     `json:"user_id"`
	EntityID   int64     `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps an event with the current time.
func New(t Type, userID, entityID int64) Event {
	return Event{Type: t, UserID: userID, EntityID: entityID, OccurredAt: time.Now().UTC()}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// logging publisher otherwise.
func NewPublisher(brokers []string, topic string, logger *zap.Logger) Publisher {
	if len(brokers) == 0 {
		logger.Info("no kafka brokers configured, domain events will be logged")
		return NewLogPublisher(logger)
	}
	return NewKafkaPublisher(brokers, topic, logger)
}

// KafkaPublisher writes events to a Kafka topic keyed by user id.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	kLogger := logger.Named("kafka")
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
		// Requests must not wait on the broker.
		Async: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				kLogger.Error("failed to deliver events", zap.Int("count", len(messages)), zap.Error(err))
			}
		},
	}
	kLogger.Info("kafka publisher initialized", zap.Strings("brokers", brokers), zap.String("topic", topic))
	return &KafkaPublisher{writer: w, logger: kLogger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("user-%d", e.UserID)),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher writes events to the log.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.Named("events")}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) error {
	p.logger.Info("domain event",
		zap.String("type", string(e.Type)),
		zap.Int64("user_id", e.UserID),
		zap.Int64("entity_id", e.EntityID),
		zap.Time("occurred_at", e.OccurredAt),
	)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error {
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []Type {
	events := r.Events()
	out := make([]Type, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}
