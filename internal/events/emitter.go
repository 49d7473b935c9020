package events

import (
	"context"
	"log"
	"time"

	"messaging-service/internal/models"
)

// Publisher is satisfied by the rabbitmq package.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// Envelope wraps every domain event published by this service.
type Envelope struct {
	SchemaVersion int    `json:"schema_version"`
	EventType     string `json:"event_type"`
	OccurredAt    string `json:"occurred_at"`
	Service       string `json:"service"`
	Environment   string `json:"environment"`
	Payload       any    `json:"payload"`
}

// Emitter publishes messaging domain events to the broker. Publishing is
// fire-and-forget; a failed publish logs and never affects the operation
// that produced the event.
type Emitter struct {
	publisher   Publisher
	service     string
	environment string
}

// NewEmitter constructs an Emitter.
func NewEmitter(publisher Publisher, service, environment string) *Emitter {
	return &Emitter{publisher: publisher, service: service, environment: environment}
}

// MessageSent publishes a confirmed message send.
func (e *Emitter) MessageSent(ctx context.Context, msg models.Message) {
	e.emit(ctx, "messages.sent", "message_sent", map[string]any{
		"message_id":      msg.ID,
		"conversation_id": msg.ConversationID,
		"sender_id":       msg.SenderID,
		"kind":            msg.Kind,
	})
}

// ConversationRead publishes a read-marker advance.
func (e *Emitter) ConversationRead(ctx context.Context, conversationID, userID string) {
	e.emit(ctx, "conversations.read", "conversation_read", map[string]any{
		"conversation_id": conversationID,
		"user_id":         userID,
	})
}

// ConversationStarted publishes a direct conversation resolution.
func (e *Emitter) ConversationStarted(ctx context.Context, conversationID, userID, peerID string) {
	e.emit(ctx, "conversations.started", "conversation_started", map[string]any{
		"conversation_id": conversationID,
		"user_id":         userID,
		"peer_id":         peerID,
	})
}

func (e *Emitter) emit(ctx context.Context, routingKey, eventType string, payload map[string]any) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := Envelope{
		SchemaVersion: 1,
		EventType:     eventType,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		Payload:       payload,
	}
	if err := e.publisher.Publish(ctx, routingKey, envelope); err != nil {
		log.Printf("event publish failed routing_key=%s: %v", routingKey, err)
	}
}
