package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
)

func TestMessageSentWrapsEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewEmitter(publisher, "messaging-service", "test")

	var captured Envelope
	publisher.On("Publish", mock.Anything, "messages.sent", mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(Envelope)
		}).
		Return(nil).Once()

	emitter.MessageSent(context.Background(), models.Message{
		ID:             "m1",
		ConversationID: "c1",
		SenderID:       "user-1",
		Kind:           models.MessageText,
	})

	publisher.AssertExpectations(t)
	assert.Equal(t, 1, captured.SchemaVersion)
	assert.Equal(t, "message_sent", captured.EventType)
	assert.Equal(t, "messaging-service", captured.Service)
	assert.Equal(t, "test", captured.Environment)

	payload, ok := captured.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "m1", payload["message_id"])
	assert.Equal(t, "c1", payload["conversation_id"])
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewEmitter(publisher, "messaging-service", "test")

	publisher.On("Publish", mock.Anything, "conversations.read", mock.Anything).
		Return(assert.AnError).Once()

	// Must not panic or surface the error.
	emitter.ConversationRead(context.Background(), "c1", "user-1")
	publisher.AssertExpectations(t)
}

func TestNilEmitterIsSafe(t *testing.T) {
	var emitter *Emitter

	emitter.ConversationStarted(context.Background(), "c1", "user-1", "user-2")
}
