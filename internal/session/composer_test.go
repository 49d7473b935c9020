package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/models"
)

func TestSendEmptyContentIsNoOp(t *testing.T) {
	s, deps := newTestSession(t)
	deps.open(t, s, "conv-1", nil)

	for _, content := range []string{"", "   ", "\n\t "} {
		err := s.Send(context.Background(), content)
		assert.ErrorIs(t, err, ErrEmptyContent)
	}

	deps.msgRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, s.Snapshot().Messages)
}

func TestSendWithoutSelection(t *testing.T) {
	s, deps := newTestSession(t)

	err := s.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNoConversationSelected)
	deps.msgRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendSuccessReplacesPendingInPlace(t *testing.T) {
	var mu sync.Mutex
	var observed []Snapshot
	s, deps := newTestSession(t, WithNotifier(func(_ string, snap Snapshot) {
		mu.Lock()
		observed = append(observed, snap)
		mu.Unlock()
	}))
	deps.open(t, s, "conv-1", nil)

	serverTime := time.Now().Add(250 * time.Millisecond)
	confirmed := models.Message{
		ID:             "m-100",
		ConversationID: "conv-1",
		SenderID:       testUserID,
		SenderName:     "Me",
		Content:        "Hello",
		Kind:           models.MessageText,
		CreatedAt:      serverTime,
	}
	deps.msgRepo.On("Create", mock.Anything, "conv-1", testUserID, "Hello", models.MessageText).
		Return(confirmed, nil).Once()
	deps.convRepo.On("Touch", mock.Anything, "conv-1").Return(nil).Once()
	deps.convRepo.On("Unarchive", mock.Anything, "conv-1").Return(nil).Once()
	deps.convRepo.On("ListForUser", mock.Anything, testUserID).Return([]models.Conversation{}, nil)

	require.NoError(t, s.Send(context.Background(), "Hello"))

	snap := s.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "m-100", snap.Messages[0].ID)
	assert.Equal(t, "Hello", snap.Messages[0].Content)
	assert.False(t, snap.Messages[0].Pending)
	assert.Empty(t, snap.Messages[0].TempID)
	assert.False(t, snap.Sending)
	assert.Empty(t, snap.Draft)

	// The optimistic snapshot published before confirmation showed exactly one
	// pending "Hello" under a temporary id.
	mu.Lock()
	defer mu.Unlock()
	var sawPending bool
	for _, o := range observed {
		for _, r := range o.Messages {
			if r.Pending {
				sawPending = true
				assert.Equal(t, "Hello", r.Content)
				assert.True(t, strings.HasPrefix(r.TempID, "temp-"))
				assert.Len(t, o.Messages, 1)
			}
		}
	}
	assert.True(t, sawPending, "expected an optimistic snapshot before confirmation")
	deps.msgRepo.AssertExpectations(t)
	deps.convRepo.AssertExpectations(t)
}

func TestSendFailureRollsBackAndRestoresDraft(t *testing.T) {
	s, deps := newTestSession(t)
	existing := []models.Message{{ID: "m-1", ConversationID: "conv-1", Content: "earlier", CreatedAt: time.Now().Add(-time.Minute)}}
	deps.open(t, s, "conv-1", existing)

	deps.msgRepo.On("Create", mock.Anything, "conv-1", testUserID, "Hello", models.MessageText).
		Return(models.Message{}, assert.AnError).Once()
	deps.convRepo.On("ListForUser", mock.Anything, testUserID).Return([]models.Conversation{}, nil)

	err := s.Send(context.Background(), "Hello")
	require.Error(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "m-1", snap.Messages[0].ID)
	assert.Equal(t, "Hello", snap.Draft)
	assert.False(t, snap.Sending)
	deps.msgRepo.AssertExpectations(t)
}

func TestSendRejectsReentrantSend(t *testing.T) {
	s, deps := newTestSession(t)
	deps.open(t, s, "conv-1", nil)

	release := make(chan struct{})
	deps.msgRepo.On("Create", mock.Anything, "conv-1", testUserID, "first", models.MessageText).
		Run(func(mock.Arguments) { <-release }).
		Return(models.Message{ID: "m-1", ConversationID: "conv-1", Content: "first"}, nil).Once()
	deps.convRepo.On("Touch", mock.Anything, "conv-1").Return(nil).Once()
	deps.convRepo.On("Unarchive", mock.Anything, "conv-1").Return(nil).Once()
	deps.convRepo.On("ListForUser", mock.Anything, testUserID).Return([]models.Conversation{}, nil)

	done := make(chan error, 1)
	go func() { done <- s.Send(context.Background(), "first") }()

	require.Eventually(t, func() bool { return s.Snapshot().Sending }, time.Second, 5*time.Millisecond)

	err := s.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrSendInFlight)

	close(release)
	require.NoError(t, <-done)

	deps.msgRepo.AssertNumberOfCalls(t, "Create", 1)
	snap := s.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "first", snap.Messages[0].Content)
}
