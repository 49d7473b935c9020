package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

func primeConversations(t *testing.T, s *Session, deps *testDeps, unread map[string]int) {
	t.Helper()
	convs := make([]models.Conversation, 0, len(unread))
	for _, id := range []string{"c1", "c2"} {
		if _, ok := unread[id]; !ok {
			continue
		}
		convs = append(convs, directConversation(id))
		deps.convRepo.On("Participants", mock.Anything, id).Return(pairProfiles("peer-"+id), nil).Once()
		deps.readRepo.On("UnreadCount", mock.Anything, id, testUserID).Return(unread[id], nil).Once()
		deps.msgRepo.On("LastForConversation", mock.Anything, id).
			Return(models.Message{}, repositories.ErrMessageNotFound).Once()
	}
	deps.convRepo.On("ListForUser", mock.Anything, testUserID).Return(convs, nil).Once()
	s.Refresh(context.Background())
}

func TestMarkReadZeroesCounterAndAggregate(t *testing.T) {
	s, deps := newTestSession(t)
	primeConversations(t, s, deps, map[string]int{"c1": 3, "c2": 2})
	require.Equal(t, 5, s.Snapshot().UnreadTotal)

	deps.readRepo.On("MarkRead", mock.Anything, "c1", testUserID).Return(nil).Once()
	s.MarkRead(context.Background(), "c1")

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.UnreadTotal, "aggregate drops by exactly the conversation's prior count")
	for _, c := range snap.Conversations {
		if c.ID == "c1" {
			assert.Zero(t, c.UnreadCount)
		}
	}
	deps.readRepo.AssertExpectations(t)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	s, deps := newTestSession(t)
	primeConversations(t, s, deps, map[string]int{"c1": 3})

	deps.readRepo.On("MarkRead", mock.Anything, "c1", testUserID).Return(nil).Twice()
	s.MarkRead(context.Background(), "c1")
	s.MarkRead(context.Background(), "c1")

	assert.Zero(t, s.Snapshot().UnreadTotal)
}

func TestMarkReadRemoteFailureStillZeroesLocally(t *testing.T) {
	s, deps := newTestSession(t)
	primeConversations(t, s, deps, map[string]int{"c1": 4})

	// Read state is advisory: a failed remote call only logs; the local
	// counter stays zeroed until the next refresh corrects it.
	deps.readRepo.On("MarkRead", mock.Anything, "c1", testUserID).Return(assert.AnError).Once()
	s.MarkRead(context.Background(), "c1")

	assert.Zero(t, s.Snapshot().UnreadTotal)
}
