package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

func directConversation(id string) models.Conversation {
	return models.Conversation{ID: id, Kind: models.KindDirect, CreatedAt: time.Now(), UpdatedAt: time.Now()}
}

func pairProfiles(peerID string) []models.UserProfile {
	return []models.UserProfile{
		{ID: testUserID, DisplayName: "Me"},
		{ID: peerID, DisplayName: "Peer " + peerID},
	}
}

func TestRefreshResolvesSummaries(t *testing.T) {
	s, deps := newTestSession(t)

	deps.convRepo.On("ListForUser", mock.Anything, testUserID).
		Return([]models.Conversation{directConversation("c1"), directConversation("c2")}, nil).Once()

	deps.convRepo.On("Participants", mock.Anything, "c1").Return(pairProfiles("user-2"), nil).Once()
	deps.readRepo.On("UnreadCount", mock.Anything, "c1", testUserID).Return(3, nil).Once()
	deps.msgRepo.On("LastForConversation", mock.Anything, "c1").
		Return(models.Message{ID: "m-9", Content: "see you", SenderID: "user-2", SenderName: "Peer user-2", CreatedAt: time.Now()}, nil).Once()

	deps.convRepo.On("Participants", mock.Anything, "c2").Return(pairProfiles("user-3"), nil).Once()
	deps.readRepo.On("UnreadCount", mock.Anything, "c2", testUserID).Return(2, nil).Once()
	deps.msgRepo.On("LastForConversation", mock.Anything, "c2").
		Return(models.Message{}, repositories.ErrMessageNotFound).Once()

	s.Refresh(context.Background())

	snap := s.Snapshot()
	require.Len(t, snap.Conversations, 2)

	first := snap.Conversations[0]
	assert.Equal(t, "c1", first.ID)
	assert.Equal(t, 2, first.ParticipantCount)
	require.NotNil(t, first.LastMessage)
	assert.Equal(t, "see you", first.LastMessage.Content)
	assert.Equal(t, 3, first.UnreadCount)

	// Direct conversations hold the requesting user plus exactly one peer.
	peer := first.Peer(testUserID)
	require.NotNil(t, peer)
	assert.Equal(t, "user-2", peer.ID)

	second := snap.Conversations[1]
	assert.Nil(t, second.LastMessage)

	assert.Equal(t, 5, snap.UnreadTotal)
	deps.convRepo.AssertExpectations(t)
	deps.readRepo.AssertExpectations(t)
	deps.msgRepo.AssertExpectations(t)
}

func TestRefreshDropsConversationOnSubFetchFailure(t *testing.T) {
	s, deps := newTestSession(t)

	deps.convRepo.On("ListForUser", mock.Anything, testUserID).
		Return([]models.Conversation{directConversation("c1"), directConversation("c2")}, nil).Once()

	deps.convRepo.On("Participants", mock.Anything, "c1").Return(pairProfiles("user-2"), nil).Once()
	deps.readRepo.On("UnreadCount", mock.Anything, "c1", testUserID).Return(1, nil).Once()
	deps.msgRepo.On("LastForConversation", mock.Anything, "c1").
		Return(models.Message{}, repositories.ErrMessageNotFound).Once()

	// One bad conversation is dropped, not fatal for the list.
	deps.convRepo.On("Participants", mock.Anything, "c2").
		Return(([]models.UserProfile)(nil), assert.AnError).Once()

	s.Refresh(context.Background())

	snap := s.Snapshot()
	require.Len(t, snap.Conversations, 1)
	assert.Equal(t, "c1", snap.Conversations[0].ID)
	assert.Equal(t, 1, snap.UnreadTotal)
}

func TestRefreshListFailureKeepsCachedState(t *testing.T) {
	s, deps := newTestSession(t)

	deps.convRepo.On("ListForUser", mock.Anything, testUserID).
		Return([]models.Conversation{directConversation("c1")}, nil).Once()
	deps.convRepo.On("Participants", mock.Anything, "c1").Return(pairProfiles("user-2"), nil).Once()
	deps.readRepo.On("UnreadCount", mock.Anything, "c1", testUserID).Return(0, nil).Once()
	deps.msgRepo.On("LastForConversation", mock.Anything, "c1").
		Return(models.Message{}, repositories.ErrMessageNotFound).Once()

	s.Refresh(context.Background())
	require.Len(t, s.Snapshot().Conversations, 1)

	deps.convRepo.On("ListForUser", mock.Anything, testUserID).
		Return(([]models.Conversation)(nil), assert.AnError).Once()

	s.Refresh(context.Background())
	assert.Len(t, s.Snapshot().Conversations, 1, "cached list survives a transient list failure")
}

func TestReloadingMessagesIsIdempotent(t *testing.T) {
	s, deps := newTestSession(t)

	base := time.Now()
	history := []models.Message{
		{ID: "m-1", ConversationID: "c1", Content: "a", CreatedAt: base},
		{ID: "m-2", ConversationID: "c1", Content: "b", CreatedAt: base.Add(time.Second)},
	}
	deps.open(t, s, "c1", history)
	first := s.Snapshot().Messages

	deps.open(t, s, "c1", history)
	second := s.Snapshot().Messages

	assert.Equal(t, first, second)
}
