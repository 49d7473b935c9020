package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
)

const testUserID = "user-1"

type testDeps struct {
	convRepo *mocks.ConversationRepositoryMock
	msgRepo  *mocks.MessageRepositoryMock
	readRepo *mocks.ReadStateRepositoryMock
	dir      *mocks.DirectoryMock
}

func newTestSession(t *testing.T, opts ...Option) (*Session, *testDeps) {
	t.Helper()
	deps := &testDeps{
		convRepo: new(mocks.ConversationRepositoryMock),
		msgRepo:  new(mocks.MessageRepositoryMock),
		readRepo: new(mocks.ReadStateRepositoryMock),
		dir:      new(mocks.DirectoryMock),
	}
	deps.dir.On("Resolve", mock.Anything, testUserID).
		Return(models.UserProfile{ID: testUserID, DisplayName: "Me"}, nil).Once()

	s, err := New(context.Background(), testUserID, deps.convRepo, deps.msgRepo, deps.readRepo, deps.dir, opts...)
	require.NoError(t, err)
	return s, deps
}

// open primes the session with a selected conversation holding the given
// history.
func (d *testDeps) open(t *testing.T, s *Session, conversationID string, history []models.Message) {
	t.Helper()
	d.msgRepo.On("ListForConversation", mock.Anything, conversationID).Return(history, nil).Once()
	d.msgRepo.On("ReactionsForConversation", mock.Anything, conversationID).Return(nil, nil).Once()
	d.readRepo.On("MarkRead", mock.Anything, conversationID, testUserID).Return(nil).Once()
	s.SelectConversation(context.Background(), conversationID)
}

func TestNewResolvesOwnProfile(t *testing.T) {
	s, deps := newTestSession(t)
	require.Equal(t, testUserID, s.UserID())
	deps.dir.AssertExpectations(t)
}

func TestSearchExcludesRequester(t *testing.T) {
	s, deps := newTestSession(t)
	deps.dir.On("Search", mock.Anything, "ali", testUserID).
		Return([]models.UserProfile{{ID: "user-2", DisplayName: "Alice"}}, nil).Once()

	users, err := s.Search(context.Background(), "ali")
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "user-2", users[0].ID)
	deps.dir.AssertExpectations(t)
}
