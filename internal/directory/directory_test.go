package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// Without Redis the directory degrades to plain backend lookups; these tests
// cover that path, which is also what the session tests exercise via mocks.

func TestResolveWithoutCache(t *testing.T) {
	repo := new(mocks.ProfileRepositoryMock)
	dir := New(repo, nil)

	repo.On("Get", mock.Anything, "user-2").
		Return(models.UserProfile{ID: "user-2", DisplayName: "Alice"}, nil).Once()

	profile, err := dir.Resolve(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.DisplayName)
	repo.AssertExpectations(t)
}

func TestResolveUnknownUser(t *testing.T) {
	repo := new(mocks.ProfileRepositoryMock)
	dir := New(repo, nil)

	repo.On("Get", mock.Anything, "ghost").
		Return(models.UserProfile{}, repositories.ErrProfileNotFound).Once()

	_, err := dir.Resolve(context.Background(), "ghost")
	require.ErrorIs(t, err, repositories.ErrProfileNotFound)
}

func TestSearchPassesRequesterAndLimit(t *testing.T) {
	repo := new(mocks.ProfileRepositoryMock)
	dir := New(repo, nil)

	repo.On("Search", mock.Anything, "ali", "user-1", searchLimit).
		Return([]models.UserProfile{{ID: "user-2", DisplayName: "Alice"}}, nil).Once()

	profiles, err := dir.Search(context.Background(), "ali", "user-1")
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	repo.AssertExpectations(t)
}

func TestSetPresenceWithoutRedisIsNoOp(t *testing.T) {
	dir := New(new(mocks.ProfileRepositoryMock), nil)

	// Must not panic or touch the backend.
	dir.SetPresence(context.Background(), "user-1", models.PresenceOnline)
}
