package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/models"
)

func TestSearchProfiles(t *testing.T) {
	d := newHandlerDeps()
	d.convRepo.On("ListForUser", mock.Anything, "user-1").Return([]models.Conversation{}, nil)
	handler := NewProfileHandler(d.sessions)
	router := setupRouter(func(r *gin.Engine) { r.GET("/users/search", handler.Search) })

	d.dir.On("Search", mock.Anything, "ali", "user-1").
		Return([]models.UserProfile{{ID: "user-2", DisplayName: "Alice"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/search?q=ali", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Users []models.UserProfile `json:"users"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "Alice", resp.Users[0].DisplayName)
}

func TestSearchProfilesMissingQuery(t *testing.T) {
	d := newHandlerDeps()
	handler := NewProfileHandler(d.sessions)
	router := setupRouter(func(r *gin.Engine) { r.GET("/users/search", handler.Search) })

	req := httptest.NewRequest(http.MethodGet, "/users/search?q=+", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	d.dir.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}
