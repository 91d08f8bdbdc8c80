package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"collab-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessageTestServer(t *testing.T, store *stubMessageRepo) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.GET("/api/channels/:channelID/messages", NewMessageHandler(store).GetChannelMessages)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)
	return server
}

func TestGetChannelMessages(t *testing.T) {
	store := &stubMessageRepo{}
	for _, content := range []string{"first", "second"} {
		require.NoError(t, store.Create(context.Background(), &models.Message{
			ConversationID: "chan-1",
			SenderID:       "u1",
			SenderName:     "alice",
			Content:        content,
		}))
	}
	server := newMessageTestServer(t, store)

	res, err := http.Get(server.URL + "/api/channels/chan-1/messages")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Messages []models.MessageResponse `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "second", body.Messages[0].Content, "newest first")
	assert.Equal(t, "first", body.Messages[1].Content)
}

func TestGetChannelMessagesLimitValidation(t *testing.T) {
	server := newMessageTestServer(t, &stubMessageRepo{})

	for _, limit := range []string{"0", "-5", "201", "abc"} {
		res, err := http.Get(server.URL + "/api/channels/chan-1/messages?limit=" + limit)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, "limit %q", limit)
	}

	res, err := http.Get(server.URL + "/api/channels/chan-1/messages?limit=200")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
