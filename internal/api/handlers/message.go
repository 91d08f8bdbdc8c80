package handlers

import (
	"net/http"
	"strconv"

	"collab-service/internal/models"
	"collab-service/internal/repository"

	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 50

type MessageHandler struct {
	messages repository.MessageRepository
}

func NewMessageHandler(messages repository.MessageRepository) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// GetChannelMessages returns recent message history for a channel, newest
// first.
func (h *MessageHandler) GetChannelMessages(c *gin.Context) {
	channelID := c.Param("channelID")

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	messages, err := h.messages.FindRecent(c.Request.Context(), channelID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	out := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, messages[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}
