package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PresenceReader reads the Redis presence mirror maintained by the hub.
type PresenceReader interface {
	IsUserOnline(ctx context.Context, userID string) (bool, error)
	GetOnlineUsers(ctx context.Context) ([]string, error)
}

type PresenceHandler struct {
	presence PresenceReader
}

func NewPresenceHandler(presence PresenceReader) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

// GetOnlineUsers returns every user id currently marked online.
func (h *PresenceHandler) GetOnlineUsers(c *gin.Context) {
	users, err := h.presence.GetOnlineUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load online users"})
		return
	}
	if users == nil {
		users = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUserStatus reports whether one user is online.
func (h *PresenceHandler) GetUserStatus(c *gin.Context) {
	userID := c.Param("userID")

	online, err := h.presence.IsUserOnline(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "online": online})
}
