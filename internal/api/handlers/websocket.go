package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"collab-service/internal/auth"
	"collab-service/internal/models"
	"collab-service/internal/realtime"
	"collab-service/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub         *realtime.Hub
	authService *auth.AuthService
	users       repository.UserRepository
	channels    repository.ChannelRepository
	memberships repository.MembershipRepository
	messages    repository.MessageRepository
	assistant   *realtime.Assistant
	upgrader    websocket.Upgrader
}

func NewWebSocketHandler(
	hub *realtime.Hub,
	authService *auth.AuthService,
	users repository.UserRepository,
	channels repository.ChannelRepository,
	memberships repository.MembershipRepository,
	messages repository.MessageRepository,
	assistant *realtime.Assistant,
	allowedOrigins []string,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
		users:       users,
		channels:    channels,
		memberships: memberships,
		messages:    messages,
		assistant:   assistant,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
			},
		},
	}
}

// HandleChannel serves /ws/channel/:channelID. The handshake authenticates
// the bearer token from the query string, verifies the channel exists and
// the user belongs to its group, then hands the connection to a session.
// Handshake failures close the socket with a policy-violation code and a
// distinguishing reason; no registry entry is ever created for them.
func (h *WebSocketHandler) HandleChannel(c *gin.Context) {
	channelID := c.Param("channelID")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	user, ok := h.authenticate(c, conn)
	if !ok {
		return
	}

	channel, err := h.channels.FindByID(c.Request.Context(), channelID)
	if err != nil {
		closeWithReason(conn, "Channel not found")
		return
	}

	member, err := h.memberships.IsMember(c.Request.Context(), channel.GroupID, user.ID)
	if err != nil || !member {
		closeWithReason(conn, "Not a member of this group")
		return
	}

	client := realtime.NewClient(conn, user.ID, user.Username)
	session := realtime.NewChannelSession(h.hub, client, user, channel.ID, h.messages, h.assistant)
	session.Run()
}

// HandleDirect serves /ws/dm/:userID for two-party conversations.
func (h *WebSocketHandler) HandleDirect(c *gin.Context) {
	peerID := c.Param("userID")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	user, ok := h.authenticate(c, conn)
	if !ok {
		return
	}

	if _, err := h.users.FindByID(c.Request.Context(), peerID); err != nil {
		closeWithReason(conn, "User not found")
		return
	}

	client := realtime.NewClient(conn, user.ID, user.Username)
	session := realtime.NewDirectSession(h.hub, client, user, peerID, h.messages, h.assistant)
	session.Run()
}

func (h *WebSocketHandler) authenticate(c *gin.Context, conn *websocket.Conn) (*models.User, bool) {
	token := c.Query("token")
	user, err := h.authService.Authenticate(c.Request.Context(), token)
	if err != nil {
		closeWithReason(conn, "Authentication failed")
		return nil, false
	}
	return user, true
}

// closeWithReason terminates a handshake-phase failure with a
// policy-violation close code the client can inspect.
func closeWithReason(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	conn.Close()
}
