package realtime

import (
	"encoding/json"
	"time"

	"collab-service/internal/models"
)

// Outbound frame vocabulary (server -> client). Every frame is tagged by
// "type".
const (
	FrameOnlineUsers = "online_users"
	FrameUserJoined  = "user_joined"
	FrameUserLeft    = "user_left"
	FrameMessage     = "message"
	FrameTyping      = "typing"
	FrameError       = "error"
)

type OnlineUsersFrame struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

func NewOnlineUsersFrame(users []string) OnlineUsersFrame {
	return OnlineUsersFrame{Type: FrameOnlineUsers, Users: users}
}

// PresenceFrame announces a user joining or leaving a topic.
type PresenceFrame struct {
	Type     string `json:"type"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func NewUserJoinedFrame(userID, username string) PresenceFrame {
	return PresenceFrame{Type: FrameUserJoined, UserID: userID, Username: username}
}

func NewUserLeftFrame(userID, username string) PresenceFrame {
	return PresenceFrame{Type: FrameUserLeft, UserID: userID, Username: username}
}

type MessageFrame struct {
	Type           string    `json:"type"`
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	SenderID       string    `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	CreatedAt      time.Time `json:"created_at"`
	IsAI           bool      `json:"is_ai,omitempty"`
}

func NewMessageFrame(m *models.Message) MessageFrame {
	return MessageFrame{
		Type:           FrameMessage,
		ID:             m.ID,
		Content:        m.Content,
		SenderID:       m.SenderID,
		SenderUsername: m.SenderName,
		CreatedAt:      m.CreatedAt,
		IsAI:           m.IsAI,
	}
}

type TypingFrame struct {
	Type     string `json:"type"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsTyping bool   `json:"is_typing"`
}

func NewTypingFrame(userID, username string, isTyping bool) TypingFrame {
	return TypingFrame{Type: FrameTyping, UserID: userID, Username: username, IsTyping: isTyping}
}

// SignalFrame relays a WebRTC negotiation payload. Type keeps the inbound
// kind (webrtc_offer, webrtc_answer, webrtc_ice_candidate).
type SignalFrame struct {
	Type         string          `json:"type"`
	FromUserID   string          `json:"from_user_id"`
	FromUsername string          `json:"from_username"`
	Data         json.RawMessage `json:"data"`
}

func NewSignalFrame(kind EventKind, fromUserID, fromUsername string, data json.RawMessage) SignalFrame {
	return SignalFrame{
		Type:         string(kind),
		FromUserID:   fromUserID,
		FromUsername: fromUsername,
		Data:         data,
	}
}

// ErrorFrame is delivered only to the connection whose operation failed.
type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorFrame(message string) ErrorFrame {
	return ErrorFrame{Type: FrameError, Message: message}
}
