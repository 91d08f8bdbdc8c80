package realtime

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"collab-service/internal/models"
	"collab-service/internal/repository"
)

// Session drives one connection through its lifecycle: register and
// subscribe, announce presence, process inbound events one at a time, and on
// any exit path release everything exactly once.
type Session struct {
	hub            *Hub
	client         *Client
	user           *models.User
	topic          Topic
	conversationID string

	// Set for direct sessions only: presence events are addressed to the
	// peer's live connections instead of the topic, since the peer may not
	// have opened the conversation yet.
	peerUserID string

	store     repository.MessageRepository
	assistant *Assistant

	closeOnce sync.Once
}

// NewChannelSession builds a session bound to a channel topic.
func NewChannelSession(hub *Hub, client *Client, user *models.User, channelID string, store repository.MessageRepository, assistant *Assistant) *Session {
	return &Session{
		hub:            hub,
		client:         client,
		user:           user,
		topic:          ChannelTopic(channelID),
		conversationID: channelID,
		store:          store,
		assistant:      assistant,
	}
}

// NewDirectSession builds a session bound to the canonical two-party topic.
func NewDirectSession(hub *Hub, client *Client, user *models.User, peerUserID string, store repository.MessageRepository, assistant *Assistant) *Session {
	return &Session{
		hub:            hub,
		client:         client,
		user:           user,
		topic:          DirectTopic(user.ID, peerUserID),
		conversationID: DirectConversationID(user.ID, peerUserID),
		peerUserID:     peerUserID,
		store:          store,
		assistant:      assistant,
	}
}

// Run blocks until the connection closes. Cleanup is guaranteed on every
// exit path.
func (s *Session) Run() {
	defer s.Close()

	s.join()

	go s.client.writePump()
	s.client.readPump(s.handleRaw)
}

// join registers the connection, subscribes it to the topic, announces the
// arrival to already-subscribed peers and delivers the online snapshot to
// the new connection only.
func (s *Session) join() {
	s.hub.Register(s.client)
	s.hub.Subscribe(s.client.id, s.topic)

	joined := NewUserJoinedFrame(s.user.ID, s.user.Username)
	if s.peerUserID != "" {
		s.hub.SendToUser(s.peerUserID, joined)
	} else {
		s.hub.BroadcastToTopic(s.topic, joined, s.client.id)
	}

	online := s.hub.OnlineUsersOnTopic(s.topic)
	s.hub.SendToConnection(s.client.id, NewOnlineUsersFrame(online))
}

// Close releases every resource the session acquired: registry entry, topic
// subscriptions and the transport. Idempotent; the departure is announced
// once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.hub.Unregister(s.client.id)

		left := NewUserLeftFrame(s.user.ID, s.user.Username)
		if s.peerUserID != "" {
			s.hub.SendToUser(s.peerUserID, left)
		} else {
			s.hub.BroadcastToTopic(s.topic, left, s.client.id)
		}
	})
}

func (s *Session) handleRaw(raw []byte) {
	ev, err := DecodeEvent(raw)
	if err != nil {
		slog.Error("Failed to decode event", "clientID", s.client.id, "error", err)
		s.hub.SendToConnection(s.client.id, NewErrorFrame("invalid message format"))
		return
	}
	s.handleEvent(ev)
}

// handleEvent dispatches one decoded inbound event. Events from the same
// connection are processed strictly in arrival order; readPump calls this
// from a single goroutine.
func (s *Session) handleEvent(ev *Event) {
	switch {
	case ev.Type == EventMessage:
		s.handleMessage(ev)

	case ev.Type == EventTyping:
		s.hub.BroadcastToTopic(s.topic,
			NewTypingFrame(s.user.ID, s.user.Username, ev.IsTyping), s.client.id)

	case ev.Type.IsSignal():
		if ev.TargetUserID == "" {
			slog.Debug("Signal without target user, ignored", "clientID", s.client.id, "kind", ev.Type)
			return
		}
		s.hub.RelaySignal(ev.TargetUserID, ev.Type, ev.Data, s.user.ID, s.user.Username)

	default:
		slog.Warn("Unknown message type", "clientID", s.client.id, "type", ev.Type)
	}
}

func (s *Session) handleMessage(ev *Event) {
	content := strings.TrimSpace(ev.Content)
	if content == "" {
		return
	}

	msg := &models.Message{
		ConversationID: s.conversationID,
		SenderID:       s.user.ID,
		SenderName:     s.user.Username,
		Content:        content,
	}
	if err := s.store.Create(s.client.ctx, msg); err != nil {
		slog.Error("Failed to persist message", "clientID", s.client.id, "error", err)
		s.hub.SendToConnection(s.client.id, NewErrorFrame("failed to save message"))
		return
	}

	// The sender is included in the audience on purpose: the echoed frame
	// carries the server-assigned id and timestamp.
	s.hub.BroadcastToTopic(s.topic, NewMessageFrame(msg), "")

	// Assistant replies run detached from this connection: the reply is
	// still saved and broadcast if the requester disconnects first.
	if query, ok := MentionQuery(content); ok && s.assistant != nil {
		topic, conversationID, connID := s.topic, s.conversationID, s.client.id
		s.hub.Go(func(ctx context.Context) {
			s.assistant.Respond(ctx, s.hub, topic, conversationID, query, connID)
		})
	}
}
