package realtime

import (
	"encoding/json"
	"log/slog"
)

// Fan-out delivery. The containment rule for every send path: a broken
// outbound connection is cleaned up via Unregister and never aborts delivery
// to the remaining targets, and send errors never reach the caller.

// SendToConnection delivers one frame to one connection. On transport
// failure the connection is unregistered.
func (h *Hub) SendToConnection(connID string, frame any) {
	c, ok := h.client(connID)
	if !ok {
		return
	}
	if err := c.Send(frame); err != nil {
		slog.Error("Error sending to connection", "clientID", connID, "error", err)
		h.Unregister(connID)
	}
}

// BroadcastToTopic delivers a frame to every subscriber of the topic except
// excludeConnID. The subscriber set is snapshotted before iterating; failed
// connections are collected and unregistered only after the loop, so the set
// being iterated is never mutated.
func (h *Hub) BroadcastToTopic(topic Topic, frame any, excludeConnID string) {
	subs := h.SubscribersOf(topic)
	if len(subs) == 0 {
		return
	}

	var failed []string
	for _, connID := range subs {
		if connID == excludeConnID {
			continue
		}
		c, ok := h.client(connID)
		if !ok {
			continue
		}
		if err := c.Send(frame); err != nil {
			slog.Error("Error broadcasting to connection", "clientID", connID, "topic", topic, "error", err)
			failed = append(failed, connID)
		}
	}

	for _, connID := range failed {
		h.Unregister(connID)
	}
}

// SendToUser delivers a frame to every live connection of a user, with the
// same failure containment as BroadcastToTopic. No-op for offline users.
func (h *Hub) SendToUser(userID string, frame any) {
	conns := h.ConnectionsOfUser(userID)

	var failed []string
	for _, connID := range conns {
		c, ok := h.client(connID)
		if !ok {
			continue
		}
		if err := c.Send(frame); err != nil {
			slog.Error("Error sending to user", "userID", userID, "clientID", connID, "error", err)
			failed = append(failed, connID)
		}
	}

	for _, connID := range failed {
		h.Unregister(connID)
	}
}

// RelaySignal forwards a WebRTC negotiation payload to every live connection
// of the target user, tagged with the sender's identity. Fire-and-forget:
// an offline target is a silent no-op.
func (h *Hub) RelaySignal(targetUserID string, kind EventKind, data json.RawMessage, fromUserID, fromUsername string) {
	h.SendToUser(targetUserID, NewSignalFrame(kind, fromUserID, fromUsername, data))
	slog.Debug("Relayed signal", "kind", kind, "from", fromUserID, "to", targetUserID)
}
