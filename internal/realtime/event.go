package realtime

import (
	"encoding/json"
	"strings"
)

// EventKind represents the type of an inbound client event.
type EventKind string

const (
	EventMessage            EventKind = "message"
	EventTyping             EventKind = "typing"
	EventWebRTCOffer        EventKind = "webrtc_offer"
	EventWebRTCAnswer       EventKind = "webrtc_answer"
	EventWebRTCICECandidate EventKind = "webrtc_ice_candidate"
)

// IsSignal reports whether the kind is a WebRTC signaling event.
func (k EventKind) IsSignal() bool {
	switch k {
	case EventWebRTCOffer, EventWebRTCAnswer, EventWebRTCICECandidate:
		return true
	default:
		return false
	}
}

// Event is the decoded form of one inbound frame. Unrecognized kinds keep
// their Type so the session can log them; they are never an error.
type Event struct {
	Type         EventKind       `json:"type"`
	Content      string          `json:"content,omitempty"`
	IsTyping     bool            `json:"is_typing,omitempty"`
	TargetUserID string          `json:"target_user_id,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
}

// DecodeEvent parses a raw inbound frame.
func DecodeEvent(raw []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

const mentionPrefix = "@ai "

// MentionQuery extracts the assistant query from a message that starts with
// the mention token (case-insensitive). The second return is false when the
// message is not a mention or the query is empty.
func MentionQuery(content string) (string, bool) {
	if len(content) < len(mentionPrefix) {
		return "", false
	}
	if !strings.EqualFold(content[:len(mentionPrefix)], mentionPrefix) {
		return "", false
	}
	query := strings.TrimSpace(content[len(mentionPrefix):])
	return query, query != ""
}
