package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssistantSenderID is the synthetic sender recorded for assistant replies.
const AssistantSenderID = "ai"

// AssistantSenderName is the display name broadcast with assistant replies.
const AssistantSenderName = "AI Assistant"

// Message is a persisted chat message. ConversationID is either a channel id
// or a canonical direct-conversation key, so channel and DM history share one
// table.
type Message struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID string `gorm:"index;not null" json:"conversation_id"`
	SenderID       string `gorm:"not null" json:"sender_id"`
	SenderName     string `gorm:"not null" json:"sender_name"`
	Content        string `gorm:"not null" json:"content"`
	IsAI           bool   `gorm:"default:false" json:"is_ai"`
	CreatedAt      time.Time
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// MessageResponse is the REST shape for message history.
type MessageResponse struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_username"`
	IsAI       bool      `json:"is_ai,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		Content:    m.Content,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		IsAI:       m.IsAI,
		CreatedAt:  m.CreatedAt,
	}
}
