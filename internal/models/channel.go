package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChannelKind enumerates channel media types.
type ChannelKind string

const (
	ChannelText  ChannelKind = "text"
	ChannelVoice ChannelKind = "voice"
	ChannelVideo ChannelKind = "video"
)

// Channel is a named conversation scope inside a group.
type Channel struct {
	ID        string      `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID   string      `gorm:"type:uuid;index;not null" json:"group_id"`
	Name      string      `gorm:"not null" json:"name"`
	Kind      ChannelKind `gorm:"default:text" json:"kind"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Channel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
