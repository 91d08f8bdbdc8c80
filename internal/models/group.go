package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group is a workspace that owns channels and memberships.
type Group struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	OwnerID   string `gorm:"type:uuid;not null" json:"owner_id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Channels []Channel `gorm:"foreignKey:GroupID" json:"channels,omitempty"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return nil
}

// MembershipRole enumerates the roles a user can hold in a group.
type MembershipRole string

const (
	RoleOwner  MembershipRole = "owner"
	RoleAdmin  MembershipRole = "admin"
	RoleMember MembershipRole = "member"
)

// Membership links a user to a group.
type Membership struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID   string         `gorm:"type:uuid;uniqueIndex:idx_group_user;not null" json:"group_id"`
	UserID    string         `gorm:"type:uuid;uniqueIndex:idx_group_user;not null" json:"user_id"`
	Role      MembershipRole `gorm:"default:member" json:"role"`
	CreatedAt time.Time
}

func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
