package repository

import (
	"context"
	"errors"

	"collab-service/internal/models"

	"gorm.io/gorm"
)

type ChannelRepository interface {
	FindByID(ctx context.Context, id string) (*models.Channel, error)
}

type MembershipRepository interface {
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

type channelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

func (r *channelRepository) FindByID(ctx context.Context, id string) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.WithContext(ctx).First(&channel, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		First(&membership, "group_id = ? AND user_id = ?", groupID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
