package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"collab-service/internal/database"
)

// PresenceService mirrors connection-level presence into Redis so other
// services (and the REST surface) can query who is online without touching
// the hub's in-process state.
type PresenceService struct {
	client *database.RedisClient
}

func NewPresenceService(client *database.RedisClient) *PresenceService {
	return &PresenceService{client: client}
}

func (s *PresenceService) SetUserOnline(ctx context.Context, userID string) error {
	pipe := s.client.GetClient().Pipeline()

	pipe.SAdd(ctx, "online_users", userID)
	pipe.HSet(ctx, fmt.Sprintf("user:%s:status", userID), map[string]interface{}{
		"status":     "online",
		"last_seen":  time.Now().Unix(),
		"updated_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, fmt.Sprintf("user:%s:status", userID), 5*time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("Failed to set user online", "userID", userID, "error", err)
		return err
	}
	return nil
}

func (s *PresenceService) SetUserOffline(ctx context.Context, userID string) error {
	pipe := s.client.GetClient().Pipeline()

	pipe.SRem(ctx, "online_users", userID)
	pipe.HSet(ctx, fmt.Sprintf("user:%s:status", userID), map[string]interface{}{
		"status":     "offline",
		"last_seen":  time.Now().Unix(),
		"updated_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, fmt.Sprintf("user:%s:status", userID), 24*time.Hour)

	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("Failed to set user offline", "userID", userID, "error", err)
		return err
	}
	return nil
}

func (s *PresenceService) IsUserOnline(ctx context.Context, userID string) (bool, error) {
	return s.client.GetClient().SIsMember(ctx, "online_users", userID).Result()
}

func (s *PresenceService) GetOnlineUsers(ctx context.Context) ([]string, error) {
	return s.client.GetClient().SMembers(ctx, "online_users").Result()
}
