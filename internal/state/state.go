package state

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MirrorProgress describes the last task the mirror workers applied.
type MirrorProgress struct {
	MessageID string    `json:"message_id"`
	AppliedAt time.Time `json:"applied_at"`
}

type StateManager interface {
	GetMirrorProgress(ctx context.Context) (*MirrorProgress, error)
	SetMirrorProgress(ctx context.Context, messageID string, appliedAt time.Time) error
}

type redisStateManager struct {
	redisClient *redis.Client
	key         string
}

func NewRedisStateManager(redisClient *redis.Client) StateManager {
	return &redisStateManager{
		redisClient: redisClient,
		key:         "analyzer:progress:mirror",
	}
}

func (s *redisStateManager) GetMirrorProgress(ctx context.Context) (*MirrorProgress, error) {
	vals, err := s.redisClient.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get mirror progress: %w", err)
	}
	if len(vals) == 0 {
		return nil, nil // Nothing mirrored yet
	}

	appliedAt, err := time.Parse(time.RFC3339Nano, vals["applied_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse mirror progress time: %w", err)
	}

	return &MirrorProgress{MessageID: vals["message_id"], AppliedAt: appliedAt}, nil
}

func (s *redisStateManager) SetMirrorProgress(ctx context.Context, messageID string, appliedAt time.Time) error {
	err := s.redisClient.HSet(ctx, s.key,
		"message_id", messageID,
		"applied_at", appliedAt.UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to set mirror progress: %w", err)
	}
	return nil
}
