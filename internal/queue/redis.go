package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"market/analyzer/internal/config"
	"market/analyzer/internal/domain/task"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// MirrorStream carries every durable-store task. A single stream keeps the
// relative order of item, price and delete writes.
const MirrorStream = "analyzer:stream:mirror"

type Queue interface {
	AddTask(ctx context.Context, task task.Task) (string, error) // Returns message ID
	GetTask(ctx context.Context, consumer string) (*redis.XMessage, error)
	AckTask(ctx context.Context, msgID string) error
	AutoClaim(ctx context.Context, consumer string, minIdleTime time.Duration) ([]redis.XMessage, error)
	Group() string
}

type RedisQueue struct {
	redisClient *redis.Client
	stream      string
	groupName   string
	block       time.Duration
}

func NewRedisQueue(ctx context.Context, redisClient *redis.Client, cfg config.RedisConfig) (*RedisQueue, error) {
	q := &RedisQueue{
		redisClient: redisClient,
		stream:      MirrorStream,
		groupName:   cfg.ConsumerGroup,
		block:       5 * time.Second,
	}

	// The group has to exist before any worker reads from it.
	if err := q.CreateGroup(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure stream exists: %w", err)
	}

	return q, nil
}

func (q *RedisQueue) Group() string {
	return q.groupName
}

func (q *RedisQueue) CreateGroup(ctx context.Context) error {
	err := q.redisClient.XGroupCreateMkStream(ctx, q.stream, q.groupName, "0").Err()
	if err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP") {
		log.Infof("Group %s already exists for stream %s", q.groupName, q.stream)
		return nil
	}
	if err != nil {
		return err
	}
	log.Infof("✅ Stream %s and consumer group %s ready", q.stream, q.groupName)
	return nil
}

func (q *RedisQueue) AddTask(ctx context.Context, task task.Task) (string, error) {
	taskType := task.TaskType()

	taskValue, err := task.TaskValue()
	if err != nil {
		return "", fmt.Errorf("failed to serialize task: %w", err)
	}

	messageID, err := q.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{
			"task_type": taskType,
			"task_data": string(taskValue),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add task to Redis stream %s: %w", q.stream, err)
	}

	log.Debugf("Added task %s to stream %s with message ID: %s", taskType, q.stream, messageID)
	return messageID, nil
}

func (q *RedisQueue) GetTask(ctx context.Context, consumer string) (*redis.XMessage, error) {
	result, err := q.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.groupName,
		Consumer: consumer,
		Streams:  []string{q.stream, ">"},
		Count:    1,
		Block:    q.block,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // No new messages
		}
		return nil, fmt.Errorf("failed to read from Redis stream %s: %w", q.stream, err)
	}

	if len(result) == 0 || len(result[0].Messages) == 0 {
		return nil, nil
	}

	return &result[0].Messages[0], nil
}

func (q *RedisQueue) AckTask(ctx context.Context, msgID string) error {
	return q.redisClient.XAck(ctx, q.stream, q.groupName, msgID).Err()
}

func (q *RedisQueue) AutoClaim(ctx context.Context, consumer string, minIdleTime time.Duration) ([]redis.XMessage, error) {
	result, _, err := q.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.groupName,
		Consumer: consumer,
		MinIdle:  minIdleTime,
		Start:    "0-0",
		Count:    10,
	}).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to claim messages from Redis stream %s: %w", q.stream, err)
	}

	return result, nil
}
