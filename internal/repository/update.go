package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type UpdateRepository interface {
	// MarkProcessed - returns false when the update was already seen within the TTL.
	MarkProcessed(ctx context.Context, updateID string) (bool, error)

	// Release - forgets the update so a retry under the same id runs again.
	Release(ctx context.Context, updateID string) error
}

const updateKeyPrefix = "update:"

type dbUpdate struct {
	client *redis.Client
	ttl    time.Duration
}

func NewUpdateRepository(client *redis.Client, ttl time.Duration) UpdateRepository {
	return &dbUpdate{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbUpdate) MarkProcessed(ctx context.Context, updateID string) (bool, error) {
	updateKey := updateKeyPrefix + updateID

	fresh, err := that.client.SetNX(ctx, updateKey, time.Now().Unix(), that.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark update: %w", err)
	}

	return fresh, nil
}

func (that *dbUpdate) Release(ctx context.Context, updateID string) error {
	if err := that.client.Del(ctx, updateKeyPrefix+updateID).Err(); err != nil {
		return fmt.Errorf("failed to release update: %w", err)
	}

	return nil
}

type noopUpdate struct{}

// NewNoopUpdateRepository - used when redis is disabled, every update counts as fresh.
func NewNoopUpdateRepository() UpdateRepository {
	return noopUpdate{}
}

func (noopUpdate) MarkProcessed(context.Context, string) (bool, error) {
	return true, nil
}

func (noopUpdate) Release(context.Context, string) error {
	return nil
}
