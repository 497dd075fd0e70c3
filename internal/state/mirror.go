package state

import (
	"context"
	"fmt"
	"time"

	"github.com/planetprotrader/backend/pkg/logger"
	"github.com/planetprotrader/backend/pkg/redis"
)

// SnapshotCache is the part of redis.Cache the mirror needs
type SnapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Mirror keeps the latest change of every topic in the cache until ctx is cancelled,
// so another process can read what this one last published.
func Mirror(ctx context.Context, bus Bus, cache SnapshotCache, ttl time.Duration, log *logger.Logger) error {
	changes, err := bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe state bus: %w", err)
	}
	log = log.WithComponent("state-mirror")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if err := cache.Set(ctx, redis.SnapshotKey(change.Topic), change, ttl); err != nil {
				log.WithError(err).WithField("topic", change.Topic).Warn("Failed to mirror snapshot")
			}
		}
	}
}

// LastChange reads the mirrored change of topic. ok is false on a miss.
func LastChange(ctx context.Context, cache SnapshotCache, topic string) (Change, bool, error) {
	var change Change
	ok, err := cache.Get(ctx, redis.SnapshotKey(topic), &change)
	if err != nil {
		return Change{}, false, err
	}
	return change, ok, nil
}
