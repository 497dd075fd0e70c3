package profile

import (
	"context"
	"time"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/pkg/logger"
	"github.com/planetprotrader/backend/pkg/redis"
)

// CachedRepository reads through a Redis cache and invalidates it on every write
type CachedRepository struct {
	next   Repository
	cache  *redis.Cache
	logger *logger.Logger
}

// NewCachedRepository wraps next. A disabled Redis client makes it a pass-through.
func NewCachedRepository(next Repository, cache *redis.Cache, log *logger.Logger) *CachedRepository {
	return &CachedRepository{next: next, cache: cache, logger: log.WithComponent("profile_cache")}
}

func (r *CachedRepository) Create(ctx context.Context, p contracts.UserProfile) error {
	if err := r.next.Create(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx, p.UID)
	return nil
}

func (r *CachedRepository) TouchLogin(ctx context.Context, uid string, at time.Time) error {
	if err := r.next.TouchLogin(ctx, uid, at); err != nil {
		return err
	}
	r.invalidate(ctx, uid)
	return nil
}

func (r *CachedRepository) SetOnline(ctx context.Context, uid string, online bool) error {
	if err := r.next.SetOnline(ctx, uid, online); err != nil {
		return err
	}
	r.invalidate(ctx, uid)
	return nil
}

func (r *CachedRepository) Get(ctx context.Context, uid string) (contracts.UserProfile, error) {
	var p contracts.UserProfile
	hit, err := r.cache.Get(ctx, redis.ProfileKey(uid), &p)
	if err != nil {
		r.logger.WithError(err).Warn("Profile cache read failed")
	}
	if hit {
		return p, nil
	}

	p, err = r.next.Get(ctx, uid)
	if err != nil {
		return p, err
	}
	if err := r.cache.Set(ctx, redis.ProfileKey(uid), p, redis.TTLMedium); err != nil {
		r.logger.WithError(err).Warn("Profile cache write failed")
	}
	return p, nil
}

func (r *CachedRepository) invalidate(ctx context.Context, uid string) {
	if err := r.cache.Delete(ctx, redis.ProfileKey(uid)); err != nil {
		r.logger.WithError(err).WithField("uid", uid).Warn("Profile cache invalidation failed")
	}
}
