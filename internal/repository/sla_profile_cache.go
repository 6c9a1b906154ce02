package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/request-service/internal/sla"
)

const profileCachePrefix = "sla:profile:"

// cachedSLAProfileRepository decorates the Postgres repository with a Redis
// read-through cache. Profiles change rarely; a short TTL keeps updates
// visible without hitting the database on every classification.
type cachedSLAProfileRepository struct {
	inner  SLAProfileRepository
	client *redis.Client
	ttl    time.Duration
}

// NewCachedSLAProfileRepository wraps the given repository with caching. A
// nil client disables caching entirely.
func NewCachedSLAProfileRepository(inner SLAProfileRepository, client *redis.Client, ttl time.Duration) SLAProfileRepository {
	if client == nil {
		return inner
	}
	return &cachedSLAProfileRepository{inner: inner, client: client, ttl: ttl}
}

func (r *cachedSLAProfileRepository) GetByServiceKind(ctx context.Context, serviceKind string) (*sla.Profile, error) {
	key := profileCachePrefix + serviceKind
	raw, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var profile sla.Profile
		if err := json.Unmarshal(raw, &profile); err == nil {
			return &profile, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		// cache outage degrades to database reads
		return r.inner.GetByServiceKind(ctx, serviceKind)
	}

	profile, err := r.inner.GetByServiceKind(ctx, serviceKind)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(profile); err == nil {
		_ = r.client.Set(ctx, key, encoded, r.ttl).Err()
	}
	return profile, nil
}

func (r *cachedSLAProfileRepository) List(ctx context.Context) ([]sla.Profile, error) {
	return r.inner.List(ctx)
}
