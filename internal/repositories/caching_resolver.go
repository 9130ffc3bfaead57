package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/monban-project/monban/internal/entities"
	"github.com/monban-project/monban/pkg/cache"
)

// CachingObjectResolver wraps an ObjectResolver with a short-lived object
// cache. Only resolved objects are cached; authorization decisions and
// grants never are, and resolution failures are not cached either, so a
// freshly created object becomes visible on the next call.
type CachingObjectResolver struct {
	inner ObjectResolver
	cache cache.Cache
	ttl   time.Duration
}

// NewCachingObjectResolver wraps inner with the given cache and TTL.
func NewCachingObjectResolver(inner ObjectResolver, c cache.Cache, ttl time.Duration) *CachingObjectResolver {
	return &CachingObjectResolver{inner: inner, cache: c, ttl: ttl}
}

// Resolve returns the cached object for id if present, resolving and caching
// it otherwise.
func (r *CachingObjectResolver) Resolve(ctx context.Context, id entities.SecuredID) (entities.SecuredObject, error) {
	key := cacheKey(id)
	if cached, found := r.cache.Get(ctx, key); found {
		if obj, ok := cached.(entities.SecuredObject); ok {
			return obj, nil
		}
	}

	obj, err := r.inner.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = r.cache.Set(ctx, key, obj, r.ttl)
	return obj, nil
}

// Invalidate drops the cached object for id, if any. Called by services
// after a mutation so the next check sees the new state.
func (r *CachingObjectResolver) Invalidate(ctx context.Context, id entities.SecuredID) {
	_ = r.cache.Delete(ctx, cacheKey(id))
}

func cacheKey(id entities.SecuredID) string {
	return fmt.Sprintf("object:%s:%s", id.Resource, id.ID)
}
