package account

import (
	"context"
	"sync/atomic"
	"time"

	models "github.com/remedyhub/entitlement/internal/models"
	"github.com/remedyhub/entitlement/pkg/types"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCacheSize = 10000
	defaultCacheTTL  = time.Minute
)

type cacheEntry struct {
	rec      *models.UserEntitlement
	storedAt time.Time
}

// CachedStore keeps recently read records in process so feature checks do not
// hit the database. It caches records, never computed views: views depend on now.
// Writes and Invalidate drop the entry; reads racing with a write do not repopulate it.
type CachedStore struct {
	base  Store
	cache *lru.Cache[string, cacheEntry]
	ttl   time.Duration
	group singleflight.Group
	// gen changes on every write or invalidation.
	gen atomic.Uint64
	now func() time.Time
}

func NewCachedStore(base Store, size int, ttl time.Duration) *CachedStore {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		// lru.New only errors on non-positive size which we guard above.
		panic(err)
	}
	return &CachedStore{base: base, cache: cache, ttl: ttl, now: time.Now}
}

func (s *CachedStore) lookup(userID string) (*models.UserEntitlement, bool) {
	entry, ok := s.cache.Get(userID)
	if !ok {
		return nil, false
	}
	if s.now().Sub(entry.storedAt) >= s.ttl {
		s.cache.Remove(userID)
		return nil, false
	}
	return entry.rec.Clone(), true
}

func (s *CachedStore) store(userID string, rec *models.UserEntitlement, gen uint64) {
	if rec == nil || s.gen.Load() != gen {
		return
	}
	s.cache.Add(userID, cacheEntry{rec: rec.Clone(), storedAt: s.now()})
}

func (s *CachedStore) Get(ctx context.Context, userID string) (*models.UserEntitlement, error) {
	if rec, ok := s.lookup(userID); ok {
		return rec, nil
	}
	gen := s.gen.Load()
	v, err, _ := s.group.Do(userID, func() (any, error) {
		return s.base.Get(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	rec := v.(*models.UserEntitlement)
	s.store(userID, rec, gen)
	return rec.Clone(), nil
}

func (s *CachedStore) GetOrCreate(ctx context.Context, userID string) (*models.UserEntitlement, bool, error) {
	if rec, ok := s.lookup(userID); ok {
		return rec, false, nil
	}
	gen := s.gen.Load()
	rec, created, err := s.base.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	s.store(userID, rec, gen)
	return rec, created, nil
}

func (s *CachedStore) StartTrial(ctx context.Context, userID string, at time.Time) (*models.UserEntitlement, bool, error) {
	defer s.Invalidate(userID)
	return s.base.StartTrial(ctx, userID, at)
}

func (s *CachedStore) ApplySubscription(ctx context.Context, userID string, tier types.SubscriptionTier, status types.SubscriptionStatus, effectiveAt time.Time) (*models.UserEntitlement, bool, error) {
	defer s.Invalidate(userID)
	return s.base.ApplySubscription(ctx, userID, tier, status, effectiveAt)
}

// Invalidate drops the cached record for userID.
func (s *CachedStore) Invalidate(userID string) {
	s.gen.Add(1)
	s.group.Forget(userID)
	s.cache.Remove(userID)
}

// Len is the number of cached records.
func (s *CachedStore) Len() int { return s.cache.Len() }
