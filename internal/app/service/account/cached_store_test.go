package account

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	models "github.com/remedyhub/entitlement/internal/models"
	"github.com/remedyhub/entitlement/pkg/types"
	"github.com/stretchr/testify/require"
)

// countingStore counts reads that reach the underlying store.
type countingStore struct {
	Store
	gets atomic.Int64
}

func (c *countingStore) Get(ctx context.Context, userID string) (*models.UserEntitlement, error) {
	c.gets.Add(1)
	return c.Store.Get(ctx, userID)
}

func TestCachedStore_ServesReadsFromCache(t *testing.T) {
	ctx := context.Background()
	base := &countingStore{Store: NewMemoryStore()}
	s := NewCachedStore(base, 16, time.Minute)

	_, _, err := s.GetOrCreate(ctx, "u1")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := s.Get(ctx, "u1")
		require.NoError(t, err)
	}
	require.Equal(t, int64(0), base.gets.Load())
	require.Equal(t, 1, s.Len())
}

func TestCachedStore_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	base := &countingStore{Store: NewMemoryStore()}
	s := NewCachedStore(base, 16, time.Minute)
	now := time.Unix(1735689600, 0)
	s.now = func() time.Time { return now }

	_, _, err := s.GetOrCreate(ctx, "u1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(1), base.gets.Load())
}

func TestCachedStore_WritesInvalidate(t *testing.T) {
	ctx := context.Background()
	s := NewCachedStore(NewMemoryStore(), 16, time.Minute)

	_, _, err := s.GetOrCreate(ctx, "u1")
	require.NoError(t, err)

	_, applied, err := s.ApplySubscription(ctx, "u1", types.SubscriptionTierGold, types.SubscriptionStatusCanceled, time.Now())
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, 0, s.Len())

	rec, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusCanceled, rec.SubscriptionStatus)
}

func TestCachedStore_Invalidate(t *testing.T) {
	ctx := context.Background()
	s := NewCachedStore(NewMemoryStore(), 16, time.Minute)
	_, _, err := s.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	s.Invalidate("u1")
	require.Equal(t, 0, s.Len())
}

func TestCachedStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewCachedStore(NewMemoryStore(), 16, time.Minute)
	rec, _, err := s.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	rec.SubscriptionStatus = types.SubscriptionStatusActive
	rec.PurchasedTier = types.SubscriptionTierGold

	cached, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionTierBronze, cached.PurchasedTier)
}
