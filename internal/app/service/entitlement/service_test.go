package entitlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/remedyhub/entitlement/internal/app/service/account"
	"github.com/remedyhub/entitlement/internal/models"
	"github.com/remedyhub/entitlement/pkg/config"
	"github.com/remedyhub/entitlement/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingStore struct{ account.Store }

func (failingStore) Get(context.Context, string) (*models.UserEntitlement, error) {
	return nil, errors.New("connection refused")
}

func TestService_View(t *testing.T) {
	ctx := context.Background()
	store := account.NewCachedStore(account.NewMemoryStore(), 16, time.Minute)
	s := NewService(&config.Config{}, store, zap.NewNop().Sugar())

	v, err := s.View(ctx, "u1", t0)
	require.NoError(t, err)
	assert.False(t, v.Synced)
	assert.Equal(t, "u1", v.UserID)
	assert.Empty(t, v.Features)

	_, _, err = store.GetOrCreate(ctx, "u1")
	require.NoError(t, err)

	v, err = s.View(ctx, "u1", t0)
	require.NoError(t, err)
	assert.True(t, v.Synced)
	assert.Equal(t, types.FeaturesForTier(types.SubscriptionTierBronze), v.Features)
	assert.True(t, s.CanAccess(ctx, "u1", types.FeatureNewsletter, t0))
	assert.False(t, s.CanAccess(ctx, "u1", types.FeatureAdFree, t0))
	assert.False(t, s.CanAccess(ctx, "u1", "unregistered", t0))
}

func TestService_CanAccessFailsClosed(t *testing.T) {
	s := NewService(&config.Config{}, failingStore{}, zap.NewNop().Sugar())

	v, err := s.View(context.Background(), "u1", t0)
	require.Error(t, err)
	assert.Equal(t, Anonymous(t0), v)
	for _, f := range allFeatures() {
		assert.False(t, s.CanAccess(context.Background(), "u1", f, t0))
	}
}

func TestService_CheckMatchesView(t *testing.T) {
	ctx := context.Background()
	store := account.NewCachedStore(account.NewMemoryStore(), 16, time.Minute)
	s := NewService(&config.Config{}, store, zap.NewNop().Sugar())

	_, _, err := store.ApplySubscription(ctx, "u1", types.SubscriptionTierSilver, types.SubscriptionStatusActive, t0)
	require.NoError(t, err)

	for _, f := range allFeatures() {
		v, allowed := s.Check(ctx, "u1", f, t0)
		assert.Equal(t, types.SubscriptionTierSilver, v.EffectiveTier)
		assert.Equal(t, v.Can(f), allowed, f)
		assert.Equal(t, allowed, s.CanAccess(ctx, "u1", f, t0), f)
	}

	v, allowed := NewService(&config.Config{}, failingStore{}, zap.NewNop().Sugar()).
		Check(ctx, "u1", types.FeatureNewsletter, t0)
	assert.False(t, allowed)
	assert.Equal(t, Anonymous(t0), v)
}

func TestService_InvalidateDropsCachedRecord(t *testing.T) {
	ctx := context.Background()
	store := account.NewCachedStore(account.NewMemoryStore(), 16, time.Minute)
	s := NewService(&config.Config{}, store, zap.NewNop().Sugar())

	_, _, err := store.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	s.Invalidate("u1")
	assert.Equal(t, 0, store.Len())

	// stores without a cache are fine too
	assert.NotPanics(t, func() {
		NewService(nil, account.NewMemoryStore(), zap.NewNop().Sugar()).Invalidate("u1")
	})
}

func TestService_ViewAfterSubscriptionChange(t *testing.T) {
	ctx := context.Background()
	store := account.NewCachedStore(account.NewMemoryStore(), 16, time.Minute)
	s := NewService(&config.Config{}, store, zap.NewNop().Sugar())

	_, _, err := store.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	require.False(t, s.CanAccess(ctx, "u1", types.FeatureMemberDiscount, t0))

	_, _, err = store.ApplySubscription(ctx, "u1", types.SubscriptionTierGold, types.SubscriptionStatusActive, t0)
	require.NoError(t, err)
	assert.True(t, s.CanAccess(ctx, "u1", types.FeatureMemberDiscount, t0))
}
