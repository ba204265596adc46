package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/remedyhub/entitlement/internal/app/service/account"
	"github.com/remedyhub/entitlement/internal/app/service/changelog"
	"github.com/remedyhub/entitlement/internal/app/service/entitlement"
	"github.com/remedyhub/entitlement/internal/app/service/identity"
	"github.com/remedyhub/entitlement/internal/app/service/intent"
	"github.com/remedyhub/entitlement/internal/app/service/trial"
	"github.com/remedyhub/entitlement/internal/models"
	"github.com/remedyhub/entitlement/pkg/config"
	"github.com/remedyhub/entitlement/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// tokenVerifier accepts tokens of the form "ok:<user id>".
type tokenVerifier struct{}

func (tokenVerifier) Verify(_ context.Context, token string) (identity.Identity, error) {
	if len(token) > 3 && token[:3] == "ok:" {
		return identity.Identity{UserID: token[3:], Verified: true}, nil
	}
	return identity.Identity{}, identity.ErrInvalidToken
}

type brokenStore struct{ account.Store }

func (brokenStore) GetOrCreate(context.Context, string) (*models.UserEntitlement, bool, error) {
	return nil, false, errors.New("database unavailable")
}

type fixture struct {
	bridge  *Bridge
	store   *account.CachedStore
	intents *intent.MemoryStore
}

func newFixture(t *testing.T, store account.Store) fixture {
	t.Helper()
	log := zap.NewNop().Sugar()
	cfg := &config.Config{Checkout: config.CheckoutConfig{URL: "https://shop.example.com/checkout?src=app"}}
	cached := account.NewCachedStore(store, 16, time.Minute)
	cl := changelog.New(nil, log)
	intents := intent.NewMemoryStore(time.Minute)
	b := NewBridge(Params{
		Config:       cfg,
		Verifier:     tokenVerifier{},
		Store:        cached,
		Trials:       trial.NewService(cfg, cached, cl, log),
		Entitlements: entitlement.NewService(cfg, cached, log),
		Intents:      intents,
		Changelog:    cl,
		Logger:       log,
	})
	return fixture{bridge: b, store: cached, intents: intents}
}

func TestSignIn_InvalidToken(t *testing.T) {
	f := newFixture(t, account.NewMemoryStore())
	res := f.bridge.SignIn(context.Background(), SignInRequest{Token: "forged"})
	assert.Equal(t, ResultKindError, res.Kind)
	assert.ErrorIs(t, res.Err, identity.ErrInvalidToken)
	assert.Nil(t, res.Identity)
	assert.Nil(t, res.View)
}

func TestSignIn_CreatesAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, account.NewMemoryStore())

	res := f.bridge.SignIn(ctx, SignInRequest{Token: "ok:u1"})
	require.Equal(t, ResultKindAuthenticated, res.Kind)
	require.NotNil(t, res.Identity)
	assert.Equal(t, "u1", res.Identity.UserID)
	assert.True(t, res.Synced)
	assert.Nil(t, res.Trial)
	assert.Equal(t, types.SubscriptionTierBronze, res.View.EffectiveTier)
	assert.Equal(t, types.SubscriptionStatusActive, res.View.Status)

	_, err := f.store.Get(ctx, "u1")
	require.NoError(t, err)
}

func TestSignIn_StartTrialIntentHonoredOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, account.NewMemoryStore())
	require.NoError(t, f.bridge.RecordIntent(ctx, "sess-1", intent.Intent{Kind: intent.KindStartTrial}))

	res := f.bridge.SignIn(ctx, SignInRequest{Token: "ok:u1", SessionID: "sess-1"})
	require.Equal(t, ResultKindAuthenticated, res.Kind)
	require.NotNil(t, res.Trial)
	assert.True(t, res.Trial.Started)
	assert.Equal(t, types.TrialStateActive, res.Trial.Status.State)
	assert.Equal(t, types.SubscriptionTierGold, res.View.EffectiveTier)
	assert.Equal(t, types.SubscriptionStatusTrial, res.View.Status)
	assert.True(t, res.View.Can(types.FeatureExpertConsultations))

	// reload: the intent was consumed, nothing is re-triggered
	again := f.bridge.SignIn(ctx, SignInRequest{Token: "ok:u1", SessionID: "sess-1"})
	assert.Nil(t, again.Trial)
	assert.Equal(t, types.SubscriptionTierGold, again.View.EffectiveTier)
}

func TestSignIn_StartTrialIntentAlreadyUsed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, account.NewMemoryStore())
	require.NoError(t, f.bridge.RecordIntent(ctx, "a", intent.Intent{Kind: intent.KindStartTrial}))
	require.True(t, f.bridge.SignIn(ctx, SignInRequest{Token: "ok:u1", SessionID: "a"}).Trial.Started)

	require.NoError(t, f.bridge.RecordIntent(ctx, "b", intent.Intent{Kind: intent.KindStartTrial}))
	res := f.bridge.SignIn(ctx, SignInRequest{Token: "ok:u1", SessionID: "b"})
	require.NotNil(t, res.Trial)
	assert.False(t, res.Trial.Started)
	assert.True(t, res.Trial.AlreadyUsed)
}

func TestSignIn_ConcurrentTabsStartOneTrial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, account.NewMemoryStore())
	for _, s := range []string{"tab-1", "tab-2", "tab-3"} {
		require.NoError(t, f.bridge.RecordIntent(ctx, s, intent.Intent{Kind: intent.KindStartTrial}))
	}

	var wg sync.WaitGroup
	results := make([]SignInResult, 3)
	for i, s := range []string{"tab-1", "tab-2", "tab-3"} {
		wg.Add(1)
		go func(i int, s string) {
			defer wg.Done()
			results[i] = f.bridge.SignIn(ctx, SignInRequest{Token: "ok:u1", SessionID: s})
		}(i, s)
	}
	wg.Wait()

	started := 0
	for _, r := range results {
		require.NotNil(t, r.Trial)
		if r.Trial.Started {
			started++
		} else {
			assert.True(t, r.Trial.AlreadyUsed)
		}
	}
	assert.Equal(t, 1, started)
}

func TestSignIn_CheckoutIntentRedirects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, account.NewMemoryStore())
	require.NoError(t, f.bridge.RecordIntent(ctx, "sess", intent.Intent{Kind: intent.KindCheckout, Tier: types.SubscriptionTierSilver}))

	res := f.bridge.SignIn(ctx, SignInRequest{Token: "ok:u1", SessionID: "sess"})
	assert.Equal(t, ResultKindRedirect, res.Kind)
	assert.Equal(t, "https://shop.example.com/checkout?src=app&tier=silver", res.RedirectURL)
	require.NotNil(t, res.Identity)
	require.NotNil(t, res.View)

	again := f.bridge.SignIn(ctx, SignInRequest{Token: "ok:u1", SessionID: "sess"})
	assert.Equal(t, ResultKindAuthenticated, again.Kind)
	assert.Empty(t, again.RedirectURL)
}

func TestSignIn_SyncFailureFailsClosed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, brokenStore{Store: account.NewMemoryStore()})
	require.NoError(t, f.bridge.RecordIntent(ctx, "sess", intent.Intent{Kind: intent.KindStartTrial}))

	res := f.bridge.SignIn(ctx, SignInRequest{Token: "ok:u1", SessionID: "sess"})
	require.Equal(t, ResultKindAuthenticated, res.Kind)
	require.NotNil(t, res.Identity)
	assert.Equal(t, "u1", res.Identity.UserID)
	assert.False(t, res.Synced)
	assert.Equal(t, types.SubscriptionTierBronze, res.View.EffectiveTier)
	assert.Equal(t, types.SubscriptionStatusUnknown, res.View.Status)
	assert.Empty(t, res.View.Features)
	assert.Nil(t, res.Trial)

	// the intent survives for the retry
	in, err := f.intents.Consume(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, intent.KindStartTrial, in.Kind)
}

func TestSignOut_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, account.NewMemoryStore())
	require.Equal(t, ResultKindAuthenticated, f.bridge.SignIn(ctx, SignInRequest{Token: "ok:u1"}).Kind)
	require.Equal(t, 1, f.store.Len())

	v := f.bridge.SignOut(ctx, "u1")
	assert.Equal(t, 0, f.store.Len())
	assert.Equal(t, types.SubscriptionStatusUnknown, v.Status)
	assert.Empty(t, v.Features)
	assert.Empty(t, v.UserID)
}
