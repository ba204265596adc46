package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/remedyhub/entitlement/internal/app/service/account"
	"github.com/remedyhub/entitlement/internal/app/service/trial"
	"github.com/remedyhub/entitlement/pkg/config"
	"github.com/remedyhub/entitlement/pkg/logctx"
	"github.com/remedyhub/entitlement/pkg/metrics"
	"github.com/remedyhub/entitlement/pkg/types"

	"go.uber.org/zap"
)

// Invalidator drops locally cached state for a user.
type Invalidator interface {
	Invalidate(userID string)
}

// Service serves views from the (cached) account store. Views are always
// recomputed at the requested instant.
type Service struct {
	store         account.Store
	log           *zap.SugaredLogger
	trialDuration time.Duration
}

func NewService(cfg *config.Config, store account.Store, log *zap.SugaredLogger) *Service {
	d := trial.DefaultDuration
	if cfg != nil && cfg.Trial.Duration > 0 {
		d = cfg.Trial.Duration
	}
	return &Service{store: store, log: log, trialDuration: d}
}

// View returns the user's entitlements at now. A user with no record yet gets
// the anonymous view with Synced=false.
func (s *Service) View(ctx context.Context, userID string, now time.Time) (View, error) {
	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			v := Anonymous(now)
			v.UserID = userID
			return v, nil
		}
		return Anonymous(now), fmt.Errorf("failed to load entitlements: %w", err)
	}
	return ComputeView(rec, s.trialDuration, now), nil
}

// Check loads the view and decides access to feature in one step. A load
// failure is logged and denies access; the returned view is then anonymous.
func (s *Service) Check(ctx context.Context, userID string, feature types.Feature, now time.Time) (View, bool) {
	v, err := s.View(ctx, userID, now)
	allowed := err == nil && v.Can(feature)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("feature check failed closed", "feature", feature, "err", err)
	}
	metrics.FeatureCheck(string(feature), allowed)
	return v, allowed
}

// CanAccess never errors: any failure to load the user denies access.
func (s *Service) CanAccess(ctx context.Context, userID string, feature types.Feature, now time.Time) bool {
	_, allowed := s.Check(ctx, userID, feature, now)
	return allowed
}

// Invalidate drops any cached record for userID so the next read hits the store.
func (s *Service) Invalidate(userID string) {
	if inv, ok := s.store.(Invalidator); ok {
		inv.Invalidate(userID)
	}
}

// Anonymous is the view served to unauthenticated or unsynced callers.
func (s *Service) Anonymous(now time.Time) View { return Anonymous(now) }
