package entitlement

import (
	"slices"
	"time"

	"github.com/remedyhub/entitlement/internal/app/service/trial"
	"github.com/remedyhub/entitlement/internal/models"
	"github.com/remedyhub/entitlement/pkg/types"
)

// HasFeature reports whether tier unlocks feature. Unknown tiers and
// unregistered features are denied.
func HasFeature(tier types.SubscriptionTier, feature types.Feature) bool {
	return slices.Contains(types.FeaturesForTier(tier), feature)
}

// CanAccessFeature gates on status before tier: a canceled or expired
// subscription is denied whatever tier is stored.
func CanAccessFeature(tier types.SubscriptionTier, status types.SubscriptionStatus, feature types.Feature) bool {
	if !status.Permits() {
		return false
	}
	return HasFeature(tier, feature)
}

// EffectiveTier is gold while the trial is active, the purchased tier otherwise.
func EffectiveTier(purchased types.SubscriptionTier, rec types.TrialRecord, now time.Time) types.SubscriptionTier {
	if trial.Active(rec, now) {
		return types.SubscriptionTierGold
	}
	return purchased
}

// EffectiveStatus reports trial while a trial is active on a subscription that
// still permits access. Canceled and expired subscriptions keep their status,
// so cancelling revokes access even mid-trial.
func EffectiveStatus(stored types.SubscriptionStatus, rec types.TrialRecord, now time.Time) types.SubscriptionStatus {
	if stored.Permits() && trial.Active(rec, now) {
		return types.SubscriptionStatusTrial
	}
	return stored
}

// View is the entitlement snapshot of one user at one instant. Never stored.
type View struct {
	UserID        string                   `json:"user_id,omitempty"`
	PurchasedTier types.SubscriptionTier   `json:"purchased_tier"`
	EffectiveTier types.SubscriptionTier   `json:"effective_tier"`
	Status        types.SubscriptionStatus `json:"status"`
	Features      []types.Feature          `json:"features"`
	Trial         trial.Status             `json:"trial"`
	// Synced is false when no durable record backs the view.
	Synced bool      `json:"synced"`
	At     time.Time `json:"at"`
}

// Can answers a feature check against the snapshot.
func (v View) Can(feature types.Feature) bool {
	return CanAccessFeature(v.EffectiveTier, v.Status, feature)
}

// ComputeView derives the view from a stored record. A nil record is the anonymous view.
func ComputeView(rec *models.UserEntitlement, trialDuration time.Duration, now time.Time) View {
	if rec == nil {
		return Anonymous(now)
	}
	tr := rec.Trial(trialDuration)
	v := View{
		UserID:        rec.UserID,
		PurchasedTier: rec.PurchasedTier,
		EffectiveTier: EffectiveTier(rec.PurchasedTier, tr, now),
		Status:        EffectiveStatus(rec.SubscriptionStatus, tr, now),
		Trial:         trial.Describe(tr, now),
		Synced:        true,
		At:            now,
	}
	v.Features = []types.Feature{}
	if v.Status.Permits() {
		v.Features = types.FeaturesForTier(v.EffectiveTier)
	}
	return v
}

// Anonymous is the fail-closed view: lowest tier, unknown status, no features.
func Anonymous(now time.Time) View {
	return View{
		PurchasedTier: types.SubscriptionTierBronze,
		EffectiveTier: types.SubscriptionTierBronze,
		Status:        types.SubscriptionStatusUnknown,
		Features:      []types.Feature{},
		Trial:         trial.Describe(types.TrialRecord{}, now),
		At:            now,
	}
}
