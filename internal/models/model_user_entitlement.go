package models

import (
	"time"

	"github.com/remedyhub/entitlement/pkg/types"
)

// UserEntitlement is the entire durable footprint of a user's entitlements:
// what the payment processor says they bought, and their one-time trial.
type UserEntitlement struct {
	ID     string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID string `gorm:"column:user_id;type:varchar(128);not null;uniqueIndex" json:"user_id"`
	// PurchasedTier is assigned by the payment processor.
	PurchasedTier      types.SubscriptionTier   `gorm:"column:purchased_tier;type:varchar(32);not null" json:"purchased_tier"`
	SubscriptionStatus types.SubscriptionStatus `gorm:"column:subscription_status;type:varchar(32);not null" json:"subscription_status"`
	// StatusEffectiveAt is the effectiveAt of the last applied processor event, nil until one arrives.
	StatusEffectiveAt *time.Time `gorm:"column:status_effective_at;default:null" json:"status_effective_at"`
	TrialUsed         bool       `gorm:"column:trial_used;not null;default:false" json:"trial_used"`
	TrialStartAt      *time.Time `gorm:"column:trial_start_at;default:null;index" json:"trial_start_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (UserEntitlement) TableName() string {
	return "user_entitlement"
}

// NewUserEntitlement returns the record every account starts with.
func NewUserEntitlement(userID string) *UserEntitlement {
	return &UserEntitlement{
		UserID:             userID,
		PurchasedTier:      types.SubscriptionTierBronze,
		SubscriptionStatus: types.SubscriptionStatusActive,
	}
}

// Trial returns the trial portion of the record with the configured window length.
func (u *UserEntitlement) Trial(duration time.Duration) types.TrialRecord {
	if u == nil {
		return types.TrialRecord{Duration: duration}
	}
	var start *time.Time
	if u.TrialStartAt != nil {
		t := *u.TrialStartAt
		start = &t
	}
	return types.TrialRecord{Used: u.TrialUsed, StartAt: start, Duration: duration}
}

// Clone returns a deep copy so cached records are never shared.
func (u *UserEntitlement) Clone() *UserEntitlement {
	if u == nil {
		return nil
	}
	cp := *u
	if u.StatusEffectiveAt != nil {
		t := *u.StatusEffectiveAt
		cp.StatusEffectiveAt = &t
	}
	if u.TrialStartAt != nil {
		t := *u.TrialStartAt
		cp.TrialStartAt = &t
	}
	return &cp
}
