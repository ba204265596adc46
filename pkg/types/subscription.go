package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownTier   = errors.New("unknown subscription tier")
	ErrUnknownStatus = errors.New("unknown subscription status")
)

// SubscriptionTier is the purchased subscription level. Tiers are cumulative:
// every feature of a lower tier is available to a higher one.
type SubscriptionTier string

const (
	SubscriptionTierBronze SubscriptionTier = "bronze"
	SubscriptionTierSilver SubscriptionTier = "silver"
	SubscriptionTierGold   SubscriptionTier = "gold"
)

// Tiers lists every tier in ascending order of entitlement breadth.
var Tiers = []SubscriptionTier{
	SubscriptionTierBronze,
	SubscriptionTierSilver,
	SubscriptionTierGold,
}

// Rank returns the position of the tier in the ordering, or -1 when unknown.
func (t SubscriptionTier) Rank() int {
	switch t {
	case SubscriptionTierBronze:
		return 0
	case SubscriptionTierSilver:
		return 1
	case SubscriptionTierGold:
		return 2
	default:
		return -1
	}
}

func (t SubscriptionTier) Valid() bool { return t.Rank() >= 0 }

// AtLeast reports whether t is a known tier ranked at or above other.
func (t SubscriptionTier) AtLeast(other SubscriptionTier) bool {
	return t.Valid() && other.Valid() && t.Rank() >= other.Rank()
}

func ParseTier(s string) (SubscriptionTier, error) {
	t := SubscriptionTier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
	}
	return t, nil
}

// SubscriptionStatus says whether a subscription is currently honored.
// The zero value means the status is unknown (for example an unsynced session)
// and is treated like any other inactive status.
type SubscriptionStatus string

const (
	SubscriptionStatusUnknown  SubscriptionStatus = ""
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusTrial    SubscriptionStatus = "trial"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusExpired  SubscriptionStatus = "expired"
)

// Permits reports whether tier-gated features may be used under this status.
func (s SubscriptionStatus) Permits() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrial
}

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusTrial, SubscriptionStatusCanceled, SubscriptionStatusExpired:
		return true
	}
	return false
}

func ParseStatus(s string) (SubscriptionStatus, error) {
	st := SubscriptionStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return SubscriptionStatusUnknown, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

type SubscriptionChangeReason string

const (
	SubscriptionChangeReasonProcessorEvent SubscriptionChangeReason = "processorEvent"
	SubscriptionChangeReasonTrialStart     SubscriptionChangeReason = "trialStart"
	SubscriptionChangeReasonAccountCreate  SubscriptionChangeReason = "accountCreate"
)

// TrialState is the lifecycle position of a user's one-time promotional trial.
type TrialState string

const (
	TrialStateNotStarted TrialState = "not_started"
	TrialStateActive     TrialState = "active"
	TrialStateExpired    TrialState = "expired"
)
