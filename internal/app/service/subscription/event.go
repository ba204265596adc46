package subscription

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/remedyhub/entitlement/pkg/types"
)

var (
	// ErrStaleEvent is returned for events not newer than the last applied one.
	ErrStaleEvent   = errors.New("stale subscription event")
	ErrInvalidEvent = errors.New("invalid subscription event")
)

// Event is a normalized tier/status change from the payment processor.
type Event struct {
	EventID     string                   `json:"event_id"`
	UserID      string                   `json:"user_id"`
	Tier        types.SubscriptionTier   `json:"tier"`
	Status      types.SubscriptionStatus `json:"status"`
	EffectiveAt time.Time                `json:"effective_at"`
}

func (e *Event) Validate() error {
	e.UserID = strings.TrimSpace(e.UserID)
	if e.UserID == "" {
		return fmt.Errorf("%w: missing user_id", ErrInvalidEvent)
	}
	tier, err := types.ParseTier(string(e.Tier))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	status, err := types.ParseStatus(string(e.Status))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if e.EffectiveAt.IsZero() {
		return fmt.Errorf("%w: missing effective_at", ErrInvalidEvent)
	}
	e.Tier, e.Status = tier, status
	return nil
}
