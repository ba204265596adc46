package intent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/remedyhub/entitlement/pkg/types"
)

// ErrNoIntent is returned by Consume when nothing is pending for the session.
var ErrNoIntent = errors.New("no pending intent")

var ErrInvalidIntent = errors.New("invalid intent")

type Kind string

const (
	KindStartTrial Kind = "start_trial"
	KindCheckout   Kind = "checkout"
)

// Intent is an action the user asked for before authentication finished.
// Tier is set for checkout intents only.
type Intent struct {
	Kind       Kind                   `json:"kind"`
	Tier       types.SubscriptionTier `json:"tier,omitempty"`
	RecordedAt time.Time              `json:"recorded_at"`
}

func (i *Intent) Validate() error {
	switch i.Kind {
	case KindStartTrial:
		i.Tier = ""
		return nil
	case KindCheckout:
		tier, err := types.ParseTier(string(i.Tier))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidIntent, err)
		}
		i.Tier = tier
		return nil
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidIntent, i.Kind)
	}
}

// Store keeps at most one pending intent per session. Consume removes the
// intent in the same step that returns it, so it can be honored only once.
type Store interface {
	Record(ctx context.Context, sessionID string, in Intent) error
	Consume(ctx context.Context, sessionID string) (Intent, error)
}
