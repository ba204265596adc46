package account

import (
	"context"
	"errors"
	"time"

	models "github.com/remedyhub/entitlement/internal/models"
	"github.com/remedyhub/entitlement/pkg/types"
)

var ErrNotFound = errors.New("entitlement record not found")

// Store persists one UserEntitlement per user. Only two writes exist:
// the one-time trial start and the application of processor events.
type Store interface {
	// Get returns ErrNotFound when the user has no record yet.
	Get(ctx context.Context, userID string) (*models.UserEntitlement, error)
	// GetOrCreate lazily creates the default record; created reports whether this call inserted it.
	GetOrCreate(ctx context.Context, userID string) (rec *models.UserEntitlement, created bool, err error)
	// StartTrial atomically flips trial_used from false to true and stamps the start time.
	// won is false when the latch was already set; rec is the current record either way.
	StartTrial(ctx context.Context, userID string, at time.Time) (rec *models.UserEntitlement, won bool, err error)
	// ApplySubscription writes tier and status only if effectiveAt is newer than the
	// last applied event. applied is false for stale or duplicate events.
	ApplySubscription(ctx context.Context, userID string, tier types.SubscriptionTier, status types.SubscriptionStatus, effectiveAt time.Time) (rec *models.UserEntitlement, applied bool, err error)
}
