package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	models "github.com/remedyhub/entitlement/internal/models"
	"github.com/remedyhub/entitlement/pkg/tool"
	"github.com/remedyhub/entitlement/pkg/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the postgres-backed Store. Every write is a single conditional
// statement so concurrent callers across instances cannot both win.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, userID string) (*models.UserEntitlement, error) {
	var rec models.UserEntitlement
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load entitlement: %w", err)
	}
	return &rec, nil
}

func (s *GormStore) GetOrCreate(ctx context.Context, userID string) (*models.UserEntitlement, bool, error) {
	rec := models.NewUserEntitlement(userID)
	rec.ID = tool.GenerateUUIDV7()

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(rec)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to create entitlement: %w", res.Error)
	}

	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return current, res.RowsAffected == 1, nil
}

func (s *GormStore) StartTrial(ctx context.Context, userID string, at time.Time) (*models.UserEntitlement, bool, error) {
	res := s.db.WithContext(ctx).Model(&models.UserEntitlement{}).
		Where("user_id = ? AND trial_used = ?", userID, false).
		Updates(map[string]any{
			"trial_used":     true,
			"trial_start_at": at,
		})
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to start trial: %w", res.Error)
	}

	rec, err := s.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return rec, res.RowsAffected == 1, nil
}

func (s *GormStore) ApplySubscription(ctx context.Context, userID string, tier types.SubscriptionTier, status types.SubscriptionStatus, effectiveAt time.Time) (*models.UserEntitlement, bool, error) {
	res := s.db.WithContext(ctx).Model(&models.UserEntitlement{}).
		Where("user_id = ? AND (status_effective_at IS NULL OR status_effective_at < ?)", userID, effectiveAt).
		Updates(map[string]any{
			"purchased_tier":      tier,
			"subscription_status": status,
			"status_effective_at": effectiveAt,
		})
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to apply subscription: %w", res.Error)
	}

	rec, err := s.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return rec, res.RowsAffected == 1, nil
}
