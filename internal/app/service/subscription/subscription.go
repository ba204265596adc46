package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/remedyhub/entitlement/internal/app/service/account"
	"github.com/remedyhub/entitlement/internal/app/service/changelog"
	models "github.com/remedyhub/entitlement/internal/models"
	"github.com/remedyhub/entitlement/pkg/logctx"
	"github.com/remedyhub/entitlement/pkg/metrics"
	types "github.com/remedyhub/entitlement/pkg/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db        *gorm.DB
	store     account.Store
	changelog *changelog.Service
	log       *zap.SugaredLogger
}

func NewService(db *gorm.DB, store account.Store, cl *changelog.Service, log *zap.SugaredLogger) *Service {
	return &Service{db: db, store: store, changelog: cl, log: log}
}

// ApplyEvent applies a processor event last-write-wins by EffectiveAt.
// Replays and out-of-order events return ErrStaleEvent with the current record.
func (s *Service) ApplyEvent(ctx context.Context, ev Event) (*models.UserEntitlement, error) {
	lg := logctx.FromCtx(ctx, s.log)
	if err := ev.Validate(); err != nil {
		metrics.SubscriptionEvent("invalid")
		return nil, err
	}

	before, created, err := s.store.GetOrCreate(ctx, ev.UserID)
	if err != nil {
		metrics.SubscriptionEvent("error")
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if created {
		s.changelog.SaveSubscriptionLog(ctx, ev.UserID, nil, before, types.SubscriptionChangeReasonAccountCreate)
	}

	after, applied, err := s.store.ApplySubscription(ctx, ev.UserID, ev.Tier, ev.Status, ev.EffectiveAt)
	if err != nil {
		metrics.SubscriptionEvent("error")
		return nil, fmt.Errorf("failed to apply subscription event: %w", err)
	}
	if !applied {
		metrics.SubscriptionEvent("stale")
		lg.Infow("subscription event ignored as stale",
			"user_id", ev.UserID, "event_id", ev.EventID, "effective_at", ev.EffectiveAt, "current_effective_at", after.StatusEffectiveAt)
		return after, ErrStaleEvent
	}

	s.changelog.SaveSubscriptionLog(ctx, ev.UserID, before, after, types.SubscriptionChangeReasonProcessorEvent)
	metrics.SubscriptionEvent("applied")
	lg.Infow("subscription event applied",
		"user_id", ev.UserID, "event_id", ev.EventID, "tier", ev.Tier, "status", ev.Status, "effective_at", ev.EffectiveAt)
	return after, nil
}

// ScanEntitlementsRequest is the admin listing query.
type ScanEntitlementsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanEntitlementsResponse struct {
	Items []*models.UserEntitlement `json:"items"`
	Total int64                     `json:"total"`
}

// EntitlementColumns are the columns admins may filter and sort on.
var EntitlementColumns = map[string]bool{
	"user_id":             true,
	"purchased_tier":      true,
	"subscription_status": true,
	"status_effective_at": true,
	"trial_used":          true,
	"trial_start_at":      true,
	"created_at":          true,
	"updated_at":          true,
}

const maxScanSize = 200

// filtersAnd combines multiple CommonFilter into a single clause.Expression.
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

func (r *ScanEntitlementsRequest) normalize() error {
	if r.Size <= 0 {
		r.Size = 10
	}
	if r.Size > maxScanSize {
		r.Size = maxScanSize
	}
	if r.From < 0 {
		r.From = 0
	}
	if r.SortBy != "" && !EntitlementColumns[r.SortBy] {
		return fmt.Errorf("%w: sort_by %q", types.ErrInvalidFilter, r.SortBy)
	}
	for _, f := range r.Filters {
		if f == nil {
			return fmt.Errorf("%w: null filter", types.ErrInvalidFilter)
		}
		if err := f.Validate(EntitlementColumns); err != nil {
			return err
		}
	}
	return nil
}

// ScanEntitlements implements paginated admin listing with filters.
func (s *Service) ScanEntitlements(ctx context.Context, req *ScanEntitlementsRequest) (*ScanEntitlementsResponse, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if err := req.normalize(); err != nil {
		return nil, err
	}
	if s.db == nil {
		return nil, errors.New("listing requires a database")
	}

	tx := s.db.WithContext(ctx).Model(&models.UserEntitlement{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count entitlements: %w", err)
	}

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: sortBy}, Desc: req.SortOrder != "asc"}}})

	var rows []*models.UserEntitlement
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list entitlements: %w", err)
	}
	return &ScanEntitlementsResponse{Items: rows, Total: total}, nil
}
