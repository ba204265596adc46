package statistics

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/remedyhub/entitlement/internal/app/service/trial"
	"github.com/remedyhub/entitlement/internal/models"
	"github.com/remedyhub/entitlement/pkg/config"
	"github.com/remedyhub/entitlement/pkg/types"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatisticType string

const (
	// Snapshot of the entitlement table
	StatisticTypeTierDistribution   StatisticType = "tier_distribution"
	StatisticTypeStatusDistribution StatisticType = "status_distribution"

	// Trial funnel
	StatisticTypeDailyTrialStartedCount StatisticType = "daily_trial_started_count"
	StatisticTypeActiveTrialCount       StatisticType = "active_trial_count"
	StatisticTypeTrialConversionCount   StatisticType = "trial_conversion_count"

	// Processor event intake
	StatisticTypeDailySubscriptionEventCount StatisticType = "daily_subscription_event_count"
)

// entitlementStats read user_entitlement and accept entitlement column filters.
var entitlementStats = []StatisticType{
	StatisticTypeTierDistribution,
	StatisticTypeStatusDistribution,
	StatisticTypeDailyTrialStartedCount,
	StatisticTypeActiveTrialCount,
	StatisticTypeTrialConversionCount,
}

var allStats = append(slices.Clone(entitlementStats), StatisticTypeDailySubscriptionEventCount)

// FilterColumns are the user_entitlement columns statistics may be filtered on.
var FilterColumns = map[string]bool{
	"purchased_tier":      true,
	"subscription_status": true,
	"trial_used":          true,
	"trial_start_at":      true,
	"created_at":          true,
}

type StatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type StatisticRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	DataItems []*StatisticDataItem  `json:"data_items"`
}

func (r *StatisticRequest) Validate() error {
	if r == nil || len(r.DataItems) == 0 {
		return fmt.Errorf("no data items requested")
	}
	for _, di := range r.DataItems {
		if di == nil {
			return fmt.Errorf("null data item")
		}
		if !lo.Contains(allStats, di.ID) {
			return fmt.Errorf("invalid data item id: %s", di.ID)
		}
	}
	for _, f := range r.Filters {
		if f == nil {
			return fmt.Errorf("%w: null filter", types.ErrInvalidFilter)
		}
		if err := f.Validate(FilterColumns); err != nil {
			return err
		}
	}
	return nil
}

// Build composes a WHERE clause from the request filters.
func (r *StatisticRequest) Build(builder clause.Builder) {
	if len(r.Filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, filter := range r.Filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		filter.Build(builder)
	}
}

type StatisticResponseDataItem struct {
	Date  string `json:"date,omitempty"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type StatisticResponse struct {
	DataItems map[StatisticType][]StatisticResponseDataItem `json:"data_items"`
}

// Service provides admin statistics over entitlement records and event logs.
type Service struct {
	db            *gorm.DB
	trialDuration time.Duration
	now           func() time.Time
}

func New(db *gorm.DB, cfg *config.Config) *Service {
	d := trial.DefaultDuration
	if cfg != nil && cfg.Trial.Duration > 0 {
		d = cfg.Trial.Duration
	}
	return &Service{db: db, trialDuration: d, now: time.Now}
}

func (s *Service) entitlements(ctx context.Context, request *StatisticRequest) *gorm.DB {
	return s.db.WithContext(ctx).Table((models.UserEntitlement{}).TableName()).
		Where(clause.Where{Exprs: []clause.Expression{request}})
}

func (s *Service) getTierDistribution(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.entitlements(ctx, request).
		Select("purchased_tier as label, count(*) as value").
		Group("purchased_tier").
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getStatusDistribution(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.entitlements(ctx, request).
		Select("subscription_status as label, count(*) as value").
		Group("subscription_status").
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyTrialStartedCount(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.entitlements(ctx, request).
		Select("TO_CHAR(trial_start_at, 'YYYY-MM-DD') as date, count(*) as value").
		Where("trial_start_at IS NOT NULL").
		Group("TO_CHAR(trial_start_at, 'YYYY-MM-DD')").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getActiveTrialCount(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	now := s.now()
	q := s.entitlements(ctx, request).
		Select("count(*) as value").
		Where("trial_start_at > ? AND trial_start_at <= ?", now.Add(-s.trialDuration), now)
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getTrialConversionCount counts trial users whose latest processor event,
// received after the trial started, left them on an active paid tier.
func (s *Service) getTrialConversionCount(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.entitlements(ctx, request).
		Select("purchased_tier as label, count(*) as value").
		Where("trial_used = ? AND trial_start_at IS NOT NULL", true).
		Where("purchased_tier <> ?", types.SubscriptionTierBronze).
		Where("subscription_status = ?", types.SubscriptionStatusActive).
		Where("status_effective_at > trial_start_at").
		Group("purchased_tier").
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailySubscriptionEventCount(ctx context.Context, _ *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.SubscriptionEventLog{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, status as label, count(*) as value").
		Where("status <> ?", models.SubscriptionEventLogStatusReceived).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("status").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getStatistic(ctx context.Context, request *StatisticRequest, dataItem *StatisticDataItem) ([]StatisticResponseDataItem, error) {
	if s.db == nil {
		return nil, errors.New("statistics require a database")
	}
	switch dataItem.ID {
	case StatisticTypeTierDistribution:
		return s.getTierDistribution(ctx, request)
	case StatisticTypeStatusDistribution:
		return s.getStatusDistribution(ctx, request)
	case StatisticTypeDailyTrialStartedCount:
		return s.getDailyTrialStartedCount(ctx, request)
	case StatisticTypeActiveTrialCount:
		return s.getActiveTrialCount(ctx, request)
	case StatisticTypeTrialConversionCount:
		return s.getTrialConversionCount(ctx, request)
	case StatisticTypeDailySubscriptionEventCount:
		return s.getDailySubscriptionEventCount(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetStatistic computes every requested data item concurrently. Items that
// cannot honor the request filters come back as null.
func (s *Service) GetStatistic(ctx context.Context, request *StatisticRequest) (*StatisticResponse, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []StatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *StatisticDataItem) {
			defer wg.Done()
			if len(request.Filters) > 0 && !lo.Contains(entitlementStats, di.ID) {
				resChan <- &lo.Entry[StatisticType, []StatisticResponseDataItem]{Key: di.ID, Value: nil}
				return
			}
			res, err := s.getStatistic(ctx, request, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []StatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	wg.Wait()
	close(errChan)
	close(resChan)

	if err, ok := <-errChan; ok {
		return nil, err
	}
	results := make(map[StatisticType][]StatisticResponseDataItem, len(request.DataItems))
	for entry := range resChan {
		results[entry.Key] = entry.Value
	}
	return &StatisticResponse{DataItems: results}, nil
}
