package trial

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/remedyhub/entitlement/internal/app/service/account"
	"github.com/remedyhub/entitlement/internal/app/service/changelog"
	"github.com/remedyhub/entitlement/pkg/config"
	"github.com/remedyhub/entitlement/pkg/logctx"
	"github.com/remedyhub/entitlement/pkg/metrics"
	"github.com/remedyhub/entitlement/pkg/types"

	"go.uber.org/zap"
)

// ErrTrialAlreadyUsed is the expected outcome of starting a trial a second time.
var ErrTrialAlreadyUsed = errors.New("trial already used")

type Service struct {
	store     account.Store
	changelog *changelog.Service
	log       *zap.SugaredLogger
	duration  time.Duration
	now       func() time.Time
}

func NewService(cfg *config.Config, store account.Store, cl *changelog.Service, log *zap.SugaredLogger) *Service {
	d := DefaultDuration
	if cfg != nil && cfg.Trial.Duration > 0 {
		d = cfg.Trial.Duration
	}
	return &Service{store: store, changelog: cl, log: log, duration: d, now: time.Now}
}

// StartTrial starts the user's one-time trial. Concurrent callers race on an
// atomic check-and-set; losers get ErrTrialAlreadyUsed with the winner's record.
func (s *Service) StartTrial(ctx context.Context, userID string) (types.TrialRecord, error) {
	lg := logctx.FromCtx(ctx, s.log)

	before, created, err := s.store.GetOrCreate(ctx, userID)
	if err != nil {
		metrics.TrialStart("error")
		return types.TrialRecord{}, fmt.Errorf("failed to load account: %w", err)
	}
	if created {
		s.changelog.SaveSubscriptionLog(ctx, userID, nil, before, types.SubscriptionChangeReasonAccountCreate)
	}
	if before.TrialUsed {
		metrics.TrialStart("already_used")
		lg.Infow("trial already used", "user_id", userID)
		return before.Trial(s.duration), ErrTrialAlreadyUsed
	}

	after, won, err := s.store.StartTrial(ctx, userID, s.now())
	if err != nil {
		metrics.TrialStart("error")
		return types.TrialRecord{}, fmt.Errorf("failed to start trial: %w", err)
	}
	if !won {
		metrics.TrialStart("already_used")
		lg.Infow("trial already used", "user_id", userID, "lost_race", true)
		return after.Trial(s.duration), ErrTrialAlreadyUsed
	}

	s.changelog.SaveSubscriptionLog(ctx, userID, before, after, types.SubscriptionChangeReasonTrialStart)
	metrics.TrialStart("started")
	lg.Infow("trial started", "user_id", userID, "trial_start_at", after.TrialStartAt, "duration", s.duration)
	return after.Trial(s.duration), nil
}

// Record returns the user's trial record. Users without an account read as not started.
func (s *Service) Record(ctx context.Context, userID string) (types.TrialRecord, error) {
	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return types.TrialRecord{Duration: s.duration}, nil
		}
		return types.TrialRecord{}, err
	}
	return rec.Trial(s.duration), nil
}

// Status is the trial as shown to a client.
type Status struct {
	State            types.TrialState `json:"state"`
	Used             bool             `json:"trial_used"`
	StartAt          *time.Time       `json:"trial_start_at,omitempty"`
	EndAt            *time.Time       `json:"trial_end_at,omitempty"`
	RemainingSeconds int64            `json:"remaining_seconds"`
}

// Describe renders rec at now.
func Describe(rec types.TrialRecord, now time.Time) Status {
	st := Status{
		State:            State(rec, now),
		Used:             rec.Used,
		StartAt:          rec.StartAt,
		RemainingSeconds: int64(Remaining(rec, now).Seconds()),
	}
	if end, ok := EndTime(rec); ok {
		st.EndAt = &end
	}
	return st
}

func (s *Service) Status(ctx context.Context, userID string) (Status, error) {
	rec, err := s.Record(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	return Describe(rec, s.now()), nil
}
