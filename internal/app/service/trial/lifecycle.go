package trial

import (
	"time"

	"github.com/remedyhub/entitlement/pkg/types"
)

// DefaultDuration is the length of the one-time promotional trial.
const DefaultDuration = 24 * time.Hour

func duration(rec types.TrialRecord) time.Duration {
	if rec.Duration <= 0 {
		return DefaultDuration
	}
	return rec.Duration
}

// EndTime returns StartAt + Duration, or false if the trial never started.
func EndTime(rec types.TrialRecord) (time.Time, bool) {
	if rec.StartAt == nil {
		return time.Time{}, false
	}
	return rec.StartAt.Add(duration(rec)), true
}

// State is a pure function of the record and now. A latched record without a
// start time cannot be restarted, so it reads as expired.
func State(rec types.TrialRecord, now time.Time) types.TrialState {
	end, ok := EndTime(rec)
	if !ok {
		if rec.Used {
			return types.TrialStateExpired
		}
		return types.TrialStateNotStarted
	}
	if now.Before(end) {
		return types.TrialStateActive
	}
	return types.TrialStateExpired
}

// Active reports whether the trial grants its tier override at now.
func Active(rec types.TrialRecord, now time.Time) bool {
	return State(rec, now) == types.TrialStateActive
}

// Remaining is the time left in an active trial, never negative.
func Remaining(rec types.TrialRecord, now time.Time) time.Duration {
	end, ok := EndTime(rec)
	if !ok || !now.Before(end) {
		return 0
	}
	return end.Sub(now)
}
