package trial

import (
	"testing"
	"time"

	"github.com/remedyhub/entitlement/pkg/types"
	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func started(at time.Time) types.TrialRecord {
	return types.TrialRecord{Used: true, StartAt: &at, Duration: DefaultDuration}
}

func TestState(t *testing.T) {
	tests := []struct {
		name string
		rec  types.TrialRecord
		now  time.Time
		want types.TrialState
	}{
		{"fresh", types.TrialRecord{}, t0, types.TrialStateNotStarted},
		{"just started", started(t0), t0, types.TrialStateActive},
		{"one hour in", started(t0), t0.Add(time.Hour), types.TrialStateActive},
		{"last nanosecond", started(t0), t0.Add(DefaultDuration - 1), types.TrialStateActive},
		{"at end", started(t0), t0.Add(DefaultDuration), types.TrialStateExpired},
		{"25h later", started(t0), t0.Add(25 * time.Hour), types.TrialStateExpired},
		{"used without start", types.TrialRecord{Used: true}, t0, types.TrialStateExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, State(tt.rec, tt.now))
			assert.Equal(t, tt.want == types.TrialStateActive, Active(tt.rec, tt.now))
		})
	}
}

func TestEndTime(t *testing.T) {
	_, ok := EndTime(types.TrialRecord{})
	assert.False(t, ok)

	end, ok := EndTime(started(t0))
	assert.True(t, ok)
	assert.Equal(t, t0.Add(24*time.Hour), end)

	// zero duration falls back to the default window
	rec := started(t0)
	rec.Duration = 0
	end, _ = EndTime(rec)
	assert.Equal(t, t0.Add(DefaultDuration), end)

	rec.Duration = time.Hour
	end, _ = EndTime(rec)
	assert.Equal(t, t0.Add(time.Hour), end)
}

func TestRemaining(t *testing.T) {
	assert.Zero(t, Remaining(types.TrialRecord{}, t0))
	assert.Equal(t, DefaultDuration, Remaining(started(t0), t0))
	assert.Equal(t, 23*time.Hour, Remaining(started(t0), t0.Add(time.Hour)))
	assert.Zero(t, Remaining(started(t0), t0.Add(DefaultDuration)))
	assert.Zero(t, Remaining(started(t0), t0.Add(48*time.Hour)))
}

func TestRemaining_NonIncreasing(t *testing.T) {
	rec := started(t0)
	prev := Remaining(rec, t0.Add(-time.Hour))
	for now := t0.Add(-time.Hour); now.Before(t0.Add(26 * time.Hour)); now = now.Add(7 * time.Minute) {
		r := Remaining(rec, now)
		assert.GreaterOrEqual(t, r, time.Duration(0))
		assert.LessOrEqual(t, r, prev)
		prev = r
	}
	assert.Zero(t, prev)
}
