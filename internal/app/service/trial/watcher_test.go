package trial

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/remedyhub/entitlement/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// steppingClock advances by step on every read.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var n atomic.Int64
	return func() time.Time {
		return start.Add(time.Duration(n.Add(1)-1) * step)
	}
}

func TestWatcher_EmitsEdgeOnce(t *testing.T) {
	rec := started(t0)
	w := NewWatcher(time.Millisecond, func(context.Context) (types.TrialRecord, error) { return rec, nil }, zap.NewNop().Sugar())
	w.now = steppingClock(t0, 13*time.Hour)

	var ticks []Tick
	err := w.Run(context.Background(), func(tk Tick) bool {
		ticks = append(ticks, tk)
		return len(ticks) < 5
	})
	require.NoError(t, err)
	require.Len(t, ticks, 5)

	assert.Equal(t, types.TrialStateActive, ticks[0].State)
	assert.Equal(t, 24*time.Hour, ticks[0].Remaining)
	assert.Equal(t, types.TrialStateActive, ticks[1].State)
	assert.Equal(t, 11*time.Hour, ticks[1].Remaining)

	edges := 0
	for i, tk := range ticks {
		if tk.Expired {
			edges++
			assert.Equal(t, 2, i)
		}
	}
	assert.Equal(t, 1, edges)
	assert.Equal(t, types.TrialStateExpired, ticks[4].State)
	assert.Zero(t, ticks[4].Remaining)
}

func TestWatcher_NoEdgeWhenAlreadyExpired(t *testing.T) {
	rec := started(t0)
	w := NewWatcher(time.Millisecond, func(context.Context) (types.TrialRecord, error) { return rec, nil }, zap.NewNop().Sugar())
	w.now = steppingClock(t0.Add(48*time.Hour), time.Hour)

	n := 0
	err := w.Run(context.Background(), func(tk Tick) bool {
		assert.False(t, tk.Expired)
		n++
		return n < 3
	})
	require.NoError(t, err)
}

func TestWatcher_SkipsFailedReads(t *testing.T) {
	var calls atomic.Int64
	src := func(context.Context) (types.TrialRecord, error) {
		if calls.Add(1) == 1 {
			return types.TrialRecord{}, errors.New("db down")
		}
		return types.TrialRecord{}, nil
	}
	w := NewWatcher(time.Millisecond, src, zap.NewNop().Sugar())

	var got []Tick
	err := w.Run(context.Background(), func(tk Tick) bool {
		got = append(got, tk)
		return false
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.TrialStateNotStarted, got[0].State)
	assert.Equal(t, int64(2), calls.Load())
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewWatcher(time.Hour, func(context.Context) (types.TrialRecord, error) { return types.TrialRecord{}, nil }, zap.NewNop().Sugar())

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(Tick) bool { return true })
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
