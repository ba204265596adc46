package trial

import (
	"context"
	"time"

	"github.com/remedyhub/entitlement/pkg/metrics"
	"github.com/remedyhub/entitlement/pkg/types"

	"go.uber.org/zap"
)

const DefaultCountdownInterval = time.Second

// Tick is one observation of a trial. Expired is set on the single tick where
// the trial was seen active before and expired now.
type Tick struct {
	At        time.Time        `json:"at"`
	State     types.TrialState `json:"state"`
	Remaining time.Duration    `json:"-"`
	Expired   bool             `json:"expired"`
}

// Source loads the current trial record.
type Source func(ctx context.Context) (types.TrialRecord, error)

// Watcher re-reads a trial record on a fixed interval. Nothing flips state at
// the expiry instant; the edge is detected by comparing successive reads.
type Watcher struct {
	interval time.Duration
	source   Source
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewWatcher(interval time.Duration, source Source, log *zap.SugaredLogger) *Watcher {
	if interval <= 0 {
		interval = DefaultCountdownInterval
	}
	return &Watcher{interval: interval, source: source, log: log, now: time.Now}
}

// Run emits a tick immediately and then every interval until ctx is done or
// emit returns false. Failed reads are logged and skipped.
func (w *Watcher) Run(ctx context.Context, emit func(Tick) bool) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var (
		prev     types.TrialState
		edgeSent bool
	)
	for {
		rec, err := w.source(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Warnw("trial watcher read failed", "err", err)
		} else {
			now := w.now()
			tick := Tick{At: now, State: State(rec, now), Remaining: Remaining(rec, now)}
			if prev == types.TrialStateActive && tick.State == types.TrialStateExpired && !edgeSent {
				tick.Expired = true
				edgeSent = true
				metrics.TrialExpiryObserved()
				w.log.Infow("trial expiry observed", "at", now)
			}
			prev = tick.State
			if !emit(tick) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
