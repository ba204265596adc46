package types

import "time"

// TrialRecord is the per-user promotional trial state.
// Used is a one-way latch; StartAt is set together with it and never changes.
type TrialRecord struct {
	Used     bool          `json:"trial_used"`
	StartAt  *time.Time    `json:"trial_start_at"`
	Duration time.Duration `json:"-"`
}
