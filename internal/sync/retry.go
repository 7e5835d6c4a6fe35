package sync

import (
	"time"

	"campus-sync/internal/config"
	"campus-sync/internal/store"
)

// RetryPolicy decides when a failed outbox entry may be attempted again
// and when it is abandoned instead of retried forever.
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

func NewRetryPolicy(cfg config.SyncConfig) RetryPolicy {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		BaseBackoff: cfg.GetBaseBackoff(),
		MaxBackoff:  cfg.GetMaxBackoff(),
	}
}

// Backoff returns the wait after the given number of failed attempts:
// base * 2^(attempts-1), capped at MaxBackoff.
func (p RetryPolicy) Backoff(attempts int) time.Duration {
	if attempts <= 0 {
		return 0
	}

	d := p.BaseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// Eligible reports whether the entry's backoff window has elapsed. A fresh
// entry (no failed attempts yet) is always eligible.
func (p RetryPolicy) Eligible(e store.OutboxEntry, now time.Time) bool {
	if e.RetryCount == 0 || !e.LastRetryAt.Valid {
		return true
	}
	return !now.Before(e.LastRetryAt.Time.Add(p.Backoff(e.RetryCount)))
}

// Exhausted reports whether an entry that just failed its attempts-th
// attempt should be abandoned.
func (p RetryPolicy) Exhausted(attempts int) bool {
	return attempts >= p.MaxAttempts
}
