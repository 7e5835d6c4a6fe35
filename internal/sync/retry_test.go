package sync

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"campus-sync/internal/config"
	"campus-sync/internal/store"
)

func TestBackoffCurve(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 10, BaseBackoff: 30 * time.Second, MaxBackoff: 30 * time.Minute}

	assert.Equal(t, time.Duration(0), p.Backoff(0))
	assert.Equal(t, 30*time.Second, p.Backoff(1))
	assert.Equal(t, time.Minute, p.Backoff(2))
	assert.Equal(t, 2*time.Minute, p.Backoff(3))
	assert.Equal(t, 30*time.Minute, p.Backoff(8), "curve caps at max backoff")
	assert.Equal(t, 30*time.Minute, p.Backoff(50))
}

func TestEligible(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseBackoff: time.Minute, MaxBackoff: time.Hour}
	now := time.Now().UTC()

	t.Run("fresh entry is always eligible", func(t *testing.T) {
		assert.True(t, p.Eligible(store.OutboxEntry{RetryCount: 0}, now))
	})

	t.Run("entry inside its backoff window is skipped", func(t *testing.T) {
		e := store.OutboxEntry{
			RetryCount:  1,
			LastRetryAt: sql.NullTime{Time: now.Add(-30 * time.Second), Valid: true},
		}
		assert.False(t, p.Eligible(e, now))
	})

	t.Run("entry past its backoff window is eligible", func(t *testing.T) {
		e := store.OutboxEntry{
			RetryCount:  1,
			LastRetryAt: sql.NullTime{Time: now.Add(-2 * time.Minute), Valid: true},
		}
		assert.True(t, p.Eligible(e, now))
	})
}

func TestExhausted(t *testing.T) {
	p := NewRetryPolicy(config.SyncConfig{MaxAttempts: 3})
	assert.False(t, p.Exhausted(2))
	assert.True(t, p.Exhausted(3))
	assert.True(t, p.Exhausted(4))
}

func TestNewRetryPolicyDefaults(t *testing.T) {
	p := NewRetryPolicy(config.SyncConfig{})
	assert.Equal(t, 1, p.MaxAttempts)
	assert.Equal(t, 30*time.Second, p.BaseBackoff)
	assert.Equal(t, 30*time.Minute, p.MaxBackoff)
}
