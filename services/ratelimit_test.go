package services

import (
	"context"
	"testing"
	"time"

	"deposit-telegram/config"
	"deposit-telegram/db"
	"deposit-telegram/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateRate(t *testing.T) {
	cfg := config.RateLimitConfig{Cooldown: time.Minute, DailyCap: 3}
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	recent := now.Add(-20 * time.Second)
	old := now.Add(-5 * time.Minute)

	tests := []struct {
		name       string
		rec        models.RateLimitRecord
		allowed    bool
		reason     string
		retryAfter time.Duration
	}{
		{
			name:    "fresh user",
			rec:     models.RateLimitRecord{LastResetDay: today},
			allowed: true,
		},
		{
			name:    "under cap, cooldown elapsed",
			rec:     models.RateLimitRecord{LastRequestAt: &old, DailyCount: 2, LastResetDay: today},
			allowed: true,
		},
		{
			name:   "at daily cap",
			rec:    models.RateLimitRecord{LastRequestAt: &old, DailyCount: 3, LastResetDay: today},
			reason: RateReasonDailyCap,
		},
		{
			name:   "over daily cap",
			rec:    models.RateLimitRecord{LastRequestAt: &old, DailyCount: 7, LastResetDay: today},
			reason: RateReasonDailyCap,
		},
		{
			name:       "inside cooldown window",
			rec:        models.RateLimitRecord{LastRequestAt: &recent, DailyCount: 1, LastResetDay: today},
			reason:     RateReasonCooldown,
			retryAfter: 40 * time.Second,
		},
		{
			// A stale row from yesterday must not count against today's cap,
			// even before the SQL-side reset ran.
			name:    "stale count from yesterday",
			rec:     models.RateLimitRecord{LastRequestAt: &old, DailyCount: 3, LastResetDay: yesterday},
			allowed: true,
		},
		{
			// The cooldown still applies across midnight.
			name:       "cooldown survives day rollover",
			rec:        models.RateLimitRecord{LastRequestAt: &recent, DailyCount: 3, LastResetDay: yesterday},
			reason:     RateReasonCooldown,
			retryAfter: 40 * time.Second,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evaluateRate(tt.rec, now, cfg)
			assert.Equal(t, tt.allowed, got.Allowed)
			assert.Equal(t, tt.reason, got.Reason)
			if tt.retryAfter > 0 {
				assert.Equal(t, tt.retryAfter, got.RetryAfter)
			}
		})
	}
}

func TestDayBefore(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 30, 0, 0, time.UTC)
	assert.True(t, dayBefore(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), now))
	assert.True(t, dayBefore(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), now))
	assert.False(t, dayBefore(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), now))
	assert.False(t, dayBefore(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), now))
}

// Integration test (requires DB). Skips if db.Pool is nil or -short.
func TestRateLimit_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping rate limit integration test in short mode")
	}
	if db.Pool == nil {
		t.Skip("skipping rate limit integration test: no DB pool")
	}
	ctx := context.Background()
	const testUserID int64 = 999999901

	_, err := db.Pool.Exec(ctx, `DELETE FROM user_rate_limits WHERE user_id = $1`, testUserID)
	require.NoError(t, err)
	defer db.Pool.Exec(ctx, `DELETE FROM user_rate_limits WHERE user_id = $1`, testUserID)

	dec, err := CheckRateLimit(ctx, testUserID)
	require.NoError(t, err)
	assert.True(t, dec.Allowed, "fresh user must be allowed")

	require.NoError(t, RecordSubmission(ctx, testUserID))

	dec, err = CheckRateLimit(ctx, testUserID)
	require.NoError(t, err)
	assert.False(t, dec.Allowed, "second submission within the cooldown must be throttled")
	assert.Equal(t, RateReasonCooldown, dec.Reason)
	assert.Greater(t, dec.RetryAfter, time.Duration(0))
}
