package services

import (
	"context"
	"fmt"
	"time"

	"deposit-telegram/config"
	"deposit-telegram/db"
	"deposit-telegram/models"
)

var rateLimitCfg = config.RateLimitConfig{
	Cooldown: time.Minute,
	DailyCap: 3,
}

// ConfigureRateLimit sets the submission throttle parameters. Call once at
// startup before the bot starts handling updates.
func ConfigureRateLimit(cfg config.RateLimitConfig) {
	if cfg.Cooldown > 0 {
		rateLimitCfg.Cooldown = cfg.Cooldown
	}
	if cfg.DailyCap > 0 {
		rateLimitCfg.DailyCap = cfg.DailyCap
	}
}

// RateDecision is the outcome of a throttle check.
type RateDecision struct {
	Allowed    bool
	Reason     string        // RateReasonDailyCap or RateReasonCooldown when rejected
	RetryAfter time.Duration // for cooldown rejections
}

// CheckRateLimit is a pure gate apart from the lazy row creation and the
// date-rollover reset, both of which must happen before the cap is evaluated.
func CheckRateLimit(ctx context.Context, userID int64) (RateDecision, error) {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO user_rate_limits (user_id, daily_count, last_reset_day)
		VALUES ($1, 0, CURRENT_DATE)
		ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return RateDecision{}, fmt.Errorf("init rate limit row: %w", err)
	}

	// Reset the daily counter exactly once when the date advances.
	_, err = db.Pool.Exec(ctx, `
		UPDATE user_rate_limits SET daily_count = 0, last_reset_day = CURRENT_DATE
		WHERE user_id = $1 AND last_reset_day < CURRENT_DATE`, userID)
	if err != nil {
		return RateDecision{}, fmt.Errorf("reset daily counter: %w", err)
	}

	var rec models.RateLimitRecord
	err = db.Pool.QueryRow(ctx, `
		SELECT user_id, last_request_at, daily_count, last_reset_day
		FROM user_rate_limits WHERE user_id = $1`, userID,
	).Scan(&rec.UserID, &rec.LastRequestAt, &rec.DailyCount, &rec.LastResetDay)
	if err != nil {
		return RateDecision{}, fmt.Errorf("load rate limit row: %w", err)
	}

	return evaluateRate(rec, time.Now(), rateLimitCfg), nil
}

// RecordSubmission stamps the accepted submission. Call exactly once per
// accepted application, never on throttled or failed attempts.
func RecordSubmission(ctx context.Context, userID int64) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO user_rate_limits (user_id, last_request_at, daily_count, last_reset_day)
		VALUES ($1, now(), 1, CURRENT_DATE)
		ON CONFLICT (user_id) DO UPDATE SET
			last_request_at = now(),
			daily_count = user_rate_limits.daily_count + 1`,
		userID,
	)
	return err
}

// evaluateRate decides over an already reset record. Kept free of storage so
// the cap and cooldown rules are testable directly.
func evaluateRate(rec models.RateLimitRecord, now time.Time, cfg config.RateLimitConfig) RateDecision {
	count := rec.DailyCount
	if dayBefore(rec.LastResetDay, now) {
		count = 0
	}
	if count >= cfg.DailyCap {
		return RateDecision{Reason: RateReasonDailyCap}
	}
	if rec.LastRequestAt != nil {
		elapsed := now.Sub(*rec.LastRequestAt)
		if elapsed < cfg.Cooldown {
			return RateDecision{Reason: RateReasonCooldown, RetryAfter: cfg.Cooldown - elapsed}
		}
	}
	return RateDecision{Allowed: true}
}

func dayBefore(day, now time.Time) bool {
	y1, m1, d1 := day.Date()
	y2, m2, d2 := now.Date()
	if y1 != y2 {
		return y1 < y2
	}
	if m1 != m2 {
		return m1 < m2
	}
	return d1 < d2
}
