package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActivationCode is a single-use token bound to a fixed face amount.
// Once is_used flips to true the row is immutable.
type ActivationCode struct {
	ID       int64
	Value    string
	Amount   decimal.Decimal
	IsUsed   bool
	IssuedAt *time.Time
}

// RateLimitRecord is per-requester throttling state (user_rate_limits table).
type RateLimitRecord struct {
	UserID        int64
	LastRequestAt *time.Time
	DailyCount    int
	LastResetDay  time.Time
}
