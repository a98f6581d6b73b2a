package services

import (
	"errors"
	"fmt"
	"time"
)

// Application statuses. pending and needs_info are resolvable; approved,
// rejected and cancelled are terminal.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
	StatusNeedsInfo = "needs_info"
)

// Resolver kinds stored on resolved applications.
const (
	ResolverAdmin = "admin"
	ResolverAuto  = "auto"
)

// Action tags for the per-application transaction trail.
const (
	ActionCreated   = "created"
	ActionApproved  = "approved"
	ActionRejected  = "rejected"
	ActionCancelled = "cancelled"
	ActionNeedsInfo = "needs_info"
)

var (
	ErrNotFound        = errors.New("application not found")
	ErrAlreadyResolved = errors.New("application already resolved")
	ErrNoCodeAvailable = errors.New("no unused code for this amount")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidState    = errors.New("application is not pending")
	ErrDuplicateCode   = errors.New("code already exists")
	ErrCodeInUse       = errors.New("code already used")
)

// ValidationError marks bad user input; the boundary re-prompts instead of
// treating it as a failure.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Rate limit rejection reasons.
const (
	RateReasonDailyCap = "daily_cap"
	RateReasonCooldown = "cooldown"
)

type RateLimitError struct {
	Reason     string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.Reason == RateReasonDailyCap {
		return "daily application limit reached"
	}
	return fmt.Sprintf("too many requests, retry in %s", e.RetryAfter.Round(time.Second))
}

// IsResolvable reports whether an application in this status may still be
// approved or rejected.
func IsResolvable(status string) bool {
	return status == StatusPending || status == StatusNeedsInfo
}

// IsTerminal reports whether no further transition is permitted.
func IsTerminal(status string) bool {
	switch status {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}
