package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Application is a row from the applications table: one user's deposit
// request moving through pending -> approved/rejected/cancelled.
type Application struct {
	ID               int64
	UserID           int64
	UserName         string
	Login            string
	Amount           decimal.Decimal
	Currency         string
	FileID           string // proof artifact reference, or "payment" for online payments
	Status           string
	AdminID          *int64
	ResolverKind     *string // "admin" or "auto", set when resolved
	AdminComment     *string
	ActivationCodeID *int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type CreateApplicationInput struct {
	UserID   int64
	UserName string
	Login    string
	Amount   decimal.Decimal
	Currency string
	FileID   string
}

// TransactionEntry is one row of the per-application action trail.
type TransactionEntry struct {
	ID            int64
	ApplicationID int64
	Action        string // created, approved, rejected, cancelled, needs_info
	AdminID       *int64
	Comment       *string
	CreatedAt     time.Time
}

// AmountCodeCount is one per-amount bucket of the code-remaining snapshot.
type AmountCodeCount struct {
	Amount    decimal.Decimal
	Total     int
	Available int
	Used      int
}

// Stats aggregates applications over a trailing window plus code availability.
type Stats struct {
	Days      int
	Total     int
	Approved  int
	Rejected  int
	Pending   int
	Cancelled int
	Codes     []AmountCodeCount
}
