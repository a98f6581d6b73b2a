package models

import "time"

const (
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

type AdminRole struct {
	UserID    int64
	Role      string
	AddedBy   *int64
	CreatedAt time.Time
}

// AuditLogEntry is one row of the append-only privileged-action log.
type AuditLogEntry struct {
	ID        int64
	AdminID   *int64 // nil for automated actions
	Action    string
	TargetID  *int64
	Details   *string
	CreatedAt time.Time
}

type Setting struct {
	Key         string
	Value       string
	Description *string
	UpdatedBy   *int64
	UpdatedAt   time.Time
}

type UserProfile struct {
	UserID    int64
	Language  string
	FirstTime bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
