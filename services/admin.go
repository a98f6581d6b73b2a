package services

import (
	"context"
	"errors"
	"fmt"

	"deposit-telegram/db"
	"deposit-telegram/logger"
	"deposit-telegram/models"

	"github.com/jackc/pgx/v5"
)

// Actor is a capability-tagged administrator, returned by Authorize. Handlers
// check capabilities on the actor instead of re-deriving roles inline.
type Actor struct {
	UserID int64
	Role   string
}

func (a *Actor) CanResolve() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleSuperadmin
}

func (a *Actor) CanManageCodes() bool { return a.CanResolve() }

func (a *Actor) CanManageAdmins() bool { return a.Role == models.RoleSuperadmin }

func (a *Actor) IsSuperadmin() bool { return a.Role == models.RoleSuperadmin }

// Authorize is the single authorization guard for privileged operations.
// Users without a role row get ErrForbidden.
func Authorize(ctx context.Context, userID int64) (*Actor, error) {
	var role string
	err := db.Pool.QueryRow(ctx, `SELECT role FROM admin_roles WHERE user_id = $1`, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("load role: %w", err)
	}
	return &Actor{UserID: userID, Role: role}, nil
}

// AddAdmin grants a role. Only a superadmin may grant any role, and the
// superadmin tier itself can only be granted by another superadmin.
func AddAdmin(ctx context.Context, actor *Actor, userID int64, role string) error {
	if !actor.CanManageAdmins() {
		return ErrForbidden
	}
	if role != models.RoleAdmin && role != models.RoleSuperadmin {
		return &ValidationError{Msg: "role must be admin or superadmin"}
	}
	res, err := db.Pool.Exec(ctx, `
		INSERT INTO admin_roles (user_id, role, added_by) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, role, actor.UserID,
	)
	if err != nil {
		return fmt.Errorf("insert role: %w", err)
	}
	if res.RowsAffected() == 0 {
		return &ValidationError{Msg: "user already has a role"}
	}
	LogAdminAction(ctx, actor.UserID, "add_admin", &userID, "granted role "+role)
	return nil
}

// RemoveAdmin revokes a role. A superadmin row may never be removed by a
// non-superadmin, and superadmins cannot remove each other by accident: the
// target's role is checked first.
func RemoveAdmin(ctx context.Context, actor *Actor, userID int64) error {
	if !actor.CanManageAdmins() {
		return ErrForbidden
	}
	var role string
	err := db.Pool.QueryRow(ctx, `SELECT role FROM admin_roles WHERE user_id = $1`, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load role: %w", err)
	}
	if role == models.RoleSuperadmin && userID != actor.UserID {
		return ErrForbidden
	}
	if _, err := db.Pool.Exec(ctx, `DELETE FROM admin_roles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	LogAdminAction(ctx, actor.UserID, "remove_admin", &userID, "revoked role "+role)
	return nil
}

// ListAdmins returns all role rows, oldest grant first.
func ListAdmins(ctx context.Context) ([]models.AdminRole, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT user_id, role, added_by, created_at FROM admin_roles ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AdminRole
	for rows.Next() {
		var r models.AdminRole
		if err := rows.Scan(&r.UserID, &r.Role, &r.AddedBy, &r.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

// SeedSuperadmin bootstraps (or upgrades) the operator role. Used by the
// `superadmin` subcommand, not reachable from chat.
func SeedSuperadmin(ctx context.Context, userID int64) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO admin_roles (user_id, role) VALUES ($1, 'superadmin')
		ON CONFLICT (user_id) DO UPDATE SET role = 'superadmin'`,
		userID,
	)
	return err
}

// LogAdminAction appends to the privileged-action audit log. Append-only and
// best-effort: a logging failure never fails the action itself.
func LogAdminAction(ctx context.Context, adminID int64, action string, targetID *int64, details string) {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO admin_logs (admin_id, action, target_id, details)
		VALUES ($1, $2, $3, NULLIF($4, ''))`,
		adminID, action, targetID, details,
	)
	if err != nil {
		logger.L.Warnw("audit log failed", "admin_id", adminID, "action", action, "err", err)
	}
}

// ListAdminLogs returns recent audit entries, optionally for one admin.
func ListAdminLogs(ctx context.Context, adminID *int64, limit, days int) ([]models.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if days <= 0 {
		days = 7
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT id, admin_id, action, target_id, details, created_at
		FROM admin_logs
		WHERE created_at >= now() - ($1 * interval '1 day')
		  AND ($2::bigint IS NULL OR admin_id = $2)
		ORDER BY created_at DESC
		LIMIT $3`,
		days, adminID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AuditLogEntry
	for rows.Next() {
		var e models.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.AdminID, &e.Action, &e.TargetID, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
