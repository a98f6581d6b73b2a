package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"deposit-telegram/db"
	"deposit-telegram/logger"
	"deposit-telegram/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const applicationColumns = `id, user_id, COALESCE(user_name, ''), login, amount, currency, file_id,
	status, admin_id, resolver_kind, admin_comment, activation_code_id, created_at, updated_at`

// FileIDPayment is the proof-reference sentinel for online card payments.
const FileIDPayment = "payment"

type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(row scanner) (*models.Application, error) {
	var a models.Application
	err := row.Scan(
		&a.ID, &a.UserID, &a.UserName, &a.Login, &a.Amount, &a.Currency, &a.FileID,
		&a.Status, &a.AdminID, &a.ResolverKind, &a.AdminComment, &a.ActivationCodeID,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateApplication validates the input, consults the rate limiter and inserts
// a new pending application. The mirror sync is best-effort and never fails
// the creation.
func CreateApplication(ctx context.Context, in models.CreateApplicationInput) (*models.Application, error) {
	login := strings.TrimSpace(in.Login)
	if login == "" {
		return nil, &ValidationError{Msg: "login must not be empty"}
	}
	if !in.Amount.IsPositive() {
		return nil, &ValidationError{Msg: "amount must be greater than zero"}
	}
	if in.FileID == "" {
		return nil, &ValidationError{Msg: "proof reference must not be empty"}
	}
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	decision, err := CheckRateLimit(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if !decision.Allowed {
		return nil, &RateLimitError{Reason: decision.Reason, RetryAfter: decision.RetryAfter}
	}

	app, err := scanApplication(db.Pool.QueryRow(ctx, `
		INSERT INTO applications (user_id, user_name, login, amount, currency, file_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING `+applicationColumns,
		in.UserID, in.UserName, login, in.Amount, currency, in.FileID,
	))
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}

	if err := logTransaction(ctx, app.ID, ActionCreated, nil, fmt.Sprintf("created by user %d", in.UserID)); err != nil {
		logger.L.Warnw("log transaction failed", "application_id", app.ID, "err", err)
	}
	if err := RecordSubmission(ctx, in.UserID); err != nil {
		logger.L.Warnw("record submission failed", "user_id", in.UserID, "err", err)
	}
	mirrorApplication(ctx, app, true)
	return app, nil
}

// Approve resolves a pending (or needs_info) application: it picks the oldest
// unused code matching the amount, marks it used and flips the application to
// approved, all in one transaction. Two concurrent approvals of the same
// application serialize on the row lock; the loser gets ErrAlreadyResolved and
// no second code is consumed.
func Approve(ctx context.Context, applicationID, adminID int64) (*models.Application, string, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	var amount decimal.Decimal
	err = tx.QueryRow(ctx, `SELECT status, amount FROM applications WHERE id = $1 FOR UPDATE`, applicationID).
		Scan(&status, &amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("lock application: %w", err)
	}
	if !IsResolvable(status) {
		return nil, "", ErrAlreadyResolved
	}

	var codeID int64
	var codeValue string
	err = tx.QueryRow(ctx, `
		SELECT id, code_value FROM codes
		WHERE amount = $1 AND NOT is_used
		ORDER BY id
		LIMIT 1
		FOR UPDATE`, amount,
	).Scan(&codeID, &codeValue)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", ErrNoCodeAvailable
	}
	if err != nil {
		return nil, "", fmt.Errorf("select code: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE codes SET is_used = true, issued_at = now() WHERE id = $1`, codeID); err != nil {
		return nil, "", fmt.Errorf("mark code used: %w", err)
	}

	res, err := tx.Exec(ctx, `
		UPDATE applications SET status = 'approved', admin_id = $2, resolver_kind = 'admin',
			activation_code_id = $3, updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'needs_info')`,
		applicationID, adminID, codeID,
	)
	if err != nil {
		return nil, "", fmt.Errorf("mark approved: %w", err)
	}
	if res.RowsAffected() == 0 {
		return nil, "", ErrAlreadyResolved
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO transactions (application_id, action, admin_id, comment)
		VALUES ($1, 'approved', $2, $3)`,
		applicationID, adminID, "issued code "+codeValue,
	); err != nil {
		return nil, "", fmt.Errorf("log approval: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("commit: %w", err)
	}

	app, err := GetApplication(ctx, applicationID)
	if err != nil {
		return nil, codeValue, fmt.Errorf("reload application: %w", err)
	}
	mirrorApplication(ctx, app, false)
	return app, codeValue, nil
}

// Reject resolves the application without touching the code pool.
func Reject(ctx context.Context, applicationID, adminID int64, comment string) (*models.Application, error) {
	if strings.TrimSpace(comment) == "" {
		comment = "Rejected by administrator"
	}
	res, err := db.Pool.Exec(ctx, `
		UPDATE applications SET status = 'rejected', admin_id = $2, resolver_kind = 'admin',
			admin_comment = $3, updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'needs_info')`,
		applicationID, adminID, comment,
	)
	if err != nil {
		return nil, fmt.Errorf("mark rejected: %w", err)
	}
	if res.RowsAffected() == 0 {
		if _, err := GetApplication(ctx, applicationID); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyResolved
	}

	adminRef := adminID
	if err := logTransaction(ctx, applicationID, ActionRejected, &adminRef, comment); err != nil {
		logger.L.Warnw("log transaction failed", "application_id", applicationID, "err", err)
	}

	app, err := GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("reload application: %w", err)
	}
	mirrorApplication(ctx, app, false)
	return app, nil
}

// Cancel lets the original requester withdraw a still-pending application.
func Cancel(ctx context.Context, applicationID, requesterID int64) (*models.Application, error) {
	var ownerID int64
	err := db.Pool.QueryRow(ctx, `SELECT user_id FROM applications WHERE id = $1`, applicationID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if ownerID != requesterID {
		return nil, ErrForbidden
	}

	res, err := db.Pool.Exec(ctx, `
		UPDATE applications SET status = 'cancelled', admin_comment = 'Cancelled by requester', updated_at = now()
		WHERE id = $1 AND status = 'pending'`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("mark cancelled: %w", err)
	}
	if res.RowsAffected() == 0 {
		return nil, ErrInvalidState
	}

	if err := logTransaction(ctx, applicationID, ActionCancelled, nil, fmt.Sprintf("cancelled by user %d", requesterID)); err != nil {
		logger.L.Warnw("log transaction failed", "application_id", applicationID, "err", err)
	}

	app, err := GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("reload application: %w", err)
	}
	mirrorApplication(ctx, app, false)
	return app, nil
}

// RequestInfo parks a pending application in needs_info until an admin
// resolves it. It does not set admin_id: the processor is stamped only on
// approve/reject.
func RequestInfo(ctx context.Context, applicationID, adminID int64, comment string) (*models.Application, error) {
	res, err := db.Pool.Exec(ctx, `
		UPDATE applications SET status = 'needs_info', admin_comment = $2, updated_at = now()
		WHERE id = $1 AND status = 'pending'`,
		applicationID, comment,
	)
	if err != nil {
		return nil, fmt.Errorf("mark needs_info: %w", err)
	}
	if res.RowsAffected() == 0 {
		if _, err := GetApplication(ctx, applicationID); err != nil {
			return nil, err
		}
		return nil, ErrInvalidState
	}

	adminRef := adminID
	if err := logTransaction(ctx, applicationID, ActionNeedsInfo, &adminRef, comment); err != nil {
		logger.L.Warnw("log transaction failed", "application_id", applicationID, "err", err)
	}

	app, err := GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("reload application: %w", err)
	}
	mirrorApplication(ctx, app, false)
	return app, nil
}

type PaymentInput struct {
	UserID           int64
	UserName         string
	Amount           decimal.Decimal
	Currency         string
	ChargeID         string // chat-platform payment charge id
	ProviderChargeID string
}

// AutoApprovePayment records a confirmed online payment as an application and
// approves it in the same transaction, provided a matching code exists. When
// the pool is empty the application stays pending and approved is false; the
// caller raises the urgent admin notification.
func AutoApprovePayment(ctx context.Context, in PaymentInput) (app *models.Application, codeValue string, approved bool, err error) {
	if !in.Amount.IsPositive() {
		return nil, "", false, &ValidationError{Msg: "amount must be greater than zero"}
	}
	login := "payment_" + in.ChargeID
	if len(in.ChargeID) > 10 {
		login = "payment_" + in.ChargeID[:10]
	}
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, "", false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var applicationID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO applications (user_id, user_name, login, amount, currency, file_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING id`,
		in.UserID, in.UserName, login, in.Amount, currency, FileIDPayment,
	).Scan(&applicationID)
	if err != nil {
		return nil, "", false, fmt.Errorf("insert application: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO transactions (application_id, action, comment)
		VALUES ($1, 'created', $2)`,
		applicationID, "paid online; provider charge "+in.ProviderChargeID,
	); err != nil {
		return nil, "", false, fmt.Errorf("log creation: %w", err)
	}

	var codeID int64
	err = tx.QueryRow(ctx, `
		SELECT id, code_value FROM codes
		WHERE amount = $1 AND NOT is_used
		ORDER BY id
		LIMIT 1
		FOR UPDATE`, in.Amount,
	).Scan(&codeID, &codeValue)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// Paid but no code in the pool: leave the application pending.
	case err != nil:
		return nil, "", false, fmt.Errorf("select code: %w", err)
	default:
		if _, err := tx.Exec(ctx, `UPDATE codes SET is_used = true, issued_at = now() WHERE id = $1`, codeID); err != nil {
			return nil, "", false, fmt.Errorf("mark code used: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE applications SET status = 'approved', resolver_kind = 'auto',
				activation_code_id = $2, updated_at = now()
			WHERE id = $1`,
			applicationID, codeID,
		); err != nil {
			return nil, "", false, fmt.Errorf("mark approved: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO transactions (application_id, action, comment)
			VALUES ($1, 'approved', $2)`,
			applicationID, "auto-approved after online payment; provider charge "+in.ProviderChargeID,
		); err != nil {
			return nil, "", false, fmt.Errorf("log approval: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO admin_logs (action, target_id, details)
			VALUES ('auto_approve_payment', $1, $2)`,
			applicationID, "issued code "+codeValue+" for charge "+in.ProviderChargeID,
		); err != nil {
			return nil, "", false, fmt.Errorf("log admin action: %w", err)
		}
		approved = true
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", false, fmt.Errorf("commit: %w", err)
	}

	if err := RecordSubmission(ctx, in.UserID); err != nil {
		logger.L.Warnw("record submission failed", "user_id", in.UserID, "err", err)
	}

	app, err = GetApplication(ctx, applicationID)
	if err != nil {
		return nil, codeValue, approved, fmt.Errorf("reload application: %w", err)
	}
	mirrorApplication(ctx, app, true)
	if !approved {
		codeValue = ""
	}
	return app, codeValue, approved, nil
}

// GetApplication returns the application by id.
func GetApplication(ctx context.Context, applicationID int64) (*models.Application, error) {
	app, err := scanApplication(db.Pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, applicationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

// ListUserApplications returns the requester's applications, newest first.
func ListUserApplications(ctx context.Context, userID int64) ([]models.Application, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectApplications(rows)
}

// ListApplicationsByStatus returns applications in queue order (oldest first).
func ListApplicationsByStatus(ctx context.Context, status string, limit int) ([]models.Application, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE status = $1 ORDER BY created_at LIMIT $2`,
		status, limit)
	if err != nil {
		return nil, err
	}
	return collectApplications(rows)
}

// ListApplications returns the most recent applications regardless of status.
func ListApplications(ctx context.Context, limit int) ([]models.Application, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectApplications(rows)
}

func collectApplications(rows pgx.Rows) ([]models.Application, error) {
	defer rows.Close()
	var list []models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *app)
	}
	return list, rows.Err()
}

// GetStats aggregates application counts over the trailing window and the
// per-amount code-remaining snapshot.
func GetStats(ctx context.Context, days int) (*models.Stats, error) {
	if days <= 0 {
		days = 1
	}
	s := models.Stats{Days: days}
	err := db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*)::int,
			COUNT(*) FILTER (WHERE status = 'approved')::int,
			COUNT(*) FILTER (WHERE status = 'rejected')::int,
			COUNT(*) FILTER (WHERE status = 'pending')::int,
			COUNT(*) FILTER (WHERE status = 'cancelled')::int
		FROM applications
		WHERE created_at >= now() - ($1 * interval '1 day')`,
		days,
	).Scan(&s.Total, &s.Approved, &s.Rejected, &s.Pending, &s.Cancelled)
	if err != nil {
		return nil, err
	}
	s.Codes, err = CodeSummary(ctx)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetTransactionHistory returns the action trail for one application.
func GetTransactionHistory(ctx context.Context, applicationID int64) ([]models.TransactionEntry, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, application_id, action, admin_id, comment, created_at
		FROM transactions WHERE application_id = $1 ORDER BY created_at`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.TransactionEntry
	for rows.Next() {
		var e models.TransactionEntry
		if err := rows.Scan(&e.ID, &e.ApplicationID, &e.Action, &e.AdminID, &e.Comment, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func logTransaction(ctx context.Context, applicationID int64, action string, adminID *int64, comment string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO transactions (application_id, action, admin_id, comment)
		VALUES ($1, $2, $3, NULLIF($4, ''))`,
		applicationID, action, adminID, comment,
	)
	return err
}
