package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"deposit-telegram/db"
	"deposit-telegram/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// CodeRow is one (code value, face amount) pair for import.
type CodeRow struct {
	Value  string
	Amount decimal.Decimal
}

// ImportResult reports a partial-failure batch import.
type ImportResult struct {
	Added   int
	Skipped int
	Errors  []string
}

// AddCode inserts a single activation code. Code values are globally unique;
// a conflict surfaces as ErrDuplicateCode.
func AddCode(ctx context.Context, codeValue string, amount decimal.Decimal) (*models.ActivationCode, error) {
	codeValue = strings.TrimSpace(codeValue)
	if codeValue == "" {
		return nil, &ValidationError{Msg: "code value must not be empty"}
	}
	if !amount.IsPositive() {
		return nil, &ValidationError{Msg: "amount must be greater than zero"}
	}
	var c models.ActivationCode
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO codes (code_value, amount) VALUES ($1, $2)
		RETURNING id, code_value, amount, is_used, issued_at`,
		codeValue, amount,
	).Scan(&c.ID, &c.Value, &c.Amount, &c.IsUsed, &c.IssuedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("insert code: %w", err)
	}
	return &c, nil
}

// ImportCodes adds a batch of codes. Duplicates (pre-existing or repeated
// within the batch) are counted as skipped; bad rows accumulate in Errors.
// One malformed row never aborts the rest.
func ImportCodes(ctx context.Context, rows []CodeRow) (ImportResult, error) {
	var res ImportResult
	for _, row := range rows {
		_, err := AddCode(ctx, row.Value, row.Amount)
		switch {
		case err == nil:
			res.Added++
		case errors.Is(err, ErrDuplicateCode):
			res.Skipped++
		default:
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				res.Errors = append(res.Errors, fmt.Sprintf("code %q: %s", row.Value, vErr.Msg))
				continue
			}
			// Storage failure: the batch cannot meaningfully continue.
			return res, fmt.Errorf("import code %q: %w", row.Value, err)
		}
	}
	return res, nil
}

// ParseCodesCSV reads a code_value,amount CSV (header required, the format
// produced by the export). Per-row parse problems are returned alongside the
// parsed rows so the import can proceed with the good ones.
func ParseCodesCSV(r io.Reader) ([]CodeRow, []string) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []CodeRow
	var problems []string
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			problems = append(problems, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if line == 1 && len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "code_value") {
			continue
		}
		if len(record) < 2 {
			problems = append(problems, fmt.Sprintf("line %d: expected code_value,amount", line))
			continue
		}
		value := strings.TrimSpace(record[0])
		amount, err := decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil {
			problems = append(problems, fmt.Sprintf("line %d: bad amount %q", line, record[1]))
			continue
		}
		if value == "" {
			problems = append(problems, fmt.Sprintf("line %d: empty code value", line))
			continue
		}
		rows = append(rows, CodeRow{Value: value, Amount: amount})
	}
	return rows, problems
}

// DeleteCode removes an unused code. Used codes are immutable: deleting one
// fails with ErrCodeInUse.
func DeleteCode(ctx context.Context, codeID int64) error {
	var isUsed bool
	err := db.Pool.QueryRow(ctx, `SELECT is_used FROM codes WHERE id = $1`, codeID).Scan(&isUsed)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load code: %w", err)
	}
	if isUsed {
		return ErrCodeInUse
	}
	res, err := db.Pool.Exec(ctx, `DELETE FROM codes WHERE id = $1 AND NOT is_used`, codeID)
	if err != nil {
		return fmt.Errorf("delete code: %w", err)
	}
	if res.RowsAffected() == 0 {
		// Consumed between the check and the delete.
		return ErrCodeInUse
	}
	return nil
}

// GetCodeByValue returns the code row, or ErrNotFound.
func GetCodeByValue(ctx context.Context, codeValue string) (*models.ActivationCode, error) {
	var c models.ActivationCode
	err := db.Pool.QueryRow(ctx, `
		SELECT id, code_value, amount, is_used, issued_at FROM codes WHERE code_value = $1`,
		codeValue,
	).Scan(&c.ID, &c.Value, &c.Amount, &c.IsUsed, &c.IssuedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCodes returns codes grouped by amount then insertion order.
func ListCodes(ctx context.Context, onlyUnused bool) ([]models.ActivationCode, error) {
	query := `SELECT id, code_value, amount, is_used, issued_at FROM codes ORDER BY amount, id`
	if onlyUnused {
		query = `SELECT id, code_value, amount, is_used, issued_at FROM codes WHERE NOT is_used ORDER BY amount, id`
	}
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ActivationCode
	for rows.Next() {
		var c models.ActivationCode
		if err := rows.Scan(&c.ID, &c.Value, &c.Amount, &c.IsUsed, &c.IssuedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// CodeSummary returns per-amount totals for the admin code menu and stats.
func CodeSummary(ctx context.Context) ([]models.AmountCodeCount, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT amount,
			COUNT(*)::int,
			COUNT(*) FILTER (WHERE NOT is_used)::int,
			COUNT(*) FILTER (WHERE is_used)::int
		FROM codes GROUP BY amount ORDER BY amount`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AmountCodeCount
	for rows.Next() {
		var c models.AmountCodeCount
		if err := rows.Scan(&c.Amount, &c.Total, &c.Available, &c.Used); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// ExportCodesCSV writes all codes in the import format plus usage columns.
func ExportCodesCSV(ctx context.Context, w io.Writer) error {
	codes, err := ListCodes(ctx, false)
	if err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"code_value", "amount", "is_used", "issued_at"}); err != nil {
		return err
	}
	for _, c := range codes {
		issued := ""
		if c.IssuedAt != nil {
			issued = c.IssuedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
		used := "false"
		if c.IsUsed {
			used = "true"
		}
		if err := writer.Write([]string{c.Value, c.Amount.StringFixed(2), used, issued}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
