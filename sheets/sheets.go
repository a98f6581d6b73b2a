// Package sheets mirrors application rows to a Google Sheets spreadsheet.
// The mirror is best-effort: callers log and swallow every error here.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"deposit-telegram/config"
	"deposit-telegram/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var header = []interface{}{
	"ID", "User ID", "User Name", "Login", "Amount", "Currency",
	"Status", "Resolved By", "Comment", "Created At", "Updated At",
}

type Exporter struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string

	mu        sync.Mutex
	headerSet bool
}

// New builds the exporter from a service-account credentials file. Returns an
// error when the mirror is not configured; main treats that as "disabled".
func New(ctx context.Context, cfg config.SheetsConfig) (*Exporter, error) {
	if cfg.CredentialsFile == "" || cfg.SpreadsheetID == "" {
		return nil, errors.New("sheets mirror not configured")
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	name := cfg.SheetName
	if name == "" {
		name = "Applications"
	}
	return &Exporter{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheetName: name}, nil
}

// SyncApplication appends a new row or rewrites the existing one for the
// application. Implements services.ApplicationMirror.
func (e *Exporter) SyncApplication(ctx context.Context, app *models.Application, isNew bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureHeader(ctx); err != nil {
		return err
	}
	if !isNew {
		if row, ok, err := e.findRow(ctx, app.ID); err != nil {
			return err
		} else if ok {
			return e.writeRow(ctx, row, app)
		}
		// Row never mirrored (e.g. the create-time sync failed): append it.
	}
	values := &sheets.ValueRange{Values: [][]interface{}{rowValues(app)}}
	_, err := e.svc.Spreadsheets.Values.
		Append(e.spreadsheetID, e.sheetName+"!A:K", values).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

// ExportAll rewrites the whole sheet from scratch (admin "export" action).
func (e *Exporter) ExportAll(ctx context.Context, apps []models.Application) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.svc.Spreadsheets.Values.
		Clear(e.spreadsheetID, e.sheetName+"!A:K", &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}
	rows := [][]interface{}{header}
	for i := range apps {
		rows = append(rows, rowValues(&apps[i]))
	}
	_, err = e.svc.Spreadsheets.Values.
		Update(e.spreadsheetID, e.sheetName+"!A1", &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}
	e.headerSet = true
	return nil
}

func (e *Exporter) ensureHeader(ctx context.Context) error {
	if e.headerSet {
		return nil
	}
	resp, err := e.svc.Spreadsheets.Values.
		Get(e.spreadsheetID, e.sheetName+"!A1:A1").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(resp.Values) == 0 {
		_, err = e.svc.Spreadsheets.Values.
			Update(e.spreadsheetID, e.sheetName+"!A1", &sheets.ValueRange{Values: [][]interface{}{header}}).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	e.headerSet = true
	return nil
}

// findRow scans the ID column for the application. Sheets has no index, so
// this is a linear read of column A; volumes here are small.
func (e *Exporter) findRow(ctx context.Context, applicationID int64) (int, bool, error) {
	resp, err := e.svc.Spreadsheets.Values.
		Get(e.spreadsheetID, e.sheetName+"!A:A").
		Context(ctx).
		Do()
	if err != nil {
		return 0, false, fmt.Errorf("scan ids: %w", err)
	}
	want := strconv.FormatInt(applicationID, 10)
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if fmt.Sprint(row[0]) == want {
			return i + 1, true, nil // 1-based sheet row
		}
	}
	return 0, false, nil
}

func (e *Exporter) writeRow(ctx context.Context, row int, app *models.Application) error {
	rangeRef := fmt.Sprintf("%s!A%d", e.sheetName, row)
	_, err := e.svc.Spreadsheets.Values.
		Update(e.spreadsheetID, rangeRef, &sheets.ValueRange{Values: [][]interface{}{rowValues(app)}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update row %d: %w", row, err)
	}
	return nil
}

func rowValues(app *models.Application) []interface{} {
	resolvedBy := ""
	if app.ResolverKind != nil && *app.ResolverKind == "auto" {
		resolvedBy = "auto"
	} else if app.AdminID != nil {
		resolvedBy = strconv.FormatInt(*app.AdminID, 10)
	}
	comment := ""
	if app.AdminComment != nil {
		comment = *app.AdminComment
	}
	return []interface{}{
		strconv.FormatInt(app.ID, 10),
		strconv.FormatInt(app.UserID, 10),
		app.UserName,
		app.Login,
		app.Amount.StringFixed(2),
		app.Currency,
		app.Status,
		resolvedBy,
		comment,
		app.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		app.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}
