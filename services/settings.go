package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"deposit-telegram/db"
	"deposit-telegram/models"

	"github.com/jackc/pgx/v5"
)

const (
	SettingDepositAmounts = "deposit_amounts"
	SettingPaymentToken   = "payment_provider_token"
)

// DefaultDepositAmounts is used when no denomination setting is stored.
var DefaultDepositAmounts = []int{10, 25, 50, 100}

// GetSetting returns the stored value, or def when the key is absent.
func GetSetting(ctx context.Context, key, def string) (string, error) {
	var value string
	err := db.Pool.QueryRow(ctx, `SELECT setting_value FROM bot_settings WHERE setting_key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting upserts a key. adminID is recorded for the audit trail.
func SetSetting(ctx context.Context, key, value, description string, adminID int64) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO bot_settings (setting_key, setting_value, description, updated_by, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, now())
		ON CONFLICT (setting_key) DO UPDATE SET
			setting_value = EXCLUDED.setting_value,
			description = COALESCE(EXCLUDED.description, bot_settings.description),
			updated_by = EXCLUDED.updated_by,
			updated_at = now()`,
		key, value, description, adminID,
	)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	LogAdminAction(ctx, adminID, "set_setting", nil, key)
	return nil
}

// DeleteSetting removes a key, for secrets like the payment provider token.
func DeleteSetting(ctx context.Context, key string, adminID int64) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM bot_settings WHERE setting_key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	LogAdminAction(ctx, adminID, "delete_setting", nil, key)
	return nil
}

// ListSettings returns all settings ordered by key.
func ListSettings(ctx context.Context) ([]models.Setting, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT setting_key, setting_value, description, updated_by, updated_at
		FROM bot_settings ORDER BY setting_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Setting
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedBy, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// DepositAmounts returns the configurable denominations shown in the deposit
// menu, falling back to the defaults on missing or malformed settings.
func DepositAmounts(ctx context.Context) []int {
	raw, err := GetSetting(ctx, SettingDepositAmounts, "")
	if err != nil || raw == "" {
		return DefaultDepositAmounts
	}
	amounts, err := ParseDepositAmounts(raw)
	if err != nil {
		return DefaultDepositAmounts
	}
	return amounts
}

// SetDepositAmounts stores the denominations as a JSON list.
func SetDepositAmounts(ctx context.Context, amounts []int, adminID int64) error {
	if len(amounts) == 0 {
		return &ValidationError{Msg: "at least one amount required"}
	}
	for _, a := range amounts {
		if a <= 0 {
			return &ValidationError{Msg: "amounts must be positive"}
		}
	}
	raw, err := json.Marshal(amounts)
	if err != nil {
		return err
	}
	return SetSetting(ctx, SettingDepositAmounts, string(raw), "available deposit denominations", adminID)
}

// ParseDepositAmounts decodes the stored JSON list.
func ParseDepositAmounts(raw string) ([]int, error) {
	var amounts []int
	if err := json.Unmarshal([]byte(raw), &amounts); err != nil {
		return nil, err
	}
	if len(amounts) == 0 {
		return nil, errors.New("empty amount list")
	}
	return amounts, nil
}

// PaymentProviderToken returns the runtime-configured provider token, or the
// fallback from the environment config.
func PaymentProviderToken(ctx context.Context, fallback string) string {
	token, err := GetSetting(ctx, SettingPaymentToken, fallback)
	if err != nil || token == "" {
		return fallback
	}
	return token
}
