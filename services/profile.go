package services

import (
	"context"
	"errors"

	"deposit-telegram/db"

	"github.com/jackc/pgx/v5"
)

// GetUserLanguage returns the persisted language and whether the user has a
// profile row at all (false means first contact).
func GetUserLanguage(ctx context.Context, userID int64) (lang string, known bool, err error) {
	err = db.Pool.QueryRow(ctx, `SELECT language FROM user_profiles WHERE user_id = $1`, userID).Scan(&lang)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return lang, true, nil
}

// SetUserLanguage upserts the profile with the chosen language.
func SetUserLanguage(ctx context.Context, userID int64, lang string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO user_profiles (user_id, language, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET language = EXCLUDED.language, updated_at = now()`,
		userID, lang,
	)
	return err
}

// MarkSeen clears the first_time flag after the welcome screen.
func MarkSeen(ctx context.Context, userID int64) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE user_profiles SET first_time = false, updated_at = now() WHERE user_id = $1`, userID)
	return err
}

// IsFirstTime reports whether the user has never completed the welcome flow.
func IsFirstTime(ctx context.Context, userID int64) (bool, error) {
	var firstTime bool
	err := db.Pool.QueryRow(ctx, `SELECT first_time FROM user_profiles WHERE user_id = $1`, userID).Scan(&firstTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return firstTime, nil
}
