package services

import (
	"context"
	"strings"
	"testing"

	"deposit-telegram/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCodesCSV(t *testing.T) {
	input := strings.Join([]string{
		"code_value,amount",
		"AAA-111,10",
		"BBB-222,25.00",
		",50",
		"CCC-333,not-a-number",
		"DDD-444",
		"EEE-555,100",
	}, "\n")

	rows, problems := ParseCodesCSV(strings.NewReader(input))

	require.Len(t, rows, 3)
	assert.Equal(t, "AAA-111", rows[0].Value)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "BBB-222", rows[1].Value)
	assert.True(t, rows[1].Amount.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "EEE-555", rows[2].Value)

	// Empty value, bad amount, missing column.
	assert.Len(t, problems, 3)
}

func TestParseCodesCSVNoHeader(t *testing.T) {
	rows, problems := ParseCodesCSV(strings.NewReader("XYZ-1,10\nXYZ-2,25\n"))
	assert.Empty(t, problems)
	require.Len(t, rows, 2)
	assert.Equal(t, "XYZ-1", rows[0].Value)
}

func TestParseCodesCSVEmpty(t *testing.T) {
	rows, problems := ParseCodesCSV(strings.NewReader(""))
	assert.Empty(t, rows)
	assert.Empty(t, problems)
}

// Integration tests (require DB). Skip if db.Pool is nil or -short.
func TestCodes_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping codes integration test in short mode")
	}
	if db.Pool == nil {
		t.Skip("skipping codes integration test: no DB pool")
	}
	ctx := context.Background()
	cleanup := func() {
		db.Pool.Exec(ctx, `DELETE FROM codes WHERE code_value LIKE 'ITEST-%'`)
	}
	cleanup()
	defer cleanup()

	ten := decimal.NewFromInt(10)

	code, err := AddCode(ctx, "ITEST-1", ten)
	require.NoError(t, err)
	assert.False(t, code.IsUsed)
	assert.Nil(t, code.IssuedAt)

	// Same value again is a duplicate.
	_, err = AddCode(ctx, "ITEST-1", ten)
	assert.ErrorIs(t, err, ErrDuplicateCode)

	// Batch import: one new, one duplicate, one invalid.
	res, err := ImportCodes(ctx, []CodeRow{
		{Value: "ITEST-2", Amount: ten},
		{Value: "ITEST-1", Amount: ten},
		{Value: "", Amount: ten},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, res.Errors, 1)

	// Unused codes can be deleted, exactly once.
	got, err := GetCodeByValue(ctx, "ITEST-2")
	require.NoError(t, err)
	require.NoError(t, DeleteCode(ctx, got.ID))
	assert.ErrorIs(t, DeleteCode(ctx, got.ID), ErrNotFound)

	_, err = GetCodeByValue(ctx, "ITEST-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUsedCode_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping codes integration test in short mode")
	}
	if db.Pool == nil {
		t.Skip("skipping codes integration test: no DB pool")
	}
	ctx := context.Background()
	defer db.Pool.Exec(ctx, `DELETE FROM codes WHERE code_value = 'ITEST-USED'`)

	code, err := AddCode(ctx, "ITEST-USED", decimal.NewFromInt(25))
	require.NoError(t, err)

	_, err = db.Pool.Exec(ctx, `UPDATE codes SET is_used = true, issued_at = now() WHERE id = $1`, code.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, DeleteCode(ctx, code.ID), ErrCodeInUse)
}
