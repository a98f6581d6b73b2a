package services

import (
	"context"
	"sync"
	"testing"

	"deposit-telegram/db"
	"deposit-telegram/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		status     string
		resolvable bool
		terminal   bool
	}{
		{StatusPending, true, false},
		{StatusNeedsInfo, true, false},
		{StatusApproved, false, true},
		{StatusRejected, false, true},
		{StatusCancelled, false, true},
		{"garbage", false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.resolvable, IsResolvable(tt.status), "IsResolvable(%s)", tt.status)
		assert.Equal(t, tt.terminal, IsTerminal(tt.status), "IsTerminal(%s)", tt.status)
	}
}

func TestCreateApplicationValidation(t *testing.T) {
	ten := decimal.NewFromInt(10)
	cases := []struct {
		name string
		in   models.CreateApplicationInput
	}{
		{"empty login", models.CreateApplicationInput{UserID: 1, Login: "  ", Amount: ten, FileID: "f"}},
		{"zero amount", models.CreateApplicationInput{UserID: 1, Login: "user1", FileID: "f"}},
		{"negative amount", models.CreateApplicationInput{UserID: 1, Login: "user1", Amount: decimal.NewFromInt(-5), FileID: "f"}},
		{"missing proof", models.CreateApplicationInput{UserID: 1, Login: "user1", Amount: ten}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateApplication(context.Background(), tt.in)
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

// Integration tests below require a database; they skip on db.Pool == nil
// or -short, like the rest of the suite.

const itestUserID int64 = 999999902

func cleanupApplications(t *testing.T, ctx context.Context) {
	t.Helper()
	_, err := db.Pool.Exec(ctx, `DELETE FROM transactions WHERE application_id IN (SELECT id FROM applications WHERE user_id = $1)`, itestUserID)
	require.NoError(t, err)
	_, err = db.Pool.Exec(ctx, `DELETE FROM applications WHERE user_id = $1`, itestUserID)
	require.NoError(t, err)
	_, err = db.Pool.Exec(ctx, `DELETE FROM codes WHERE code_value LIKE 'APPTEST-%'`)
	require.NoError(t, err)
	_, err = db.Pool.Exec(ctx, `DELETE FROM user_rate_limits WHERE user_id = $1`, itestUserID)
	require.NoError(t, err)
}

func mustCreatePending(t *testing.T, ctx context.Context, amount int64) *models.Application {
	t.Helper()
	// Bypass the submission throttle between setups.
	_, err := db.Pool.Exec(ctx, `DELETE FROM user_rate_limits WHERE user_id = $1`, itestUserID)
	require.NoError(t, err)
	app, err := CreateApplication(ctx, models.CreateApplicationInput{
		UserID:   itestUserID,
		UserName: "itest",
		Login:    "account-1",
		Amount:   decimal.NewFromInt(amount),
		FileID:   "proof-file-id",
	})
	require.NoError(t, err)
	return app
}

func TestApplicationLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping application integration test in short mode")
	}
	if db.Pool == nil {
		t.Skip("skipping application integration test: no DB pool")
	}
	ctx := context.Background()
	cleanupApplications(t, ctx)
	defer cleanupApplications(t, ctx)

	app := mustCreatePending(t, ctx, 10)
	assert.Equal(t, StatusPending, app.Status)
	assert.Nil(t, app.AdminID)
	assert.Nil(t, app.ResolverKind)

	got, err := GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)
	assert.Equal(t, "account-1", got.Login)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(10)))

	// Approving without a matching code fails and leaves the row pending.
	_, _, err = Approve(ctx, app.ID, 42)
	assert.ErrorIs(t, err, ErrNoCodeAvailable)
	got, err = GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)

	// Codes are consumed oldest first.
	first, err := AddCode(ctx, "APPTEST-OLD", decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = AddCode(ctx, "APPTEST-NEW", decimal.NewFromInt(10))
	require.NoError(t, err)

	approved, codeValue, err := Approve(ctx, app.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, "APPTEST-OLD", codeValue)
	assert.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.AdminID)
	assert.EqualValues(t, 42, *approved.AdminID)
	require.NotNil(t, approved.ResolverKind)
	assert.Equal(t, ResolverAdmin, *approved.ResolverKind)
	require.NotNil(t, approved.ActivationCodeID)
	assert.Equal(t, first.ID, *approved.ActivationCodeID)

	usedCode, err := GetCodeByValue(ctx, "APPTEST-OLD")
	require.NoError(t, err)
	assert.True(t, usedCode.IsUsed)
	assert.NotNil(t, usedCode.IssuedAt)

	// A resolved application cannot be resolved again.
	_, _, err = Approve(ctx, app.ID, 43)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	_, err = Reject(ctx, app.ID, 43, "late")
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	history, err := GetTransactionHistory(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, ActionCreated, history[0].Action)
	assert.Equal(t, ActionApproved, history[1].Action)
}

func TestConcurrentApprove_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping application integration test in short mode")
	}
	if db.Pool == nil {
		t.Skip("skipping application integration test: no DB pool")
	}
	ctx := context.Background()
	cleanupApplications(t, ctx)
	defer cleanupApplications(t, ctx)

	app := mustCreatePending(t, ctx, 25)
	_, err := AddCode(ctx, "APPTEST-RACE-1", decimal.NewFromInt(25))
	require.NoError(t, err)
	_, err = AddCode(ctx, "APPTEST-RACE-2", decimal.NewFromInt(25))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = Approve(ctx, app.ID, int64(100+i))
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, ErrAlreadyResolved):
			losses++
		}
	}
	assert.Equal(t, 1, wins, "exactly one approval must win")
	assert.Equal(t, 1, losses)

	// The losing approval must not have consumed a second code.
	codes, err := ListCodes(ctx, true)
	require.NoError(t, err)
	remaining := 0
	for _, c := range codes {
		if c.Value == "APPTEST-RACE-1" || c.Value == "APPTEST-RACE-2" {
			remaining++
		}
	}
	assert.Equal(t, 1, remaining, "one of the two codes must still be unused")
}

func TestAutoApprovePayment_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping application integration test in short mode")
	}
	if db.Pool == nil {
		t.Skip("skipping application integration test: no DB pool")
	}
	ctx := context.Background()
	cleanupApplications(t, ctx)
	defer cleanupApplications(t, ctx)

	// With a matching code the payment approves in one step.
	_, err := AddCode(ctx, "APPTEST-PAY", decimal.NewFromInt(25))
	require.NoError(t, err)

	app, codeValue, approved, err := AutoApprovePayment(ctx, PaymentInput{
		UserID:           itestUserID,
		UserName:         "itest",
		Amount:           decimal.NewFromInt(25),
		Currency:         "USD",
		ChargeID:         "charge-abc",
		ProviderChargeID: "prov-abc",
	})
	require.NoError(t, err)
	assert.True(t, approved)
	assert.Equal(t, "APPTEST-PAY", codeValue)
	assert.Equal(t, StatusApproved, app.Status)
	assert.Nil(t, app.AdminID)
	require.NotNil(t, app.ResolverKind)
	assert.Equal(t, ResolverAuto, *app.ResolverKind)

	// The trail starts with the creation entry even when approval happens in
	// the same transaction.
	history, err := GetTransactionHistory(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, ActionCreated, history[0].Action)
	assert.Equal(t, ActionApproved, history[1].Action)

	// Without a code the application stays pending, and its history still
	// records the creation.
	pending, codeValue, approved, err := AutoApprovePayment(ctx, PaymentInput{
		UserID:           itestUserID,
		UserName:         "itest",
		Amount:           decimal.NewFromInt(25),
		Currency:         "USD",
		ChargeID:         "charge-def",
		ProviderChargeID: "prov-def",
	})
	require.NoError(t, err)
	assert.False(t, approved)
	assert.Empty(t, codeValue)
	assert.Equal(t, StatusPending, pending.Status)

	history, err = GetTransactionHistory(ctx, pending.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ActionCreated, history[0].Action)
}

func TestCancel_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping application integration test in short mode")
	}
	if db.Pool == nil {
		t.Skip("skipping application integration test: no DB pool")
	}
	ctx := context.Background()
	cleanupApplications(t, ctx)
	defer cleanupApplications(t, ctx)

	app := mustCreatePending(t, ctx, 50)

	// Only the requester may cancel.
	_, err := Cancel(ctx, app.ID, itestUserID+1)
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := Cancel(ctx, app.ID, itestUserID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	// Cancelled is terminal.
	_, err = Cancel(ctx, app.ID, itestUserID)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, _, err = Approve(ctx, app.ID, 42)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestRequestInfo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping application integration test in short mode")
	}
	if db.Pool == nil {
		t.Skip("skipping application integration test: no DB pool")
	}
	ctx := context.Background()
	cleanupApplications(t, ctx)
	defer cleanupApplications(t, ctx)

	app := mustCreatePending(t, ctx, 10)

	parked, err := RequestInfo(ctx, app.ID, 42, "which account?")
	require.NoError(t, err)
	assert.Equal(t, StatusNeedsInfo, parked.Status)
	// The processor is stamped only on the final resolution.
	assert.Nil(t, parked.AdminID)

	// needs_info can still be rejected.
	rejected, err := Reject(ctx, app.ID, 42, "no answer")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	require.NotNil(t, rejected.AdminID)
	assert.EqualValues(t, 42, *rejected.AdminID)
}
