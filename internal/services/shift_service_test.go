package services

import (
	"context"
	"testing"

	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/sjperalta/fintera-ledger/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftService_OpenAndClosePerfect(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	shift, err := env.shifts.Open(ctx, "t1", "cajero-1", d("500"))
	require.NoError(t, err)
	assert.Equal(t, models.ShiftStatusOpen, shift.Status)
	assert.NotEmpty(t, shift.ID)

	closed, err := env.shifts.Close(ctx, "t1", shift.ID, "cajero-1", CloseShiftInput{
		CashTotal:    d("1200"),
		CardTotal:    d("800"),
		ManualIn:     d("50"),
		ManualOut:    d("150"),
		DeclaredCash: d("1600"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.ShiftStatusClosed, closed.Status)
	assert.Equal(t, "1600", closed.ExpectedCash.String())
	assert.True(t, closed.Difference.IsZero())
	assert.Equal(t, models.ShiftPerfect, *closed.Classification)
	assert.NotNil(t, closed.ClosedAt)

	stored, err := env.shifts.Get(ctx, "t1", shift.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShiftStatusClosed, stored.Status)
}

func TestShiftService_Classification(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		want     models.ShiftClassification
	}{
		{"exact count", "100", models.ShiftPerfect},
		{"small surplus", "120", models.ShiftWarning},
		{"small shortage", "0", models.ShiftWarning},
		{"surplus at threshold", "600", models.ShiftWarning},
		{"surplus beyond threshold", "600.01", models.ShiftAlert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			ctx := context.Background()
			shift, err := env.shifts.Open(ctx, "t1", "c", d("100"))
			require.NoError(t, err)

			closed, err := env.shifts.Close(ctx, "t1", shift.ID, "c", CloseShiftInput{DeclaredCash: d(tt.declared)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, *closed.Classification)
		})
	}
}

func TestShiftService_AlertOnShortage(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	shift, err := env.shifts.Open(ctx, "t1", "c", d("1000"))
	require.NoError(t, err)

	closed, err := env.shifts.Close(ctx, "t1", shift.ID, "c", CloseShiftInput{CashTotal: d("200"), DeclaredCash: d("600")})
	require.NoError(t, err)
	assert.Equal(t, "-600", closed.Difference.String())
	assert.Equal(t, models.ShiftAlert, *closed.Classification)
}

func TestShiftService_OnlyOwnerClosesOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	shift, err := env.shifts.Open(ctx, "t1", "owner", d("0"))
	require.NoError(t, err)

	_, err = env.shifts.Close(ctx, "t1", shift.ID, "intruder", CloseShiftInput{})
	assert.ErrorIs(t, err, ErrShiftNotOwned)

	_, err = env.shifts.Close(ctx, "t1", shift.ID, "owner", CloseShiftInput{})
	require.NoError(t, err)

	_, err = env.shifts.Close(ctx, "t1", shift.ID, "owner", CloseShiftInput{})
	assert.ErrorIs(t, err, ErrShiftClosed)
}

func TestShiftService_Errors(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.shifts.Open(ctx, "t1", "", d("10"))
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = env.shifts.Open(ctx, "t1", "c", d("10.001"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = env.shifts.Close(ctx, "t1", "missing", "c", CloseShiftInput{})
	assert.ErrorIs(t, err, ErrNotFound)

	shift, err := env.shifts.Open(ctx, "t1", "c", d("10"))
	require.NoError(t, err)
	_, err = env.shifts.Close(ctx, "t2", shift.ID, "c", CloseShiftInput{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.shifts.Get(ctx, "t2", shift.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShiftService_AuditsLifecycle(t *testing.T) {
	env := newTestEnv()
	ctx := WithActor(context.Background(), Actor{UserID: "cajero-1", IPAddress: "10.0.0.1"})
	shift, err := env.shifts.Open(ctx, "t1", "cajero-1", d("50"))
	require.NoError(t, err)
	_, err = env.shifts.Close(ctx, "t1", shift.ID, "cajero-1", CloseShiftInput{DeclaredCash: d("50")})
	require.NoError(t, err)

	logs, total, err := env.audit.List(ctx, "t1", repository.NewListQuery())
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	actions := []string{logs[0].Action, logs[1].Action}
	assert.ElementsMatch(t, []string{models.AuditActionOpen, models.AuditActionClose}, actions)
	assert.Equal(t, "cajero-1", logs[0].Actor)
}
