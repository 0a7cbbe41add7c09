package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"rms-sync-service/internal/domain"
	"rms-sync-service/internal/engine"
)

func TestOneOpenShiftPerStaff(t *testing.T) {
	eng, _ := newTestEngine(t, engine.Options{})
	cashier := userByEmail(t, eng, "cashier@rms.com")
	ctx := context.Background()

	_, err := eng.Apply(ctx, &cashier, engine.StartShiftOp{CashierID: cashier.ID, StartFloat: 500})
	require.NoError(t, err)

	_, err = eng.Apply(ctx, &cashier, engine.StartShiftOp{CashierID: cashier.ID, StartFloat: 500})
	require.ErrorIs(t, err, engine.ErrConflict)

	shift := eng.Snapshot().Shifts[0]
	require.Nil(t, shift.EndTime)
	require.Equal(t, 500.0, shift.StartFloat)

	_, err = eng.Apply(ctx, &cashier, engine.EndShiftOp{ShiftID: shift.ID, EndFloat: 1250})
	require.NoError(t, err)

	ended := eng.Snapshot().Shifts[0]
	require.NotNil(t, ended.EndTime)
	require.NotNil(t, ended.EndFloat)
	require.Equal(t, 1250.0, *ended.EndFloat)

	// A closed shift stays closed.
	_, err = eng.Apply(ctx, &cashier, engine.EndShiftOp{ShiftID: shift.ID, EndFloat: 0})
	require.ErrorIs(t, err, engine.ErrConflict)

	// And a new one may open.
	_, err = eng.Apply(ctx, &cashier, engine.StartShiftOp{CashierID: cashier.ID, StartFloat: 300})
	require.NoError(t, err)
}

func TestScheduleLifecycle(t *testing.T) {
	eng, _ := newTestEngine(t, engine.Options{})
	admin := userByEmail(t, eng, "admin@rms.com")
	ctx := context.Background()

	_, err := eng.Apply(ctx, &admin, engine.SaveScheduleOp{
		Schedule: domain.StaffSchedule{StaffID: "usr_003"},
	})
	require.NoError(t, err)

	sched := eng.Snapshot().StaffSchedules[0]
	require.NotEmpty(t, sched.ID)

	_, err = eng.Apply(ctx, &admin, engine.DeleteScheduleOp{ScheduleID: sched.ID})
	require.NoError(t, err)
	require.Empty(t, eng.Snapshot().StaffSchedules)
}
