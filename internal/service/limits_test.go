package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness-scheduler/api"
	"wellness-scheduler/pkg/response"
)

func TestGetLimits_DefaultsWhenUnset(t *testing.T) {
	svc, _, _ := newTestService(t)

	limits, err := svc.GetLimits(context.Background(), "psy-1")
	require.NoError(t, err)

	assert.Equal(t, 10, limits.Limits.WeeklyLimit)
	assert.Equal(t, 40, limits.Limits.MonthlyLimit)
	assert.Equal(t, 0, limits.CurrentUsage.WeeklyBookings)
	assert.Equal(t, 10, limits.CurrentUsage.WeeklyRemaining)
	assert.Equal(t, 40, limits.CurrentUsage.MonthlyRemaining)
}

func TestUpdateLimits_Persists(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	updated, err := svc.UpdateLimits(ctx, "psy-1", &api.BookingLimitsRequest{
		WeeklyLimit:  3,
		MonthlyLimit: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Limits.WeeklyLimit)
	assert.Equal(t, 12, updated.Limits.MonthlyLimit)

	fetched, err := svc.GetLimits(ctx, "psy-1")
	require.NoError(t, err)
	assert.Equal(t, 3, fetched.Limits.WeeklyLimit)
	assert.Equal(t, 12, fetched.Limits.MonthlyLimit)
}

func TestUpdateLimits_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateLimits(ctx, "psy-1", &api.BookingLimitsRequest{
		WeeklyLimit:  0,
		MonthlyLimit: 10,
	})
	assert.ErrorIs(t, err, response.ErrValidation)

	_, err = svc.UpdateLimits(ctx, "psy-1", &api.BookingLimitsRequest{
		WeeklyLimit:  20,
		MonthlyLimit: 10,
	})
	assert.ErrorIs(t, err, response.ErrValidation)
}

func TestUpdateLimits_BelowCurrentUsage(t *testing.T) {
	// GIVEN: two sessions already booked this week
	// WHEN: lowering the weekly limit to 1
	// THEN: the update is rejected with the usage that blocks it

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	today := time.Now().UTC()
	pinWorkingDay(t, svc, today)
	at1 := time.Date(today.Year(), today.Month(), today.Day(), 9, 0, 0, 0, time.UTC)
	at2 := at1.Add(time.Hour)
	seedSlot(t, svc, "psy-1", at1)
	seedSlot(t, svc, "psy-1", at2)
	seedBooking(t, svc, "psy-1", "client-1", at1)
	seedBooking(t, svc, "psy-1", "client-2", at2)

	_, err := svc.UpdateLimits(ctx, "psy-1", &api.BookingLimitsRequest{
		WeeklyLimit:  1,
		MonthlyLimit: 12,
	})

	var belowUsage *response.LimitBelowUsageError
	require.ErrorAs(t, err, &belowUsage)
	assert.Equal(t, "weekly", belowUsage.Window)
	assert.Equal(t, 2, belowUsage.Booked)
	assert.Equal(t, 1, belowUsage.Requested)
}

func TestCreateBooking_WeeklyQuotaExceeded(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateLimits(ctx, "psy-1", &api.BookingLimitsRequest{
		WeeklyLimit:  1,
		MonthlyLimit: 10,
	})
	require.NoError(t, err)

	// Same ISO week (Monday and Tuesday).
	at1 := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	at2 := time.Date(2030, time.June, 4, 9, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", at1)
	seedSlot(t, svc, "psy-1", at2)
	seedBooking(t, svc, "psy-1", "client-1", at1)

	_, err = svc.CreateBooking(ctx, &api.BookingRequest{
		PsychologistID: "psy-1",
		ClientID:       "client-2",
		TimeSlot:       at2.Format(time.RFC3339),
		SessionType:    "30_minute",
	}, nil)

	var quota *response.QuotaExceededError
	require.ErrorAs(t, err, &quota)
	assert.Equal(t, "weekly", quota.Window)
	assert.Equal(t, 1, quota.Booked)
	assert.Equal(t, 1, quota.Limit)
}

func TestCreateBooking_MonthlyQuotaExceeded(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateLimits(ctx, "psy-1", &api.BookingLimitsRequest{
		WeeklyLimit:  1,
		MonthlyLimit: 1,
	})
	require.NoError(t, err)

	// Different ISO weeks, same calendar month.
	at1 := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	at2 := time.Date(2030, time.June, 10, 9, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", at1)
	seedSlot(t, svc, "psy-1", at2)
	seedBooking(t, svc, "psy-1", "client-1", at1)

	_, err = svc.CreateBooking(ctx, &api.BookingRequest{
		PsychologistID: "psy-1",
		ClientID:       "client-2",
		TimeSlot:       at2.Format(time.RFC3339),
		SessionType:    "30_minute",
	}, nil)

	var quota *response.QuotaExceededError
	require.ErrorAs(t, err, &quota)
	assert.Equal(t, "monthly", quota.Window)
}

func TestCancelledBookingFreesQuota(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateLimits(ctx, "psy-1", &api.BookingLimitsRequest{
		WeeklyLimit:  1,
		MonthlyLimit: 10,
	})
	require.NoError(t, err)

	at1 := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	at2 := time.Date(2030, time.June, 4, 9, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", at1)
	seedSlot(t, svc, "psy-1", at2)
	booking := seedBooking(t, svc, "psy-1", "client-1", at1)

	_, err = svc.CancelBooking(ctx, booking.ID, "no show")
	require.NoError(t, err)

	// The released slot no longer counts against the week.
	_, err = svc.CreateBooking(ctx, &api.BookingRequest{
		PsychologistID: "psy-1",
		ClientID:       "client-2",
		TimeSlot:       at2.Format(time.RFC3339),
		SessionType:    "30_minute",
	}, nil)
	assert.NoError(t, err)
}

func TestGetLimits_ReportsUsage(t *testing.T) {
	svc, _, _ := newTestService(t)

	today := time.Now().UTC()
	pinWorkingDay(t, svc, today)
	at := time.Date(today.Year(), today.Month(), today.Day(), 9, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", at)
	seedBooking(t, svc, "psy-1", "client-1", at)

	limits, err := svc.GetLimits(context.Background(), "psy-1")
	require.NoError(t, err)

	assert.Equal(t, 1, limits.CurrentUsage.WeeklyBookings)
	assert.Equal(t, 1, limits.CurrentUsage.MonthlyBookings)
	assert.Equal(t, 9, limits.CurrentUsage.WeeklyRemaining)
	assert.Equal(t, 39, limits.CurrentUsage.MonthlyRemaining)
}
