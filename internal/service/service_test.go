package service_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wellness-scheduler/api"
	"wellness-scheduler/internal/config"
	"wellness-scheduler/internal/holidays"
	"wellness-scheduler/internal/lock"
	"wellness-scheduler/internal/service"
	"wellness-scheduler/internal/storage/memory"
)

func newTestService(t *testing.T) (*service.Service, *memory.Memory, *lock.MemoryLock) {
	t.Helper()

	store := memory.New()
	locker := lock.NewMemoryLock()
	calendar := holidays.New(store)

	svc := service.NewService(store, locker, calendar, config.Scheduling{
		SlotIntervalMinutes: 30,
		MaxWindowDays:       365,
		DefaultWeeklyLimit:  10,
		DefaultMonthlyLimit: 40,
	})

	return svc, store, locker
}

func strptr(s string) *string { return &s }

func timestamp(t time.Time) string { return strconv.FormatInt(t.Unix(), 10) }

func intptr(n int) *int { return &n }

// seedSlot creates one Available slot and returns its id.
func seedSlot(t *testing.T, svc *service.Service, psychologistID string, at time.Time) string {
	t.Helper()

	slot, err := svc.CreateSlot(context.Background(), &api.SlotCreateRequest{
		PsychologistID: psychologistID,
		TimeSlot:       at.Format(time.RFC3339),
	})
	require.NoError(t, err)
	return slot.ID
}

// seedBooking books an existing slot and returns the booking.
func seedBooking(t *testing.T, svc *service.Service, psychologistID, clientID string, at time.Time) *api.BookingResponse {
	t.Helper()

	booking, err := svc.CreateBooking(context.Background(), &api.BookingRequest{
		PsychologistID: psychologistID,
		ClientID:       clientID,
		TimeSlot:       at.Format(time.RFC3339),
		SessionType:    "30_minute",
	}, nil)
	require.NoError(t, err)
	return booking
}

// pinWorkingDay inserts an inactive holiday row for the date so the static
// fallback table can never block it, whatever day the test runs on.
func pinWorkingDay(t *testing.T, svc *service.Service, date time.Time) {
	t.Helper()

	inactive := false
	_, err := svc.CreateHoliday(context.Background(), &api.HolidayRequest{
		Date:        date.Format("2006-01-02"),
		Description: "Working day",
		IsActive:    &inactive,
	})
	require.NoError(t, err)
}

func slotStatusAt(t *testing.T, store *memory.Memory, psychologistID string, at time.Time) string {
	t.Helper()

	slot, err := store.GetSlotByTime(context.Background(), psychologistID, at)
	require.NoError(t, err)
	return string(slot.Status)
}
