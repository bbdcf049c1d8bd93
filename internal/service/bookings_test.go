package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness-scheduler/api"
	"wellness-scheduler/internal/service"
	"wellness-scheduler/pkg/response"
)

func TestCreateBooking_ReservesSlot(t *testing.T) {
	// GIVEN: an Available slot
	// WHEN: booking it
	// THEN: a pending booking exists and the slot is Booked

	svc, store, _ := newTestService(t)

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", at)

	booking := seedBooking(t, svc, "psy-1", "client-1", at)

	assert.Equal(t, "pending", booking.Status)
	assert.Equal(t, "psy-1", booking.PsychologistID)
	assert.Equal(t, "client-1", booking.ClientID)
	assert.Equal(t, at, booking.TimeSlot)
	assert.Equal(t, "Booked", slotStatusAt(t, store, "psy-1", at))
}

func TestCreateBooking_SlotAlreadyTaken(t *testing.T) {
	svc, _, _ := newTestService(t)

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", at)
	seedBooking(t, svc, "psy-1", "client-1", at)

	_, err := svc.CreateBooking(context.Background(), &api.BookingRequest{
		PsychologistID: "psy-1",
		ClientID:       "client-2",
		TimeSlot:       at.Format(time.RFC3339),
		SessionType:    "45_minute",
	}, nil)
	assert.ErrorIs(t, err, response.ErrSlotNotAvailable)
}

func TestCreateBooking_NoSlotAtTime(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateBooking(context.Background(), &api.BookingRequest{
		PsychologistID: "psy-1",
		ClientID:       "client-1",
		TimeSlot:       "2030-06-03T09:00:00Z",
		SessionType:    "30_minute",
	}, nil)
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestCreateBooking_HolidayBlocked(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", at)

	_, err := svc.CreateHoliday(ctx, &api.HolidayRequest{
		Date:        "2030-06-03",
		Description: "Clinic closure",
	})
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, &api.BookingRequest{
		PsychologistID: "psy-1",
		ClientID:       "client-1",
		TimeSlot:       at.Format(time.RFC3339),
		SessionType:    "30_minute",
	}, nil)
	assert.ErrorIs(t, err, response.ErrHolidayBlocked)
}

func TestCreateBooking_InvalidInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, &api.BookingRequest{
		PsychologistID: "psy-1",
		ClientID:       "client-1",
		TimeSlot:       "2030-06-03T09:00:00Z",
		SessionType:    "two_hours",
	}, nil)
	assert.ErrorIs(t, err, response.ErrValidation)

	_, err = svc.CreateBooking(ctx, &api.BookingRequest{
		PsychologistID: "psy-1",
		ClientID:       "client-1",
		TimeSlot:       "not-a-time",
		SessionType:    "30_minute",
	}, nil)
	assert.ErrorIs(t, err, response.ErrValidation)
}

func TestCreateBooking_IdempotencyKeyReturnsOriginal(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", at)

	req := &api.BookingRequest{
		PsychologistID: "psy-1",
		ClientID:       "client-1",
		TimeSlot:       at.Format(time.RFC3339),
		SessionType:    "30_minute",
	}

	key := "retry-abc"
	first, err := svc.CreateBooking(ctx, req, &key)
	require.NoError(t, err)

	second, err := svc.CreateBooking(ctx, req, &key)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCreateBooking_LockedSlot(t *testing.T) {
	svc, _, locker := newTestService(t)
	ctx := context.Background()

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", at)

	// Simulate a concurrent request holding the slot lock.
	held, err := locker.Lock(ctx, "slot:psy-1:"+timestamp(at), time.Minute)
	require.NoError(t, err)
	require.True(t, held)

	_, err = svc.CreateBooking(ctx, &api.BookingRequest{
		PsychologistID: "psy-1",
		ClientID:       "client-1",
		TimeSlot:       at.Format(time.RFC3339),
		SessionType:    "30_minute",
	}, nil)
	assert.ErrorIs(t, err, response.ErrLocked)
}

func TestConfirmBooking(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", at)
	booking := seedBooking(t, svc, "psy-1", "client-1", at)

	confirmed, err := svc.ConfirmBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Status)

	// Confirming twice is not a valid transition.
	_, err = svc.ConfirmBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, response.ErrInvalidTransition)
}

func TestCompleteBooking_SlotStaysBooked(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", at)
	booking := seedBooking(t, svc, "psy-1", "client-1", at)

	_, err := svc.ConfirmBooking(ctx, booking.ID)
	require.NoError(t, err)

	completed, err := svc.CompleteBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)

	// The held session stays on the books; the slot never reopens.
	assert.Equal(t, "Booked", slotStatusAt(t, store, "psy-1", at))
}

func TestCancelBooking_ReleasesSlot(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", at)
	booking := seedBooking(t, svc, "psy-1", "client-1", at)

	cancelled, err := svc.CancelBooking(ctx, booking.ID, "client request")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, "client request", cancelled.CancelReason)

	assert.Equal(t, "Available", slotStatusAt(t, store, "psy-1", at))
}

func TestCancelBooking_Idempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", at)
	booking := seedBooking(t, svc, "psy-1", "client-1", at)

	_, err := svc.CancelBooking(ctx, booking.ID, "first")
	require.NoError(t, err)

	again, err := svc.CancelBooking(ctx, booking.ID, "second")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", again.Status)
	assert.Equal(t, "first", again.CancelReason)
}

func TestCancelBooking_CompletedRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", at)
	booking := seedBooking(t, svc, "psy-1", "client-1", at)

	_, err := svc.ConfirmBooking(ctx, booking.ID)
	require.NoError(t, err)
	_, err = svc.CompleteBooking(ctx, booking.ID)
	require.NoError(t, err)

	_, err = svc.CancelBooking(ctx, booking.ID, "too late")
	assert.ErrorIs(t, err, response.ErrInvalidTransition)
}

func TestRescheduleBooking_MovesOccupancy(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	oldAt := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	newAt := time.Date(2030, time.June, 3, 14, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", oldAt)
	seedSlot(t, svc, "psy-1", newAt)
	booking := seedBooking(t, svc, "psy-1", "client-1", oldAt)

	moved, err := svc.RescheduleBooking(ctx, booking.ID, newAt.Format(time.RFC3339))
	require.NoError(t, err)
	assert.Equal(t, newAt, moved.TimeSlot)

	assert.Equal(t, "Available", slotStatusAt(t, store, "psy-1", oldAt))
	assert.Equal(t, "Booked", slotStatusAt(t, store, "psy-1", newAt))
}

func TestRescheduleBooking_TargetNotAvailable(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	oldAt := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	newAt := time.Date(2030, time.June, 3, 14, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", oldAt)
	newID := seedSlot(t, svc, "psy-1", newAt)
	booking := seedBooking(t, svc, "psy-1", "client-1", oldAt)

	_, err := svc.UpdateSlotStatus(ctx, newID, "Break")
	require.NoError(t, err)

	_, err = svc.RescheduleBooking(ctx, booking.ID, newAt.Format(time.RFC3339))
	assert.ErrorIs(t, err, response.ErrSlotNotAvailable)

	// Nothing moved.
	assert.Equal(t, "Booked", slotStatusAt(t, store, "psy-1", oldAt))
	unchanged, err := svc.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, oldAt, unchanged.TimeSlot)
}

func TestRescheduleBooking_TerminalRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	newAt := time.Date(2030, time.June, 3, 14, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", at)
	seedSlot(t, svc, "psy-1", newAt)
	booking := seedBooking(t, svc, "psy-1", "client-1", at)

	_, err := svc.CancelBooking(ctx, booking.ID, "changed plans")
	require.NoError(t, err)

	_, err = svc.RescheduleBooking(ctx, booking.ID, newAt.Format(time.RFC3339))
	assert.ErrorIs(t, err, response.ErrInvalidTransition)
}

func TestListBookings_Filters(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	at1 := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	at2 := time.Date(2030, time.June, 3, 10, 0, 0, 0, time.UTC)
	seedSlot(t, svc, "psy-1", at1)
	seedSlot(t, svc, "psy-2", at2)
	seedBooking(t, svc, "psy-1", "client-1", at1)
	seedBooking(t, svc, "psy-2", "client-1", at2)

	pid := "psy-1"
	byPsy, err := svc.ListBookings(ctx, &service.BookingFilters{PsychologistID: &pid})
	require.NoError(t, err)
	require.Len(t, byPsy, 1)
	assert.Equal(t, "psy-1", byPsy[0].PsychologistID)

	cid := "client-1"
	byClient, err := svc.ListBookings(ctx, &service.BookingFilters{ClientID: &cid})
	require.NoError(t, err)
	assert.Len(t, byClient, 2)
}
