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

func TestPopulateDays_GeneratesSlotsAtInterval(t *testing.T) {
	// GIVEN: a one-day window 09:00-10:00 with 30-minute slots
	// WHEN: generating
	// THEN: exactly 09:00 and 09:30 exist

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	summary, err := svc.PopulateDays(ctx, &api.PopulateRequest{
		PsychologistIDs: []string{"psy-1"},
		StartDate:       strptr("2030-06-03"),
		EndDate:         strptr("2030-06-03"),
		StartTime:       "09:00",
		EndTime:         "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 0, summary.SkippedExisting)

	slots, err := svc.GetAvailability(ctx, "psy-1", nil, nil)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC), slots[0].TimeSlot)
	assert.Equal(t, time.Date(2030, time.June, 3, 9, 30, 0, 0, time.UTC), slots[1].TimeSlot)
	assert.Equal(t, "Available", slots[0].Status)
}

func TestPopulateDays_Idempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	req := &api.PopulateRequest{
		PsychologistIDs: []string{"psy-1"},
		StartDate:       strptr("2030-06-03"),
		EndDate:         strptr("2030-06-03"),
		StartTime:       "09:00",
		EndTime:         "10:00",
	}

	first, err := svc.PopulateDays(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	second, err := svc.PopulateDays(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.SkippedExisting)

	slots, err := svc.GetAvailability(ctx, "psy-1", nil, nil)
	require.NoError(t, err)
	assert.Len(t, slots, 2)
}

func TestPopulateDays_RegeneratingDoesNotTouchBookedSlots(t *testing.T) {
	// GIVEN: a generated window with one slot booked
	// WHEN: regenerating the same window
	// THEN: the booked slot keeps its status and booking

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	req := &api.PopulateRequest{
		PsychologistIDs: []string{"psy-1"},
		StartDate:       strptr("2030-06-03"),
		EndDate:         strptr("2030-06-03"),
		StartTime:       "09:00",
		EndTime:         "10:00",
	}
	_, err := svc.PopulateDays(ctx, req)
	require.NoError(t, err)

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	seedBooking(t, svc, "psy-1", "client-1", at)

	summary, err := svc.PopulateDays(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Created)

	assert.Equal(t, "Booked", slotStatusAt(t, store, "psy-1", at))
}

func TestPopulateDays_SkipsHolidayBlockedDays(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateHoliday(ctx, &api.HolidayRequest{
		Date:        "2030-06-04",
		Description: "Clinic closure",
	})
	require.NoError(t, err)

	summary, err := svc.PopulateDays(ctx, &api.PopulateRequest{
		PsychologistIDs: []string{"psy-1"},
		StartDate:       strptr("2030-06-03"),
		EndDate:         strptr("2030-06-05"),
		StartTime:       "09:00",
		EndTime:         "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Created) // two days x two slots
	assert.Equal(t, 1, summary.BlockedDays)

	slots, err := svc.GetAvailability(ctx, "psy-1", nil, nil)
	require.NoError(t, err)
	for _, slot := range slots {
		assert.NotEqual(t, 4, slot.TimeSlot.Day())
	}
}

func TestPopulateDays_ZeroDaysIsNoOp(t *testing.T) {
	svc, _, _ := newTestService(t)

	summary, err := svc.PopulateDays(context.Background(), &api.PopulateRequest{
		PsychologistIDs: []string{"psy-1"},
		Days:            intptr(0),
		StartTime:       "09:00",
		EndTime:         "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Created)
}

func TestPopulateDays_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  *api.PopulateRequest
	}{
		{"no psychologists", &api.PopulateRequest{
			StartDate: strptr("2030-06-03"), EndDate: strptr("2030-06-03"),
			StartTime: "09:00", EndTime: "10:00",
		}},
		{"window too large", &api.PopulateRequest{
			PsychologistIDs: []string{"psy-1"}, Days: intptr(366),
			StartTime: "09:00", EndTime: "10:00",
		}},
		{"end date before start date", &api.PopulateRequest{
			PsychologistIDs: []string{"psy-1"},
			StartDate:       strptr("2030-06-05"), EndDate: strptr("2030-06-03"),
			StartTime: "09:00", EndTime: "10:00",
		}},
		{"end time before start time", &api.PopulateRequest{
			PsychologistIDs: []string{"psy-1"},
			StartDate:       strptr("2030-06-03"), EndDate: strptr("2030-06-03"),
			StartTime: "17:00", EndTime: "09:00",
		}},
		{"bad interval", &api.PopulateRequest{
			PsychologistIDs: []string{"psy-1"},
			StartDate:       strptr("2030-06-03"), EndDate: strptr("2030-06-03"),
			StartTime: "09:00", EndTime: "10:00", IntervalMinutes: intptr(-5),
		}},
		{"missing window", &api.PopulateRequest{
			PsychologistIDs: []string{"psy-1"},
			StartTime:       "09:00", EndTime: "10:00",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.PopulateDays(ctx, tc.req)
			assert.ErrorIs(t, err, response.ErrValidation)
		})
	}
}

func TestCreateSlot_RejectsPastDates(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateSlot(context.Background(), &api.SlotCreateRequest{
		PsychologistID: "psy-1",
		TimeSlot:       "2020-01-01T09:00:00Z",
	})
	assert.ErrorIs(t, err, response.ErrValidation)
}

func TestCreateSlot_DuplicateRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	req := &api.SlotCreateRequest{
		PsychologistID: "psy-1",
		TimeSlot:       "2030-06-03T09:00:00Z",
	}

	_, err := svc.CreateSlot(ctx, req)
	require.NoError(t, err)

	_, err = svc.CreateSlot(ctx, req)
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestCreateSlot_HolidayBlocked(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateHoliday(ctx, &api.HolidayRequest{
		Date:        "2030-06-03",
		Description: "Clinic closure",
	})
	require.NoError(t, err)

	_, err = svc.CreateSlot(ctx, &api.SlotCreateRequest{
		PsychologistID: "psy-1",
		TimeSlot:       "2030-06-03T09:00:00Z",
	})
	assert.ErrorIs(t, err, response.ErrHolidayBlocked)
}

func TestUpdateSlotStatus_Transitions(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	id := seedSlot(t, svc, "psy-1", at)

	updated, err := svc.UpdateSlotStatus(ctx, id, "Break")
	require.NoError(t, err)
	assert.Equal(t, "Break", updated.Status)

	updated, err = svc.UpdateSlotStatus(ctx, id, "Available")
	require.NoError(t, err)
	assert.Equal(t, "Available", updated.Status)
}

func TestUpdateSlotStatus_BookedIsNotATarget(t *testing.T) {
	svc, _, _ := newTestService(t)

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	id := seedSlot(t, svc, "psy-1", at)

	_, err := svc.UpdateSlotStatus(context.Background(), id, "Booked")
	assert.ErrorIs(t, err, response.ErrValidation)
}

func TestUpdateSlotStatus_BookedSlotIsImmutable(t *testing.T) {
	svc, _, _ := newTestService(t)

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	id := seedSlot(t, svc, "psy-1", at)
	seedBooking(t, svc, "psy-1", "client-1", at)

	_, err := svc.UpdateSlotStatus(context.Background(), id, "Unavailable")
	assert.ErrorIs(t, err, response.ErrSlotBooked)
}

func TestUpdateSlotStatus_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UpdateSlotStatus(context.Background(), "missing", "Break")
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestToggleDay_UpdatesWholeDay(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.PopulateDays(ctx, &api.PopulateRequest{
		PsychologistIDs: []string{"psy-1"},
		StartDate:       strptr("2030-06-03"),
		EndDate:         strptr("2030-06-03"),
		StartTime:       "09:00",
		EndTime:         "11:00",
	})
	require.NoError(t, err)

	updated, err := svc.ToggleDay(ctx, &api.ToggleDayRequest{
		PsychologistID: "psy-1",
		Date:           "2030-06-03",
		Status:         "Unavailable",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated)

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "Unavailable", slotStatusAt(t, store, "psy-1", at))
}

func TestToggleDay_BookedSlotFailsTheBatch(t *testing.T) {
	// GIVEN: a day where one slot carries an active booking
	// WHEN: toggling the day off
	// THEN: the whole batch is rejected and nothing changed

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.PopulateDays(ctx, &api.PopulateRequest{
		PsychologistIDs: []string{"psy-1"},
		StartDate:       strptr("2030-06-03"),
		EndDate:         strptr("2030-06-03"),
		StartTime:       "09:00",
		EndTime:         "10:00",
	})
	require.NoError(t, err)

	at := time.Date(2030, time.June, 3, 9, 0, 0, 0, time.UTC)
	seedBooking(t, svc, "psy-1", "client-1", at)

	_, err = svc.ToggleDay(ctx, &api.ToggleDayRequest{
		PsychologistID: "psy-1",
		Date:           "2030-06-03",
		Status:         "Unavailable",
	})
	assert.ErrorIs(t, err, response.ErrSlotBooked)

	other := time.Date(2030, time.June, 3, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "Available", slotStatusAt(t, store, "psy-1", other))
}
