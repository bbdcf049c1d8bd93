package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlotStatus_Transitions(t *testing.T) {
	assert.True(t, SlotAvailable.CanTransition(SlotBreak))
	assert.True(t, SlotBreak.CanTransition(SlotUnavailable))
	assert.True(t, SlotUnavailable.CanTransition(SlotAvailable))
	assert.True(t, SlotAvailable.CanTransition(SlotAvailable))

	// Occupancy never moves through the status manager.
	assert.False(t, SlotAvailable.CanTransition(SlotBooked))
	assert.False(t, SlotBooked.CanTransition(SlotAvailable))
}

func TestBookingStatus_Transitions(t *testing.T) {
	assert.True(t, BookingPending.CanTransition(BookingConfirmed))
	assert.True(t, BookingPending.CanTransition(BookingCancelled))
	assert.True(t, BookingConfirmed.CanTransition(BookingCompleted))
	assert.True(t, BookingConfirmed.CanTransition(BookingCancelled))

	assert.False(t, BookingCompleted.CanTransition(BookingCancelled))
	assert.False(t, BookingCancelled.CanTransition(BookingPending))
	assert.False(t, BookingConfirmed.CanTransition(BookingPending))
}

func TestBookingStatus_Terminal(t *testing.T) {
	assert.False(t, BookingPending.Terminal())
	assert.False(t, BookingConfirmed.Terminal())
	assert.True(t, BookingCompleted.Terminal())
	assert.True(t, BookingCancelled.Terminal())
}

func TestParseSessionType(t *testing.T) {
	for _, valid := range []string{"30_minute", "45_minute", "emergency"} {
		_, ok := ParseSessionType(valid)
		assert.True(t, ok, valid)
	}

	_, ok := ParseSessionType("hour")
	assert.False(t, ok)
}

func TestHoliday_AppliesTo(t *testing.T) {
	day := time.Date(2026, time.June, 4, 0, 0, 0, 0, time.UTC)

	oneOff := Holiday{Date: day, IsActive: true}
	assert.True(t, oneOff.AppliesTo(day))
	assert.False(t, oneOff.AppliesTo(day.AddDate(1, 0, 0)))

	recurring := Holiday{Date: day, IsActive: true, RecurringAnnually: true}
	assert.True(t, recurring.AppliesTo(day.AddDate(3, 0, 0)))

	inactive := Holiday{Date: day, IsActive: false}
	assert.False(t, inactive.AppliesTo(day))
}
