package models

import "time"

type SlotStatus string

const (
	SlotAvailable   SlotStatus = "Available"
	SlotUnavailable SlotStatus = "Unavailable"
	SlotBreak       SlotStatus = "Break"
	SlotBooked      SlotStatus = "Booked"
)

func ParseSlotStatus(s string) (SlotStatus, bool) {
	switch SlotStatus(s) {
	case SlotAvailable, SlotUnavailable, SlotBreak, SlotBooked:
		return SlotStatus(s), true
	}
	return "", false
}

// slotTransitions lists the status changes allowed through the slot status
// manager. Booked is absent on both sides: occupancy changes flow only
// through the booking lifecycle.
var slotTransitions = map[SlotStatus][]SlotStatus{
	SlotAvailable:   {SlotUnavailable, SlotBreak},
	SlotUnavailable: {SlotAvailable, SlotBreak},
	SlotBreak:       {SlotAvailable, SlotUnavailable},
}

func (s SlotStatus) CanTransition(to SlotStatus) bool {
	if s == to {
		return true
	}
	for _, t := range slotTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

type Slot struct {
	ID             string     `db:"id"`
	PsychologistID string     `db:"psychologist_id"`
	TimeSlot       time.Time  `db:"time_slot"`
	Status         SlotStatus `db:"status"`
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return BookingStatus(s), true
	}
	return "", false
}

// Terminal reports whether the booking can no longer change.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCompleted, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

type SessionType string

const (
	Session30Minute  SessionType = "30_minute"
	Session45Minute  SessionType = "45_minute"
	SessionEmergency SessionType = "emergency"
)

func ParseSessionType(s string) (SessionType, bool) {
	switch SessionType(s) {
	case Session30Minute, Session45Minute, SessionEmergency:
		return SessionType(s), true
	}
	return "", false
}

type Booking struct {
	ID             string        `db:"id"`
	ClientID       string        `db:"client_id"`
	PsychologistID string        `db:"psychologist_id"`
	TimeSlot       time.Time     `db:"time_slot"`
	SessionType    SessionType   `db:"session_type"`
	Status         BookingStatus `db:"status"`
	Notes          string        `db:"notes"`
	CancelReason   string        `db:"cancel_reason"`
	IdempotencyKey *string       `db:"idempotency_key"`
}

type Holiday struct {
	ID                string    `db:"id"`
	Date              time.Time `db:"holiday_date"`
	Description       string    `db:"description"`
	RecurringAnnually bool      `db:"recurring_annually"`
	IsActive          bool      `db:"is_active"`
	Location          string    `db:"location"`
}

// AppliesTo reports whether the holiday blocks the given day. Inactive
// holidays are kept for history but never block.
func (h Holiday) AppliesTo(date time.Time) bool {
	if !h.IsActive {
		return false
	}
	if h.RecurringAnnually {
		return h.Date.Month() == date.Month() && h.Date.Day() == date.Day()
	}
	return h.Date.Year() == date.Year() && h.Date.YearDay() == date.YearDay()
}

type BookingLimit struct {
	PsychologistID string `db:"psychologist_id"`
	WeeklyLimit    int    `db:"weekly_limit"`
	MonthlyLimit   int    `db:"monthly_limit"`
}
