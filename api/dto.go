package api

import "time"

// Availability

type SlotResponse struct {
	ID             string    `json:"id"`
	PsychologistID string    `json:"psychologist_id"`
	TimeSlot       time.Time `json:"time_slot"`
	Status         string    `json:"availability_status"`
}

type SlotCreateRequest struct {
	PsychologistID string `json:"psychologist_id"`
	TimeSlot       string `json:"time_slot"`
	Status         string `json:"availability_status,omitempty"`
}

type SlotUpdateRequest struct {
	Status string `json:"availability_status"`
}

type ToggleDayRequest struct {
	PsychologistID string `json:"psychologist_id"`
	Date           string `json:"date"`
	Status         string `json:"availability_status"`
}

type PopulateRequest struct {
	PsychologistIDs []string `json:"psychologist_ids"`
	Days            *int     `json:"days,omitempty"`
	StartDate       *string  `json:"start_date,omitempty"`
	EndDate         *string  `json:"end_date,omitempty"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	IntervalMinutes *int     `json:"interval_minutes,omitempty"`
}

type GenerationSummary struct {
	Created         int `json:"created"`
	SkippedExisting int `json:"skipped_existing"`
	BlockedDays     int `json:"blocked_days"`
}

// Holidays

type HolidayRequest struct {
	Date              string `json:"date"`
	Description       string `json:"description"`
	RecurringAnnually bool   `json:"recurring_annually"`
	IsActive          *bool  `json:"is_active,omitempty"`
	Location          string `json:"location,omitempty"`
}

type HolidayResponse struct {
	ID                string `json:"id"`
	Date              string `json:"date"`
	Description       string `json:"description"`
	RecurringAnnually bool   `json:"recurring_annually"`
	IsActive          bool   `json:"is_active"`
	Location          string `json:"location,omitempty"`
	Source            string `json:"source"` // "remote" or "fallback"
}

// Bookings

type BookingRequest struct {
	PsychologistID string `json:"psychologist_id"`
	ClientID       string `json:"client_id"`
	TimeSlot       string `json:"time_slot"`
	SessionType    string `json:"session_type"`
	Notes          string `json:"notes,omitempty"`
}

type BookingResponse struct {
	ID             string    `json:"id"`
	ClientID       string    `json:"client_id"`
	PsychologistID string    `json:"psychologist_id"`
	TimeSlot       time.Time `json:"time_slot"`
	SessionType    string    `json:"session_type"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes,omitempty"`
	CancelReason   string    `json:"cancel_reason,omitempty"`
}

type BookingCancelRequest struct {
	Reason string `json:"reason"`
}

type BookingRescheduleRequest struct {
	BookingID   string `json:"booking_id"`
	NewTimeSlot string `json:"new_time_slot"`
}

type BookingReassignRequest struct {
	TargetPsychologistID string  `json:"target_psychologist_id"`
	NewTimeSlot          *string `json:"new_time_slot,omitempty"`
}

// Booking limits

type BookingLimitsRequest struct {
	WeeklyLimit  int `json:"weekly_booking_limit"`
	MonthlyLimit int `json:"monthly_booking_limit"`
}

type BookingLimits struct {
	WeeklyLimit  int `json:"weekly_booking_limit"`
	MonthlyLimit int `json:"monthly_booking_limit"`
}

type BookingUsage struct {
	WeeklyBookings   int `json:"weekly_bookings"`
	MonthlyBookings  int `json:"monthly_bookings"`
	WeeklyRemaining  int `json:"weekly_remaining"`
	MonthlyRemaining int `json:"monthly_remaining"`
}

type BookingLimitsResponse struct {
	PsychologistID string        `json:"psychologist_id"`
	Limits         BookingLimits `json:"limits"`
	CurrentUsage   BookingUsage  `json:"current_usage"`
}
