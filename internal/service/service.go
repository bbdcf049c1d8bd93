package service

import (
	"context"
	"time"

	"wellness-scheduler/internal/config"
	"wellness-scheduler/internal/holidays"
	"wellness-scheduler/internal/lock"
	"wellness-scheduler/internal/models"
	"wellness-scheduler/internal/storage"
)

type Service struct {
	store    Store
	locker   lock.Locker
	calendar *holidays.Calendar
	defaults config.Scheduling
}

func NewService(store Store, locker lock.Locker, calendar *holidays.Calendar, defaults config.Scheduling) *Service {
	return &Service{store: store, locker: locker, calendar: calendar, defaults: defaults}
}

type Store interface {
	BeginTx(ctx context.Context) (storage.Tx, error)

	// Slots. CreateSlot is idempotent on (psychologist_id, time_slot) and
	// reports whether a row was actually inserted. TransitionSlot only
	// applies when the slot currently holds the expected status; with a nil
	// tx it runs as its own statement.
	CreateSlot(ctx context.Context, tx storage.Tx, slot *models.Slot) (string, bool, error)
	GetSlot(ctx context.Context, id string) (*models.Slot, error)
	GetSlotByTime(ctx context.Context, psychologistID string, at time.Time) (*models.Slot, error)
	ListSlots(ctx context.Context, psychologistID string, from, to *time.Time) ([]*models.Slot, error)
	TransitionSlot(ctx context.Context, tx storage.Tx, slotID string, from, to models.SlotStatus) error
	ToggleDay(ctx context.Context, psychologistID string, day time.Time, status models.SlotStatus) (int, error)
	CountBookedSlots(ctx context.Context, psychologistID string, from, to time.Time) (int, error)

	// Bookings. TransitionBooking only applies when the booking currently
	// holds one of the expected statuses.
	CreateBooking(ctx context.Context, tx storage.Tx, booking *models.Booking) (string, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetBookingByIdempotencyKey(ctx context.Context, key string) (*models.Booking, error)
	ListBookings(ctx context.Context, filters *BookingFilters) ([]*models.Booking, error)
	TransitionBooking(ctx context.Context, tx storage.Tx, bookingID string, to models.BookingStatus, reason string, from ...models.BookingStatus) error
	RepointBooking(ctx context.Context, tx storage.Tx, bookingID, psychologistID string, at time.Time) error

	// Holidays
	CreateHoliday(ctx context.Context, holiday *models.Holiday) (string, error)
	GetHoliday(ctx context.Context, id string) (*models.Holiday, error)
	DeleteHoliday(ctx context.Context, id string) error
	ListHolidays(ctx context.Context) ([]*models.Holiday, error)
	ListHolidaysByDate(ctx context.Context, date time.Time) ([]*models.Holiday, error)

	// Booking limits
	GetBookingLimit(ctx context.Context, psychologistID string) (*models.BookingLimit, error)
	UpsertBookingLimit(ctx context.Context, limit *models.BookingLimit) error
}

type BookingFilters struct {
	ClientID       *string
	PsychologistID *string
	Status         *models.BookingStatus
	From           *time.Time
	To             *time.Time
}
