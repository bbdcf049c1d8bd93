package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wellness-scheduler/api"
	"wellness-scheduler/internal/models"
	"wellness-scheduler/pkg/response"
)

const slotLockTTL = 10 * time.Second

func slotLockKey(psychologistID string, at time.Time) string {
	return fmt.Sprintf("slot:%s:%d", psychologistID, at.Unix())
}

func toBookingResponse(b *models.Booking) *api.BookingResponse {
	return &api.BookingResponse{
		ID:             b.ID,
		ClientID:       b.ClientID,
		PsychologistID: b.PsychologistID,
		TimeSlot:       b.TimeSlot,
		SessionType:    string(b.SessionType),
		Status:         string(b.Status),
		Notes:          b.Notes,
		CancelReason:   b.CancelReason,
	}
}

// CreateBooking reserves the slot at the requested timestamp and creates a
// pending booking in one transaction. With an idempotency key, a retry
// returns the original booking instead of reserving twice.
func (s *Service) CreateBooking(ctx context.Context, req *api.BookingRequest, idempotencyKey *string) (*api.BookingResponse, error) {
	const op = "service.CreateBooking"

	sessionType, ok := models.ParseSessionType(req.SessionType)
	if !ok {
		return nil, fmt.Errorf("%s: invalid session_type %q: %w", op, req.SessionType, response.ErrValidation)
	}

	at, err := time.Parse(time.RFC3339, req.TimeSlot)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid time_slot: %w", op, response.ErrValidation)
	}
	at = at.UTC().Truncate(time.Minute)

	if idempotencyKey != nil {
		existing, err := s.store.GetBookingByIdempotencyKey(ctx, *idempotencyKey)
		if err == nil {
			return toBookingResponse(existing), nil
		}
		if !errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	blocked, err := s.calendar.IsBlocked(ctx, truncateToDay(at))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if blocked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrHolidayBlocked)
	}

	lockKey := slotLockKey(req.PsychologistID, at)
	locked, err := s.locker.Lock(ctx, lockKey, slotLockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	slot, err := s.store.GetSlotByTime(ctx, req.PsychologistID, at)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if slot.Status != models.SlotAvailable {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotNotAvailable)
	}

	if err := s.CheckQuota(ctx, req.PsychologistID, at); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := s.store.TransitionSlot(ctx, tx, slot.ID, models.SlotAvailable, models.SlotBooked); err != nil {
		if errors.Is(err, response.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrSlotNotAvailable)
		}
		return nil, fmt.Errorf("%s: reserve slot: %w", op, err)
	}

	booking := &models.Booking{
		ClientID:       req.ClientID,
		PsychologistID: req.PsychologistID,
		TimeSlot:       at,
		SessionType:    sessionType,
		Status:         models.BookingPending,
		Notes:          req.Notes,
		IdempotencyKey: idempotencyKey,
	}

	bookingID, err := s.store.CreateBooking(ctx, tx, booking)
	if err != nil {
		return nil, fmt.Errorf("%s: create booking: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return s.GetBooking(ctx, bookingID)
}

func (s *Service) GetBooking(ctx context.Context, id string) (*api.BookingResponse, error) {
	const op = "service.GetBooking"

	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toBookingResponse(booking), nil
}

func (s *Service) ListBookings(ctx context.Context, filters *BookingFilters) ([]*api.BookingResponse, error) {
	const op = "service.ListBookings"

	bookings, err := s.store.ListBookings(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		result = append(result, toBookingResponse(booking))
	}

	return result, nil
}

// ConfirmBooking moves a pending booking to confirmed.
func (s *Service) ConfirmBooking(ctx context.Context, bookingID string) (*api.BookingResponse, error) {
	const op = "service.ConfirmBooking"

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !booking.Status.CanTransition(models.BookingConfirmed) {
		return nil, fmt.Errorf("%s: %s -> confirmed: %w", op, booking.Status, response.ErrInvalidTransition)
	}

	err = s.store.TransitionBooking(ctx, nil, bookingID, models.BookingConfirmed, "", models.BookingPending)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetBooking(ctx, bookingID)
}

// CompleteBooking marks the session as held. The slot stays Booked as a
// historical record and never returns to the schedulable pool.
func (s *Service) CompleteBooking(ctx context.Context, bookingID string) (*api.BookingResponse, error) {
	const op = "service.CompleteBooking"

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !booking.Status.CanTransition(models.BookingCompleted) {
		return nil, fmt.Errorf("%s: %s -> completed: %w", op, booking.Status, response.ErrInvalidTransition)
	}

	err = s.store.TransitionBooking(ctx, nil, bookingID, models.BookingCompleted, "",
		models.BookingPending, models.BookingConfirmed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetBooking(ctx, bookingID)
}

// CancelBooking cancels a pending or confirmed booking and releases its slot
// in the same transaction. Cancelling an already-cancelled booking is a
// no-op, so retries are always safe.
func (s *Service) CancelBooking(ctx context.Context, bookingID string, reason string) (*api.BookingResponse, error) {
	const op = "service.CancelBooking"

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if booking.Status == models.BookingCancelled {
		return toBookingResponse(booking), nil
	}
	if booking.Status == models.BookingCompleted {
		return nil, fmt.Errorf("%s: completed -> cancelled: %w", op, response.ErrInvalidTransition)
	}

	lockKey := slotLockKey(booking.PsychologistID, booking.TimeSlot)
	locked, err := s.locker.Lock(ctx, lockKey, slotLockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	slot, err := s.store.GetSlotByTime(ctx, booking.PsychologistID, booking.TimeSlot)
	if err != nil {
		return nil, fmt.Errorf("%s: resolve slot: %w", op, err)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	err = s.store.TransitionBooking(ctx, tx, bookingID, models.BookingCancelled, reason,
		models.BookingPending, models.BookingConfirmed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.TransitionSlot(ctx, tx, slot.ID, models.SlotBooked, models.SlotAvailable); err != nil {
		return nil, fmt.Errorf("%s: release slot: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return s.GetBooking(ctx, bookingID)
}

// RescheduleBooking moves a non-terminal booking to a different Available
// slot of the same psychologist, releasing the old one atomically.
func (s *Service) RescheduleBooking(ctx context.Context, bookingID string, newTimeSlot string) (*api.BookingResponse, error) {
	const op = "service.RescheduleBooking"

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if booking.Status.Terminal() {
		return nil, fmt.Errorf("%s: booking is %s: %w", op, booking.Status, response.ErrInvalidTransition)
	}

	newAt, err := time.Parse(time.RFC3339, newTimeSlot)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid new_time_slot: %w", op, response.ErrValidation)
	}
	newAt = newAt.UTC().Truncate(time.Minute)

	blocked, err := s.calendar.IsBlocked(ctx, truncateToDay(newAt))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if blocked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrHolidayBlocked)
	}

	lockKey := slotLockKey(booking.PsychologistID, newAt)
	locked, err := s.locker.Lock(ctx, lockKey, slotLockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	newSlot, err := s.store.GetSlotByTime(ctx, booking.PsychologistID, newAt)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: new slot not found: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if newSlot.Status != models.SlotAvailable {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotNotAvailable)
	}

	oldSlot, err := s.store.GetSlotByTime(ctx, booking.PsychologistID, booking.TimeSlot)
	if err != nil {
		return nil, fmt.Errorf("%s: resolve old slot: %w", op, err)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := s.store.TransitionSlot(ctx, tx, newSlot.ID, models.SlotAvailable, models.SlotBooked); err != nil {
		if errors.Is(err, response.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrSlotNotAvailable)
		}
		return nil, fmt.Errorf("%s: reserve new slot: %w", op, err)
	}
	if err := s.store.TransitionSlot(ctx, tx, oldSlot.ID, models.SlotBooked, models.SlotAvailable); err != nil {
		return nil, fmt.Errorf("%s: release old slot: %w", op, err)
	}
	if err := s.store.RepointBooking(ctx, tx, bookingID, booking.PsychologistID, newAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return s.GetBooking(ctx, bookingID)
}
