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

// ReassignBooking transfers a non-terminal booking to a different
// psychologist. The destination must have an Available slot at the booking's
// timestamp (or an explicitly chosen new one) and headroom in its quota.
// Validation failures leave the source pairing untouched.
func (s *Service) ReassignBooking(ctx context.Context, bookingID string, req *api.BookingReassignRequest) (*api.BookingResponse, error) {
	const op = "service.ReassignBooking"

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

	targetID := req.TargetPsychologistID
	if targetID == "" {
		return nil, fmt.Errorf("%s: target_psychologist_id is required: %w", op, response.ErrValidation)
	}
	if targetID == booking.PsychologistID {
		return nil, fmt.Errorf("%s: target equals current psychologist: %w", op, response.ErrValidation)
	}

	targetAt := booking.TimeSlot
	if req.NewTimeSlot != nil {
		targetAt, err = time.Parse(time.RFC3339, *req.NewTimeSlot)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid new_time_slot: %w", op, response.ErrValidation)
		}
		targetAt = targetAt.UTC().Truncate(time.Minute)

		blocked, err := s.calendar.IsBlocked(ctx, truncateToDay(targetAt))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if blocked {
			return nil, fmt.Errorf("%s: %w", op, response.ErrHolidayBlocked)
		}
	}

	lockKey := slotLockKey(targetID, targetAt)
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

	targetSlot, err := s.store.GetSlotByTime(ctx, targetID, targetAt)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrReassignTarget)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if targetSlot.Status != models.SlotAvailable {
		return nil, fmt.Errorf("%s: %w", op, response.ErrReassignTarget)
	}

	if err := s.CheckQuota(ctx, targetID, targetAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sourceSlot, err := s.store.GetSlotByTime(ctx, booking.PsychologistID, booking.TimeSlot)
	if err != nil {
		return nil, fmt.Errorf("%s: resolve source slot: %w", op, err)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := s.store.TransitionSlot(ctx, tx, targetSlot.ID, models.SlotAvailable, models.SlotBooked); err != nil {
		if errors.Is(err, response.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrReassignTarget)
		}
		return nil, fmt.Errorf("%s: reserve target slot: %w", op, err)
	}
	if err := s.store.TransitionSlot(ctx, tx, sourceSlot.ID, models.SlotBooked, models.SlotAvailable); err != nil {
		return nil, fmt.Errorf("%s: release source slot: %w", op, err)
	}
	if err := s.store.RepointBooking(ctx, tx, bookingID, targetID, targetAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return s.GetBooking(ctx, bookingID)
}
