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

// PopulateDays generates Available slots for each psychologist over the
// requested window, skipping holiday-blocked days entirely and never touching
// slots that already exist.
func (s *Service) PopulateDays(ctx context.Context, req *api.PopulateRequest) (*api.GenerationSummary, error) {
	const op = "service.PopulateDays"

	if len(req.PsychologistIDs) == 0 {
		return nil, fmt.Errorf("%s: psychologist_ids is empty: %w", op, response.ErrValidation)
	}

	startDay, endDay, err := s.resolveWindow(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	summary := &api.GenerationSummary{}
	if startDay.IsZero() {
		// Zero-length window is a no-op.
		return summary, nil
	}

	startTime, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid start_time: %w", op, response.ErrValidation)
	}
	endTime, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid end_time: %w", op, response.ErrValidation)
	}
	if !endTime.After(startTime) {
		return nil, fmt.Errorf("%s: end_time must be after start_time: %w", op, response.ErrValidation)
	}

	interval := s.defaults.SlotIntervalMinutes
	if req.IntervalMinutes != nil {
		interval = *req.IntervalMinutes
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%s: invalid interval %d: %w", op, interval, response.ErrValidation)
	}
	slotDur := time.Duration(interval) * time.Minute

	// Resolve the holiday calendar up front so the insert batch stays one
	// uninterrupted transaction.
	blockedDays := map[string]bool{}
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		blocked, err := s.calendar.IsBlocked(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("%s: holiday check: %w", op, err)
		}
		blockedDays[d.Format("2006-01-02")] = blocked
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, pid := range req.PsychologistIDs {
		for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
			if blockedDays[d.Format("2006-01-02")] {
				summary.BlockedDays++
				continue
			}

			dayStart := time.Date(d.Year(), d.Month(), d.Day(), startTime.Hour(), startTime.Minute(), 0, 0, time.UTC)
			dayEnd := time.Date(d.Year(), d.Month(), d.Day(), endTime.Hour(), endTime.Minute(), 0, 0, time.UTC)

			for cur := dayStart; cur.Before(dayEnd); cur = cur.Add(slotDur) {
				slot := &models.Slot{
					PsychologistID: pid,
					TimeSlot:       cur,
					Status:         models.SlotAvailable,
				}
				_, created, err := s.store.CreateSlot(ctx, tx, slot)
				if err != nil {
					return nil, fmt.Errorf("%s: create slot: %w", op, err)
				}
				if created {
					summary.Created++
				} else {
					summary.SkippedExisting++
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return summary, nil
}

// resolveWindow turns a day-count or explicit date pair into inclusive UTC
// day bounds. A zero-day count yields zero times, which callers treat as a
// no-op.
func (s *Service) resolveWindow(req *api.PopulateRequest) (time.Time, time.Time, error) {
	maxDays := s.defaults.MaxWindowDays

	if req.Days != nil {
		days := *req.Days
		if days < 0 || days > maxDays {
			return time.Time{}, time.Time{}, fmt.Errorf("days must be between 0 and %d: %w", maxDays, response.ErrValidation)
		}
		if days == 0 {
			return time.Time{}, time.Time{}, nil
		}
		start := truncateToDay(time.Now().UTC())
		return start, start.AddDate(0, 0, days-1), nil
	}

	if req.StartDate == nil || req.EndDate == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("either days or start_date/end_date is required: %w", response.ErrValidation)
	}

	start, err := time.Parse("2006-01-02", *req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date: %w", response.ErrValidation)
	}
	end, err := time.Parse("2006-01-02", *req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date: %w", response.ErrValidation)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date is before start_date: %w", response.ErrValidation)
	}
	if int(end.Sub(start).Hours()/24)+1 > maxDays {
		return time.Time{}, time.Time{}, fmt.Errorf("window exceeds %d days: %w", maxDays, response.ErrValidation)
	}

	return start, end, nil
}

// CreateSlot adds a single availability slot by hand.
func (s *Service) CreateSlot(ctx context.Context, req *api.SlotCreateRequest) (*api.SlotResponse, error) {
	const op = "service.CreateSlot"

	at, err := time.Parse(time.RFC3339, req.TimeSlot)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid time_slot: %w", op, response.ErrValidation)
	}
	at = at.UTC().Truncate(time.Minute)

	if at.Before(truncateToDay(time.Now().UTC())) {
		return nil, fmt.Errorf("%s: cannot create slots for past dates: %w", op, response.ErrValidation)
	}

	status := models.SlotAvailable
	if req.Status != "" {
		parsed, ok := models.ParseSlotStatus(req.Status)
		if !ok || parsed == models.SlotBooked {
			return nil, fmt.Errorf("%s: invalid availability_status %q: %w", op, req.Status, response.ErrValidation)
		}
		status = parsed
	}

	blocked, err := s.calendar.IsBlocked(ctx, truncateToDay(at))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if blocked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrHolidayBlocked)
	}

	slot := &models.Slot{
		PsychologistID: req.PsychologistID,
		TimeSlot:       at,
		Status:         status,
	}

	id, created, err := s.store.CreateSlot(ctx, nil, slot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !created {
		return nil, fmt.Errorf("%s: slot already exists: %w", op, response.ErrConflict)
	}

	return &api.SlotResponse{
		ID:             id,
		PsychologistID: slot.PsychologistID,
		TimeSlot:       slot.TimeSlot,
		Status:         string(slot.Status),
	}, nil
}

func (s *Service) GetAvailability(ctx context.Context, psychologistID string, from, to *time.Time) ([]*api.SlotResponse, error) {
	const op = "service.GetAvailability"

	slots, err := s.store.ListSlots(ctx, psychologistID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		result = append(result, &api.SlotResponse{
			ID:             slot.ID,
			PsychologistID: slot.PsychologistID,
			TimeSlot:       slot.TimeSlot,
			Status:         string(slot.Status),
		})
	}

	return result, nil
}

// UpdateSlotStatus changes one slot's status. Booked is reachable only
// through the booking lifecycle, from either side.
func (s *Service) UpdateSlotStatus(ctx context.Context, slotID string, statusStr string) (*api.SlotResponse, error) {
	const op = "service.UpdateSlotStatus"

	status, ok := models.ParseSlotStatus(statusStr)
	if !ok {
		return nil, fmt.Errorf("%s: invalid availability_status %q: %w", op, statusStr, response.ErrValidation)
	}
	if status == models.SlotBooked {
		return nil, fmt.Errorf("%s: occupancy changes flow through bookings: %w", op, response.ErrValidation)
	}

	slot, err := s.store.GetSlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if slot.Status == models.SlotBooked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotBooked)
	}
	if !slot.Status.CanTransition(status) {
		return nil, fmt.Errorf("%s: %s -> %s: %w", op, slot.Status, status, response.ErrInvalidTransition)
	}

	if err := s.store.TransitionSlot(ctx, nil, slotID, slot.Status, status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.SlotResponse{
		ID:             slot.ID,
		PsychologistID: slot.PsychologistID,
		TimeSlot:       slot.TimeSlot,
		Status:         string(status),
	}, nil
}

// ToggleDay sets every existing slot of one psychologist on one date to the
// target status in a single batch. A Booked slot anywhere on the date fails
// the whole batch.
func (s *Service) ToggleDay(ctx context.Context, req *api.ToggleDayRequest) (int, error) {
	const op = "service.ToggleDay"

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid date: %w", op, response.ErrValidation)
	}

	status, ok := models.ParseSlotStatus(req.Status)
	if !ok {
		return 0, fmt.Errorf("%s: invalid availability_status %q: %w", op, req.Status, response.ErrValidation)
	}
	if status == models.SlotBooked {
		return 0, fmt.Errorf("%s: occupancy changes flow through bookings: %w", op, response.ErrValidation)
	}

	updated, err := s.store.ToggleDay(ctx, req.PsychologistID, day, status)
	if err != nil {
		if errors.Is(err, response.ErrSlotBooked) {
			return 0, fmt.Errorf("%s: %w", op, response.ErrSlotBooked)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
