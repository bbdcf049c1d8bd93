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

// limitsFor returns the configured limits for a psychologist, falling back
// to the service-wide defaults when none were administered.
func (s *Service) limitsFor(ctx context.Context, psychologistID string) (*models.BookingLimit, error) {
	limit, err := s.store.GetBookingLimit(ctx, psychologistID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return &models.BookingLimit{
				PsychologistID: psychologistID,
				WeeklyLimit:    s.defaults.DefaultWeeklyLimit,
				MonthlyLimit:   s.defaults.DefaultMonthlyLimit,
			}, nil
		}
		return nil, err
	}
	return limit, nil
}

// CheckQuota verifies that one more booking in the week and month containing
// `at` stays within the psychologist's limits. Windows are anchored to the
// session date, not to the moment of the request.
func (s *Service) CheckQuota(ctx context.Context, psychologistID string, at time.Time) error {
	const op = "service.CheckQuota"

	limit, err := s.limitsFor(ctx, psychologistID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	weekFrom, weekTo := weekBounds(at)
	weekly, err := s.store.CountBookedSlots(ctx, psychologistID, weekFrom, weekTo)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if weekly >= limit.WeeklyLimit {
		return fmt.Errorf("%s: %w", op, &response.QuotaExceededError{
			PsychologistID: psychologistID,
			Window:         "weekly",
			Booked:         weekly,
			Limit:          limit.WeeklyLimit,
		})
	}

	monthFrom, monthTo := monthBounds(at)
	monthly, err := s.store.CountBookedSlots(ctx, psychologistID, monthFrom, monthTo)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if monthly >= limit.MonthlyLimit {
		return fmt.Errorf("%s: %w", op, &response.QuotaExceededError{
			PsychologistID: psychologistID,
			Window:         "monthly",
			Booked:         monthly,
			Limit:          limit.MonthlyLimit,
		})
	}

	return nil
}

// GetLimits returns the configured limits together with the usage in the
// windows containing now.
func (s *Service) GetLimits(ctx context.Context, psychologistID string) (*api.BookingLimitsResponse, error) {
	const op = "service.GetLimits"

	limit, err := s.limitsFor(ctx, psychologistID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	weekFrom, weekTo := weekBounds(now)
	weekly, err := s.store.CountBookedSlots(ctx, psychologistID, weekFrom, weekTo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	monthFrom, monthTo := monthBounds(now)
	monthly, err := s.store.CountBookedSlots(ctx, psychologistID, monthFrom, monthTo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.BookingLimitsResponse{
		PsychologistID: psychologistID,
		Limits: api.BookingLimits{
			WeeklyLimit:  limit.WeeklyLimit,
			MonthlyLimit: limit.MonthlyLimit,
		},
		CurrentUsage: api.BookingUsage{
			WeeklyBookings:   weekly,
			MonthlyBookings:  monthly,
			WeeklyRemaining:  max(limit.WeeklyLimit-weekly, 0),
			MonthlyRemaining: max(limit.MonthlyLimit-monthly, 0),
		},
	}, nil
}

// UpdateLimits replaces a psychologist's booking limits. A limit may not be
// lowered below the count of slots already booked in the current window.
func (s *Service) UpdateLimits(ctx context.Context, psychologistID string, req *api.BookingLimitsRequest) (*api.BookingLimitsResponse, error) {
	const op = "service.UpdateLimits"

	if req.WeeklyLimit < 1 || req.MonthlyLimit < 1 {
		return nil, fmt.Errorf("%s: limits must be positive: %w", op, response.ErrValidation)
	}
	if req.WeeklyLimit > req.MonthlyLimit {
		return nil, fmt.Errorf("%s: weekly limit exceeds monthly limit: %w", op, response.ErrValidation)
	}

	now := time.Now().UTC()
	weekFrom, weekTo := weekBounds(now)
	weekly, err := s.store.CountBookedSlots(ctx, psychologistID, weekFrom, weekTo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if req.WeeklyLimit < weekly {
		return nil, fmt.Errorf("%s: %w", op, &response.LimitBelowUsageError{
			PsychologistID: psychologistID,
			Window:         "weekly",
			Booked:         weekly,
			Requested:      req.WeeklyLimit,
		})
	}

	monthFrom, monthTo := monthBounds(now)
	monthly, err := s.store.CountBookedSlots(ctx, psychologistID, monthFrom, monthTo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if req.MonthlyLimit < monthly {
		return nil, fmt.Errorf("%s: %w", op, &response.LimitBelowUsageError{
			PsychologistID: psychologistID,
			Window:         "monthly",
			Booked:         monthly,
			Requested:      req.MonthlyLimit,
		})
	}

	limit := &models.BookingLimit{
		PsychologistID: psychologistID,
		WeeklyLimit:    req.WeeklyLimit,
		MonthlyLimit:   req.MonthlyLimit,
	}
	if err := s.store.UpsertBookingLimit(ctx, limit); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetLimits(ctx, psychologistID)
}

// weekBounds returns the ISO week (Monday 00:00 .. next Monday 00:00, UTC)
// containing t. The upper bound is exclusive.
func weekBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	start := truncateToDay(t).AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// monthBounds returns the calendar month containing t, upper bound exclusive.
func monthBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
