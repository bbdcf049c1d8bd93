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

func toHolidayResponse(h models.Holiday) *api.HolidayResponse {
	source := "remote"
	if h.ID == "" {
		source = "fallback"
	}
	return &api.HolidayResponse{
		ID:                h.ID,
		Date:              h.Date.Format("2006-01-02"),
		Description:       h.Description,
		RecurringAnnually: h.RecurringAnnually,
		IsActive:          h.IsActive,
		Location:          h.Location,
		Source:            source,
	}
}

func (s *Service) CreateHoliday(ctx context.Context, req *api.HolidayRequest) (*api.HolidayResponse, error) {
	const op = "service.CreateHoliday"

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid date: %w", op, response.ErrValidation)
	}
	if req.Description == "" {
		return nil, fmt.Errorf("%s: description is required: %w", op, response.ErrValidation)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	holiday := &models.Holiday{
		Date:              date,
		Description:       req.Description,
		RecurringAnnually: req.RecurringAnnually,
		IsActive:          isActive,
		Location:          req.Location,
	}

	id, err := s.store.CreateHoliday(ctx, holiday)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	holiday.ID = id
	return toHolidayResponse(*holiday), nil
}

func (s *Service) DeleteHoliday(ctx context.Context, id string) error {
	const op = "service.DeleteHoliday"

	err := s.store.DeleteHoliday(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListHolidays returns the merged (administered + fallback) holiday list for
// a year, defaulting to the current one.
func (s *Service) ListHolidays(ctx context.Context, year *int) ([]*api.HolidayResponse, error) {
	const op = "service.ListHolidays"

	y := time.Now().UTC().Year()
	if year != nil {
		y = *year
	}

	merged, err := s.calendar.Year(ctx, y)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.HolidayResponse, 0, len(merged))
	for _, h := range merged {
		result = append(result, toHolidayResponse(h))
	}

	return result, nil
}
