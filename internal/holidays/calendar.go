package holidays

import (
	"context"
	"sort"
	"time"

	"wellness-scheduler/internal/models"
)

// Store is the administered holiday list. Rows returned for a date include
// inactive ones, so an inactive row can override a fallback entry.
type Store interface {
	ListHolidaysByDate(ctx context.Context, date time.Time) ([]*models.Holiday, error)
	ListHolidays(ctx context.Context) ([]*models.Holiday, error)
}

// Calendar resolves whether a date is blocked for scheduling. The remote
// (store-backed) list wins on any date it has a row for; the static regional
// table answers when the store is unreachable or silent for the date.
type Calendar struct {
	store Store
}

func New(store Store) *Calendar {
	return &Calendar{store: store}
}

func (c *Calendar) IsBlocked(ctx context.Context, date time.Time) (bool, error) {
	rows, err := c.store.ListHolidaysByDate(ctx, date)
	if err != nil {
		// Store unreachable: the static table is the authority of last resort.
		_, blocked := fallbackFor(date)
		return blocked, nil
	}

	if len(rows) > 0 {
		for _, h := range rows {
			if h.AppliesTo(date) {
				return true, nil
			}
		}
		return false, nil
	}

	_, blocked := fallbackFor(date)
	return blocked, nil
}

// Describe returns the holiday description for a date, if any.
func (c *Calendar) Describe(ctx context.Context, date time.Time) (string, bool) {
	rows, err := c.store.ListHolidaysByDate(ctx, date)
	if err == nil && len(rows) > 0 {
		for _, h := range rows {
			if h.AppliesTo(date) {
				return h.Description, true
			}
		}
		return "", false
	}

	return fallbackFor(date)
}

// Year lists every holiday applying to the given year, administered rows
// first, fallback entries filling dates the store has no row for.
func (c *Calendar) Year(ctx context.Context, year int) ([]models.Holiday, error) {
	var result []models.Holiday
	covered := map[string]bool{}

	rows, err := c.store.ListHolidays(ctx)
	if err != nil {
		rows = nil
	}

	for _, h := range rows {
		if h.Date.Year() != year && !h.RecurringAnnually {
			continue
		}
		day := time.Date(year, h.Date.Month(), h.Date.Day(), 0, 0, 0, 0, time.UTC)
		covered[day.Format("2006-01-02")] = true
		if h.IsActive {
			result = append(result, *h)
		}
	}

	for _, fb := range fallbackYear(year) {
		if covered[fb.Date.Format("2006-01-02")] {
			continue
		}
		result = append(result, fb)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}
