package holidays_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness-scheduler/internal/holidays"
	"wellness-scheduler/internal/models"
	"wellness-scheduler/internal/storage/memory"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalendar_FallbackBlocksKnownDates(t *testing.T) {
	cal := holidays.New(memory.New())
	ctx := context.Background()

	blocked, err := cal.IsBlocked(ctx, date(2026, time.January, 26))
	require.NoError(t, err)
	assert.True(t, blocked, "Republic Day comes from the static table")

	desc, ok := cal.Describe(ctx, date(2026, time.January, 26))
	require.True(t, ok)
	assert.Equal(t, "Republic Day", desc)

	blocked, err = cal.IsBlocked(ctx, date(2026, time.January, 27))
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestCalendar_FallbackSilentOutsideCoveredYears(t *testing.T) {
	cal := holidays.New(memory.New())

	blocked, err := cal.IsBlocked(context.Background(), date(2030, time.January, 26))
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestCalendar_StoreRowBlocks(t *testing.T) {
	store := memory.New()
	cal := holidays.New(store)
	ctx := context.Background()

	_, err := store.CreateHoliday(ctx, &models.Holiday{
		Date:        date(2030, time.June, 4),
		Description: "Clinic closure",
		IsActive:    true,
	})
	require.NoError(t, err)

	blocked, err := cal.IsBlocked(ctx, date(2030, time.June, 4))
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestCalendar_InactiveRowOverridesFallback(t *testing.T) {
	// A deliberately inactive administered row wins over the static table
	// and reopens the date.

	store := memory.New()
	cal := holidays.New(store)
	ctx := context.Background()

	_, err := store.CreateHoliday(ctx, &models.Holiday{
		Date:        date(2026, time.January, 26),
		Description: "Open despite Republic Day",
		IsActive:    false,
	})
	require.NoError(t, err)

	blocked, err := cal.IsBlocked(ctx, date(2026, time.January, 26))
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestCalendar_RecurringRowBlocksEveryYear(t *testing.T) {
	store := memory.New()
	cal := holidays.New(store)
	ctx := context.Background()

	_, err := store.CreateHoliday(ctx, &models.Holiday{
		Date:              date(2027, time.June, 4),
		Description:       "Annual retreat",
		RecurringAnnually: true,
		IsActive:          true,
	})
	require.NoError(t, err)

	for _, year := range []int{2027, 2028, 2031} {
		blocked, err := cal.IsBlocked(ctx, date(year, time.June, 4))
		require.NoError(t, err)
		assert.True(t, blocked, "year %d", year)
	}
}

func TestCalendar_YearMergesSources(t *testing.T) {
	store := memory.New()
	cal := holidays.New(store)
	ctx := context.Background()

	// Administered row on a date the static table also covers.
	_, err := store.CreateHoliday(ctx, &models.Holiday{
		Date:        date(2026, time.December, 25),
		Description: "Winter closure",
		IsActive:    true,
	})
	require.NoError(t, err)

	merged, err := cal.Year(ctx, 2026)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, h := range merged {
		seen[h.Date.Format("2006-01-02")]++
	}
	assert.Equal(t, 1, seen["2026-12-25"], "administered row shadows the fallback entry")

	var winter *models.Holiday
	for i := range merged {
		if merged[i].Date.Equal(date(2026, time.December, 25)) {
			winter = &merged[i]
		}
	}
	require.NotNil(t, winter)
	assert.Equal(t, "Winter closure", winter.Description)

	// Sorted ascending.
	for i := 1; i < len(merged); i++ {
		assert.False(t, merged[i].Date.Before(merged[i-1].Date))
	}
}
