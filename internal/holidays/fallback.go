package holidays

import (
	"time"

	"wellness-scheduler/internal/models"
)

// Static regional fallback table (Indian public holidays). Consulted only
// when the administered list is unreachable or has no row for the date.
const fallbackLocation = "IN"

var regionalFallback = map[int]map[string]string{
	2024: {
		"2024-01-14": "Makar Sankranti / Pongal",
		"2024-01-26": "Republic Day",
		"2024-03-08": "Maha Shivaratri",
		"2024-03-25": "Holi",
		"2024-03-29": "Good Friday",
		"2024-04-11": "Eid ul-Fitr",
		"2024-04-17": "Ram Navami",
		"2024-04-21": "Mahavir Jayanti",
		"2024-05-01": "May Day",
		"2024-05-23": "Buddha Purnima",
		"2024-06-17": "Eid ul-Adha",
		"2024-07-17": "Muharram",
		"2024-08-15": "Independence Day",
		"2024-08-26": "Janmashtami",
		"2024-09-16": "Milad un-Nabi",
		"2024-10-02": "Gandhi Jayanti",
		"2024-10-12": "Dussehra",
		"2024-10-31": "Diwali / Deepavali",
		"2024-11-01": "Govardhan Puja",
		"2024-11-15": "Guru Nanak Jayanti",
		"2024-12-25": "Christmas",
	},
	2025: {
		"2025-01-14": "Makar Sankranti / Pongal",
		"2025-01-26": "Republic Day",
		"2025-02-26": "Maha Shivaratri",
		"2025-03-14": "Holi",
		"2025-03-30": "Eid ul-Fitr",
		"2025-03-31": "Ram Navami",
		"2025-04-04": "Mahavir Jayanti",
		"2025-04-10": "Rama Navami",
		"2025-04-13": "Vaisakhi",
		"2025-04-14": "Ambedkar Jayanti",
		"2025-04-18": "Good Friday",
		"2025-05-01": "May Day",
		"2025-05-12": "Buddha Purnima",
		"2025-06-06": "Eid ul-Adha",
		"2025-07-06": "Muharram",
		"2025-08-15": "Independence Day",
		"2025-08-16": "Parsi New Year",
		"2025-08-27": "Janmashtami",
		"2025-09-05": "Milad un-Nabi",
		"2025-10-02": "Gandhi Jayanti / Dussehra",
		"2025-10-20": "Diwali / Deepavali",
		"2025-10-21": "Govardhan Puja",
		"2025-11-05": "Guru Nanak Jayanti",
		"2025-12-25": "Christmas",
	},
	2026: {
		"2026-01-14": "Makar Sankranti / Pongal",
		"2026-01-26": "Republic Day",
		"2026-02-16": "Maha Shivaratri",
		"2026-03-04": "Holi",
		"2026-03-20": "Eid ul-Fitr",
		"2026-03-28": "Ram Navami",
		"2026-04-03": "Good Friday",
		"2026-04-06": "Mahavir Jayanti",
		"2026-04-13": "Vaisakhi",
		"2026-04-14": "Ambedkar Jayanti",
		"2026-05-01": "May Day / Buddha Purnima",
		"2026-05-27": "Eid ul-Adha",
		"2026-06-25": "Muharram",
		"2026-08-15": "Independence Day / Janmashtami",
		"2026-08-25": "Milad un-Nabi",
		"2026-09-21": "Dussehra",
		"2026-10-02": "Gandhi Jayanti",
		"2026-10-09": "Diwali / Deepavali",
		"2026-10-10": "Govardhan Puja",
		"2026-11-24": "Guru Nanak Jayanti",
		"2026-12-25": "Christmas",
	},
}

func fallbackFor(date time.Time) (string, bool) {
	year := regionalFallback[date.Year()]
	if year == nil {
		return "", false
	}
	desc, ok := year[date.Format("2006-01-02")]
	return desc, ok
}

func fallbackYear(year int) []models.Holiday {
	var out []models.Holiday
	for day, desc := range regionalFallback[year] {
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		out = append(out, models.Holiday{
			Date:        d,
			Description: desc,
			IsActive:    true,
			Location:    fallbackLocation,
		})
	}
	return out
}
