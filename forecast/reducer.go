// Package forecast collapses the sub-daily forecast feed into daily entries.
package forecast

import (
	"time"

	"weather-client/models"
)

// MaxDays is the number of daily entries kept.
const MaxDays = 5

// Reduce picks one sample per UTC calendar date, keeping the first sample seen
// for each date and the input order, and stops after MaxDays entries.
func Reduce(samples []models.ForecastSample) []models.ForecastEntry {
	days := make([]models.ForecastEntry, 0, MaxDays)
	seen := make(map[string]struct{}, MaxDays)

	for _, s := range samples {
		key := DateKey(s.Time)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, Entry(s))

		if len(days) == MaxDays {
			break
		}
	}
	return days
}

// DateKey returns the YYYY-MM-DD key of t in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// Entry builds the daily entry represented by a single sample.
func Entry(s models.ForecastSample) models.ForecastEntry {
	u := s.Time.UTC()
	return models.ForecastEntry{
		Date:        time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC),
		High:        s.TempMax,
		Low:         s.TempMin,
		Description: s.Description,
		Icon:        s.Icon,
	}
}
