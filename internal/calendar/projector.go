// Package calendar projects a user's registrations onto calendar days and
// merges in the national holiday table. It is a pure function of its
// inputs; rendering the grid is the client's job.
package calendar

import (
	"sort"
	"time"

	"github.com/acara-app/acara-api/internal/models"
)

// Day is one calendar-day bucket. Keys are "YYYY-MM-DD".
type Day struct {
	Events  []models.Event `json:"events"`
	Holiday string         `json:"holiday,omitempty"`
	Sunday  bool           `json:"sunday"`
}

// Project buckets the user's registered events by date for the given month
// and merges holiday labels. The map is sparse: only dates inside the month
// carrying at least one registration or a holiday get a bucket. Buckets
// falling on a Sunday are flagged.
func Project(regs []models.Registration, events []models.Event, holidays map[string]string, year int, month time.Month) map[string]Day {
	eventsByID := make(map[uint]models.Event, len(events))
	for _, e := range events {
		eventsByID[e.ID] = e
	}

	days := map[string]Day{}

	for _, reg := range regs {
		e, ok := eventsByID[reg.EventID]
		if !ok {
			// Registration outlived its event; skip it.
			continue
		}
		if e.EventDate.Year() != year || e.EventDate.Month() != month {
			continue
		}
		key := e.DateKey()
		day := days[key]
		day.Events = append(day.Events, e)
		days[key] = day
	}

	for key, label := range holidays {
		d, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		if d.Year() != year || d.Month() != month {
			continue
		}
		day := days[key]
		day.Holiday = label
		days[key] = day
	}

	for key, day := range days {
		d, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		day.Sunday = d.Weekday() == time.Sunday
		sort.Slice(day.Events, func(i, j int) bool {
			if day.Events[i].StartTime != day.Events[j].StartTime {
				return day.Events[i].StartTime < day.Events[j].StartTime
			}
			return day.Events[i].ID < day.Events[j].ID
		})
		days[key] = day
	}

	return days
}
