package models

import (
	"time"

	"gorm.io/gorm"
)

// Uncategorized is the sentinel category for events created without one.
const Uncategorized = "Uncategorized"

type Event struct {
	gorm.Model
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	EventDate   time.Time `json:"event_date"`
	StartTime   string    `json:"start_time"` // wall clock "HH:MM", no timezone shifting
	EndTime     string    `json:"end_time"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Capacity    int       `json:"capacity"`
}

// NormalizedCategory maps an empty category to the Uncategorized sentinel.
func (e *Event) NormalizedCategory() string {
	if e.Category == "" {
		return Uncategorized
	}
	return e.Category
}

// DateKey returns the calendar-day key used by filters and the calendar
// projection.
func (e *Event) DateKey() string {
	return e.EventDate.Format("2006-01-02")
}
