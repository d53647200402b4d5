// Package catalog is the read side of the published event set: listing,
// filtering and category lookup. It never writes event rows; the admin
// surface is the only writer.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/acara-app/acara-api/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("event not found")

// Window restricts a listing to a calendar window around "today".
type Window string

const (
	WindowToday     Window = "Today"
	WindowTomorrow  Window = "Tomorrow"
	WindowThisWeek  Window = "ThisWeek"
	WindowThisMonth Window = "ThisMonth"
)

// Filter carries the recognized listing options. The zero value matches
// everything; Category "All" is equivalent to no category restriction.
type Filter struct {
	Category string
	Window   Window
	FreeText string
}

type Catalog struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// List returns the published events matching f, ordered by date and start
// time. All date comparisons are calendar-day comparisons against now.
func (c *Catalog) List(ctx context.Context, f Filter, now time.Time) ([]models.Event, error) {
	var events []models.Event
	if err := c.db.WithContext(ctx).Order("event_date asc, start_time asc, id asc").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	var out []models.Event
	for _, e := range events {
		if f.Category != "" && f.Category != "All" && e.NormalizedCategory() != f.Category {
			continue
		}
		if f.Window != "" && !inWindow(&e, f.Window, now) {
			continue
		}
		if f.FreeText != "" && !matchesFreeText(&e, f.FreeText) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Get returns a single event or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, id uint) (*models.Event, error) {
	var e models.Event
	if err := c.db.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// CategoriesInUse returns "All" followed by the distinct normalized
// categories of the current event set, in first-seen order.
func (c *Catalog) CategoriesInUse(ctx context.Context) ([]string, error) {
	events, err := c.List(ctx, Filter{}, time.Time{})
	if err != nil {
		return nil, err
	}

	categories := []string{"All"}
	seen := map[string]bool{}
	for _, e := range events {
		cat := e.NormalizedCategory()
		if !seen[cat] {
			seen[cat] = true
			categories = append(categories, cat)
		}
	}
	return categories, nil
}

func inWindow(e *models.Event, w Window, now time.Time) bool {
	switch w {
	case WindowToday:
		return e.DateKey() == dateKey(now)
	case WindowTomorrow:
		return e.DateKey() == dateKey(now.AddDate(0, 0, 1))
	case WindowThisWeek:
		// Week runs Sunday through Saturday.
		start := now.AddDate(0, 0, -int(now.Weekday()))
		end := start.AddDate(0, 0, 6)
		key := e.DateKey()
		return key >= dateKey(start) && key <= dateKey(end)
	case WindowThisMonth:
		return e.EventDate.Year() == now.Year() && e.EventDate.Month() == now.Month()
	default:
		return true
	}
}

func matchesFreeText(e *models.Event, q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(e.Title), q) ||
		strings.Contains(strings.ToLower(e.NormalizedCategory()), q) ||
		strings.Contains(strings.ToLower(e.Location), q)
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
