package registry

import (
	"context"
	"fmt"

	"github.com/acara-app/acara-api/internal/models"
)

// Occupancy is derived from the registration rows on every read. It is
// never persisted, so the list, detail and calendar surfaces cannot
// disagree on the count.
type Occupancy struct {
	RegisteredCount  int  `json:"registered_count"`
	IsFull           bool `json:"is_full"`
	IsUserRegistered bool `json:"is_user_registered"`
	// RegistrationID is the caller's own registration, 0 if none. It is
	// what a cancel call needs.
	RegistrationID uint `json:"registration_id,omitempty"`
}

// AnnotatedEvent is an event with its occupancy snapshot for one viewer.
type AnnotatedEvent struct {
	models.Event
	Occupancy Occupancy `json:"occupancy"`
}

// Annotate computes a fresh occupancy snapshot for each event as seen by
// userID. Counts are recomputed from the rows on each call.
func (s *Store) Annotate(ctx context.Context, events []models.Event, userID uint) ([]AnnotatedEvent, error) {
	if len(events) == 0 {
		return []AnnotatedEvent{}, nil
	}

	ids := make([]uint, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}

	type eventCount struct {
		EventID uint
		N       int
	}
	var counts []eventCount
	if err := s.db.WithContext(ctx).Model(&models.Registration{}).
		Select("event_id, count(*) as n").
		Where("event_id IN ?", ids).
		Group("event_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	countByEvent := make(map[uint]int, len(counts))
	for _, c := range counts {
		countByEvent[c.EventID] = c.N
	}

	mine, err := s.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	myRegByEvent := make(map[uint]uint, len(mine))
	for _, reg := range mine {
		myRegByEvent[reg.EventID] = reg.ID
	}

	annotated := make([]AnnotatedEvent, len(events))
	for i, e := range events {
		n := countByEvent[e.ID]
		regID, registered := myRegByEvent[e.ID]
		annotated[i] = AnnotatedEvent{
			Event: e,
			Occupancy: Occupancy{
				RegisteredCount:  n,
				IsFull:           n >= e.Capacity,
				IsUserRegistered: registered,
				RegistrationID:   regID,
			},
		}
	}
	return annotated, nil
}
