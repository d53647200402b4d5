// Package registry is the single writer of registration state. Capacity is
// enforced inside the store; no other component may create or delete
// registration rows.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/acara-app/acara-api/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced event or registration does not
// exist (including a second cancel of the same registration).
var ErrNotFound = errors.New("not found")

// ErrAlreadyRegistered is returned when the user already holds a
// registration for the event. Callers get a rejection, not a silent no-op,
// so they can tell "new seat" from "nothing happened".
var ErrAlreadyRegistered = errors.New("already registered for this event")

// ErrCapacityExceeded is returned when the event has no seats left. It is
// terminal for the call; retrying without user intent is a bug.
var ErrCapacityExceeded = errors.New("event is at capacity")

// ErrForbidden is returned when a cancel targets a registration owned by a
// different user.
var ErrForbidden = errors.New("registration belongs to another user")

// ErrCancelClosed is returned when cancellation is attempted after the
// event has started and late cancellation is disabled.
var ErrCancelClosed = errors.New("event has started, cancellation closed")

type Store struct {
	db *gorm.DB
	// allowLateCancel permits cancelling after the event's start time.
	allowLateCancel bool
	now             func() time.Time
}

func NewStore(db *gorm.DB, allowLateCancel bool) *Store {
	return &Store{db: db, allowLateCancel: allowLateCancel, now: time.Now}
}

// Register claims a seat for userID at eventID. The duplicate check, the
// capacity check and the insert run in one transaction; with the single
// sqlite writer that makes the whole thing atomic against every competing
// register or cancel, so two racers for the last seat can never both win.
func (s *Store) Register(ctx context.Context, userID, eventID uint) (*models.Registration, error) {
	var reg models.Registration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load event: %w", err)
		}

		var dup int64
		if err := tx.Model(&models.Registration{}).
			Where("user_id = ? AND event_id = ?", userID, eventID).
			Count(&dup).Error; err != nil {
			return fmt.Errorf("check duplicate: %w", err)
		}
		if dup > 0 {
			return ErrAlreadyRegistered
		}

		var count int64
		if err := tx.Model(&models.Registration{}).
			Where("event_id = ?", eventID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("count registrations: %w", err)
		}
		if count >= int64(event.Capacity) {
			return ErrCapacityExceeded
		}

		reg = models.Registration{UserID: userID, EventID: eventID}
		if err := tx.Create(&reg).Error; err != nil {
			return fmt.Errorf("create registration: %w", err)
		}

		history := models.RegistrationHistory{
			RegistrationID: reg.ID,
			UserID:         userID,
			EventID:        eventID,
			Action:         models.HistoryRegistered,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// Cancel removes the registration. A second cancel of the same id fails
// with ErrNotFound, which callers should treat as "already gone".
func (s *Store) Cancel(ctx context.Context, registrationID, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg models.Registration
		if err := tx.First(&reg, registrationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load registration: %w", err)
		}
		if reg.UserID != userID {
			return ErrForbidden
		}

		if !s.allowLateCancel {
			var event models.Event
			if err := tx.First(&event, reg.EventID).Error; err == nil {
				if eventStarted(&event, s.now()) {
					return ErrCancelClosed
				}
			}
		}

		// Hard delete so the (user, event) slot frees up under the
		// unique index and the user can register again later.
		if err := tx.Unscoped().Delete(&reg).Error; err != nil {
			return fmt.Errorf("delete registration: %w", err)
		}

		history := models.RegistrationHistory{
			RegistrationID: reg.ID,
			UserID:         userID,
			EventID:        reg.EventID,
			Action:         models.HistoryCancelled,
		}
		return tx.Create(&history).Error
	})
}

// CountFor returns the number of active registrations for the event.
func (s *Store) CountFor(ctx context.Context, eventID uint) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Registration{}).
		Where("event_id = ?", eventID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return int(count), nil
}

// ListForUser returns the user's active registrations in insertion order.
func (s *Store) ListForUser(ctx context.Context, userID uint) ([]models.Registration, error) {
	var regs []models.Registration
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&regs).Error; err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// IsRegistered reports whether the user holds an active registration for
// the event.
func (s *Store) IsRegistered(ctx context.Context, userID, eventID uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Registration{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return count > 0, nil
}

// Participant pairs a registration with the profile that owns it.
type Participant struct {
	Registration models.Registration `json:"registration"`
	Profile      models.Profile      `json:"profile"`
}

// Participants lists the registrants of an event with display attributes.
// Registrations may outlive the referenced profile (deleted account); a
// missing join is an exclusion, not an error.
func (s *Store) Participants(ctx context.Context, eventID uint) ([]Participant, error) {
	if err := s.db.WithContext(ctx).First(&models.Event{}, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load event: %w", err)
	}

	var regs []models.Registration
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("id asc").
		Find(&regs).Error; err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	participants := make([]Participant, 0, len(regs))
	orphaned := 0
	for _, reg := range regs {
		if reg.User.ID == 0 {
			orphaned++
			continue
		}
		participants = append(participants, Participant{Registration: reg, Profile: reg.User})
	}
	if orphaned > 0 {
		log.Printf("Found %d orphaned registration(s) for event %d (profile deleted)", orphaned, eventID)
	}
	return participants, nil
}

func eventStarted(e *models.Event, now time.Time) bool {
	todayKey := now.Format("2006-01-02")
	eventKey := e.DateKey()
	if eventKey != todayKey {
		return eventKey < todayKey
	}
	return e.StartTime <= now.Format("15:04")
}
