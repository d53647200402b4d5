package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/acara-app/acara-api/internal/auth"
	"github.com/acara-app/acara-api/internal/models"
	"github.com/acara-app/acara-api/internal/notifier"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

// AdminEventsHandler is the write side of the event table. End users never
// reach these operations; the catalog only reads.
type AdminEventsHandler struct {
	db          *gorm.DB
	notifier    notifier.Notifier
	authHandler *auth.AuthHandler
}

func NewAdminEventsHandler(db *gorm.DB, n notifier.Notifier, authHandler *auth.AuthHandler) *AdminEventsHandler {
	return &AdminEventsHandler{db: db, notifier: n, authHandler: authHandler}
}

type EventFields struct {
	Title       string `json:"title" doc:"Event title" required:"true"`
	Category    string `json:"category" doc:"Event category"`
	EventDate   string `json:"event_date" doc:"Calendar date, YYYY-MM-DD" required:"true"`
	StartTime   string `json:"start_time" doc:"Start time, HH:MM" required:"true"`
	EndTime     string `json:"end_time" doc:"End time, HH:MM" required:"true"`
	Location    string `json:"location" doc:"Event location" required:"true"`
	Description string `json:"description" doc:"Event description"`
	Capacity    int    `json:"capacity" doc:"Maximum number of registrations" required:"true"`
}

func (f *EventFields) validate() (time.Time, error) {
	if f.Title == "" || f.Location == "" {
		return time.Time{}, huma.Error400BadRequest("Title and location are required")
	}
	if f.Capacity < 1 {
		return time.Time{}, huma.Error400BadRequest("Capacity must be at least 1")
	}
	date, err := time.Parse("2006-01-02", f.EventDate)
	if err != nil {
		return time.Time{}, huma.Error400BadRequest("Event date must be YYYY-MM-DD")
	}
	for _, t := range []string{f.StartTime, f.EndTime} {
		if _, err := time.Parse("15:04", t); err != nil {
			return time.Time{}, huma.Error400BadRequest("Times must be HH:MM")
		}
	}
	if f.EndTime < f.StartTime {
		return time.Time{}, huma.Error400BadRequest("End time cannot be before start time")
	}
	return date, nil
}

func (f *EventFields) apply(e *models.Event, date time.Time) {
	e.Title = f.Title
	e.Category = f.Category
	e.EventDate = date
	e.StartTime = f.StartTime
	e.EndTime = f.EndTime
	e.Location = f.Location
	e.Description = f.Description
	e.Capacity = f.Capacity
}

type CreateEventRequest struct {
	auth.AuthInput
	Body EventFields
}

type CreateEventResponse struct {
	Body models.Event
}

func (h *AdminEventsHandler) HandleCreateEvent(ctx context.Context, input *CreateEventRequest) (*CreateEventResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	date, err := input.Body.validate()
	if err != nil {
		return nil, err
	}

	var event models.Event
	input.Body.apply(&event, date)
	if err := h.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, huma.Error503ServiceUnavailable("Failed to create event")
	}

	if h.notifier != nil {
		if err := h.notifier.NotifyEventPublished(event); err != nil {
			log.Printf("Notifier error: %v", err)
		}
	}

	return &CreateEventResponse{Body: event}, nil
}

type UpdateEventRequest struct {
	auth.AuthInput
	ID   uint `path:"id" doc:"Event ID"`
	Body EventFields
}

type UpdateEventResponse struct {
	Body models.Event
}

func (h *AdminEventsHandler) HandleUpdateEvent(ctx context.Context, input *UpdateEventRequest) (*UpdateEventResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	date, err := input.Body.validate()
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.WithContext(ctx).First(&event, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Event not found")
		}
		return nil, huma.Error503ServiceUnavailable("Failed to load event")
	}

	// Shrinking capacity below the current registration count would break
	// the occupancy invariant retroactively.
	var count int64
	if err := h.db.WithContext(ctx).Model(&models.Registration{}).
		Where("event_id = ?", event.ID).Count(&count).Error; err != nil {
		return nil, huma.Error503ServiceUnavailable("Failed to count registrations")
	}
	if int64(input.Body.Capacity) < count {
		return nil, huma.Error409Conflict("Capacity cannot drop below current registrations")
	}

	input.Body.apply(&event, date)
	if err := h.db.WithContext(ctx).Save(&event).Error; err != nil {
		return nil, huma.Error503ServiceUnavailable("Failed to update event")
	}
	return &UpdateEventResponse{Body: event}, nil
}

type DeleteEventRequest struct {
	auth.AuthInput
	ID uint `path:"id" doc:"Event ID"`
}

type DeleteEventResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *AdminEventsHandler) HandleDeleteEvent(ctx context.Context, input *DeleteEventRequest) (*DeleteEventResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, input.ID).Error; err != nil {
			return err
		}
		// Registrations go with the event; the history rows stay.
		if err := tx.Unscoped().Where("event_id = ?", event.ID).Delete(&models.Registration{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Event not found")
		}
		return nil, huma.Error503ServiceUnavailable("Failed to delete event")
	}

	res := &DeleteEventResponse{}
	res.Body.Message = "Event deleted"
	return res, nil
}
