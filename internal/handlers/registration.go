package handlers

import (
	"context"
	"log"
	"time"

	"github.com/acara-app/acara-api/internal/auth"
	"github.com/acara-app/acara-api/internal/calendar"
	"github.com/acara-app/acara-api/internal/catalog"
	"github.com/acara-app/acara-api/internal/models"
	"github.com/acara-app/acara-api/internal/notifier"
	"github.com/acara-app/acara-api/internal/registry"
	"gorm.io/gorm"
)

type RegistrationHandler struct {
	db          *gorm.DB
	store       *registry.Store
	catalog     *catalog.Catalog
	notifier    notifier.Notifier
	authHandler *auth.AuthHandler
}

func NewRegistrationHandler(db *gorm.DB, store *registry.Store, cat *catalog.Catalog, n notifier.Notifier, authHandler *auth.AuthHandler) *RegistrationHandler {
	return &RegistrationHandler{db: db, store: store, catalog: cat, notifier: n, authHandler: authHandler}
}

type RegisterRequest struct {
	auth.AuthInput
	EventID uint `path:"id" doc:"Event to register for"`
}

type RegisterResponse struct {
	Body struct {
		Message        string `json:"message"`
		RegistrationID uint   `json:"registration_id"`
	}
}

func (h *RegistrationHandler) HandleRegister(ctx context.Context, input *RegisterRequest) (*RegisterResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	reg, err := h.store.Register(ctx, userID, input.EventID)
	if err != nil {
		return nil, domainError(err)
	}

	h.notifyBestEffort(userID, input.EventID, false)

	res := &RegisterResponse{}
	res.Body.Message = "Registered successfully"
	res.Body.RegistrationID = reg.ID
	return res, nil
}

type CancelRequest struct {
	auth.AuthInput
	RegistrationID uint `path:"id" doc:"Registration to cancel"`
}

type CancelResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *RegistrationHandler) HandleCancel(ctx context.Context, input *CancelRequest) (*CancelResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var reg models.Registration
	eventID := uint(0)
	if err := h.db.WithContext(ctx).First(&reg, input.RegistrationID).Error; err == nil {
		eventID = reg.EventID
	}

	if err := h.store.Cancel(ctx, input.RegistrationID, userID); err != nil {
		return nil, domainError(err)
	}

	if eventID != 0 {
		h.notifyBestEffort(userID, eventID, true)
	}

	res := &CancelResponse{}
	res.Body.Message = "Registration cancelled"
	return res, nil
}

type MyRegistrationsRequest struct {
	auth.AuthInput
}

type MyRegistrationEntry struct {
	RegistrationID uint                    `json:"registration_id"`
	RegisteredAt   time.Time               `json:"registered_at"`
	Event          registry.AnnotatedEvent `json:"event"`
}

type MyRegistrationsResponse struct {
	Body []MyRegistrationEntry
}

func (h *RegistrationHandler) HandleMyRegistrations(ctx context.Context, input *MyRegistrationsRequest) (*MyRegistrationsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	regs, err := h.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, domainError(err)
	}

	entries := make([]MyRegistrationEntry, 0, len(regs))
	for _, reg := range regs {
		event, err := h.catalog.Get(ctx, reg.EventID)
		if err != nil {
			// Event deleted from under the registration; skip it.
			continue
		}
		annotated, err := h.store.Annotate(ctx, []models.Event{*event}, userID)
		if err != nil {
			return nil, domainError(err)
		}
		entries = append(entries, MyRegistrationEntry{
			RegistrationID: reg.ID,
			RegisteredAt:   reg.CreatedAt,
			Event:          annotated[0],
		})
	}
	return &MyRegistrationsResponse{Body: entries}, nil
}

type CalendarRequest struct {
	auth.AuthInput
	Year  int `query:"year" doc:"Calendar year, defaults to current" required:"false"`
	Month int `query:"month" doc:"Calendar month 1-12, defaults to current" required:"false" minimum:"1" maximum:"12"`
}

type CalendarResponse struct {
	Body map[string]calendar.Day
}

func (h *RegistrationHandler) HandleCalendar(ctx context.Context, input *CalendarRequest) (*CalendarResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	year := input.Year
	if year == 0 {
		year = now.Year()
	}
	month := time.Month(input.Month)
	if month == 0 {
		month = now.Month()
	}

	regs, err := h.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, domainError(err)
	}
	events, err := h.catalog.List(ctx, catalog.Filter{}, now)
	if err != nil {
		return nil, domainError(err)
	}

	days := calendar.Project(regs, events, calendar.Holidays2025, year, month)
	return &CalendarResponse{Body: days}, nil
}

type ListParticipantsRequest struct {
	auth.AuthInput
	EventID uint `path:"id" doc:"Event ID"`
}

type ListParticipantsResponse struct {
	Body []registry.Participant
}

func (h *RegistrationHandler) HandleListParticipants(ctx context.Context, input *ListParticipantsRequest) (*ListParticipantsResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	participants, err := h.store.Participants(ctx, input.EventID)
	if err != nil {
		return nil, domainError(err)
	}
	return &ListParticipantsResponse{Body: participants}, nil
}

// notifyBestEffort announces the change to the staff channel. Failures are
// logged, never surfaced; the registration already committed.
func (h *RegistrationHandler) notifyBestEffort(userID, eventID uint, cancelled bool) {
	if h.notifier == nil {
		return
	}
	var profile models.Profile
	var event models.Event
	if err := h.db.First(&profile, userID).Error; err != nil {
		return
	}
	if err := h.db.First(&event, eventID).Error; err != nil {
		return
	}
	if err := h.notifier.NotifyRegistration(profile, event, cancelled); err != nil {
		log.Printf("Notifier error: %v", err)
	}
}
