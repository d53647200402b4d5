package handlers

import (
	"context"
	"time"

	"github.com/acara-app/acara-api/internal/auth"
	"github.com/acara-app/acara-api/internal/catalog"
	"github.com/acara-app/acara-api/internal/models"
	"github.com/acara-app/acara-api/internal/registry"
)

type EventsHandler struct {
	catalog     *catalog.Catalog
	store       *registry.Store
	authHandler *auth.AuthHandler
}

func NewEventsHandler(cat *catalog.Catalog, store *registry.Store, authHandler *auth.AuthHandler) *EventsHandler {
	return &EventsHandler{catalog: cat, store: store, authHandler: authHandler}
}

type ListEventsRequest struct {
	auth.AuthInput
	Category string `query:"category" doc:"Category filter, or All" required:"false"`
	Window   string `query:"window" doc:"Time window" enum:"Today,Tomorrow,ThisWeek,ThisMonth" required:"false"`
	Q        string `query:"q" doc:"Free-text search over title, category and location" required:"false"`
	Status   string `query:"status" doc:"Registration status filter" enum:"registered,unregistered" required:"false"`
}

type ListEventsResponse struct {
	Body []registry.AnnotatedEvent
}

func (h *EventsHandler) HandleListEvents(ctx context.Context, input *ListEventsRequest) (*ListEventsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	filter := catalog.Filter{
		Category: input.Category,
		Window:   catalog.Window(input.Window),
		FreeText: input.Q,
	}
	events, err := h.catalog.List(ctx, filter, time.Now())
	if err != nil {
		return nil, domainError(err)
	}

	annotated, err := h.store.Annotate(ctx, events, userID)
	if err != nil {
		return nil, domainError(err)
	}

	// The registration-status filter needs the viewer, so it applies on
	// the annotated projection, not in the catalog.
	if input.Status != "" {
		filtered := make([]registry.AnnotatedEvent, 0, len(annotated))
		for _, ae := range annotated {
			if ae.Occupancy.IsUserRegistered == (input.Status == "registered") {
				filtered = append(filtered, ae)
			}
		}
		annotated = filtered
	}

	return &ListEventsResponse{Body: annotated}, nil
}

type GetEventRequest struct {
	auth.AuthInput
	ID uint `path:"id" doc:"Event ID"`
}

type GetEventResponse struct {
	Body registry.AnnotatedEvent
}

func (h *EventsHandler) HandleGetEvent(ctx context.Context, input *GetEventRequest) (*GetEventResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	event, err := h.catalog.Get(ctx, input.ID)
	if err != nil {
		return nil, domainError(err)
	}

	annotated, err := h.store.Annotate(ctx, []models.Event{*event}, userID)
	if err != nil {
		return nil, domainError(err)
	}
	return &GetEventResponse{Body: annotated[0]}, nil
}

type ListCategoriesRequest struct {
	auth.AuthInput
}

type ListCategoriesResponse struct {
	Body []string
}

func (h *EventsHandler) HandleListCategories(ctx context.Context, input *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	categories, err := h.catalog.CategoriesInUse(ctx)
	if err != nil {
		return nil, domainError(err)
	}
	return &ListCategoriesResponse{Body: categories}, nil
}
