package handlers

import (
	"net/http"

	"github.com/acara-app/acara-api/internal/auth"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func RegisterRoutes(
	r *chi.Mux,
	authHandler *auth.AuthHandler,
	eventsHandler *EventsHandler,
	adminEventsHandler *AdminEventsHandler,
	registrationHandler *RegistrationHandler,
	apiKeyHandler *APIKeyHandler,
) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("Acara API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Auth routes
	r.Get("/auth/discord/login", authHandler.HandleLogin)
	r.Get("/auth/discord/callback", authHandler.HandleCallback)

	secured := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}, {"apiKeyAuth": {}}}
	}

	huma.Get(api, "/me", authHandler.HandleMe, secured)
	huma.Get(api, "/me/registrations", registrationHandler.HandleMyRegistrations, secured)
	huma.Get(api, "/me/calendar", registrationHandler.HandleCalendar, secured)

	huma.Get(api, "/events", eventsHandler.HandleListEvents, secured)
	huma.Get(api, "/events/categories", eventsHandler.HandleListCategories, secured)
	huma.Get(api, "/events/{id}", eventsHandler.HandleGetEvent, secured)
	huma.Post(api, "/events/{id}/register", registrationHandler.HandleRegister, secured)
	huma.Get(api, "/events/{id}/participants", registrationHandler.HandleListParticipants, secured)
	huma.Delete(api, "/registrations/{id}", registrationHandler.HandleCancel, secured)

	huma.Post(api, "/admin/events", adminEventsHandler.HandleCreateEvent, secured)
	huma.Put(api, "/admin/events/{id}", adminEventsHandler.HandleUpdateEvent, secured)
	huma.Delete(api, "/admin/events/{id}", adminEventsHandler.HandleDeleteEvent, secured)

	huma.Post(api, "/api-keys", apiKeyHandler.HandleCreate, secured)
	huma.Get(api, "/api-keys", apiKeyHandler.HandleList, secured)
	huma.Delete(api, "/api-keys/{id}", apiKeyHandler.HandleDelete, secured)
}
