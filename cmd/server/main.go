package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/acara-app/acara-api/internal/auth"
	"github.com/acara-app/acara-api/internal/catalog"
	"github.com/acara-app/acara-api/internal/config"
	"github.com/acara-app/acara-api/internal/database"
	"github.com/acara-app/acara-api/internal/handlers"
	"github.com/acara-app/acara-api/internal/notifier"
	"github.com/acara-app/acara-api/internal/registry"
	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)

	// Initialize Notifier (optional)
	var discordNotifier notifier.Notifier
	if cfg.DiscordBotToken != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.Printf("Discord notifier not initialized: %v", err)
		} else {
			discordNotifier = notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID)
		}
	}

	// Initialize Components
	authHandler := auth.NewAuthHandler(cfg, db)
	eventCatalog := catalog.New(db)
	store := registry.NewStore(db, cfg.AllowLateCancel)

	// Initialize Handlers
	eventsHandler := handlers.NewEventsHandler(eventCatalog, store, authHandler)
	adminEventsHandler := handlers.NewAdminEventsHandler(db, discordNotifier, authHandler)
	registrationHandler := handlers.NewRegistrationHandler(db, store, eventCatalog, discordNotifier, authHandler)
	apiKeyHandler := handlers.NewAPIKeyHandler(db, authHandler)

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, authHandler, eventsHandler, adminEventsHandler, registrationHandler, apiKeyHandler)

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
