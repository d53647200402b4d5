package notifier

import (
	"fmt"
	"log"

	"github.com/acara-app/acara-api/internal/models"
	"github.com/bwmarrin/discordgo"
)

type Notifier interface {
	NotifyRegistration(profile models.Profile, event models.Event, cancelled bool) error
	NotifyEventPublished(event models.Event) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) NotifyRegistration(profile models.Profile, event models.Event, cancelled bool) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	status := "registered"
	if cancelled {
		status = "cancelled their registration 😢"
	}

	message := fmt.Sprintf("🎟️ **Registration Update**\n**User:** %s\n**Status:** %s\n**Event:** %s\n**Date:** %s %s-%s\n**Location:** %s",
		profile.Username,
		status,
		event.Title,
		event.EventDate.Format("2006-01-02"),
		event.StartTime,
		event.EndTime,
		event.Location,
	)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}

func (n *DiscordNotifier) NotifyEventPublished(event models.Event) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	message := fmt.Sprintf("📣 **New Event**\n**%s** (%s)\n**Date:** %s %s-%s\n**Location:** %s\n**Capacity:** %d seats",
		event.Title,
		event.NormalizedCategory(),
		event.EventDate.Format("2006-01-02"),
		event.StartTime,
		event.EndTime,
		event.Location,
		event.Capacity,
	)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}
