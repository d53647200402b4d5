package auth

import (
	"context"
	"testing"
	"time"

	"github.com/acara-app/acara-api/internal/config"
	"github.com/acara-app/acara-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuth(t *testing.T) (*AuthHandler, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.AutoMigrate(&models.Profile{}, &models.APIKey{})

	return NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, db), db
}

func TestAuthorize(t *testing.T) {
	h, db := setupAuth(t)

	user := models.Profile{DiscordID: "123456789", Username: "tester"}
	db.Create(&user)
	token, _ := h.GenerateToken(user.ID)

	t.Run("Authenticated", func(t *testing.T) {
		input := AuthInput{
			Cookie: "auth_token=" + token,
		}
		userID, err := h.Authorize(context.Background(), input)
		if err != nil {
			t.Fatalf("Authorize returned error: %v", err)
		}
		if userID != user.ID {
			t.Errorf("expected user %d, got %d", user.ID, userID)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		_, err := h.Authorize(context.Background(), AuthInput{})
		se, ok := err.(huma.StatusError)
		if !ok || se.GetStatus() != 401 {
			t.Errorf("expected 401, got %v", err)
		}
	})

	t.Run("InvalidToken", func(t *testing.T) {
		input := AuthInput{Cookie: "auth_token=garbage"}
		_, err := h.Authorize(context.Background(), input)
		se, ok := err.(huma.StatusError)
		if !ok || se.GetStatus() != 401 {
			t.Errorf("expected 401, got %v", err)
		}
	})
}

func TestAuthorizeAPIKey(t *testing.T) {
	h, db := setupAuth(t)

	user := models.Profile{DiscordID: "123456789", Username: "tester"}
	db.Create(&user)

	key := models.APIKey{UserID: user.ID, Key: "test-key", Name: "ci"}
	db.Create(&key)

	userID, err := h.Authorize(context.Background(), AuthInput{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if userID != user.ID {
		t.Errorf("expected user %d, got %d", user.ID, userID)
	}

	t.Run("Expired", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		expired := models.APIKey{UserID: user.ID, Key: "expired-key", Name: "old", ExpiresAt: &past}
		db.Create(&expired)

		_, err := h.Authorize(context.Background(), AuthInput{APIKey: "expired-key"})
		se, ok := err.(huma.StatusError)
		if !ok || se.GetStatus() != 401 {
			t.Errorf("expected 401 for expired key, got %v", err)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	h, db := setupAuth(t)

	admin := models.Profile{DiscordID: "admin", Username: "admin", IsAdmin: true}
	member := models.Profile{DiscordID: "member", Username: "member"}
	db.Create(&admin)
	db.Create(&member)

	adminToken, _ := h.GenerateToken(admin.ID)
	memberToken, _ := h.GenerateToken(member.ID)

	if _, err := h.RequireAdmin(context.Background(), AuthInput{Cookie: "auth_token=" + adminToken}); err != nil {
		t.Fatalf("RequireAdmin rejected an admin: %v", err)
	}

	_, err := h.RequireAdmin(context.Background(), AuthInput{Cookie: "auth_token=" + memberToken})
	se, ok := err.(huma.StatusError)
	if !ok || se.GetStatus() != 403 {
		t.Errorf("expected 403 for non-admin, got %v", err)
	}
}
