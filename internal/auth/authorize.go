package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/acara-app/acara-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
)

// AuthInput is embedded in request structs of protected operations.
// Callers authenticate with either the auth_token cookie or an API key.
type AuthInput struct {
	Cookie string `header:"Cookie" doc:"Session cookie" required:"false"`
	APIKey string `header:"X-API-KEY" doc:"API key for service access" required:"false"`
}

// Authorize resolves the calling user from an AuthInput. API keys win over
// cookies so service calls keep working with stale cookies attached.
func (h *AuthHandler) Authorize(ctx context.Context, input AuthInput) (uint, error) {
	if input.APIKey != "" {
		var keyModel models.APIKey
		if err := h.db.WithContext(ctx).Where("key = ?", input.APIKey).First(&keyModel).Error; err == nil {
			if keyModel.ExpiresAt != nil && time.Now().After(*keyModel.ExpiresAt) {
				return 0, huma.Error401Unauthorized("API key expired")
			}
			h.db.WithContext(ctx).Model(&keyModel).Update("last_used_at", time.Now())
			return keyModel.UserID, nil
		}
	}

	if input.Cookie == "" {
		return 0, huma.Error401Unauthorized("No token found")
	}

	req := http.Request{Header: http.Header{"Cookie": []string{input.Cookie}}}
	cookie, err := req.Cookie("auth_token")
	if err != nil {
		return 0, huma.Error401Unauthorized("No token found")
	}

	userID, err := h.parseToken(cookie.Value)
	if err != nil {
		return 0, huma.Error401Unauthorized("Invalid token")
	}
	return userID, nil
}

// RequireAdmin authorizes the caller and checks the admin flag.
func (h *AuthHandler) RequireAdmin(ctx context.Context, input AuthInput) (uint, error) {
	userID, err := h.Authorize(ctx, input)
	if err != nil {
		return 0, err
	}

	var profile models.Profile
	if err := h.db.WithContext(ctx).First(&profile, userID).Error; err != nil {
		return 0, huma.Error401Unauthorized("Unknown user")
	}
	if !profile.IsAdmin {
		return 0, huma.Error403Forbidden("Admin access required")
	}
	return userID, nil
}

type MeInput struct {
	AuthInput
}

type MeOutput struct {
	Body models.Profile
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *MeInput) (*MeOutput, error) {
	userID, err := h.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := h.db.WithContext(ctx).First(&profile, userID).Error; err != nil {
		return nil, huma.Error404NotFound("Profile not found")
	}
	return &MeOutput{Body: profile}, nil
}
