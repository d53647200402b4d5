package models

import (
	"gorm.io/gorm"
)

// Profile mirrors the read-mostly account table. Display attributes are
// resolved from here when listing participants; the auth flow is the only
// writer.
type Profile struct {
	gorm.Model
	DiscordID   string `json:"-" gorm:"uniqueIndex"`
	Name        string `json:"name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Avatar      string `json:"avatar"`
	IsAdmin     bool   `json:"is_admin"`
}
