package models

import (
	"gorm.io/gorm"
)

const (
	HistoryRegistered = "registered"
	HistoryCancelled  = "cancelled"
)

// RegistrationHistory is an append-only audit trail of register and cancel
// actions. Rows survive the registration they describe.
type RegistrationHistory struct {
	gorm.Model
	RegistrationID uint   `json:"registration_id"`
	UserID         uint   `json:"user_id"`
	EventID        uint   `json:"event_id"`
	Action         string `json:"action"`
}
