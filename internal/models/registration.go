package models

import (
	"gorm.io/gorm"
)

// Registration claims one seat at one event for one user. The composite
// unique index enforces at most one active registration per (user, event).
type Registration struct {
	gorm.Model
	UserID  uint    `json:"user_id" gorm:"uniqueIndex:idx_user_event"`
	EventID uint    `json:"event_id" gorm:"uniqueIndex:idx_user_event"`
	User    Profile `json:"-" gorm:"foreignKey:UserID"`
	Event   Event   `json:"-" gorm:"foreignKey:EventID"`
}
