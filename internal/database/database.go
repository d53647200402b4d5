package database

import (
	"log"

	"github.com/acara-app/acara-api/internal/config"
	"github.com/acara-app/acara-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// sqlite allows a single writer. Capping the pool at one connection
	// makes every Transaction body a serialized check-then-insert unit,
	// which is what keeps concurrent registrations from overbooking.
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// Auto Migrate
	err = db.AutoMigrate(
		&models.Profile{},
		&models.Event{},
		&models.Registration{},
		&models.RegistrationHistory{},
		&models.APIKey{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	return db
}
