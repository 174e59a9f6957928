package database

import (
	"fmt"

	"gorm.io/gorm"

	"plantation-manager/backend/internal/models"
)

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.District{},
		&models.SoilType{},
		&models.Variety{},
		&models.AgronomyTemplate{},
		&models.Farm{},
		&models.Task{},
		&models.HarvestSeason{},
	); err != nil {
		return fmt.Errorf("database.Migrate: %w", err)
	}
	return nil
}
