package models

import "gorm.io/gorm"

// AutoMigrate creates or updates the schema for every model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Workshop{},
		&User{},
		&Client{},
		&Vehicle{},
		&TechnicalRecord{},
		&Quote{},
		&QuoteItem{},
	)
}
