package model

import "gorm.io/gorm"

// AutoMigrate creates or updates the sessions and messages tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&ChatSession{}, &ChatMessage{})
}
