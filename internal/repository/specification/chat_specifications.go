package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// Chronological orders messages oldest first, ties by id for stability.
type Chronological struct{}

func (Chronological) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("timestamp ASC").Order("id ASC")
}

// NewestFirst orders sessions by creation time descending.
type NewestFirst struct{}

func (NewestFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}
