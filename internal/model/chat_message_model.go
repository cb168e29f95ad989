package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId  uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_session_timestamp,priority:1"`
	Role       string    `gorm:"type:text;not null"`
	Content    string    `gorm:"type:text;not null;default:''"`
	Type       string    `gorm:"type:text;not null"`
	ImageUrl   string    `gorm:"type:text"`
	ImageData  string    `gorm:"type:text"`
	Mode       string    `gorm:"type:text"`
	ScenarioId string    `gorm:"type:text"`
	Timestamp  time.Time `gorm:"not null;index:idx_messages_session_timestamp,priority:2"`
}

func (ChatMessage) TableName() string {
	return "messages"
}
