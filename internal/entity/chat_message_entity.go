package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	MessageRoleUser  MessageRole = "user"
	MessageRoleCoach MessageRole = "coach"
)

func (r MessageRole) Valid() bool {
	return r == MessageRoleUser || r == MessageRoleCoach
}

type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeImage    MessageType = "image"
	MessageTypeAnalysis MessageType = "analysis"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeAnalysis:
		return true
	}
	return false
}

// ResponseMode selects reply verbosity.
type ResponseMode string

const (
	ResponseModeTLDR ResponseMode = "tldr"
	ResponseModeFull ResponseMode = "full"
)

func (m ResponseMode) Valid() bool {
	return m == ResponseModeTLDR || m == ResponseModeFull
}

// ChatMessage is immutable once persisted.
type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          MessageRole
	Type          MessageType
	Content       string
	ImageUrl      string
	ImageData     string
	Mode          ResponseMode // empty when not produced by a mode-aware turn
	ScenarioId    string
	Timestamp     time.Time
}
