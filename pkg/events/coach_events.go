package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeSessionCreated = "SESSION_CREATED"
	TypeSessionDeleted = "SESSION_DELETED"
	TypeMessageCreated = "MESSAGE_CREATED"
	TypeTurnFailed     = "TURN_FAILED"
)

func SessionCreated(sessionID uuid.UUID, title string) BaseEvent {
	return BaseEvent{
		Type: TypeSessionCreated,
		Data: map[string]interface{}{
			"session_id": sessionID.String(),
			"title":      title,
		},
		OccurredAt: time.Now().UTC(),
	}
}

func SessionDeleted(sessionID uuid.UUID) BaseEvent {
	return BaseEvent{
		Type: TypeSessionDeleted,
		Data: map[string]interface{}{
			"session_id": sessionID.String(),
		},
		OccurredAt: time.Now().UTC(),
	}
}

// MessageCreated carries no content; subscribers fetch the message if they need it.
func MessageCreated(sessionID, messageID uuid.UUID, role, msgType, mode string) BaseEvent {
	return BaseEvent{
		Type: TypeMessageCreated,
		Data: map[string]interface{}{
			"session_id": sessionID.String(),
			"message_id": messageID.String(),
			"role":       role,
			"type":       msgType,
			"mode":       mode,
		},
		OccurredAt: time.Now().UTC(),
	}
}

// TurnFailed is emitted when a user message got no coach reply.
func TurnFailed(sessionID, userMessageID uuid.UUID, kind, reason string) BaseEvent {
	return BaseEvent{
		Type: TypeTurnFailed,
		Data: map[string]interface{}{
			"session_id":      sessionID.String(),
			"user_message_id": userMessageID.String(),
			"kind":            kind,
			"reason":          reason,
		},
		OccurredAt: time.Now().UTC(),
	}
}
