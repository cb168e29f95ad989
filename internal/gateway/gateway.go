// Package gateway is the durable store for sessions and their append-only message logs.
// Two backends implement Gateway: the gorm one in this package and the client-local
// one in internal/repository/memory.
package gateway

import (
	"context"
	"strings"

	"chart-coach-be/internal/entity"
	"chart-coach-be/internal/pkg/apperror"

	"github.com/google/uuid"
)

type Gateway interface {
	CreateSession(ctx context.Context, title string) (*entity.ChatSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error)
	// ListSessions returns sessions newest first.
	ListSessions(ctx context.Context) ([]*entity.ChatSession, error)
	RenameSession(ctx context.Context, id uuid.UUID, title string) (*entity.ChatSession, error)
	// DeleteSession removes the session and all of its messages.
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// AppendMessage assigns id and timestamp. Timestamps strictly increase per session.
	AppendMessage(ctx context.Context, sessionID uuid.UUID, payload NewMessage) (*entity.ChatMessage, error)
	// ListMessages returns the log oldest first.
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]*entity.ChatMessage, error)
	DeleteMessage(ctx context.Context, id uuid.UUID) error
	DeleteAllMessages(ctx context.Context, sessionID uuid.UUID) error
}

// NewMessage is the caller-supplied part of a message.
type NewMessage struct {
	Role       entity.MessageRole
	Type       entity.MessageType
	Content    string
	ImageUrl   string
	ImageData  string
	Mode       entity.ResponseMode
	ScenarioId string
}

func (p NewMessage) Validate() error {
	if !p.Role.Valid() {
		return apperror.Validation("invalid message role %q", p.Role)
	}
	if !p.Type.Valid() {
		return apperror.Validation("invalid message type %q", p.Type)
	}
	if p.Mode != "" && !p.Mode.Valid() {
		return apperror.Validation("invalid mode %q", p.Mode)
	}
	if p.Type == entity.MessageTypeText && strings.TrimSpace(p.Content) == "" {
		return apperror.Validation("text message content must not be empty")
	}
	return nil
}

// Build materializes the payload into a message owned by sessionID.
func (p NewMessage) Build(sessionID uuid.UUID) *entity.ChatMessage {
	return &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionID,
		Role:          p.Role,
		Type:          p.Type,
		Content:       p.Content,
		ImageUrl:      p.ImageUrl,
		ImageData:     p.ImageData,
		Mode:          p.Mode,
		ScenarioId:    p.ScenarioId,
	}
}

// NormalizeTitle trims and rejects blank titles.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperror.Validation("title must not be empty")
	}
	return title, nil
}
