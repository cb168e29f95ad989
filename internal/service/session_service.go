package service

import (
	"context"
	"strings"
	"time"

	"chart-coach-be/internal/dto"
	"chart-coach-be/internal/entity"
	"chart-coach-be/internal/gateway"
	"chart-coach-be/internal/mapper"
	"chart-coach-be/internal/pkg/logger"
	"chart-coach-be/pkg/events"

	"github.com/google/uuid"
)

const sessionModule = "SessionService"

// DefaultTitle names a session created without a title.
func DefaultTitle(now time.Time) string {
	return "Session " + now.Local().Format("Jan 2, 15:04")
}

// ISessionService is the CRUD surface over sessions and their message logs.
type ISessionService interface {
	CreateSession(ctx context.Context, request *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error)
	ListSessions(ctx context.Context) ([]*dto.SessionResponse, error)
	RenameSession(ctx context.Context, id uuid.UUID, request *dto.RenameSessionRequest) (*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]*dto.MessageResponse, error)
	CreateMessage(ctx context.Context, sessionID uuid.UUID, request *dto.CreateMessageRequest) (*dto.MessageResponse, error)
	DeleteMessage(ctx context.Context, id uuid.UUID) error
	DeleteAllMessages(ctx context.Context, sessionID uuid.UUID) error
}

type sessionService struct {
	gateway   gateway.Gateway
	publisher IPublisherService
	mapper    *mapper.ChatMapper
	logger    logger.ILogger
}

func NewSessionService(gw gateway.Gateway, publisher IPublisherService, log logger.ILogger) ISessionService {
	return &sessionService{
		gateway:   gw,
		publisher: publisher,
		mapper:    mapper.NewChatMapper(),
		logger:    log,
	}
}

func (ss *sessionService) CreateSession(ctx context.Context, request *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	title := strings.TrimSpace(request.Title)
	if title == "" {
		title = DefaultTitle(time.Now())
	}

	session, err := ss.gateway.CreateSession(ctx, title)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, ss.publisher, ss.logger, sessionModule, events.SessionCreated(session.Id, session.Title))
	return ss.mapper.ChatSessionToResponse(session), nil
}

func (ss *sessionService) GetSession(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error) {
	session, err := ss.gateway.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return ss.mapper.ChatSessionToResponse(session), nil
}

func (ss *sessionService) ListSessions(ctx context.Context) ([]*dto.SessionResponse, error) {
	sessions, err := ss.gateway.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	return ss.mapper.ChatSessionsToResponse(sessions), nil
}

func (ss *sessionService) RenameSession(ctx context.Context, id uuid.UUID, request *dto.RenameSessionRequest) (*dto.SessionResponse, error) {
	session, err := ss.gateway.RenameSession(ctx, id, request.Title)
	if err != nil {
		return nil, err
	}
	return ss.mapper.ChatSessionToResponse(session), nil
}

func (ss *sessionService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := ss.gateway.DeleteSession(ctx, id); err != nil {
		return err
	}

	ss.logger.Info(sessionModule, "Session deleted", map[string]interface{}{"session_id": id.String()})
	publishEvent(ctx, ss.publisher, ss.logger, sessionModule, events.SessionDeleted(id))
	return nil
}

func (ss *sessionService) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]*dto.MessageResponse, error) {
	messages, err := ss.gateway.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return ss.mapper.ChatMessagesToResponse(messages), nil
}

func (ss *sessionService) CreateMessage(ctx context.Context, sessionID uuid.UUID, request *dto.CreateMessageRequest) (*dto.MessageResponse, error) {
	msg, err := ss.gateway.AppendMessage(ctx, sessionID, gateway.NewMessage{
		Role:       entity.MessageRole(request.Role),
		Type:       entity.MessageType(request.Type),
		Content:    request.Content,
		ImageUrl:   request.ImageUrl,
		ImageData:  request.ImageData,
		Mode:       entity.ResponseMode(request.Mode),
		ScenarioId: request.ScenarioId,
	})
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, ss.publisher, ss.logger, sessionModule,
		events.MessageCreated(sessionID, msg.Id, string(msg.Role), string(msg.Type), string(msg.Mode)))
	return ss.mapper.ChatMessageToResponse(msg), nil
}

func (ss *sessionService) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	return ss.gateway.DeleteMessage(ctx, id)
}

func (ss *sessionService) DeleteAllMessages(ctx context.Context, sessionID uuid.UUID) error {
	return ss.gateway.DeleteAllMessages(ctx, sessionID)
}
