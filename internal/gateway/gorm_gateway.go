package gateway

import (
	"context"
	"sort"
	"sync"
	"time"

	"chart-coach-be/internal/entity"
	"chart-coach-be/internal/pkg/apperror"
	"chart-coach-be/internal/pkg/logger"
	"chart-coach-be/internal/repository/specification"
	"chart-coach-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const gatewayModule = "Gateway"

type gormGateway struct {
	uowFactory unitofwork.RepositoryFactory
	locks      *KeyedMutex
	logger     logger.ILogger

	// sessions created by this process get strictly increasing CreatedAt
	clockMu     sync.Mutex
	lastSession time.Time
}

var _ Gateway = (*gormGateway)(nil)

// NewGormGateway is the centralized backend (postgres in production, sqlite locally).
func NewGormGateway(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) Gateway {
	return &gormGateway{
		uowFactory: uowFactory,
		locks:      NewKeyedMutex(),
		logger:     log,
	}
}

func (g *gormGateway) CreateSession(ctx context.Context, title string) (*entity.ChatSession, error) {
	title, err := NormalizeTitle(title)
	if err != nil {
		return nil, err
	}

	session := &entity.ChatSession{
		Id:        uuid.New(),
		Title:     title,
		CreatedAt: g.nextSessionTime(),
	}

	uow := g.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, apperror.Storage("create session", err)
	}
	return session, nil
}

func (g *gormGateway) nextSessionTime() time.Time {
	g.clockMu.Lock()
	defer g.clockMu.Unlock()
	g.lastSession = NextTimestamp(time.Now(), g.lastSession)
	return g.lastSession
}

func (g *gormGateway) GetSession(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Storage("get session", err)
	}
	if session == nil {
		return nil, apperror.NotFound("session", id)
	}
	return session, nil
}

func (g *gormGateway) ListSessions(ctx context.Context) ([]*entity.ChatSession, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatSessionRepository()

	sessions, err := repo.FindAll(ctx, specification.NewestFirst{})
	if err != nil {
		// Bootstrap special case: an unprovisioned store lists as empty.
		if !repo.Provisioned(ctx) {
			g.logger.Warn(gatewayModule, "sessions table missing, listing as empty", map[string]interface{}{
				"error": err.Error(),
			})
			return []*entity.ChatSession{}, nil
		}
		return nil, apperror.Storage("list sessions", err)
	}

	// sqlite keeps timestamps as text; keep the contract independent of the driver.
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (g *gormGateway) RenameSession(ctx context.Context, id uuid.UUID, title string) (*entity.ChatSession, error) {
	title, err := NormalizeTitle(title)
	if err != nil {
		return nil, err
	}

	unlock := g.locks.Lock(id)
	defer unlock()

	uow := g.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Storage("rename session", err)
	}
	if session == nil {
		return nil, apperror.NotFound("session", id)
	}

	session.Title = title
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, apperror.Storage("rename session", err)
	}
	return session, nil
}

func (g *gormGateway) DeleteSession(ctx context.Context, id uuid.UUID) error {
	unlock := g.locks.Lock(id)
	defer unlock()

	uow := g.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return apperror.Storage("delete session", err)
	}
	defer uow.Rollback()

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return apperror.Storage("delete session", err)
	}
	if session == nil {
		return apperror.NotFound("session", id)
	}

	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, id); err != nil {
		return apperror.Storage("delete session messages", err)
	}
	if err := uow.ChatSessionRepository().Delete(ctx, id); err != nil {
		return apperror.Storage("delete session", err)
	}
	if err := uow.Commit(); err != nil {
		return apperror.Storage("delete session", err)
	}
	return nil
}

func (g *gormGateway) AppendMessage(ctx context.Context, sessionID uuid.UUID, payload NewMessage) (*entity.ChatMessage, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	unlock := g.locks.Lock(sessionID)
	defer unlock()

	uow := g.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Storage("append message", err)
	}
	defer uow.Rollback()

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, apperror.Storage("append message", err)
	}
	if session == nil {
		return nil, apperror.NotFound("session", sessionID)
	}

	last, err := uow.ChatMessageRepository().FindOne(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.OrderBy{Field: "timestamp", Desc: true},
		specification.Pagination{Limit: 1},
	)
	if err != nil {
		return nil, apperror.Storage("append message", err)
	}

	msg := payload.Build(sessionID)
	if last != nil {
		msg.Timestamp = NextTimestamp(Now(), last.Timestamp)
	} else {
		msg.Timestamp = NextTimestamp(Now(), session.CreatedAt)
	}

	if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
		return nil, apperror.Storage("append message", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.Storage("append message", err)
	}
	return msg, nil
}

func (g *gormGateway) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]*entity.ChatMessage, error) {
	if _, err := g.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	uow := g.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.Chronological{},
	)
	if err != nil {
		return nil, apperror.Storage("list messages", err)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

func (g *gormGateway) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	msg, err := uow.ChatMessageRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return apperror.Storage("delete message", err)
	}
	if msg == nil {
		return apperror.NotFound("message", id)
	}

	unlock := g.locks.Lock(msg.ChatSessionId)
	defer unlock()

	if err := uow.ChatMessageRepository().Delete(ctx, id); err != nil {
		return apperror.Storage("delete message", err)
	}
	return nil
}

func (g *gormGateway) DeleteAllMessages(ctx context.Context, sessionID uuid.UUID) error {
	unlock := g.locks.Lock(sessionID)
	defer unlock()

	if _, err := g.GetSession(ctx, sessionID); err != nil {
		return err
	}

	uow := g.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionID); err != nil {
		return apperror.Storage("delete all messages", err)
	}
	return nil
}
