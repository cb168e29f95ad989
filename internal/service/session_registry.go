package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"chart-coach-be/internal/entity"
	"chart-coach-be/internal/gateway"
	"chart-coach-be/internal/pkg/apperror"
	"chart-coach-be/internal/pkg/logger"
	"chart-coach-be/pkg/events"

	"github.com/google/uuid"
)

const registryModule = "SessionRegistry"

// SessionRegistry tracks the client's active session. The selection lives in
// this process only; the session set itself comes from the gateway.
type SessionRegistry struct {
	gateway   gateway.Gateway
	publisher IPublisherService
	logger    logger.ILogger
	now       func() time.Time

	mu     sync.Mutex
	active uuid.UUID
}

func NewSessionRegistry(gw gateway.Gateway, publisher IPublisherService, log logger.ILogger) *SessionRegistry {
	return &SessionRegistry{
		gateway:   gw,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

func (r *SessionRegistry) ListSessions(ctx context.Context) ([]*entity.ChatSession, error) {
	return r.gateway.ListSessions(ctx)
}

// CreateSession creates and selects a session. A blank title defaults to the current time.
func (r *SessionRegistry) CreateSession(ctx context.Context, title string) (*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(ctx, title)
}

// SelectSession activates id. An unknown id falls back to the newest session,
// and an empty store gets a fresh one.
func (r *SessionRegistry) SelectSession(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.gateway.GetSession(ctx, id)
	if err == nil {
		r.active = session.Id
		return session, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	r.logger.Warn(registryModule, "Selected session not found, falling back", map[string]interface{}{
		"session_id": id.String(),
	})
	return r.fallbackLocked(ctx)
}

// Active returns the active session, bootstrapping a selection when there is none
// or the previous one disappeared.
func (r *SessionRegistry) Active(ctx context.Context) (*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != uuid.Nil {
		session, err := r.gateway.GetSession(ctx, r.active)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
	}
	return r.fallbackLocked(ctx)
}

// ActiveID is the current selection without touching the store; uuid.Nil when unset.
func (r *SessionRegistry) ActiveID() uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *SessionRegistry) RenameSession(ctx context.Context, id uuid.UUID, title string) (*entity.ChatSession, error) {
	return r.gateway.RenameSession(ctx, id, title)
}

// DeleteSession deletes id and returns the session that is active afterwards.
func (r *SessionRegistry) DeleteSession(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.gateway.DeleteSession(ctx, id); err != nil {
		return nil, err
	}
	publishEvent(ctx, r.publisher, r.logger, registryModule, events.SessionDeleted(id))

	if r.active == id || r.active == uuid.Nil {
		return r.fallbackLocked(ctx)
	}

	session, err := r.gateway.GetSession(ctx, r.active)
	if errors.Is(err, apperror.ErrNotFound) {
		return r.fallbackLocked(ctx)
	}
	return session, err
}

func (r *SessionRegistry) fallbackLocked(ctx context.Context) (*entity.ChatSession, error) {
	sessions, err := r.gateway.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return r.createLocked(ctx, "")
	}

	r.active = sessions[0].Id
	return sessions[0], nil
}

func (r *SessionRegistry) createLocked(ctx context.Context, title string) (*entity.ChatSession, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle(r.now())
	}

	session, err := r.gateway.CreateSession(ctx, title)
	if err != nil {
		return nil, err
	}

	r.active = session.Id
	publishEvent(ctx, r.publisher, r.logger, registryModule, events.SessionCreated(session.Id, session.Title))
	return session, nil
}
