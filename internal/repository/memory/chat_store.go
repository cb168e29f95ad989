package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"chart-coach-be/internal/entity"
	"chart-coach-be/internal/gateway"
	"chart-coach-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	sessionKeyPrefix = "session:"
	messageKeyPrefix = "messages:"
	ownerKeyPrefix   = "owner:"
)

// ChatStore is the client-local gateway backend. Nothing survives the process.
type ChatStore struct {
	cache *cache.Cache
	// mu makes multi-key operations atomic; go-cache only guards single keys.
	mu          sync.RWMutex
	lastSession time.Time
}

var _ gateway.Gateway = (*ChatStore)(nil)

func NewChatStore() *ChatStore {
	// No expiration and no janitor goroutine: entries live until deleted.
	c := cache.New(cache.NoExpiration, 0)
	return &ChatStore{
		cache: c,
	}
}

func (s *ChatStore) CreateSession(ctx context.Context, title string) (*entity.ChatSession, error) {
	title, err := gateway.NormalizeTitle(title)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSession = gateway.NextTimestamp(time.Now(), s.lastSession)
	session := &entity.ChatSession{
		Id:        uuid.New(),
		Title:     title,
		CreatedAt: s.lastSession,
	}

	s.cache.Set(sessionKeyPrefix+session.Id.String(), session, cache.NoExpiration)
	s.cache.Set(messageKeyPrefix+session.Id.String(), []*entity.ChatMessage{}, cache.NoExpiration)

	return copySession(session), nil
}

func (s *ChatStore) GetSession(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.session(id)
	if !ok {
		return nil, apperror.NotFound("session", id)
	}
	return copySession(session), nil
}

func (s *ChatStore) ListSessions(ctx context.Context) ([]*entity.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*entity.ChatSession, 0)
	for key, item := range s.cache.Items() {
		if len(key) <= len(sessionKeyPrefix) || key[:len(sessionKeyPrefix)] != sessionKeyPrefix {
			continue
		}
		sessions = append(sessions, copySession(item.Object.(*entity.ChatSession)))
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].Id.String() > sessions[j].Id.String()
		}
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (s *ChatStore) RenameSession(ctx context.Context, id uuid.UUID, title string) (*entity.ChatSession, error) {
	title, err := gateway.NormalizeTitle(title)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.session(id)
	if !ok {
		return nil, apperror.NotFound("session", id)
	}

	renamed := copySession(session)
	renamed.Title = title
	s.cache.Set(sessionKeyPrefix+id.String(), renamed, cache.NoExpiration)
	return copySession(renamed), nil
}

func (s *ChatStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.session(id); !ok {
		return apperror.NotFound("session", id)
	}

	for _, msg := range s.messages(id) {
		s.cache.Delete(ownerKeyPrefix + msg.Id.String())
	}
	s.cache.Delete(messageKeyPrefix + id.String())
	s.cache.Delete(sessionKeyPrefix + id.String())
	return nil
}

func (s *ChatStore) AppendMessage(ctx context.Context, sessionID uuid.UUID, payload gateway.NewMessage) (*entity.ChatMessage, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.session(sessionID)
	if !ok {
		return nil, apperror.NotFound("session", sessionID)
	}

	log := s.messages(sessionID)
	last := session.CreatedAt
	if len(log) > 0 {
		last = log[len(log)-1].Timestamp
	}

	msg := payload.Build(sessionID)
	msg.Timestamp = gateway.NextTimestamp(gateway.Now(), last)

	// Copy-on-write so slices handed out by ListMessages never change underneath callers.
	next := make([]*entity.ChatMessage, len(log), len(log)+1)
	copy(next, log)
	next = append(next, msg)

	s.cache.Set(messageKeyPrefix+sessionID.String(), next, cache.NoExpiration)
	s.cache.Set(ownerKeyPrefix+msg.Id.String(), sessionID, cache.NoExpiration)

	return copyMessage(msg), nil
}

func (s *ChatStore) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]*entity.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.session(sessionID); !ok {
		return nil, apperror.NotFound("session", sessionID)
	}

	log := s.messages(sessionID)
	out := make([]*entity.ChatMessage, len(log))
	for i, msg := range log {
		out[i] = copyMessage(msg)
	}
	return out, nil
}

func (s *ChatStore) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	x, ok := s.cache.Get(ownerKeyPrefix + id.String())
	if !ok {
		return apperror.NotFound("message", id)
	}
	sessionID := x.(uuid.UUID)

	log := s.messages(sessionID)
	next := make([]*entity.ChatMessage, 0, len(log))
	for _, msg := range log {
		if msg.Id != id {
			next = append(next, msg)
		}
	}

	s.cache.Set(messageKeyPrefix+sessionID.String(), next, cache.NoExpiration)
	s.cache.Delete(ownerKeyPrefix + id.String())
	return nil
}

func (s *ChatStore) DeleteAllMessages(ctx context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.session(sessionID); !ok {
		return apperror.NotFound("session", sessionID)
	}

	for _, msg := range s.messages(sessionID) {
		s.cache.Delete(ownerKeyPrefix + msg.Id.String())
	}
	s.cache.Set(messageKeyPrefix+sessionID.String(), []*entity.ChatMessage{}, cache.NoExpiration)
	return nil
}

func (s *ChatStore) session(id uuid.UUID) (*entity.ChatSession, bool) {
	if x, found := s.cache.Get(sessionKeyPrefix + id.String()); found {
		return x.(*entity.ChatSession), true
	}
	return nil, false
}

func (s *ChatStore) messages(sessionID uuid.UUID) []*entity.ChatMessage {
	if x, found := s.cache.Get(messageKeyPrefix + sessionID.String()); found {
		return x.([]*entity.ChatMessage)
	}
	return nil
}

func copySession(s *entity.ChatSession) *entity.ChatSession {
	c := *s
	return &c
}

func copyMessage(m *entity.ChatMessage) *entity.ChatMessage {
	c := *m
	return &c
}
