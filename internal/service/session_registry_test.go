package service

import (
	"context"
	"testing"
	"time"

	"chart-coach-be/internal/pkg/logger"
	"chart-coach-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry() (*SessionRegistry, *memory.ChatStore) {
	store := memory.NewChatStore()
	return NewSessionRegistry(store, NewNopPublisherService(), logger.NewNopLogger()), store
}

func TestActiveBootstrapsFirstSession(t *testing.T) {
	ctx := context.Background()
	registry, store := newRegistry()
	registry.now = func() time.Time { return time.Date(2026, 3, 9, 14, 5, 0, 0, time.Local) }

	session, err := registry.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Session Mar 9, 14:05", session.Title)
	assert.Equal(t, session.Id, registry.ActiveID())

	again, err := registry.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Id, again.Id, "bootstrap creates only once")

	all, err := store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestActivePicksNewestExisting(t *testing.T) {
	ctx := context.Background()
	registry, store := newRegistry()

	_, err := store.CreateSession(ctx, "old")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	newest, err := store.CreateSession(ctx, "new")
	require.NoError(t, err)

	session, err := registry.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, newest.Id, session.Id)
}

func TestCreateSessionSelectsIt(t *testing.T) {
	ctx := context.Background()
	registry, _ := newRegistry()

	session, err := registry.CreateSession(ctx, "  Breakouts ")
	require.NoError(t, err)
	assert.Equal(t, "Breakouts", session.Title)
	assert.Equal(t, session.Id, registry.ActiveID())
}

func TestSelectSessionFallsBack(t *testing.T) {
	ctx := context.Background()
	registry, store := newRegistry()

	first, err := store.CreateSession(ctx, "first")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := store.CreateSession(ctx, "second")
	require.NoError(t, err)

	got, err := registry.SelectSession(ctx, first.Id)
	require.NoError(t, err)
	assert.Equal(t, first.Id, got.Id)

	got, err = registry.SelectSession(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, second.Id, got.Id, "unknown id falls back to the newest session")
	assert.Equal(t, second.Id, registry.ActiveID())
}

func TestSelectSessionOnEmptyStoreCreates(t *testing.T) {
	ctx := context.Background()
	registry, store := newRegistry()

	got, err := registry.SelectSession(ctx, uuid.New())
	require.NoError(t, err)

	all, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, all[0].Id, got.Id)
}

func TestDeleteActiveReselectsNewest(t *testing.T) {
	ctx := context.Background()
	registry, _ := newRegistry()

	oldest, err := registry.CreateSession(ctx, "oldest")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	middle, err := registry.CreateSession(ctx, "middle")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	newest, err := registry.CreateSession(ctx, "newest")
	require.NoError(t, err)

	_, err = registry.SelectSession(ctx, oldest.Id)
	require.NoError(t, err)

	// Deleting an inactive session keeps the selection.
	active, err := registry.DeleteSession(ctx, middle.Id)
	require.NoError(t, err)
	assert.Equal(t, oldest.Id, active.Id)

	active, err = registry.DeleteSession(ctx, oldest.Id)
	require.NoError(t, err)
	assert.Equal(t, newest.Id, active.Id)
	assert.Equal(t, newest.Id, registry.ActiveID())
}

func TestDeleteLastSessionCreatesFresh(t *testing.T) {
	ctx := context.Background()
	registry, store := newRegistry()

	only, err := registry.CreateSession(ctx, "only")
	require.NoError(t, err)

	active, err := registry.DeleteSession(ctx, only.Id)
	require.NoError(t, err)
	assert.NotEqual(t, only.Id, active.Id)

	all, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, active.Id, all[0].Id)
}
