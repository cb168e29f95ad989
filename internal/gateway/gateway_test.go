package gateway_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"chart-coach-be/internal/entity"
	"chart-coach-be/internal/gateway"
	"chart-coach-be/internal/model"
	"chart-coach-be/internal/pkg/apperror"
	"chart-coach-be/internal/pkg/logger"
	"chart-coach-be/internal/repository/memory"
	"chart-coach-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// One connection: every connection to ":memory:" is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if migrate {
		require.NoError(t, model.AutoMigrate(db))
	}
	return db
}

func backends(t *testing.T) map[string]func(t *testing.T) gateway.Gateway {
	return map[string]func(t *testing.T) gateway.Gateway{
		"gorm": func(t *testing.T) gateway.Gateway {
			db := openTestDB(t, true)
			return gateway.NewGormGateway(unitofwork.NewRepositoryFactory(db), logger.NewNopLogger())
		},
		"memory": func(t *testing.T) gateway.Gateway {
			return memory.NewChatStore()
		},
	}
}

func text(content string) gateway.NewMessage {
	return gateway.NewMessage{Role: entity.MessageRoleUser, Type: entity.MessageTypeText, Content: content}
}

func TestGatewayContract(t *testing.T) {
	for name, newGateway := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("session lifecycle", func(t *testing.T) {
				ctx := context.Background()
				gw := newGateway(t)

				created, err := gw.CreateSession(ctx, "  Morning read  ")
				require.NoError(t, err)
				assert.Equal(t, "Morning read", created.Title)
				assert.NotEqual(t, uuid.Nil, created.Id)

				got, err := gw.GetSession(ctx, created.Id)
				require.NoError(t, err)
				assert.Equal(t, created.Id, got.Id)
				assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

				renamed, err := gw.RenameSession(ctx, created.Id, "Open drive")
				require.NoError(t, err)
				assert.Equal(t, "Open drive", renamed.Title)

				got, err = gw.GetSession(ctx, created.Id)
				require.NoError(t, err)
				assert.Equal(t, "Open drive", got.Title)

				require.NoError(t, gw.DeleteSession(ctx, created.Id))

				_, err = gw.GetSession(ctx, created.Id)
				assert.ErrorIs(t, err, apperror.ErrNotFound)
				assert.ErrorIs(t, gw.DeleteSession(ctx, created.Id), apperror.ErrNotFound)
			})

			t.Run("validation and unknown ids", func(t *testing.T) {
				ctx := context.Background()
				gw := newGateway(t)

				_, err := gw.CreateSession(ctx, "   ")
				assert.ErrorIs(t, err, apperror.ErrValidation)

				missing := uuid.New()
				_, err = gw.GetSession(ctx, missing)
				assert.ErrorIs(t, err, apperror.ErrNotFound)
				_, err = gw.RenameSession(ctx, missing, "x")
				assert.ErrorIs(t, err, apperror.ErrNotFound)
				_, err = gw.AppendMessage(ctx, missing, text("hello"))
				assert.ErrorIs(t, err, apperror.ErrNotFound)
				_, err = gw.ListMessages(ctx, missing)
				assert.ErrorIs(t, err, apperror.ErrNotFound)
				assert.ErrorIs(t, gw.DeleteMessage(ctx, missing), apperror.ErrNotFound)
				assert.ErrorIs(t, gw.DeleteAllMessages(ctx, missing), apperror.ErrNotFound)

				session, err := gw.CreateSession(ctx, "s")
				require.NoError(t, err)
				_, err = gw.AppendMessage(ctx, session.Id, gateway.NewMessage{Role: "bot", Type: entity.MessageTypeText, Content: "x"})
				assert.ErrorIs(t, err, apperror.ErrValidation)
				_, err = gw.AppendMessage(ctx, session.Id, gateway.NewMessage{Role: entity.MessageRoleUser, Type: "video", Content: "x"})
				assert.ErrorIs(t, err, apperror.ErrValidation)
				_, err = gw.AppendMessage(ctx, session.Id, gateway.NewMessage{Role: entity.MessageRoleCoach, Type: entity.MessageTypeAnalysis, Mode: "loud"})
				assert.ErrorIs(t, err, apperror.ErrValidation)
			})

			t.Run("sessions newest first", func(t *testing.T) {
				ctx := context.Background()
				gw := newGateway(t)

				var ids []uuid.UUID
				for _, title := range []string{"first", "second", "third"} {
					s, err := gw.CreateSession(ctx, title)
					require.NoError(t, err)
					ids = append(ids, s.Id)
					time.Sleep(2 * time.Millisecond)
				}

				sessions, err := gw.ListSessions(ctx)
				require.NoError(t, err)
				require.Len(t, sessions, 3)
				assert.Equal(t, ids[2], sessions[0].Id)
				assert.Equal(t, ids[1], sessions[1].Id)
				assert.Equal(t, ids[0], sessions[2].Id)
			})

			t.Run("append-only log is strictly ordered", func(t *testing.T) {
				ctx := context.Background()
				gw := newGateway(t)

				session, err := gw.CreateSession(ctx, "ordering")
				require.NoError(t, err)

				for i := 0; i < 20; i++ {
					_, err := gw.AppendMessage(ctx, session.Id, text("burst"))
					require.NoError(t, err)
				}

				messages, err := gw.ListMessages(ctx, session.Id)
				require.NoError(t, err)
				require.Len(t, messages, 20)
				for i := 1; i < len(messages); i++ {
					assert.True(t, messages[i].Timestamp.After(messages[i-1].Timestamp),
						"timestamp %d must follow %d", i, i-1)
				}
			})

			t.Run("concurrent appends stay linearizable", func(t *testing.T) {
				ctx := context.Background()
				gw := newGateway(t)

				session, err := gw.CreateSession(ctx, "concurrent")
				require.NoError(t, err)

				var wg sync.WaitGroup
				for i := 0; i < 10; i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						_, err := gw.AppendMessage(ctx, session.Id, text("parallel"))
						assert.NoError(t, err)
					}()
				}
				wg.Wait()

				messages, err := gw.ListMessages(ctx, session.Id)
				require.NoError(t, err)
				require.Len(t, messages, 10)

				seen := make(map[time.Time]bool)
				for i, msg := range messages {
					assert.False(t, seen[msg.Timestamp], "duplicate timestamp")
					seen[msg.Timestamp] = true
					if i > 0 {
						assert.False(t, msg.Timestamp.Before(messages[i-1].Timestamp))
					}
				}
			})

			t.Run("message fields round trip", func(t *testing.T) {
				ctx := context.Background()
				gw := newGateway(t)

				session, err := gw.CreateSession(ctx, "fields")
				require.NoError(t, err)

				appended, err := gw.AppendMessage(ctx, session.Id, gateway.NewMessage{
					Role:       entity.MessageRoleCoach,
					Type:       entity.MessageTypeAnalysis,
					Content:    "Trend intact.",
					ImageUrl:   "http://localhost/uploads/abc.png",
					Mode:       entity.ResponseModeFull,
					ScenarioId: "bull_flag",
				})
				require.NoError(t, err)

				messages, err := gw.ListMessages(ctx, session.Id)
				require.NoError(t, err)
				require.Len(t, messages, 1)

				got := messages[0]
				assert.Equal(t, appended.Id, got.Id)
				assert.Equal(t, session.Id, got.ChatSessionId)
				assert.Equal(t, entity.MessageRoleCoach, got.Role)
				assert.Equal(t, entity.MessageTypeAnalysis, got.Type)
				assert.Equal(t, "Trend intact.", got.Content)
				assert.Equal(t, "http://localhost/uploads/abc.png", got.ImageUrl)
				assert.Equal(t, entity.ResponseModeFull, got.Mode)
				assert.Equal(t, "bull_flag", got.ScenarioId)
			})

			t.Run("delete cascades to messages", func(t *testing.T) {
				ctx := context.Background()
				gw := newGateway(t)

				doomed, err := gw.CreateSession(ctx, "doomed")
				require.NoError(t, err)
				kept, err := gw.CreateSession(ctx, "kept")
				require.NoError(t, err)

				_, err = gw.AppendMessage(ctx, doomed.Id, text("one"))
				require.NoError(t, err)
				_, err = gw.AppendMessage(ctx, doomed.Id, text("two"))
				require.NoError(t, err)
				keptMsg, err := gw.AppendMessage(ctx, kept.Id, text("stay"))
				require.NoError(t, err)

				require.NoError(t, gw.DeleteSession(ctx, doomed.Id))

				_, err = gw.ListMessages(ctx, doomed.Id)
				assert.ErrorIs(t, err, apperror.ErrNotFound)

				messages, err := gw.ListMessages(ctx, kept.Id)
				require.NoError(t, err)
				require.Len(t, messages, 1)
				assert.Equal(t, keptMsg.Id, messages[0].Id)
			})

			t.Run("delete single and all messages", func(t *testing.T) {
				ctx := context.Background()
				gw := newGateway(t)

				session, err := gw.CreateSession(ctx, "cleanup")
				require.NoError(t, err)
				first, err := gw.AppendMessage(ctx, session.Id, text("first"))
				require.NoError(t, err)
				_, err = gw.AppendMessage(ctx, session.Id, text("second"))
				require.NoError(t, err)

				require.NoError(t, gw.DeleteMessage(ctx, first.Id))
				assert.ErrorIs(t, gw.DeleteMessage(ctx, first.Id), apperror.ErrNotFound)

				messages, err := gw.ListMessages(ctx, session.Id)
				require.NoError(t, err)
				require.Len(t, messages, 1)
				assert.Equal(t, "second", messages[0].Content)

				require.NoError(t, gw.DeleteAllMessages(ctx, session.Id))
				messages, err = gw.ListMessages(ctx, session.Id)
				require.NoError(t, err)
				assert.Empty(t, messages)

				_, err = gw.GetSession(ctx, session.Id)
				assert.NoError(t, err, "clearing messages keeps the session")
			})
		})
	}
}

func TestGormGatewayUnprovisionedStoreListsEmpty(t *testing.T) {
	db := openTestDB(t, false)
	gw := gateway.NewGormGateway(unitofwork.NewRepositoryFactory(db), logger.NewNopLogger())

	sessions, err := gw.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)

	_, err = gw.CreateSession(context.Background(), "no table")
	assert.ErrorIs(t, err, apperror.ErrStorage, "only listing degrades")
}
