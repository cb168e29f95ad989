package gateway_test

import (
	"context"
	"log"
	"os"
	"testing"

	"chart-coach-be/internal/entity"
	"chart-coach-be/internal/gateway"
	"chart-coach-be/internal/model"
	"chart-coach-be/internal/pkg/apperror"
	"chart-coach-be/internal/pkg/logger"
	"chart-coach-be/internal/repository/unitofwork"
	"chart-coach-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresGateway(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" || os.Getenv("DB_DRIVER") == database.DriverSqlite {
		t.Skip("Skipping integration test: postgres DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDB(database.DriverPostgres, dsn)
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))

	ctx := context.Background()
	gw := gateway.NewGormGateway(unitofwork.NewRepositoryFactory(db), logger.NewNopLogger())

	session, err := gw.CreateSession(ctx, "integration")
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.DeleteSession(ctx, session.Id) })

	first, err := gw.AppendMessage(ctx, session.Id, text("first"))
	require.NoError(t, err)
	second, err := gw.AppendMessage(ctx, session.Id, gateway.NewMessage{
		Role:       entity.MessageRoleCoach,
		Type:       entity.MessageTypeAnalysis,
		Content:    "second",
		Mode:       entity.ResponseModeFull,
		ScenarioId: "bull_flag",
	})
	require.NoError(t, err)
	assert.True(t, second.Timestamp.After(first.Timestamp))

	messages, err := gw.ListMessages(ctx, session.Id)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, first.Id, messages[0].Id)
	assert.Equal(t, entity.ResponseModeFull, messages[1].Mode)
	assert.True(t, first.Timestamp.Equal(messages[0].Timestamp), "timestamps survive at microsecond resolution")

	require.NoError(t, gw.DeleteSession(ctx, session.Id))
	_, err = gw.ListMessages(ctx, session.Id)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
