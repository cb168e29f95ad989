package service

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"

	"chart-coach-be/internal/gateway"
	"chart-coach-be/internal/model"
	"chart-coach-be/internal/pkg/logger"
	"chart-coach-be/internal/repository/memory"
	"chart-coach-be/internal/repository/unitofwork"
	"chart-coach-be/pkg/coach/resolver"
	"chart-coach-be/pkg/coach/scenario"
	"chart-coach-be/pkg/events"
	"chart-coach-be/pkg/vision"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var pngBytes = []byte{
	0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n',
	0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00,
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type engineFixture struct {
	store     gateway.Gateway
	service   IConversationService
	publisher *recordingPublisher
	uploadDir string
}

func newMemoryStore(t *testing.T) gateway.Gateway {
	return memory.NewChatStore()
}

func newSqliteStore(t *testing.T) gateway.Gateway {
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

	require.NoError(t, model.AutoMigrate(db))
	return gateway.NewGormGateway(unitofwork.NewRepositoryFactory(db), logger.NewNopLogger())
}

// engineBackends lists every gateway the engine runs against.
var engineBackends = map[string]func(t *testing.T) gateway.Gateway{
	"memory": newMemoryStore,
	"gorm":   newSqliteStore,
}

func newEngine(t *testing.T, analyzer vision.Analyzer, opts ...resolver.Option) *engineFixture {
	t.Helper()
	return newEngineOn(t, newMemoryStore(t), analyzer, opts...)
}

func newEngineOn(t *testing.T, store gateway.Gateway, analyzer vision.Analyzer, opts ...resolver.Option) *engineFixture {
	t.Helper()

	catalog := scenario.Default()
	publisher := &recordingPublisher{}
	dir := t.TempDir()
	log := logger.NewNopLogger()

	svc := NewConversationService(
		store,
		resolver.New(catalog, analyzer, opts...),
		catalog,
		NewUploadService(dir, "http://localhost:3000", 1<<20, log),
		NewMemoryPendingGuard(),
		publisher,
		log,
	)
	return &engineFixture{store: store, service: svc, publisher: publisher, uploadDir: dir}
}

func base64PNG() string {
	return base64.StdEncoding.EncodeToString(pngBytes)
}
