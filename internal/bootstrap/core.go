package bootstrap

import (
	"context"
	"fmt"
	"time"

	"chart-coach-be/internal/config"
	"chart-coach-be/internal/gateway"
	"chart-coach-be/internal/pkg/logger"
	"chart-coach-be/internal/repository/memory"
	"chart-coach-be/internal/repository/unitofwork"
	"chart-coach-be/internal/service"
	"chart-coach-be/pkg/coach/resolver"
	"chart-coach-be/pkg/coach/scenario"
	"chart-coach-be/pkg/vision"
	"chart-coach-be/pkg/vision/factory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const bootstrapModule = "Bootstrap"

// Core is everything below the transport: shared by the HTTP server and the CLI.
type Core struct {
	Logger  logger.ILogger
	Gateway gateway.Gateway
	Catalog *scenario.Catalog

	PubSub    *gochannel.GoChannel
	Publisher service.IPublisherService

	UploadService       service.IUploadService
	SessionService      service.ISessionService
	ConversationService service.IConversationService
	Registry            *service.SessionRegistry

	closers []func()
}

// NewCore wires the engine. db may be nil when cfg selects the memory store.
func NewCore(ctx context.Context, cfg *config.Config, db *gorm.DB, log logger.ILogger) (*Core, error) {
	core := &Core{Logger: log}

	// 1. Persistence Gateway
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		core.Gateway = memory.NewChatStore()
	case config.StoreBackendGorm:
		if db == nil {
			return nil, fmt.Errorf("store backend %q needs a database", cfg.Store.Backend)
		}
		core.Gateway = gateway.NewGormGateway(unitofwork.NewRepositoryFactory(db), log)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	log.Info(bootstrapModule, "Persistence gateway ready", map[string]interface{}{"backend": cfg.Store.Backend})

	// 2. Scenario catalog
	catalog, err := scenario.Load(cfg.Coach.ScenarioFile)
	if err != nil {
		return nil, err
	}
	core.Catalog = catalog

	// 3. Event Bus
	core.PubSub = gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NopLogger{})
	core.Publisher = service.NewPublisherService(service.EventTopic, core.PubSub)
	core.closers = append(core.closers, func() { _ = core.PubSub.Close() })

	// 4. Vision provider; image turns fail with an analysis error when it is missing.
	var analyzer vision.Analyzer
	analyzer, err = factory.NewAnalyzer(ctx, cfg.Coach.VisionProvider, cfg.Coach.VisionModel, cfg.Coach.OllamaBaseURL, cfg.Keys.GoogleGemini)
	if err != nil {
		log.Warn(bootstrapModule, "Vision provider unavailable, image analysis disabled", map[string]interface{}{
			"provider": cfg.Coach.VisionProvider,
			"error":    err.Error(),
		})
		analyzer = nil
	} else {
		log.Info(bootstrapModule, "Vision provider ready", map[string]interface{}{
			"provider": cfg.Coach.VisionProvider,
			"model":    cfg.Coach.VisionModel,
		})
	}

	res := resolver.New(catalog, analyzer,
		resolver.WithDelay(cfg.Coach.ReplyDelay),
		resolver.WithAnalysisTimeout(cfg.Coach.AnalysisTimeout),
		resolver.WithLogger(log),
	)

	// 5. Services
	core.UploadService = service.NewUploadService(cfg.App.UploadDir, cfg.App.BaseURL, cfg.BodyLimitBytes(), log)
	core.SessionService = service.NewSessionService(core.Gateway, core.Publisher, log)
	core.Registry = service.NewSessionRegistry(core.Gateway, core.Publisher, log)
	core.ConversationService = service.NewConversationService(
		core.Gateway,
		res,
		catalog,
		core.UploadService,
		core.newPendingGuard(ctx, cfg),
		core.Publisher,
		log,
	)

	return core, nil
}

func (c *Core) newPendingGuard(ctx context.Context, cfg *config.Config) service.PendingGuard {
	if cfg.App.RedisURL == "" {
		return service.NewMemoryPendingGuard()
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		c.Logger.Warn(bootstrapModule, "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		c.Logger.Warn(bootstrapModule, "Redis unreachable, pending-reply guard is process local", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return service.NewMemoryPendingGuard()
	}

	c.closers = append(c.closers, func() { _ = rdb.Close() })
	ttl := cfg.Coach.AnalysisTimeout + cfg.Coach.ReplyDelay + 30*time.Second
	c.Logger.Info(bootstrapModule, "Pending-reply guard on redis", map[string]interface{}{"ttl": ttl.String()})
	return service.NewRedisPendingGuard(rdb, ttl)
}

// Close releases connections in reverse order of creation.
func (c *Core) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
