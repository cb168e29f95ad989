package bootstrap

import (
	"context"

	"chart-coach-be/internal/config"
	"chart-coach-be/internal/controller"
	"chart-coach-be/internal/pkg/logger"
	"chart-coach-be/internal/service"

	pktNats "chart-coach-be/pkg/nats"

	"gorm.io/gorm"
)

type Container struct {
	Core *Core

	// Controllers
	SessionController controller.ISessionController
	MessageController controller.IMessageController
	CoachController   controller.ICoachController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	core, err := NewCore(ctx, cfg, db, sysLogger)
	if err != nil {
		return nil, err
	}

	// Optional NATS forwarding of domain events
	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn(bootstrapModule, "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			forwarder = natsPub
			core.closers = append(core.closers, natsPub.Close)
		}
	}

	consumerService := service.NewConsumerService(core.PubSub, service.EventTopic, forwarder, sysLogger)

	return &Container{
		Core:              core,
		SessionController: controller.NewSessionController(core.SessionService),
		MessageController: controller.NewMessageController(core.SessionService),
		CoachController:   controller.NewCoachController(core.ConversationService, core.UploadService),
		ConsumerService:   consumerService,
	}, nil
}

func (c *Container) Close() {
	c.Core.Close()
}
