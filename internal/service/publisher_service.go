package service

import (
	"context"

	"chart-coach-be/internal/pkg/logger"
	"chart-coach-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const EventTopic = "coach.events"

type IPublisherService interface {
	Publish(ctx context.Context, event events.Event) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (ps *publisherService) Publish(ctx context.Context, event events.Event) error {
	payload, err := events.Encode(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ps.publisher.Publish(ps.topicName, msg)
}

type nopPublisher struct{}

// NewNopPublisherService drops every event.
func NewNopPublisherService() IPublisherService {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, events.Event) error {
	return nil
}

// publishEvent logs instead of failing the caller; events never affect a turn's outcome.
func publishEvent(ctx context.Context, publisher IPublisherService, log logger.ILogger, module string, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn(module, "Failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}
