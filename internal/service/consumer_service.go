package service

import (
	"context"

	"chart-coach-be/internal/pkg/logger"
	"chart-coach-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const consumerModule = "Consumer"

// EventForwarder receives every consumed event; *nats.Publisher satisfies it.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	// Consume blocks until ctx is cancelled.
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	forwarder  EventForwarder
	logger     logger.ILogger
}

// NewConsumerService logs bus events and forwards them when forwarder is non-nil.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	forwarder EventForwarder,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		forwarder:  forwarder,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	for msg := range messages {
		cs.processMessage(ctx, msg)
	}
	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	event, err := events.Decode(msg.Payload)
	if err != nil {
		cs.logger.Error(consumerModule, "Dropping undecodable event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// Ack invalid messages to prevent infinite retry
		msg.Ack()
		return
	}

	cs.logger.Info(consumerModule, "Event", map[string]interface{}{
		"type":        event.EventType(),
		"occurred_at": event.Timestamp(),
		"data":        event.Payload(),
	})

	if cs.forwarder != nil {
		if err := cs.forwarder.Publish(ctx, event); err != nil {
			// The local log above is the record of truth; forwarding is best effort.
			cs.logger.Warn(consumerModule, "Failed to forward event", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}
