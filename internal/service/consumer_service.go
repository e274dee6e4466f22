package service

import (
	"context"

	"crimson-crm-be/internal/pkg/logger"
	"crimson-crm-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventForwarder ships events off the process, e.g. to NATS.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	forwarder  EventForwarder
	audit      logger.ILogger
	logger     logger.ILogger
}

// NewConsumerService drains the in-process topic. Every event is written to the
// audit log and, when forwarder is non-nil, forwarded.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	forwarder EventForwarder,
	audit logger.ILogger,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		forwarder:  forwarder,
		audit:      audit,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// Nacking would redeliver forever on the in-process bus, so every message is acked.
	defer msg.Ack()

	evt, err := events.Unmarshal(msg.Payload)
	if err != nil {
		cs.logger.Error("ConsumerService", "Failed to decode event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		return
	}

	details := map[string]interface{}{
		"message_id":  msg.UUID,
		"occurred_at": evt.Timestamp(),
	}
	for k, v := range evt.Payload() {
		details[k] = v
	}
	cs.audit.Info("Events", evt.EventType(), details)

	if cs.forwarder == nil {
		return
	}
	if err := cs.forwarder.Publish(ctx, evt); err != nil {
		cs.logger.Warn("ConsumerService", "Failed to forward event", map[string]interface{}{
			"event_type": evt.EventType(),
			"error":      err,
		})
	}
}
