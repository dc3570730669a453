package watermillx

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/solux-cash/solux-backend/internal/domain/event"
)

// MessageTopic maps a domain event to its pub/sub topic. Events on the same
// stream share a topic.
func MessageTopic(e event.Event) (string, error) {
	topic := e.GetStreamName()
	if topic == "" {
		return "", fmt.Errorf("event %T has no stream name", e)
	}
	return topic, nil
}

// NewEventBus wraps pub so repositories can publish domain events without
// knowing topics or marshaling.
func NewEventBus(pub message.Publisher, logger watermill.LoggerAdapter) (*cqrs.EventBus, error) {
	return cqrs.NewEventBusWithConfig(pub, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			evt, ok := params.Event.(event.Event)
			if !ok {
				return "", fmt.Errorf("event %T does not implement event.Event", params.Event)
			}
			return MessageTopic(evt)
		},
		Marshaler: cqrs.JSONMarshaler{},
		Logger:    logger,
	})
}

// NewEventProcessor subscribes handlers through the shared in-process
// pub/sub. The same GoChannel instance must back both the bus and the
// processor; GoChannel only delivers to subscribers of the same instance.
func NewEventProcessor(router *message.Router, sub message.Subscriber, logger watermill.LoggerAdapter) (*cqrs.EventProcessor, error) {
	return cqrs.NewEventProcessorWithConfig(router, cqrs.EventProcessorConfig{
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			evt, ok := params.EventHandler.NewEvent().(event.Event)
			if !ok {
				return "", fmt.Errorf("event handler %T does not implement event.Event", params.EventHandler.NewEvent())
			}
			return MessageTopic(evt)
		},
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return sub, nil
		},
		Marshaler:         cqrs.JSONMarshaler{},
		Logger:            logger,
		AckOnUnknownEvent: true,
	})
}
