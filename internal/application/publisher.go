package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/roadwatch/service-navigation/internal/platform/kafka"
)

const eventSource = "service-navigation"

// EventPublisher sends CloudEvents to a topic. *kafka.Producer implements it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// publisher wraps an EventPublisher so that failures are logged, never returned.
type publisher struct {
	producer EventPublisher
	logger   *zap.Logger
}

func (p publisher) publish(ctx context.Context, topic, eventType, key string, data interface{}) {
	if p.producer == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		p.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent = cloudEvent.WithSubject(key)

	if err := p.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
