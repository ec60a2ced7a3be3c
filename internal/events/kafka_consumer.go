package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/roadwatch/service-navigation/internal/application"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
	"github.com/roadwatch/service-navigation/internal/platform/kafka"
	"github.com/roadwatch/service-navigation/internal/proto/events"
)

// HazardModerator applies moderation decisions to hazards.
type HazardModerator interface {
	Moderate(ctx context.Context, hazardID uuid.UUID, action application.ModerationAction, note string) (*application.HazardDTO, error)
}

var moderationActions = map[string]application.ModerationAction{
	events.ModerationHazardVerified: application.ActionVerify,
	events.ModerationHazardResolved: application.ActionResolve,
	events.ModerationHazardRejected: application.ActionReject,
}

// ModerationEventConsumer listens to moderation decisions and applies them to
// the hazard catalogue.
type ModerationEventConsumer struct {
	consumer  *kafka.Consumer
	moderator HazardModerator
	logger    *zap.Logger
}

// NewModerationEventConsumer creates a new ModerationEventConsumer.
func NewModerationEventConsumer(
	brokers []string,
	groupID string,
	moderator HazardModerator,
	logger *zap.Logger,
) *ModerationEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicModerationEvents, logger)
	return &ModerationEventConsumer{
		consumer:  consumer,
		moderator: moderator,
		logger:    logger,
	}
}

// Start begins consuming moderation events. This blocks until the context is cancelled.
func (c *ModerationEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *ModerationEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *ModerationEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from moderation topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	action, ok := moderationActions[cloudEvent.Type]
	if !ok {
		c.logger.Debug("ignoring unhandled moderation event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
	return c.handleDecision(ctx, cloudEvent, action)
}

func (c *ModerationEventConsumer) handleDecision(ctx context.Context, cloudEvent kafka.CloudEvent, action application.ModerationAction) error {
	var evt events.ModerationDecisionEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.HazardID == uuid.Nil {
		c.logger.Error("failed to parse ModerationDecisionEvent data",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing moderation decision",
		zap.String("hazard_id", evt.HazardID.String()),
		zap.String("action", string(action)),
		zap.String("moderator_id", evt.ModeratorID.String()),
	)

	result, err := c.moderator.Moderate(ctx, evt.HazardID, action, evt.Note)
	if err != nil {
		if isPermanent(err) {
			c.logger.Warn("skipping moderation decision",
				zap.String("hazard_id", evt.HazardID.String()),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to apply moderation decision",
			zap.String("hazard_id", evt.HazardID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("hazard moderated from event",
		zap.String("hazard_id", evt.HazardID.String()),
		zap.String("status", result.Status),
	)
	return nil
}

// isPermanent reports errors that redelivery cannot fix: unknown hazards and
// transitions the status machine forbids.
func isPermanent(err error) bool {
	var (
		notFound   *domain.NotFoundError
		state      *domain.InvalidStateError
		validation *domain.ValidationError
	)
	return errors.As(err, &notFound) || errors.As(err, &state) || errors.As(err, &validation)
}
