package events

import (
	"context"

	"github.com/Kilat-Home-Services/service-booking/internal/platform/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// CatalogInvalidator drops cached catalog entries.
type CatalogInvalidator interface {
	InvalidateService(ctx context.Context, id string) error
	InvalidateProfessional(ctx context.Context, id string) error
}

// CatalogEventConsumer listens to catalog events and evicts stale entries
// from the catalog cache.
type CatalogEventConsumer struct {
	consumer *kafka.Consumer
	cache    CatalogInvalidator
	logger   *zap.Logger
}

// NewCatalogEventConsumer creates a new CatalogEventConsumer.
func NewCatalogEventConsumer(
	brokers []string,
	groupID string,
	cache CatalogInvalidator,
	logger *zap.Logger,
) *CatalogEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicCatalogEvents, logger)
	return &CatalogEventConsumer{
		consumer: consumer,
		cache:    cache,
		logger:   logger,
	}
}

// Start begins consuming catalog events. This blocks until the context is cancelled.
func (c *CatalogEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CatalogEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CatalogEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from catalog topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case CatalogServiceUpdated:
		return c.handleUpdated(ctx, cloudEvent, "service", c.cache.InvalidateService)
	case CatalogProfessionalUpdated:
		return c.handleUpdated(ctx, cloudEvent, "professional", c.cache.InvalidateProfessional)
	default:
		c.logger.Debug("ignoring unhandled catalog event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *CatalogEventConsumer) handleUpdated(
	ctx context.Context,
	cloudEvent kafka.CloudEvent,
	kind string,
	invalidate func(ctx context.Context, id string) error,
) error {
	var evt CatalogEntryUpdatedEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.ID == "" {
		c.logger.Error("failed to parse CatalogEntryUpdatedEvent data",
			zap.String("type", cloudEvent.Type),
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	if err := invalidate(ctx, evt.ID); err != nil {
		c.logger.Error("failed to invalidate catalog entry",
			zap.String("kind", kind),
			zap.String("id", evt.ID),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("catalog entry invalidated",
		zap.String("kind", kind),
		zap.String("id", evt.ID),
	)
	return nil
}
