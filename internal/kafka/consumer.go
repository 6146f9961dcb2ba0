package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/commerce-platform/order-edit-service/internal/models"
	"github.com/commerce-platform/order-edit-service/internal/service"
)

// KafkaConsumer ingests committed orders from the commerce backend's
// order events topic.
type KafkaConsumer struct {
	reader       *kafka.Reader
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewKafkaConsumer(brokers []string, topic, groupID string, orderService *service.OrderService, logger *zap.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 10e3, // 10KB
			MaxBytes: 10e6, // 10MB
		}),
		orderService: orderService,
		logger:       logger,
	}
}

func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting Kafka consumer",
		zap.String("topic", c.reader.Config().Topic),
		zap.String("group", c.reader.Config().GroupID),
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Kafka consumer context cancelled, stopping")
			return ctx.Err()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				c.logger.Error("error reading message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}

			if err := c.processMessage(ctx, msg.Value); err != nil {
				c.logger.Error("error processing message", zap.Error(err))
				// Continue processing other messages
			}
		}
	}
}

func (c *KafkaConsumer) processMessage(ctx context.Context, data []byte) error {
	var eventType struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &eventType); err != nil {
		return fmt.Errorf("failed to parse event type: %w", err)
	}

	if eventType.Type != models.EventTypeOrderCreated {
		c.logger.Debug("skipping event", zap.String("type", eventType.Type))
		return nil
	}

	var event models.OrderCreatedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to parse OrderCreatedEvent: %w", err)
	}

	order, err := c.orderService.Ingest(ctx, event.Order)
	if err != nil {
		return fmt.Errorf("failed to ingest order: %w", err)
	}

	c.logger.Info("ingested order from event", zap.String("order_id", order.ID.String()))
	return nil
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
