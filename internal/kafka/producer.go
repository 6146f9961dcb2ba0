package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

type KafkaProducer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaProducer(brokers []string, topic string, logger *zap.Logger) *KafkaProducer {
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		logger: logger,
	}
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

func (p *KafkaProducer) publish(ctx context.Context, key []byte, event interface{}) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   key,
		Value: eventJSON,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

func (p *KafkaProducer) PublishEditConfirmed(ctx context.Context, event models.EditConfirmedEvent) error {
	if err := p.publish(ctx, []byte(event.OrderID.String()), event); err != nil {
		return err
	}
	p.logger.Info("published EditConfirmedEvent",
		zap.String("order_id", event.OrderID.String()),
		zap.String("session_id", event.SessionID.String()),
	)
	return nil
}

func (p *KafkaProducer) PublishReturnReceived(ctx context.Context, event models.ReturnReceivedEvent) error {
	if err := p.publish(ctx, []byte(event.OrderID.String()), event); err != nil {
		return err
	}
	p.logger.Info("published ReturnReceivedEvent",
		zap.String("order_id", event.OrderID.String()),
		zap.String("return_id", event.ReturnID.String()),
	)
	return nil
}
