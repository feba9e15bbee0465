package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"restaurant-ordering/internal/logger"
	"restaurant-ordering/internal/models"
)

// StatusPublisher announces committed status changes
type StatusPublisher interface {
	PublishStatusUpdate(ctx context.Context, msg *models.StatusUpdateMessage) error
}

// Publisher handles message publishing to RabbitMQ
type Publisher struct {
	conn   *Connection
	logger *logger.Logger
}

// NewPublisher creates a new message publisher
func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: log,
	}
}

// PublishStatusUpdate publishes a status update to the status topic exchange
func (p *Publisher) PublishStatusUpdate(ctx context.Context, msg *models.StatusUpdateMessage) error {
	return p.publishMessage(ctx, StatusExchange, msg.RoutingKey(), msg)
}

func (p *Publisher) publishMessage(ctx context.Context, exchange, routingKey string, message interface{}) error {
	requestID := logger.RequestID(ctx)

	if err := p.conn.EnsureOpen(); err != nil {
		return err
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	publishing := amqp091.Publishing{
		ContentType:   "application/json",
		Body:          body,
		DeliveryMode:  amqp091.Persistent,
		Timestamp:     time.Now(),
		CorrelationId: requestID,
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = p.conn.Channel().PublishWithContext(
		ctx,
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		publishing,
	)
	if err != nil {
		p.logger.Error("message_publish_failed",
			fmt.Sprintf("Failed to publish message to exchange %s", exchange),
			requestID, err, map[string]interface{}{
				"exchange":    exchange,
				"routing_key": routingKey,
			})
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.logger.Debug("message_published",
		fmt.Sprintf("Published message to exchange %s", exchange),
		requestID, map[string]interface{}{
			"exchange":     exchange,
			"routing_key":  routingKey,
			"message_size": len(body),
		})

	return nil
}

// PublishAll sends msgs in order after a commit. Failures are logged and never
// returned: the status change has already happened.
func PublishAll(ctx context.Context, pub StatusPublisher, log *logger.Logger, msgs ...*models.StatusUpdateMessage) {
	for _, msg := range msgs {
		if err := pub.PublishStatusUpdate(ctx, msg); err != nil {
			log.Warn("status_publish_failed", "Failed to publish status update", logger.RequestID(ctx), map[string]interface{}{
				"entity":     msg.Entity,
				"entity_id":  msg.EntityID,
				"new_status": msg.NewStatus,
				"error":      err.Error(),
			})
		}
	}
}

// Discard drops every message. Used when RabbitMQ is disabled.
type Discard struct{}

func (Discard) PublishStatusUpdate(context.Context, *models.StatusUpdateMessage) error {
	return nil
}
