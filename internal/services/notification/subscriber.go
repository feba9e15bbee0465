package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"restaurant-ordering/internal/logger"
	"restaurant-ordering/internal/messaging"
	"restaurant-ordering/internal/models"
)

// Consumer delivers message bodies to a handler until ctx ends
type Consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Subscriber prints status update notifications
type Subscriber struct {
	consumer Consumer
	logger   *logger.Logger
	out      io.Writer
}

// NewSubscriber creates a new notification subscriber writing to out
func NewSubscriber(consumer Consumer, log *logger.Logger, out io.Writer) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
		out:      out,
	}
}

// Start consumes notifications until ctx is cancelled
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()

	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.HandleNotification)

	s.logger.Info("graceful_shutdown", "Starting graceful shutdown", requestID, nil)
	if closeErr := s.consumer.Close(); closeErr != nil {
		s.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, closeErr, nil)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("consumer_failed", "Notification consumer failed", requestID, err, nil)
		return err
	}

	s.logger.Info("graceful_shutdown", "Graceful shutdown completed", requestID, nil)
	return nil
}

// HandleNotification processes one status update message
func (s *Subscriber) HandleNotification(ctx context.Context, body []byte) error {
	requestID := logger.RequestID(ctx)

	var statusUpdate models.StatusUpdateMessage
	if err := json.Unmarshal(body, &statusUpdate); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse notification message", requestID, err, nil)
		return fmt.Errorf("failed to parse notification: %w", err)
	}

	s.logger.Debug("notification_received", "Received status update notification", requestID, map[string]interface{}{
		"entity":     statusUpdate.Entity,
		"entity_id":  statusUpdate.EntityID,
		"new_status": statusUpdate.NewStatus,
		"changed_by": statusUpdate.ChangedBy,
	})

	if _, err := fmt.Fprintln(s.out, FormatNotification(&statusUpdate)); err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}

	s.logger.Info("notification_displayed", "Notification displayed to user", requestID, map[string]interface{}{
		"entity":     statusUpdate.Entity,
		"entity_id":  statusUpdate.EntityID,
		"order_id":   statusUpdate.OrderID,
		"old_status": statusUpdate.OldStatus,
		"new_status": statusUpdate.NewStatus,
		"changed_by": statusUpdate.ChangedBy,
	})

	return nil
}

// FormatNotification creates a human-readable notification message
func FormatNotification(m *models.StatusUpdateMessage) string {
	timestamp := m.Timestamp.Format("2006-01-02 15:04:05")

	if m.Entity == models.EntityPayment {
		switch models.PaymentStatus(m.NewStatus) {
		case models.PaymentApproved:
			return fmt.Sprintf("💳 [%s] Payment %d for order %d has been approved.", timestamp, m.EntityID, m.OrderID)
		default:
			return fmt.Sprintf("💳 [%s] Payment %d for order %d changed from '%s' to '%s'.",
				timestamp, m.EntityID, m.OrderID, m.OldStatus, m.NewStatus)
		}
	}

	switch models.OrderStatus(m.NewStatus) {
	case models.OrderInProgress:
		if m.OldStatus == "" {
			return fmt.Sprintf("📝 [%s] Order %d has been received and is in progress.", timestamp, m.OrderID)
		}
	case models.OrderPaid:
		return fmt.Sprintf("🎉 [%s] Order %d has been paid! Thank you for your business.", timestamp, m.OrderID)
	case models.OrderCancelled:
		return fmt.Sprintf("❌ [%s] Order %d has been cancelled.", timestamp, m.OrderID)
	}

	return fmt.Sprintf("📋 [%s] Order %d status changed from '%s' to '%s' by %s.",
		timestamp, m.OrderID, m.OldStatus, m.NewStatus, m.ChangedBy)
}
