package payment

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"restaurant-ordering/internal/logger"
	"restaurant-ordering/internal/messaging"
	"restaurant-ordering/internal/models"
	"restaurant-ordering/internal/store"
	"restaurant-ordering/internal/telemetry"
)

// Service records payments and approves them together with their order
type Service struct {
	store     store.Store
	publisher messaging.StatusPublisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewService creates a new payment service
func NewService(st store.Store, publisher messaging.StatusPublisher, log *logger.Logger) *Service {
	return &Service{
		store:     st,
		publisher: publisher,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreatePayment records a pending payment for an existing order
func (s *Service) CreatePayment(ctx context.Context, req *models.CreatePaymentRequest) (payment *models.Payment, err error) {
	ctx, span := telemetry.StartSpan(ctx, "payment.create", attribute.Int64("order.id", int64(req.OrderID)))
	defer func() { telemetry.End(span, err) }()

	requestID := logger.RequestID(ctx)

	payment, err = req.Validate()
	if err != nil {
		s.logger.Warn("validation_failed", "Payment request validation failed", requestID, map[string]interface{}{
			"order_id": req.OrderID,
			"error":    err.Error(),
		})
		return nil, err
	}

	err = s.store.WithTx(ctx, func(q store.Queries) error {
		if _, err := q.GetOrder(ctx, payment.OrderID); err != nil {
			if models.IsNotFound(err) {
				return models.ReferenceError("pedidoId", fmt.Sprintf("order %d does not exist", payment.OrderID))
			}
			return fmt.Errorf("failed to load order: %w", err)
		}
		return q.InsertPayment(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment_created", "Payment created", requestID, map[string]interface{}{
		"payment_id":   payment.ID,
		"order_id":     payment.OrderID,
		"amount":       payment.Amount.StringFixed(2),
		"payment_type": payment.Type,
	})

	return payment, nil
}

// GetPayment returns the payment
func (s *Service) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	return s.store.GetPayment(ctx, id)
}

// ListByOrder returns every payment recorded for the order
func (s *Service) ListByOrder(ctx context.Context, orderID int64) ([]models.Payment, error) {
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}

	payments, err := s.store.ListPaymentsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// ApprovePayment approves a pending payment and marks its order paid. Both rows
// are locked, payment first, and both changes commit or neither does.
func (s *Service) ApprovePayment(ctx context.Context, id int64) (payment *models.Payment, err error) {
	ctx, span := telemetry.StartSpan(ctx, "payment.approve", attribute.Int64("payment.id", id))
	defer func() { telemetry.End(span, err) }()

	requestID := logger.RequestID(ctx)

	var previousOrderStatus models.OrderStatus
	err = s.store.WithTx(ctx, func(q store.Queries) error {
		current, err := q.LockPayment(ctx, id)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(models.PaymentApproved) {
			return models.TransitionError{
				Entity: models.EntityPayment,
				ID:     id,
				From:   string(current.Status),
				To:     string(models.PaymentApproved),
				Reason: "payment is not pending",
			}
		}

		order, err := q.LockOrder(ctx, current.OrderID)
		if err != nil {
			return fmt.Errorf("failed to lock order %d: %w", current.OrderID, err)
		}
		if !order.Status.CanTransitionTo(models.OrderPaid) {
			return models.TransitionError{
				Entity: models.EntityOrder,
				ID:     order.ID,
				From:   string(order.Status),
				To:     string(models.OrderPaid),
				Reason: "order can no longer be paid",
			}
		}
		previousOrderStatus = order.Status

		approvedAt := s.now()
		if err := q.UpdatePaymentStatus(ctx, id, models.PaymentApproved, &approvedAt); err != nil {
			return fmt.Errorf("failed to update payment status: %w", err)
		}
		if err := q.UpdateOrderStatus(ctx, order.ID, models.OrderPaid); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if err := q.InsertStatusLog(ctx, order.ID, models.OrderStatusHistory{
			Status:    models.OrderPaid,
			ChangedBy: models.ChangedByPaymentService,
			ChangedAt: approvedAt,
			Notes:     fmt.Sprintf("payment %d approved", id),
		}); err != nil {
			return fmt.Errorf("failed to log status change: %w", err)
		}

		current.Status = models.PaymentApproved
		current.ApprovedAt = &approvedAt
		payment = current
		return nil
	})
	if err != nil {
		s.logger.Warn("payment_approval_rejected", "Payment approval failed", requestID, map[string]interface{}{
			"payment_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	s.logger.Info("payment_approved", "Payment approved and order paid", requestID, map[string]interface{}{
		"payment_id": payment.ID,
		"order_id":   payment.OrderID,
		"amount":     payment.Amount.StringFixed(2),
	})

	messaging.PublishAll(ctx, s.publisher, s.logger,
		models.NewPaymentStatusMessage(payment, models.PaymentPending),
		models.NewOrderStatusMessage(payment.OrderID, previousOrderStatus, models.OrderPaid, models.ChangedByPaymentService),
	)

	return payment, nil
}
