package order

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"restaurant-ordering/internal/logger"
	"restaurant-ordering/internal/messaging"
	"restaurant-ordering/internal/models"
	"restaurant-ordering/internal/store"
	"restaurant-ordering/internal/telemetry"
)

// Service creates orders and moves them through their status workflow
type Service struct {
	store     store.Store
	publisher messaging.StatusPublisher
	logger    *logger.Logger
}

// NewService creates a new order service
func NewService(st store.Store, publisher messaging.StatusPublisher, log *logger.Logger) *Service {
	return &Service{
		store:     st,
		publisher: publisher,
		logger:    log,
	}
}

// CreateOrder resolves every line item against the menu and writes the order,
// its line items and the initial status log entry in one transaction
func (s *Service) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (order *models.Order, err error) {
	ctx, span := telemetry.StartSpan(ctx, "order.create", attribute.Int("order.items", len(req.Items)))
	defer func() { telemetry.End(span, err) }()

	requestID := logger.RequestID(ctx)

	if err := req.Validate(); err != nil {
		s.logger.Warn("validation_failed", "Order request validation failed", requestID, map[string]interface{}{
			"customer_name": req.CustomerName,
			"error":         err.Error(),
		})
		return nil, err
	}

	err = s.store.WithTx(ctx, func(q store.Queries) error {
		items := make([]models.OrderItem, 0, len(req.Items))
		for i, line := range req.Items {
			menuItem, err := resolveMenuItem(ctx, q, i, int64(line.MenuItemID))
			if err != nil {
				return err
			}
			items = append(items, models.NewLineItem(line, menuItem))
		}

		order = &models.Order{
			CustomerName: strings.TrimSpace(req.CustomerName),
			Items:        items,
			TotalAmount:  models.CalculateTotalAmount(items),
			Status:       models.OrderInProgress,
		}

		if err := q.InsertOrder(ctx, order); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		return q.InsertStatusLog(ctx, order.ID, models.OrderStatusHistory{
			Status:    order.Status,
			ChangedBy: models.ChangedByOrderService,
			ChangedAt: order.CreatedAt,
			Notes:     "order created",
		})
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("order.id", order.ID))
	s.logger.Info("order_created", "Order created successfully", requestID, map[string]interface{}{
		"order_id":      order.ID,
		"customer_name": order.CustomerName,
		"total_amount":  order.TotalAmount.StringFixed(2),
		"item_count":    len(order.Items),
	})

	messaging.PublishAll(ctx, s.publisher, s.logger,
		models.NewOrderStatusMessage(order.ID, "", order.Status, models.ChangedByOrderService))

	return order, nil
}

// resolveMenuItem loads the referenced item and requires it to be orderable
func resolveMenuItem(ctx context.Context, q store.MenuQueries, index int, id int64) (*models.MenuItem, error) {
	field := fmt.Sprintf("itens[%d].itemId", index)

	item, err := q.GetMenuItem(ctx, id)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.ReferenceError(field, fmt.Sprintf("menu item %d does not exist", id))
		}
		return nil, fmt.Errorf("failed to load menu item %d: %w", id, err)
	}

	if !item.Available {
		return nil, models.ReferenceError(field, fmt.Sprintf("menu item %d is not available", id))
	}
	return item, nil
}

// GetOrder returns the order with its line items
func (s *Service) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// UpdateStatus applies a status change requested by a client. Only cancellation
// is reachable this way; orders become paid through payment approval.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.UpdateOrderStatusRequest) (order *models.Order, err error) {
	ctx, span := telemetry.StartSpan(ctx, "order.update_status", attribute.Int64("order.id", id))
	defer func() { telemetry.End(span, err) }()

	if req.Status == "" {
		return nil, models.ValidationError{Field: "status", Message: "status is required"}
	}
	target, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, models.ValidationError{Field: "status", Message: err.Error()}
	}

	var previous models.OrderStatus
	err = s.store.WithTx(ctx, func(q store.Queries) error {
		current, err := q.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		previous = current.Status

		if err := checkClientTransition(current, target); err != nil {
			return err
		}

		if err := q.UpdateOrderStatus(ctx, id, target); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if err := q.InsertStatusLog(ctx, id, models.OrderStatusHistory{
			Status:    target,
			ChangedBy: models.ChangedByOrderService,
			Notes:     fmt.Sprintf("status changed from %s", previous),
		}); err != nil {
			return fmt.Errorf("failed to log status change: %w", err)
		}

		order, err = q.GetOrder(ctx, id)
		return err
	})
	if err != nil {
		s.logger.Warn("order_status_rejected", "Order status change failed", logger.RequestID(ctx), map[string]interface{}{
			"order_id":         id,
			"requested_status": target,
			"error":            err.Error(),
		})
		return nil, err
	}

	s.logger.Info("order_status_updated", "Order status updated", logger.RequestID(ctx), map[string]interface{}{
		"order_id":   id,
		"old_status": previous,
		"new_status": order.Status,
	})

	messaging.PublishAll(ctx, s.publisher, s.logger,
		models.NewOrderStatusMessage(id, previous, order.Status, models.ChangedByOrderService))

	return order, nil
}

func checkClientTransition(current *models.Order, target models.OrderStatus) error {
	reject := func(reason string) error {
		return models.TransitionError{
			Entity: models.EntityOrder,
			ID:     current.ID,
			From:   string(current.Status),
			To:     string(target),
			Reason: reason,
		}
	}

	switch {
	case current.Status == target:
		return reject("order already has this status")
	case current.Status.IsTerminal():
		return reject("order status is final")
	case target == models.OrderPaid:
		return reject("orders are marked paid by approving a payment")
	case !current.Status.CanTransitionTo(target):
		return reject("")
	}
	return nil
}

// GetHistory returns the status log of the order, oldest first
func (s *Service) GetHistory(ctx context.Context, id int64) ([]models.OrderStatusHistory, error) {
	if _, err := s.store.GetOrder(ctx, id); err != nil {
		return nil, err
	}

	history, err := s.store.ListStatusLog(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load status history: %w", err)
	}
	return history, nil
}
