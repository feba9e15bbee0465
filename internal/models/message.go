package models

import (
	"fmt"
	"time"
)

// Entity names used in errors and status update messages
const (
	EntityMenuItem = "menu item"
	EntityOrder    = "order"
	EntityPayment  = "payment"
)

// Actors recorded in status logs and messages
const (
	ChangedByOrderService   = "order-service"
	ChangedByPaymentService = "payment-service"
)

// StatusUpdateMessage represents a committed status change notification
type StatusUpdateMessage struct {
	Entity    string    `json:"entity"`
	EntityID  int64     `json:"entity_id"`
	OrderID   int64     `json:"order_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedBy string    `json:"changed_by"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOrderStatusMessage creates a StatusUpdateMessage for an order status change
func NewOrderStatusMessage(orderID int64, oldStatus, newStatus OrderStatus, changedBy string) *StatusUpdateMessage {
	return &StatusUpdateMessage{
		Entity:    EntityOrder,
		EntityID:  orderID,
		OrderID:   orderID,
		OldStatus: string(oldStatus),
		NewStatus: string(newStatus),
		ChangedBy: changedBy,
		Timestamp: time.Now().UTC(),
	}
}

// NewPaymentStatusMessage creates a StatusUpdateMessage for a payment status change
func NewPaymentStatusMessage(p *Payment, oldStatus PaymentStatus) *StatusUpdateMessage {
	return &StatusUpdateMessage{
		Entity:    EntityPayment,
		EntityID:  p.ID,
		OrderID:   p.OrderID,
		OldStatus: string(oldStatus),
		NewStatus: string(p.Status),
		ChangedBy: ChangedByPaymentService,
		Timestamp: time.Now().UTC(),
	}
}

// RoutingKey names the message for topic-style consumers, e.g. "order.PAGO"
func (m *StatusUpdateMessage) RoutingKey() string {
	return fmt.Sprintf("%s.%s", m.Entity, m.NewStatus)
}
