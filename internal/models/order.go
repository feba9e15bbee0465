package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderInProgress OrderStatus = "EM_ANDAMENTO"
	OrderPaid       OrderStatus = "PAGO"
	OrderCancelled  OrderStatus = "CANCELADO"
)

var orderStatusAliases = map[string]OrderStatus{
	"EM_ANDAMENTO": OrderInProgress,
	"IN_PROGRESS":  OrderInProgress,
	"PAGO":         OrderPaid,
	"PAID":         OrderPaid,
	"CANCELADO":    OrderCancelled,
	"CANCELLED":    OrderCancelled,
	"CANCELED":     OrderCancelled,
}

// orderTransitions lists every allowed move. States without an entry are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderInProgress: {OrderPaid, OrderCancelled},
}

// ParseOrderStatus accepts the wire value or its English alias
func ParseOrderStatus(s string) (OrderStatus, error) {
	if status, ok := orderStatusAliases[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return status, nil
	}
	return "", fmt.Errorf("status must be one of: %s", joinNames([]OrderStatus{OrderInProgress, OrderPaid, OrderCancelled}))
}

// IsTerminal reports whether no transition leaves s
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether the table allows s -> next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem is a line item. Name and unit price are copied from the menu at creation.
type OrderItem struct {
	ID         int64           `json:"id,string,omitempty" db:"id"`
	OrderID    int64           `json:"-" db:"order_id"`
	MenuItemID int64           `json:"itemId,string" db:"menu_item_id"`
	Name       string          `json:"nome" db:"name"`
	UnitPrice  decimal.Decimal `json:"precoUnitario" db:"unit_price"`
	Quantity   int             `json:"quantidade" db:"quantity"`
	Notes      string          `json:"observacoes,omitempty" db:"notes"`
	Subtotal   decimal.Decimal `json:"subtotal" db:"-"`
}

// Order represents a customer order
type Order struct {
	ID           int64           `json:"id,string" db:"id"`
	CustomerName string          `json:"cliente" db:"customer_name"`
	Items        []OrderItem     `json:"itens"`
	TotalAmount  decimal.Decimal `json:"valorTotal" db:"total_amount"`
	Status       OrderStatus     `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// Clone returns a copy that shares no line item storage with o
func (o Order) Clone() Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	return o
}

// OrderItemRequest references a menu item by id
type OrderItemRequest struct {
	MenuItemID ID     `json:"itemId"`
	Quantity   int    `json:"quantidade"`
	Notes      string `json:"observacoes,omitempty"`
}

// CreateOrderRequest represents the request to create a new order
type CreateOrderRequest struct {
	CustomerName string             `json:"cliente"`
	Items        []OrderItemRequest `json:"itens"`
}

// UpdateOrderStatusRequest is the body of PUT /orders/{id}/status
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderStatusHistory represents an entry in the order status log
type OrderStatusHistory struct {
	Status    OrderStatus `json:"status" db:"status"`
	ChangedBy string      `json:"changedBy" db:"changed_by"`
	ChangedAt time.Time   `json:"changedAt" db:"changed_at"`
	Notes     string      `json:"notes,omitempty" db:"notes"`
}

// Validate validates the create order request. Menu references are resolved later.
func (req *CreateOrderRequest) Validate() error {
	if err := validateCustomerName(req.CustomerName); err != nil {
		return err
	}

	if len(req.Items) == 0 {
		return ValidationError{Field: "itens", Message: "at least one item is required"}
	}
	if len(req.Items) > 20 {
		return ValidationError{Field: "itens", Message: "a maximum of 20 items is allowed"}
	}

	for i, item := range req.Items {
		if err := validateOrderItem(item, i); err != nil {
			return err
		}
	}

	return nil
}

// NewLineItem copies name and price from the menu item and computes the subtotal
func NewLineItem(req OrderItemRequest, item *MenuItem) OrderItem {
	line := OrderItem{
		MenuItemID: item.ID,
		Name:       item.Name,
		UnitPrice:  item.Price,
		Quantity:   req.Quantity,
		Notes:      req.Notes,
	}
	line.Subtotal = line.LineTotal()
	return line
}

// LineTotal is unit price times quantity
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CalculateTotalAmount sums unit price times quantity over the line items
func CalculateTotalAmount(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// validateCustomerName validates the customer name field
func validateCustomerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "cliente", Message: "customer name is required"}
	}
	if utf8.RuneCountInString(name) > 100 {
		return ValidationError{Field: "cliente", Message: "customer name must not exceed 100 characters"}
	}
	return nil
}

// validateOrderItem validates a single line item
func validateOrderItem(item OrderItemRequest, index int) error {
	prefix := fmt.Sprintf("itens[%d]", index)

	if item.MenuItemID <= 0 {
		return ValidationError{Field: prefix + ".itemId", Message: "item id is required"}
	}
	if item.Quantity < 1 || item.Quantity > 99 {
		return ValidationError{Field: prefix + ".quantidade", Message: "quantity must be between 1 and 99"}
	}
	if utf8.RuneCountInString(item.Notes) > 255 {
		return ValidationError{Field: prefix + ".observacoes", Message: "notes must not exceed 255 characters"}
	}
	return nil
}
