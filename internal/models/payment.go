package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDENTE"
	PaymentApproved PaymentStatus = "APROVADO"
)

var paymentStatusAliases = map[string]PaymentStatus{
	"PENDENTE": PaymentPending,
	"PENDING":  PaymentPending,
	"APROVADO": PaymentApproved,
	"APPROVED": PaymentApproved,
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentApproved},
}

// ParsePaymentStatus accepts the wire value or its English alias
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	if status, ok := paymentStatusAliases[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return status, nil
	}
	return "", fmt.Errorf("status must be one of: %s", joinNames([]PaymentStatus{PaymentPending, PaymentApproved}))
}

func (s PaymentStatus) IsTerminal() bool {
	return len(paymentTransitions[s]) == 0
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentType represents how the customer pays
type PaymentType string

const (
	PaymentCash   PaymentType = "A_VISTA"
	PaymentCredit PaymentType = "CARTAO_CREDITO"
	PaymentDebit  PaymentType = "CARTAO_DEBITO"
	PaymentPix    PaymentType = "PIX"
)

var paymentTypes = []PaymentType{PaymentCash, PaymentCredit, PaymentDebit, PaymentPix}

// ParsePaymentType validates a payment type name. CASH is accepted for A_VISTA.
func ParsePaymentType(s string) (PaymentType, error) {
	t := PaymentType(strings.ToUpper(strings.TrimSpace(s)))
	if t == "CASH" {
		return PaymentCash, nil
	}
	for _, known := range paymentTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("tipoPagamento must be one of: %s", joinNames(paymentTypes))
}

// Payment represents a payment against an order
type Payment struct {
	ID         int64           `json:"id,string" db:"id"`
	OrderID    int64           `json:"pedidoId,string" db:"order_id"`
	Amount     decimal.Decimal `json:"valor" db:"amount"`
	Type       PaymentType     `json:"tipoPagamento" db:"type"`
	Status     PaymentStatus   `json:"status" db:"status"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	ApprovedAt *time.Time      `json:"approvedAt,omitempty" db:"approved_at"`
}

// CreatePaymentRequest represents the request to create a payment
type CreatePaymentRequest struct {
	OrderID ID               `json:"pedidoId"`
	Amount  *decimal.Decimal `json:"valor"`
	Type    string           `json:"tipoPagamento"`
	Status  string           `json:"status,omitempty"`
}

// Validate checks the request fields. The order reference is resolved by the service.
func (req *CreatePaymentRequest) Validate() (*Payment, error) {
	if req.OrderID <= 0 {
		return nil, ValidationError{Field: "pedidoId", Message: "order id is required"}
	}

	if req.Amount == nil {
		return nil, ValidationError{Field: "valor", Message: "amount is required"}
	}
	if !req.Amount.IsPositive() {
		return nil, ValidationError{Field: "valor", Message: "amount must be greater than 0"}
	}
	if !req.Amount.Equal(req.Amount.Round(2)) {
		return nil, ValidationError{Field: "valor", Message: "amount must have at most 2 decimal places"}
	}

	if strings.TrimSpace(req.Type) == "" {
		return nil, ValidationError{Field: "tipoPagamento", Message: "payment type is required"}
	}
	paymentType, err := ParsePaymentType(req.Type)
	if err != nil {
		return nil, ValidationError{Field: "tipoPagamento", Message: err.Error()}
	}

	if req.Status != "" {
		status, err := ParsePaymentStatus(req.Status)
		if err != nil {
			return nil, ValidationError{Field: "status", Message: err.Error()}
		}
		if status != PaymentPending {
			return nil, ValidationError{Field: "status", Message: "new payments must be PENDENTE"}
		}
	}

	return &Payment{
		OrderID: int64(req.OrderID),
		Amount:  *req.Amount,
		Type:    paymentType,
		Status:  PaymentPending,
	}, nil
}
