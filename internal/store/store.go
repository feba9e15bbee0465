// Package store defines the persistence boundary shared by the menu, order and
// payment services.
//
// Lookups of unknown identifiers return models.NotFoundError. Insert methods fill
// in the generated id and timestamps on the value passed in. Lock methods behave
// like their Get counterparts but, inside WithTx, hold the row until the
// transaction ends; outside a transaction they are plain reads.
package store

import (
	"context"
	"time"

	"restaurant-ordering/internal/models"
)

type MenuQueries interface {
	InsertMenuItem(ctx context.Context, item *models.MenuItem) error
	GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error)
	ListMenuItems(ctx context.Context, page models.PageRequest) ([]models.MenuItem, int64, error)
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
	DeleteMenuItem(ctx context.Context, id int64) error
}

type OrderQueries interface {
	// InsertOrder writes the order and its line items
	InsertOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	LockOrder(ctx context.Context, id int64) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
	InsertStatusLog(ctx context.Context, orderID int64, entry models.OrderStatusHistory) error
	ListStatusLog(ctx context.Context, orderID int64) ([]models.OrderStatusHistory, error)
}

type PaymentQueries interface {
	InsertPayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	LockPayment(ctx context.Context, id int64) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status models.PaymentStatus, approvedAt *time.Time) error
	ListPaymentsByOrder(ctx context.Context, orderID int64) ([]models.Payment, error)
}

// Queries is every operation available both inside and outside a transaction
type Queries interface {
	MenuQueries
	OrderQueries
	PaymentQueries
}

// Store is a Queries bound to the backend plus a unit-of-work boundary
type Store interface {
	Queries

	// WithTx runs fn in a transaction. Everything fn wrote is committed when it
	// returns nil and discarded otherwise.
	WithTx(ctx context.Context, fn func(q Queries) error) error

	Ping(ctx context.Context) error
	Close()
}
