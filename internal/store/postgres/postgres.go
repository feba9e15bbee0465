// Package postgres implements store.Store on a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"restaurant-ordering/internal/database"
	"restaurant-ordering/internal/models"
	"restaurant-ordering/internal/store"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL backed store
type Store struct {
	queries
	db *database.DB
}

var _ store.Store = (*Store)(nil)

func New(db *database.DB) *Store {
	return &Store{
		queries: queries{db: db.Pool},
		db:      db,
	}
}

// WithTx runs fn inside a database transaction
func (s *Store) WithTx(ctx context.Context, fn func(q store.Queries) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(queries{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() {
	s.db.Close()
}

type queries struct {
	db dbtx
}

func (q queries) InsertMenuItem(ctx context.Context, item *models.MenuItem) error {
	err := q.db.QueryRow(ctx, database.InsertMenuItemSQL,
		item.Name, item.Description, item.Price, string(item.Category), item.Available,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert menu item: %w", err)
	}
	return nil
}

func (q queries) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	item, err := scanMenuItem(q.db.QueryRow(ctx, database.GetMenuItemSQL, id))
	if err != nil {
		return nil, notFound(err, models.EntityMenuItem, id)
	}
	return item, nil
}

func (q queries) ListMenuItems(ctx context.Context, page models.PageRequest) ([]models.MenuItem, int64, error) {
	var total int64
	if err := q.db.QueryRow(ctx, database.CountMenuItemsSQL).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count menu items: %w", err)
	}

	rows, err := q.db.Query(ctx, database.ListMenuItemsSQL, page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate menu items: %w", err)
	}

	return items, total, nil
}

func (q queries) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	err := q.db.QueryRow(ctx, database.UpdateMenuItemSQL,
		item.ID, item.Name, item.Description, item.Price, string(item.Category), item.Available,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return notFound(err, models.EntityMenuItem, item.ID)
	}
	return nil
}

func (q queries) DeleteMenuItem(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, database.DeleteMenuItemSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFoundError{Entity: models.EntityMenuItem, ID: id}
	}
	return nil
}

func (q queries) InsertOrder(ctx context.Context, order *models.Order) error {
	err := q.db.QueryRow(ctx, database.InsertOrderSQL,
		order.CustomerName, order.TotalAmount, string(order.Status),
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err := q.db.QueryRow(ctx, database.InsertOrderItemSQL,
			order.ID, item.MenuItemID, item.Name, item.UnitPrice, item.Quantity, item.Notes,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item %d: %w", i, err)
		}
	}

	return nil
}

func (q queries) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return q.getOrder(ctx, database.GetOrderSQL, id)
}

func (q queries) LockOrder(ctx context.Context, id int64) (*models.Order, error) {
	return q.getOrder(ctx, database.LockOrderSQL, id)
}

func (q queries) getOrder(ctx context.Context, sql string, id int64) (*models.Order, error) {
	var order models.Order
	err := q.db.QueryRow(ctx, sql, id).Scan(
		&order.ID,
		&order.CustomerName,
		&order.TotalAmount,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, models.EntityOrder, id)
	}

	rows, err := q.db.Query(ctx, database.GetOrderItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	order.Items = []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.MenuItemID,
			&item.Name,
			&item.UnitPrice,
			&item.Quantity,
			&item.Notes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		item.Subtotal = item.LineTotal()
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}

	return &order, nil
}

func (q queries) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	tag, err := q.db.Exec(ctx, database.UpdateOrderStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFoundError{Entity: models.EntityOrder, ID: id}
	}
	return nil
}

func (q queries) InsertStatusLog(ctx context.Context, orderID int64, entry models.OrderStatusHistory) error {
	_, err := q.db.Exec(ctx, database.InsertOrderStatusLogSQL, orderID, string(entry.Status), entry.ChangedBy, entry.Notes)
	if err != nil {
		return fmt.Errorf("failed to insert status log: %w", err)
	}
	return nil
}

func (q queries) ListStatusLog(ctx context.Context, orderID int64) ([]models.OrderStatusHistory, error) {
	rows, err := q.db.Query(ctx, database.GetOrderStatusHistorySQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order history: %w", err)
	}
	defer rows.Close()

	history := []models.OrderStatusHistory{}
	for rows.Next() {
		var entry models.OrderStatusHistory
		if err := rows.Scan(&entry.Status, &entry.ChangedBy, &entry.ChangedAt, &entry.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan order history row: %w", err)
		}
		history = append(history, entry)
	}

	return history, rows.Err()
}

func (q queries) InsertPayment(ctx context.Context, payment *models.Payment) error {
	err := q.db.QueryRow(ctx, database.InsertPaymentSQL,
		payment.OrderID, payment.Amount, string(payment.Type), string(payment.Status),
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return models.ReferenceError("pedidoId", fmt.Sprintf("order %d does not exist", payment.OrderID))
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (q queries) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	payment, err := scanPayment(q.db.QueryRow(ctx, database.GetPaymentSQL, id))
	if err != nil {
		return nil, notFound(err, models.EntityPayment, id)
	}
	return payment, nil
}

func (q queries) LockPayment(ctx context.Context, id int64) (*models.Payment, error) {
	payment, err := scanPayment(q.db.QueryRow(ctx, database.LockPaymentSQL, id))
	if err != nil {
		return nil, notFound(err, models.EntityPayment, id)
	}
	return payment, nil
}

func (q queries) UpdatePaymentStatus(ctx context.Context, id int64, status models.PaymentStatus, approvedAt *time.Time) error {
	tag, err := q.db.Exec(ctx, database.UpdatePaymentStatusSQL, id, string(status), approvedAt)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFoundError{Entity: models.EntityPayment, ID: id}
	}
	return nil
}

func (q queries) ListPaymentsByOrder(ctx context.Context, orderID int64) ([]models.Payment, error) {
	rows, err := q.db.Query(ctx, database.ListPaymentsByOrderSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *payment)
	}

	return payments, rows.Err()
}

func scanMenuItem(row pgx.Row) (*models.MenuItem, error) {
	var item models.MenuItem
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.Category,
		&item.Available,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var payment models.Payment
	err := row.Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.Amount,
		&payment.Type,
		&payment.Status,
		&payment.CreatedAt,
		&payment.ApprovedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// notFound maps pgx.ErrNoRows to models.NotFoundError and wraps anything else
func notFound(err error, entity string, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NotFoundError{Entity: entity, ID: id}
	}
	return fmt.Errorf("failed to query %s %d: %w", entity, id, err)
}
