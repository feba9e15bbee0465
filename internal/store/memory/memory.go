// Package memory implements store.Store in process memory.
//
// Transactions take the write lock and run against a copy of the dataset that
// replaces the live one only when the transaction function succeeds.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"restaurant-ordering/internal/models"
	"restaurant-ordering/internal/store"
)

type dataset struct {
	lastMenuID    int64
	lastOrderID   int64
	lastItemID    int64
	lastPaymentID int64

	menu     map[int64]models.MenuItem
	orders   map[int64]models.Order
	history  map[int64][]models.OrderStatusHistory
	payments map[int64]models.Payment
}

func newDataset() *dataset {
	return &dataset{
		menu:     make(map[int64]models.MenuItem),
		orders:   make(map[int64]models.Order),
		history:  make(map[int64][]models.OrderStatusHistory),
		payments: make(map[int64]models.Payment),
	}
}

// clone copies every map. Stored values are never mutated in place, so slices
// inside them may be shared.
func (d *dataset) clone() *dataset {
	c := *d
	c.menu = maps.Clone(d.menu)
	c.orders = maps.Clone(d.orders)
	c.history = maps.Clone(d.history)
	c.payments = maps.Clone(d.payments)
	return &c
}

// Store keeps all data in memory
type Store struct {
	mu   sync.RWMutex
	data *dataset
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		data: newDataset(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) WithTx(ctx context.Context, fn func(q store.Queries) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.data.clone()
	if err := fn(queries{d: staged, now: s.now}); err != nil {
		return err
	}

	s.data = staged
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() {}

func (s *Store) read(fn func(q queries) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(queries{d: s.data, now: s.now})
}

func (s *Store) write(fn func(q queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(queries{d: s.data, now: s.now})
}

func (s *Store) InsertMenuItem(ctx context.Context, item *models.MenuItem) error {
	return s.write(func(q queries) error { return q.InsertMenuItem(ctx, item) })
}

func (s *Store) GetMenuItem(ctx context.Context, id int64) (item *models.MenuItem, err error) {
	err = s.read(func(q queries) error {
		item, err = q.GetMenuItem(ctx, id)
		return err
	})
	return item, err
}

func (s *Store) ListMenuItems(ctx context.Context, page models.PageRequest) (items []models.MenuItem, total int64, err error) {
	err = s.read(func(q queries) error {
		items, total, err = q.ListMenuItems(ctx, page)
		return err
	})
	return items, total, err
}

func (s *Store) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	return s.write(func(q queries) error { return q.UpdateMenuItem(ctx, item) })
}

func (s *Store) DeleteMenuItem(ctx context.Context, id int64) error {
	return s.write(func(q queries) error { return q.DeleteMenuItem(ctx, id) })
}

func (s *Store) InsertOrder(ctx context.Context, order *models.Order) error {
	return s.write(func(q queries) error { return q.InsertOrder(ctx, order) })
}

func (s *Store) GetOrder(ctx context.Context, id int64) (order *models.Order, err error) {
	err = s.read(func(q queries) error {
		order, err = q.GetOrder(ctx, id)
		return err
	})
	return order, err
}

func (s *Store) LockOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.GetOrder(ctx, id)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	return s.write(func(q queries) error { return q.UpdateOrderStatus(ctx, id, status) })
}

func (s *Store) InsertStatusLog(ctx context.Context, orderID int64, entry models.OrderStatusHistory) error {
	return s.write(func(q queries) error { return q.InsertStatusLog(ctx, orderID, entry) })
}

func (s *Store) ListStatusLog(ctx context.Context, orderID int64) (history []models.OrderStatusHistory, err error) {
	err = s.read(func(q queries) error {
		history, err = q.ListStatusLog(ctx, orderID)
		return err
	})
	return history, err
}

func (s *Store) InsertPayment(ctx context.Context, payment *models.Payment) error {
	return s.write(func(q queries) error { return q.InsertPayment(ctx, payment) })
}

func (s *Store) GetPayment(ctx context.Context, id int64) (payment *models.Payment, err error) {
	err = s.read(func(q queries) error {
		payment, err = q.GetPayment(ctx, id)
		return err
	})
	return payment, err
}

func (s *Store) LockPayment(ctx context.Context, id int64) (*models.Payment, error) {
	return s.GetPayment(ctx, id)
}

func (s *Store) UpdatePaymentStatus(ctx context.Context, id int64, status models.PaymentStatus, approvedAt *time.Time) error {
	return s.write(func(q queries) error { return q.UpdatePaymentStatus(ctx, id, status, approvedAt) })
}

func (s *Store) ListPaymentsByOrder(ctx context.Context, orderID int64) (payments []models.Payment, err error) {
	err = s.read(func(q queries) error {
		payments, err = q.ListPaymentsByOrder(ctx, orderID)
		return err
	})
	return payments, err
}

// queries operates on one dataset without locking
type queries struct {
	d   *dataset
	now func() time.Time
}

func (q queries) InsertMenuItem(_ context.Context, item *models.MenuItem) error {
	q.d.lastMenuID++
	now := q.now()
	item.ID = q.d.lastMenuID
	item.CreatedAt = now
	item.UpdatedAt = now
	q.d.menu[item.ID] = *item
	return nil
}

func (q queries) GetMenuItem(_ context.Context, id int64) (*models.MenuItem, error) {
	item, ok := q.d.menu[id]
	if !ok {
		return nil, models.NotFoundError{Entity: models.EntityMenuItem, ID: id}
	}
	return &item, nil
}

func (q queries) ListMenuItems(_ context.Context, page models.PageRequest) ([]models.MenuItem, int64, error) {
	ids := slices.Sorted(maps.Keys(q.d.menu))
	total := int64(len(ids))

	start := max(min(page.Offset(), len(ids)), 0)
	end := min(start+page.Size, len(ids))

	items := make([]models.MenuItem, 0, end-start)
	for _, id := range ids[start:end] {
		items = append(items, q.d.menu[id])
	}
	return items, total, nil
}

func (q queries) UpdateMenuItem(_ context.Context, item *models.MenuItem) error {
	existing, ok := q.d.menu[item.ID]
	if !ok {
		return models.NotFoundError{Entity: models.EntityMenuItem, ID: item.ID}
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = q.now()
	q.d.menu[item.ID] = *item
	return nil
}

func (q queries) DeleteMenuItem(_ context.Context, id int64) error {
	if _, ok := q.d.menu[id]; !ok {
		return models.NotFoundError{Entity: models.EntityMenuItem, ID: id}
	}
	delete(q.d.menu, id)
	return nil
}

func (q queries) InsertOrder(_ context.Context, order *models.Order) error {
	q.d.lastOrderID++
	now := q.now()
	order.ID = q.d.lastOrderID
	order.CreatedAt = now
	order.UpdatedAt = now
	for i := range order.Items {
		q.d.lastItemID++
		order.Items[i].ID = q.d.lastItemID
		order.Items[i].OrderID = order.ID
	}
	q.d.orders[order.ID] = order.Clone()
	return nil
}

func (q queries) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	order, ok := q.d.orders[id]
	if !ok {
		return nil, models.NotFoundError{Entity: models.EntityOrder, ID: id}
	}
	order = order.Clone()
	return &order, nil
}

func (q queries) LockOrder(ctx context.Context, id int64) (*models.Order, error) {
	return q.GetOrder(ctx, id)
}

func (q queries) UpdateOrderStatus(_ context.Context, id int64, status models.OrderStatus) error {
	order, ok := q.d.orders[id]
	if !ok {
		return models.NotFoundError{Entity: models.EntityOrder, ID: id}
	}
	order.Status = status
	order.UpdatedAt = q.now()
	q.d.orders[id] = order
	return nil
}

func (q queries) InsertStatusLog(_ context.Context, orderID int64, entry models.OrderStatusHistory) error {
	if _, ok := q.d.orders[orderID]; !ok {
		return fmt.Errorf("failed to insert status log: order %d does not exist", orderID)
	}
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = q.now()
	}
	// append to a fresh slice so a cloned dataset never sees the new entry
	q.d.history[orderID] = append(slices.Clone(q.d.history[orderID]), entry)
	return nil
}

func (q queries) ListStatusLog(_ context.Context, orderID int64) ([]models.OrderStatusHistory, error) {
	history := slices.Clone(q.d.history[orderID])
	if history == nil {
		history = []models.OrderStatusHistory{}
	}
	return history, nil
}

func (q queries) InsertPayment(_ context.Context, payment *models.Payment) error {
	if _, ok := q.d.orders[payment.OrderID]; !ok {
		return models.ReferenceError("pedidoId", fmt.Sprintf("order %d does not exist", payment.OrderID))
	}
	q.d.lastPaymentID++
	payment.ID = q.d.lastPaymentID
	payment.CreatedAt = q.now()
	q.d.payments[payment.ID] = *payment
	return nil
}

func (q queries) GetPayment(_ context.Context, id int64) (*models.Payment, error) {
	payment, ok := q.d.payments[id]
	if !ok {
		return nil, models.NotFoundError{Entity: models.EntityPayment, ID: id}
	}
	return &payment, nil
}

func (q queries) LockPayment(ctx context.Context, id int64) (*models.Payment, error) {
	return q.GetPayment(ctx, id)
}

func (q queries) UpdatePaymentStatus(_ context.Context, id int64, status models.PaymentStatus, approvedAt *time.Time) error {
	payment, ok := q.d.payments[id]
	if !ok {
		return models.NotFoundError{Entity: models.EntityPayment, ID: id}
	}
	payment.Status = status
	payment.ApprovedAt = approvedAt
	q.d.payments[id] = payment
	return nil
}

func (q queries) ListPaymentsByOrder(_ context.Context, orderID int64) ([]models.Payment, error) {
	payments := []models.Payment{}
	for _, id := range slices.Sorted(maps.Keys(q.d.payments)) {
		if p := q.d.payments[id]; p.OrderID == orderID {
			payments = append(payments, p)
		}
	}
	return payments, nil
}
