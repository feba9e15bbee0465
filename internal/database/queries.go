package database

// Menu queries
const (
	InsertMenuItemSQL = `
		INSERT INTO menu_items (name, description, price, category, available)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	GetMenuItemSQL = `
		SELECT id, name, description, price, category, available, created_at, updated_at
		FROM menu_items WHERE id = $1`

	ListMenuItemsSQL = `
		SELECT id, name, description, price, category, available, created_at, updated_at
		FROM menu_items
		ORDER BY id ASC
		LIMIT $1 OFFSET $2`

	CountMenuItemsSQL = `SELECT COUNT(*) FROM menu_items`

	UpdateMenuItemSQL = `
		UPDATE menu_items
		SET name = $2, description = $3, price = $4, category = $5, available = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`

	DeleteMenuItemSQL = `DELETE FROM menu_items WHERE id = $1`
)

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (customer_name, total_amount, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, menu_item_id, name, unit_price, quantity, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	GetOrderSQL = `
		SELECT id, customer_name, total_amount, status, created_at, updated_at
		FROM orders WHERE id = $1`

	LockOrderSQL = GetOrderSQL + ` FOR UPDATE`

	GetOrderItemsSQL = `
		SELECT id, order_id, menu_item_id, name, unit_price, quantity, notes
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $2, updated_at = NOW()
		WHERE id = $1`

	InsertOrderStatusLogSQL = `
		INSERT INTO order_status_log (order_id, status, changed_by, notes)
		VALUES ($1, $2, $3, $4)`

	GetOrderStatusHistorySQL = `
		SELECT status, changed_by, changed_at, notes
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC`
)

// Payment queries
const (
	InsertPaymentSQL = `
		INSERT INTO payments (order_id, amount, type, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	GetPaymentSQL = `
		SELECT id, order_id, amount, type, status, created_at, approved_at
		FROM payments WHERE id = $1`

	LockPaymentSQL = GetPaymentSQL + ` FOR UPDATE`

	UpdatePaymentStatusSQL = `
		UPDATE payments SET status = $2, approved_at = $3
		WHERE id = $1`

	ListPaymentsByOrderSQL = `
		SELECT id, order_id, amount, type, status, created_at, approved_at
		FROM payments
		WHERE order_id = $1
		ORDER BY id ASC`
)
