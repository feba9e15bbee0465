package order

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-ordering/internal/logger"
	"restaurant-ordering/internal/messaging/messagingtest"
	"restaurant-ordering/internal/models"
	"restaurant-ordering/internal/store/memory"
)

type fixture struct {
	store     *memory.Store
	publisher *messagingtest.Recorder
	service   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	pub := &messagingtest.Recorder{}
	return &fixture{
		store:     st,
		publisher: pub,
		service:   NewService(st, pub, logger.NewWithWriter("test", io.Discard, slog.LevelDebug)),
	}
}

func (f *fixture) addMenuItem(t *testing.T, name, price string, available bool) int64 {
	t.Helper()
	item := &models.MenuItem{
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Category:  models.CategoryPizza,
		Available: available,
	}
	require.NoError(t, f.store.InsertMenuItem(context.Background(), item))
	return item.ID
}

func TestCreateOrder_ComputesTotal(t *testing.T) {
	f := newFixture(t)
	pizza := f.addMenuItem(t, "Pizza Margherita", "35.90", true)
	soda := f.addMenuItem(t, "Refrigerante", "5.50", true)

	order, err := f.service.CreateOrder(context.Background(), &models.CreateOrderRequest{
		CustomerName: "Maria Silva",
		Items: []models.OrderItemRequest{
			{MenuItemID: models.ID(pizza), Quantity: 1},
			{MenuItemID: models.ID(soda), Quantity: 2, Notes: "sem gelo"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderInProgress, order.Status)
	assert.Equal(t, "46.90", order.TotalAmount.StringFixed(2))
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Refrigerante", order.Items[1].Name)
	assert.Equal(t, "11.00", order.Items[1].Subtotal.StringFixed(2))
	assert.Equal(t, "sem gelo", order.Items[1].Notes)

	history, err := f.service.GetHistory(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.OrderInProgress, history[0].Status)
	assert.Equal(t, models.ChangedByOrderService, history[0].ChangedBy)

	msgs := f.publisher.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "order.EM_ANDAMENTO", msgs[0].RoutingKey())
}

func TestCreateOrder_CopiesMenuSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pizza := f.addMenuItem(t, "Pizza Margherita", "35.90", true)

	order, err := f.service.CreateOrder(ctx, &models.CreateOrderRequest{
		CustomerName: "Joao",
		Items:        []models.OrderItemRequest{{MenuItemID: models.ID(pizza), Quantity: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteMenuItem(ctx, pizza))

	got, err := f.service.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pizza Margherita", got.Items[0].Name)
	assert.Equal(t, "71.80", got.TotalAmount.StringFixed(2))
}

func TestCreateOrder_RejectsBadReferences(t *testing.T) {
	tests := []struct {
		name      string
		available bool
		itemID    func(id int64) int64
		wantField string
	}{
		{"unknown item", true, func(int64) int64 { return 999 }, "itens[1].itemId"},
		{"unavailable item", false, func(id int64) int64 { return id }, "itens[1].itemId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			ok := f.addMenuItem(t, "Pizza", "30.00", true)
			other := f.addMenuItem(t, "Sobremesa", "12.00", tt.available)

			_, err := f.service.CreateOrder(ctx, &models.CreateOrderRequest{
				CustomerName: "Ana",
				Items: []models.OrderItemRequest{
					{MenuItemID: models.ID(ok), Quantity: 1},
					{MenuItemID: models.ID(tt.itemID(other)), Quantity: 1},
				},
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrInvalidReference))

			var ve models.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantField, ve.Field)

			_, err = f.service.GetOrder(ctx, 1)
			assert.True(t, models.IsNotFound(err), "nothing may be written")
			assert.Empty(t, f.publisher.Messages())
		})
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateOrder(context.Background(), &models.CreateOrderRequest{CustomerName: "Ana"})
	assert.True(t, models.IsValidation(err))

	_, err = f.service.CreateOrder(context.Background(), &models.CreateOrderRequest{
		Items: []models.OrderItemRequest{{MenuItemID: 1, Quantity: 1}},
	})
	assert.True(t, models.IsValidation(err))
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name       string
		initial    models.OrderStatus
		requested  string
		wantStatus models.OrderStatus
		wantErr    error
	}{
		{"cancel in progress", models.OrderInProgress, "CANCELADO", models.OrderCancelled, nil},
		{"cancel with english alias", models.OrderInProgress, "cancelled", models.OrderCancelled, nil},
		{"paid only through payment", models.OrderInProgress, "PAGO", "", models.ErrInvalidTransition},
		{"same status", models.OrderInProgress, "EM_ANDAMENTO", "", models.ErrInvalidTransition},
		{"cancel paid order", models.OrderPaid, "CANCELADO", "", models.ErrInvalidTransition},
		{"reopen cancelled order", models.OrderCancelled, "EM_ANDAMENTO", "", models.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)

			order := &models.Order{CustomerName: "Ana", Status: tt.initial}
			require.NoError(t, f.store.InsertOrder(ctx, order))

			updated, err := f.service.UpdateStatus(ctx, order.ID, &models.UpdateOrderStatusRequest{Status: tt.requested})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, models.IsValidation(err))

				got, err := f.service.GetOrder(ctx, order.ID)
				require.NoError(t, err)
				assert.Equal(t, tt.initial, got.Status)

				history, err := f.store.ListStatusLog(ctx, order.ID)
				require.NoError(t, err)
				assert.Empty(t, history)
				assert.Empty(t, f.publisher.Messages())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, updated.Status)

			history, err := f.store.ListStatusLog(ctx, order.ID)
			require.NoError(t, err)
			require.Len(t, history, 1)
			assert.Equal(t, tt.wantStatus, history[0].Status)

			msgs := f.publisher.Messages()
			require.Len(t, msgs, 1)
			assert.Equal(t, string(tt.initial), msgs[0].OldStatus)
			assert.Equal(t, string(tt.wantStatus), msgs[0].NewStatus)
		})
	}
}

func TestUpdateStatus_InvalidInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.service.UpdateStatus(ctx, 1, &models.UpdateOrderStatusRequest{Status: ""})
	assert.True(t, models.IsValidation(err))

	_, err = f.service.UpdateStatus(ctx, 1, &models.UpdateOrderStatusRequest{Status: "ENTREGUE"})
	assert.True(t, models.IsValidation(err))

	_, err = f.service.UpdateStatus(ctx, 42, &models.UpdateOrderStatusRequest{Status: "CANCELADO"})
	assert.True(t, models.IsNotFound(err))
}

func TestUpdateStatus_PublishFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.publisher.Err = errors.New("broker unavailable")

	order := &models.Order{CustomerName: "Ana", Status: models.OrderInProgress}
	require.NoError(t, f.store.InsertOrder(ctx, order))

	updated, err := f.service.UpdateStatus(ctx, order.ID, &models.UpdateOrderStatusRequest{Status: "CANCELADO"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, updated.Status)
}

func TestGetHistory_UnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.GetHistory(context.Background(), 7)
	assert.True(t, models.IsNotFound(err))
}
