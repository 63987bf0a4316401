package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
)

func newOrder(productID domain.ProductID, qty int32, price string) domain.Order {
	items := []domain.OrderItem{
		{ProductID: productID, Quantity: qty, Price: decimal.RequireFromString(price), Name: "decorated"},
	}
	amount, total := domain.ComputeTotals(items)
	return domain.Order{
		Status:      domain.OrderStatusPending,
		TotalAmount: amount,
		TotalItems:  total,
		Items:       items,
	}
}

func TestOrderStore_CreateFind(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()

	created, err := store.CreateOrderWithItems(ctx, newOrder(1, 5, "2.00"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.NotEmpty(t, created.Items[0].ID)
	require.Empty(t, created.Items[0].Name, "names are not persisted")
	require.False(t, created.CreatedAt.IsZero())

	stored, err := store.FindOrderByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, stored.ID)
	require.Len(t, stored.Items, 1)
	require.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(10)))
}

func TestOrderStore_CreateRejectsBrokenAggregate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()

	order := newOrder(1, 1, "1.00")
	order.TotalAmount = decimal.NewFromInt(100)
	_, err := store.CreateOrderWithItems(ctx, order)
	require.ErrorIs(t, err, domain.ErrAmountMismatch)

	total, err := store.CountOrders(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestOrderStore_CreateDuplicateID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()

	order := newOrder(1, 1, "1.00")
	order.ID = "order-1"
	_, err := store.CreateOrderWithItems(ctx, order)
	require.NoError(t, err)

	_, err = store.CreateOrderWithItems(ctx, order)
	require.ErrorIs(t, err, domain.ErrOrderAlreadyExists)
}

func TestOrderStore_FindOrderByID_NotFound(t *testing.T) {
	_, err := memory.NewOrderStore().FindOrderByID(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderStore_FindOrders_InsertionOrderAndWindow(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()

	ids := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		created, err := store.CreateOrderWithItems(ctx, newOrder(domain.ProductID(i+1), 1, "1"))
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	page, err := store.FindOrders(ctx, domain.OrderFilter{}, 20, 10)
	require.NoError(t, err)
	require.Len(t, page, 5)
	for i, order := range page {
		require.Equal(t, ids[20+i], order.ID)
		require.Nil(t, order.Items, "list view carries no items")
	}

	empty, err := store.FindOrders(ctx, domain.OrderFilter{}, 30, 10)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestOrderStore_FilterByStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()

	var delivered string
	for i := 0; i < 3; i++ {
		created, err := store.CreateOrderWithItems(ctx, newOrder(1, 1, "1"))
		require.NoError(t, err)
		if i == 1 {
			delivered = created.ID
		}
	}
	_, err := store.UpdateOrderStatus(ctx, delivered, domain.OrderStatusDelivered)
	require.NoError(t, err)

	filter := domain.OrderFilter{Status: domain.OrderStatusDelivered}
	total, err := store.CountOrders(ctx, filter)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	orders, err := store.FindOrders(ctx, filter, 0, 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, delivered, orders[0].ID)

	pending, err := store.CountOrders(ctx, domain.OrderFilter{Status: domain.OrderStatusPending})
	require.NoError(t, err)
	require.EqualValues(t, 2, pending)
}

func TestOrderStore_UpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()

	created, err := store.CreateOrderWithItems(ctx, newOrder(1, 1, "1"))
	require.NoError(t, err)

	updated, err := store.UpdateOrderStatus(ctx, created.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusCancelled, updated.Status)
	require.Len(t, updated.Items, 1)
	require.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	_, err = store.UpdateOrderStatus(ctx, "missing", domain.OrderStatusCancelled)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = store.UpdateOrderStatus(ctx, created.ID, "LOST")
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestOrderStore_ReturnedOrdersAreCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()

	created, err := store.CreateOrderWithItems(ctx, newOrder(1, 1, "1"))
	require.NoError(t, err)
	created.Items[0].Quantity = 99

	stored, err := store.FindOrderByID(ctx, created.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, stored.Items[0].Quantity)
}

func TestOrderStore_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := store.CreateOrderWithItems(ctx, newOrder(domain.ProductID(i+1), int32(i+1), "1")); err != nil {
				errs <- fmt.Errorf("worker %d: %w", i, err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	total, err := store.CountOrders(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	require.EqualValues(t, workers, total)
}

func TestOrderStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := memory.NewOrderStore()
	_, err := store.CreateOrderWithItems(ctx, newOrder(1, 1, "1"))
	require.ErrorIs(t, err, context.Canceled)
	require.NoError(t, store.Ping(context.Background()))
}
