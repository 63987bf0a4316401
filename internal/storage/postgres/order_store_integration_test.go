package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

func sampleOrder(items ...domain.OrderItem) domain.Order {
	amount, qty := domain.ComputeTotals(items)
	return domain.Order{
		Status:      domain.OrderStatusPending,
		TotalAmount: amount,
		TotalItems:  qty,
		Items:       items,
	}
}

func TestOrderStore_PostgresCreateFindAndUpdate(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderStore(store)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := repo.CreateOrderWithItems(ctx, sampleOrder(
		domain.OrderItem{ProductID: 7, Quantity: 2, Price: decimal.RequireFromString("19.99"), Name: "ignored"},
		domain.OrderItem{ProductID: 3, Quantity: 1, Price: decimal.RequireFromString("0.01")},
	))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	got, err := repo.FindOrderByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPending, got.Status)
	require.True(t, got.TotalAmount.Equal(decimal.RequireFromString("39.99")), "total=%s", got.TotalAmount)
	require.EqualValues(t, 3, got.TotalItems)
	require.Len(t, got.Items, 2)
	require.Equal(t, domain.ProductID(7), got.Items[0].ProductID, "items keep insertion order")
	require.Empty(t, got.Items[0].Name)

	updated, err := repo.UpdateOrderStatus(ctx, created.ID, domain.OrderStatusDelivered)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusDelivered, updated.Status)
	require.Len(t, updated.Items, 2)
	require.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestOrderStore_PostgresPaginationAndFilter(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderStore(store)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	ids := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		created, err := repo.CreateOrderWithItems(ctx, sampleOrder(
			domain.OrderItem{ProductID: domain.ProductID(i + 1), Quantity: 1, Price: decimal.NewFromInt(1)},
		))
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	total, err := repo.CountOrders(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 25, total)

	page, err := repo.FindOrders(ctx, domain.OrderFilter{}, 20, 10)
	require.NoError(t, err)
	require.Len(t, page, 5)
	for i, order := range page {
		require.Equal(t, ids[20+i], order.ID)
	}

	_, err = repo.UpdateOrderStatus(ctx, ids[4], domain.OrderStatusCancelled)
	require.NoError(t, err)

	filter := domain.OrderFilter{Status: domain.OrderStatusCancelled}
	cancelled, err := repo.CountOrders(ctx, filter)
	require.NoError(t, err)
	require.EqualValues(t, 1, cancelled)

	filtered, err := repo.FindOrders(ctx, filter, 0, 10)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, ids[4], filtered[0].ID)
}

func TestOrderStore_PostgresErrors(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderStore(store)
	ctx := context.Background()

	_, err := repo.FindOrderByID(ctx, "not-a-uuid")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = repo.FindOrderByID(ctx, "0b7c7a0e-6f0e-4b8e-8d53-1d7c0c3a9f11")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = repo.UpdateOrderStatus(ctx, "0b7c7a0e-6f0e-4b8e-8d53-1d7c0c3a9f11", domain.OrderStatusDelivered)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	order := sampleOrder(domain.OrderItem{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(5)})
	order.ID = "6a3b1c56-3f3b-45a4-9a53-8f4a0d8c2e01"
	_, err = repo.CreateOrderWithItems(ctx, order)
	require.NoError(t, err)
	_, err = repo.CreateOrderWithItems(ctx, order)
	require.ErrorIs(t, err, domain.ErrOrderAlreadyExists)

	total, err := repo.CountOrders(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total, "failed insert must not leave rows behind")
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("expected unique violation for code 23505")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "22001"}) {
		t.Fatal("unexpected unique violation for non-unique code")
	}
	if isUniqueViolation(errors.New("plain error")) {
		t.Fatal("plain error must not be unique violation")
	}
}

func TestFilterClause(t *testing.T) {
	where, args := filterClause(domain.OrderFilter{})
	require.Empty(t, where)
	require.Empty(t, args)

	where, args = filterClause(domain.OrderFilter{Status: domain.OrderStatusPending})
	require.Equal(t, " WHERE status = $1", where)
	require.Equal(t, []any{"PENDING"}, args)
}
