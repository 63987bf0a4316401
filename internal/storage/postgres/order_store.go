package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

const orderColumns = `id, status, total_amount, total_items, created_at, updated_at`

type orderStore struct {
	store *Store
}

// NewOrderStore создаёт PostgreSQL-реализацию OrderStore.
func NewOrderStore(store *Store) domain.OrderStore {
	return &orderStore{store: store}
}

// CreateOrderWithItems вставляет заказ и все позиции в одной транзакции.
func (r *orderStore) CreateOrderWithItems(ctx context.Context, order domain.Order) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	order = order.Clone()
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, errs[0]
	}

	err := r.store.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO orders (id, status, total_amount, total_items)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at, updated_at
		`, order.ID, string(order.Status), order.TotalAmount, order.TotalItems,
		).Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrOrderAlreadyExists
			}
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range order.Items {
			item := &order.Items[i]
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			item.Name = ""
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (id, order_id, position, product_id, quantity, price)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, item.ID, order.ID, i, int64(item.ProductID), item.Quantity, item.Price); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.UpdatedAt.UTC()
	return order, nil
}

// CountOrders считает заказы, подходящие под фильтр.
func (r *orderStore) CountOrders(ctx context.Context, filter domain.OrderFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args := filterClause(filter)
	var total int64
	if err := r.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return total, nil
}

// FindOrders возвращает окно заказов в порядке вставки без позиций.
func (r *orderStore) FindOrders(ctx context.Context, filter domain.OrderFilter, skip, take int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if skip < 0 {
		skip = 0
	}
	where, args := filterClause(filter)
	query := `SELECT ` + orderColumns + ` FROM orders` + where + ` ORDER BY seq`
	if take > 0 {
		args = append(args, take)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	args = append(args, skip)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

// FindOrderByID возвращает заказ с позициями или ErrOrderNotFound.
func (r *orderStore) FindOrderByID(ctx context.Context, id string) (domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	order, err := scanOrder(r.store.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return domain.Order{}, err
	}

	if order.Items, err = r.loadItems(ctx, order.ID); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// UpdateOrderStatus меняет статус одним UPDATE ... RETURNING.
func (r *orderStore) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, domain.ErrInvalidStatus
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	order, err := scanOrder(r.store.db.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+orderColumns, id, string(status)))
	if err != nil {
		return domain.Order{}, err
	}

	if order.Items, err = r.loadItems(ctx, order.ID); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (r *orderStore) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, product_id, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var (
			item      domain.OrderItem
			productID int64
		)
		if err := rows.Scan(&item.ID, &productID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.ProductID = domain.ProductID(productID)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order  domain.Order
		status string
	)
	if err := row.Scan(&order.ID, &status, &order.TotalAmount, &order.TotalItems, &order.CreatedAt, &order.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("scan order: %w", err)
	}
	order.Status = domain.OrderStatus(status)
	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.UpdatedAt.UTC()
	return order, nil
}

func filterClause(filter domain.OrderFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderStore = (*orderStore)(nil)
