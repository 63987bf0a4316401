package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// orderStoreInMemory — in-memory реализация OrderStore. Порядок выдачи совпадает с порядком вставки.
type orderStoreInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
	order []string
	now   func() time.Time
}

// NewOrderStore возвращает in-memory хранилище для локальной разработки и тестов.
func NewOrderStore() *orderStoreInMemory {
	return &orderStoreInMemory{
		items: make(map[string]domain.Order),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrderWithItems сохраняет заказ целиком под одной блокировкой.
func (s *orderStoreInMemory) CreateOrderWithItems(ctx context.Context, order domain.Order) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}

	order = order.Clone()
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.NewString()
		}
		order.Items[i].Name = ""
	}
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, errs[0]
	}

	now := s.now()
	order.CreatedAt = now
	order.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[order.ID]; exists {
		return domain.Order{}, domain.ErrOrderAlreadyExists
	}
	s.items[order.ID] = order
	s.order = append(s.order, order.ID)

	return order.Clone(), nil
}

// CountOrders считает заказы, подходящие под фильтр.
func (s *orderStoreInMemory) CountOrders(ctx context.Context, filter domain.OrderFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, id := range s.order {
		if filter.Matches(s.items[id]) {
			total++
		}
	}
	return total, nil
}

// FindOrders возвращает окно [skip, skip+take) среди подходящих заказов без позиций.
func (s *orderStoreInMemory) FindOrders(ctx context.Context, filter domain.OrderFilter, skip, take int) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if skip < 0 {
		skip = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Order, 0)
	matched := 0
	for _, id := range s.order {
		order := s.items[id]
		if !filter.Matches(order) {
			continue
		}
		matched++
		if matched <= skip {
			continue
		}
		if take > 0 && len(result) >= take {
			break
		}
		order.Items = nil
		result = append(result, order)
	}
	return result, nil
}

// FindOrderByID возвращает заказ или ErrOrderNotFound.
func (s *orderStoreInMemory) FindOrderByID(ctx context.Context, id string) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order.Clone(), nil
}

// UpdateOrderStatus меняет статус заказа.
func (s *orderStoreInMemory) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}
	if !status.Valid() {
		return domain.Order{}, domain.ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = s.now()
	s.items[id] = order

	return order.Clone(), nil
}

// Ping всегда успешен; нужен для health-check.
func (s *orderStoreInMemory) Ping(context.Context) error {
	return nil
}

var _ domain.OrderStore = (*orderStoreInMemory)(nil)
