package domain

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — начальный статус, заказ создан и ждёт исполнения.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusDelivered — заказ доставлен (терминальный статус).
	OrderStatusDelivered OrderStatus = "DELIVERED"
	// OrderStatusCancelled — заказ отменён (терминальный статус).
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses возвращает все статусы в порядке объявления.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusDelivered, OrderStatusCancelled}
}

// Valid проверяет, что статус входит в перечисление.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal сообщает, что из статуса нет штатных переходов.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) String() string {
	return string(s)
}

// ParseOrderStatus разбирает статус без учёта регистра и пробелов по краям.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// OrderItem — позиция заказа. Price фиксируется на момент создания заказа.
type OrderItem struct {
	ID        string
	ProductID ProductID
	Quantity  int32
	Price     decimal.Decimal
	// Name не хранится, а подставляется при чтении из ответа сервиса товаров.
	Name string
}

// Subtotal возвращает price * quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt32(i.Quantity))
}

// Order агрегирует заказ и его позиции.
type Order struct {
	ID          string
	Status      OrderStatus
	TotalAmount decimal.Decimal
	TotalItems  int32
	Items       []OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ComputeTotals сворачивает позиции в сумму заказа и общее количество единиц.
func ComputeTotals(items []OrderItem) (decimal.Decimal, int32) {
	amount := decimal.Zero
	var qty int32
	for _, item := range items {
		amount = amount.Add(item.Subtotal())
		qty += item.Quantity
	}
	return amount, qty
}

// SumQuantities считает общее количество единиц без переполнения int32.
func SumQuantities(items []OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += int64(item.Quantity)
	}
	return total
}

// ProductIDs возвращает уникальные идентификаторы товаров в порядке первого появления.
func (o *Order) ProductIDs() []ProductID {
	return DistinctProductIDs(o.Items)
}

// DistinctProductIDs возвращает уникальные идентификаторы товаров в порядке первого появления.
func DistinctProductIDs(items []OrderItem) []ProductID {
	seen := make(map[ProductID]struct{}, len(items))
	ids := make([]ProductID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// ValidateInvariants проверяет инварианты агрегата и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrInvalidStatus)
	}

	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.Price.IsNegative() {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}

	if SumQuantities(o.Items) > math.MaxInt32 {
		errs = append(errs, ErrTotalItemsOverflow)
	}

	amount, qty := ComputeTotals(o.Items)
	if !amount.Equal(o.TotalAmount) || qty != o.TotalItems {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

// Clone возвращает копию заказа с собственным слайсом позиций.
func (o Order) Clone() Order {
	if o.Items != nil {
		items := make([]OrderItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	return o
}

// OrderFilter ограничивает выборку заказов. Пустой Status означает «любой».
type OrderFilter struct {
	Status OrderStatus
}

// Matches проверяет, подходит ли заказ под фильтр.
func (f OrderFilter) Matches(o Order) bool {
	return f.Status == "" || o.Status == f.Status
}
