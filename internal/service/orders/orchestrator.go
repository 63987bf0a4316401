// Пакет orders реализует жизненный цикл заказа: создание с проверкой товаров,
// постраничную выборку, чтение с подстановкой названий и смену статуса.
package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
)

// CreateItem — позиция во входящем запросе на создание.
type CreateItem struct {
	ProductID domain.ProductID
	Quantity  int32
}

// CreateOrderInput — запрос на создание заказа.
type CreateOrderInput struct {
	Items []CreateItem
}

// Option настраивает Orchestrator.
type Option func(*Orchestrator)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithOutbox включает публикацию событий заказа через outbox.
func WithOutbox(repo domain.OutboxRepository) Option {
	return func(o *Orchestrator) {
		o.outbox = repo
	}
}

// WithMetrics подключает метрики.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithClock подменяет источник времени для событий.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// Orchestrator связывает хранилище заказов и сервис товаров. Собственного состояния не имеет.
type Orchestrator struct {
	store    domain.OrderStore
	products domain.ProductValidator
	outbox   domain.OutboxRepository
	logger   *log.Entry
	metrics  *metrics.OrderMetrics
	now      func() time.Time
}

// NewOrchestrator создаёт оркестратор заказов.
func NewOrchestrator(store domain.OrderStore, products domain.ProductValidator, options ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		products: products,
		now:      time.Now,
	}
	for _, option := range options {
		option(o)
	}
	if o.logger == nil {
		o.logger = log.WithField("component", "orders")
	}
	return o
}

// Create проверяет товары одним вызовом, считает итоги по ценам из ответа и атомарно сохраняет заказ.
// Любая ошибка после проверки входа оборачивает ErrOrderCreationFailed вместе с исходной причиной.
func (o *Orchestrator) Create(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	o.metrics.OperationStarted()
	defer o.metrics.OperationFinished()

	if err := validateCreateInput(in); err != nil {
		o.metrics.RecordCreateFailed(metrics.ReasonValidation)
		return domain.Order{}, err
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, domain.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	ids := domain.DistinctProductIDs(items)

	products, err := o.products.Validate(ctx, ids)
	if err != nil {
		o.logger.WithError(err).WithField("product_ids", ids).Warn("product validation failed")
		o.metrics.RecordCreateFailed(metrics.ReasonUpstream)
		return domain.Order{}, fmt.Errorf("%w: %w", domain.ErrOrderCreationFailed, err)
	}

	index := domain.ProductIndex(products)
	for i := range items {
		snapshot, ok := index[items[i].ProductID]
		if !ok {
			o.metrics.RecordCreateFailed(metrics.ReasonUnknownProduct)
			return domain.Order{}, fmt.Errorf("%w: %w: %d", domain.ErrOrderCreationFailed, domain.ErrUnknownProduct, items[i].ProductID)
		}
		items[i].Price = snapshot.Price
	}

	amount, qty := domain.ComputeTotals(items)
	order := domain.Order{
		Status:      domain.OrderStatusPending,
		TotalAmount: amount,
		TotalItems:  qty,
		Items:       items,
	}

	// NOTE: запись не прерывается отменой ctx вызывающего: транзакция либо завершится, либо откатится по таймауту хранилища.
	created, err := o.store.CreateOrderWithItems(context.WithoutCancel(ctx), order)
	if err != nil {
		o.logger.WithError(err).WithField("product_ids", ids).Error("persist order failed")
		o.metrics.RecordCreateFailed(metrics.ReasonPersistence)
		return domain.Order{}, fmt.Errorf("%w: %w", domain.ErrOrderCreationFailed, err)
	}

	decorate(created.Items, index)
	o.metrics.RecordOrderCreated()
	o.enqueue(ctx, domain.NewOrderEvent(domain.EventTypeOrderCreated, created, "", o.now()))

	o.logger.WithFields(log.Fields{
		"order_id":     created.ID,
		"total_amount": created.TotalAmount.String(),
		"total_items":  created.TotalItems,
	}).Info("order created")

	return created, nil
}

// FindAll возвращает страницу заказов без позиций и названий товаров.
func (o *Orchestrator) FindAll(ctx context.Context, req domain.PaginationRequest) (domain.PaginationResult, error) {
	o.metrics.OperationStarted()
	defer o.metrics.OperationFinished()

	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return domain.PaginationResult{}, err
	}

	filter := req.Filter()
	total, err := o.store.CountOrders(ctx, filter)
	if err != nil {
		return domain.PaginationResult{}, fmt.Errorf("%w: count orders: %w", domain.ErrStoreUnavailable, err)
	}

	data, err := o.store.FindOrders(ctx, filter, req.Offset(), req.Limit)
	if err != nil {
		return domain.PaginationResult{}, fmt.Errorf("%w: find orders: %w", domain.ErrStoreUnavailable, err)
	}

	return domain.NewPaginationResult(data, total, req), nil
}

// FindOne возвращает заказ с названиями товаров, полученными одним вызовом сервиса товаров.
func (o *Orchestrator) FindOne(ctx context.Context, id string) (domain.Order, error) {
	o.metrics.OperationStarted()
	defer o.metrics.OperationFinished()

	return o.findOne(ctx, id)
}

func (o *Orchestrator) findOne(ctx context.Context, id string) (domain.Order, error) {
	if id == "" {
		return domain.Order{}, domain.ErrOrderIDRequired
	}

	order, err := o.store.FindOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("%w: find order %s: %w", domain.ErrStoreUnavailable, id, err)
	}

	ids := order.ProductIDs()
	if len(ids) == 0 {
		return order, nil
	}

	products, err := o.products.Validate(ctx, ids)
	if err != nil {
		o.logger.WithError(err).WithFields(log.Fields{
			"order_id":    id,
			"product_ids": ids,
		}).Warn("resolve product names failed")
		return domain.Order{}, fmt.Errorf("resolve product names: %w", err)
	}

	index := domain.ProductIndex(products)
	for _, pid := range ids {
		if _, ok := index[pid]; !ok {
			return domain.Order{}, fmt.Errorf("%w: %d", domain.ErrUnknownProduct, pid)
		}
	}
	decorate(order.Items, index)

	return order, nil
}

// ChangeStatus переводит заказ в новый статус. Повтор с тем же статусом ничего не пишет
// и возвращает заказ без изменений. Допустимость перехода не проверяется.
func (o *Orchestrator) ChangeStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	o.metrics.OperationStarted()
	defer o.metrics.OperationFinished()

	if !status.Valid() {
		return domain.Order{}, domain.ErrInvalidStatus
	}

	order, err := o.findOne(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if order.Status == status {
		return order, nil
	}
	if order.Status.Terminal() {
		// NOTE: переход из терминального статуса не запрещён, только помечается в логах.
		o.logger.WithFields(log.Fields{
			"order_id": id,
			"from":     order.Status,
			"to":       status,
		}).Warn("order leaves terminal status")
	}

	updated, err := o.store.UpdateOrderStatus(context.WithoutCancel(ctx), id, status)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return domain.Order{}, err
		}
		o.logger.WithError(err).WithField("order_id", id).Error("persist status change failed")
		return domain.Order{}, fmt.Errorf("%w: %w", domain.ErrOrderCreationFailed, err)
	}

	updated.Items = order.Items
	o.metrics.RecordStatusChanged(string(status))
	o.enqueue(ctx, domain.NewOrderEvent(domain.EventTypeOrderStatusChanged, updated, order.Status, o.now()))

	o.logger.WithFields(log.Fields{
		"order_id": id,
		"from":     order.Status,
		"to":       status,
	}).Info("order status changed")

	return updated, nil
}

// enqueue кладёт событие в outbox. Заказ уже сохранён, поэтому ошибка только логируется.
func (o *Orchestrator) enqueue(ctx context.Context, event domain.OrderEvent) {
	if o.outbox == nil {
		return
	}

	msg, err := event.OutboxMessage()
	if err == nil {
		_, err = o.outbox.Enqueue(context.WithoutCancel(ctx), msg)
	}
	if err != nil {
		o.logger.WithError(err).WithFields(log.Fields{
			"order_id":   event.OrderID,
			"event_type": event.EventType,
		}).Warn("failed to enqueue order event")
	}
}

func validateCreateInput(in CreateOrderInput) error {
	if len(in.Items) == 0 {
		return domain.ErrItemsRequired
	}
	var total int64
	for _, item := range in.Items {
		if item.ProductID <= 0 {
			return domain.ErrProductIDInvalid
		}
		if item.Quantity < 1 {
			return domain.ErrItemQtyInvalid
		}
		total += int64(item.Quantity)
	}
	if total > math.MaxInt32 {
		return fmt.Errorf("%w: %d", domain.ErrTotalItemsOverflow, total)
	}
	return nil
}

func decorate(items []domain.OrderItem, index map[domain.ProductID]domain.ProductSnapshot) {
	for i := range items {
		items[i].Name = index[items[i].ProductID].Name
	}
}
