package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Причины неудачного создания заказа (label reason).
const (
	ReasonValidation     = "validation"
	ReasonUnknownProduct = "unknown_product"
	ReasonUpstream       = "upstream"
	ReasonPersistence    = "persistence"
)

// OrderMetrics содержит метрики жизненного цикла заказа.
// Методы безопасны для nil-получателя.
type OrderMetrics struct {
	ordersCreated      prometheus.Counter
	createFailed       *prometheus.CounterVec
	statusChanged      *prometheus.CounterVec
	productValidation  *prometheus.HistogramVec
	inFlightOperations prometheus.Gauge
}

// NewOrderMetrics регистрирует метрики в DefaultRegisterer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer регистрирует метрики в указанном registerer.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: register(registerer, "orders_created_total", prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders created",
		})),
		createFailed: register(registerer, "orders_create_failed_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_create_failed_total",
			Help: "Total number of failed order creations grouped by reason",
		}, []string{"reason"})),
		statusChanged: register(registerer, "orders_status_changed_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_status_changed_total",
			Help: "Total number of persisted order status changes grouped by target status",
		}, []string{"status"})),
		productValidation: register(registerer, "orders_product_validation_duration_seconds", prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orders_product_validation_duration_seconds",
			Help:    "Duration of validate-product calls in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"result"})),
		inFlightOperations: register(registerer, "orders_in_flight", prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orders_in_flight",
			Help: "Number of order operations currently in progress",
		})),
	}
}

func register[T prometheus.Collector](registerer prometheus.Registerer, name string, collector T) T {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", name))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector %q: %v", name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *OrderMetrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// RecordCreateFailed увеличивает счётчик неудачных созданий.
func (m *OrderMetrics) RecordCreateFailed(reason string) {
	if m == nil {
		return
	}
	m.createFailed.WithLabelValues(reason).Inc()
}

// RecordStatusChanged увеличивает счётчик смен статуса.
func (m *OrderMetrics) RecordStatusChanged(status string) {
	if m == nil {
		return
	}
	m.statusChanged.WithLabelValues(status).Inc()
}

// ObserveProductValidation записывает длительность вызова сервиса товаров.
func (m *OrderMetrics) ObserveProductValidation(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.productValidation.WithLabelValues(result).Observe(duration.Seconds())
}

// OperationStarted увеличивает количество операций в работе.
func (m *OrderMetrics) OperationStarted() {
	if m == nil {
		return
	}
	m.inFlightOperations.Inc()
}

// OperationFinished уменьшает количество операций в работе.
func (m *OrderMetrics) OperationFinished() {
	if m == nil {
		return
	}
	m.inFlightOperations.Dec()
}
