package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	t.Fatalf("metric family %q not found", name)
	return nil
}

func labelValue(metric *dto.Metric, name string) string {
	for _, label := range metric.GetLabel() {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}

func TestOrderMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetricsWithRegisterer(reg)

	m.RecordOrderCreated()
	m.RecordOrderCreated()
	m.RecordCreateFailed(ReasonUnknownProduct)
	m.RecordStatusChanged("DELIVERED")

	created := gather(t, reg, "orders_created_total")
	require.Equal(t, 2.0, created.GetMetric()[0].GetCounter().GetValue())

	failed := gather(t, reg, "orders_create_failed_total")
	require.Len(t, failed.GetMetric(), 1)
	require.Equal(t, ReasonUnknownProduct, labelValue(failed.GetMetric()[0], "reason"))
	require.Equal(t, 1.0, failed.GetMetric()[0].GetCounter().GetValue())

	changed := gather(t, reg, "orders_status_changed_total")
	require.Equal(t, "DELIVERED", labelValue(changed.GetMetric()[0], "status"))
}

func TestOrderMetrics_HistogramAndGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetricsWithRegisterer(reg)

	m.ObserveProductValidation("ok", 20*time.Millisecond)
	m.ObserveProductValidation("ok", 40*time.Millisecond)

	hist := gather(t, reg, "orders_product_validation_duration_seconds")
	require.EqualValues(t, 2, hist.GetMetric()[0].GetHistogram().GetSampleCount())
	require.InDelta(t, 0.06, hist.GetMetric()[0].GetHistogram().GetSampleSum(), 0.001)

	m.OperationStarted()
	m.OperationStarted()
	m.OperationFinished()
	gauge := gather(t, reg, "orders_in_flight")
	require.Equal(t, 1.0, gauge.GetMetric()[0].GetGauge().GetValue())
}

func TestOrderMetrics_ReRegistrationReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewOrderMetricsWithRegisterer(reg)
	second := NewOrderMetricsWithRegisterer(reg)

	first.RecordOrderCreated()
	second.RecordOrderCreated()

	created := gather(t, reg, "orders_created_total")
	require.Equal(t, 2.0, created.GetMetric()[0].GetCounter().GetValue())
}

func TestOrderMetrics_NilReceiver(t *testing.T) {
	var m *OrderMetrics
	require.NotPanics(t, func() {
		m.RecordOrderCreated()
		m.RecordCreateFailed(ReasonPersistence)
		m.RecordStatusChanged("PENDING")
		m.ObserveProductValidation("ok", time.Millisecond)
		m.OperationStarted()
		m.OperationFinished()
	})
}

func TestRegister_PanicsOnTypeMismatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{Name: "orders_created_total", Help: "conflicting"}))

	require.Panics(t, func() {
		NewOrderMetricsWithRegisterer(reg)
	})
}
