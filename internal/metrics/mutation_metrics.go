package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MutationMetrics содержит метрики сервиса мутаций CRM.
type MutationMetrics struct {
	// Счётчик исходов мутаций по имени и результату.
	mutationsTotal *prometheus.CounterVec
	// Гистограмма времени выполнения мутаций.
	mutationDuration *prometheus.HistogramVec
	// Счётчик событий, поставленных в outbox.
	outboxEvents prometheus.Counter
	// Gauge числа товаров с низким остатком после последнего пополнения.
	lowStockProducts prometheus.Gauge
	// Счётчик пополненных товаров.
	restockedProducts prometheus.Counter
}

// NewMutationMetrics создаёт новый экземпляр метрик мутаций.
func NewMutationMetrics() *MutationMetrics {
	return newMutationMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newMutationMetricsWithRegisterer(registerer prometheus.Registerer) *MutationMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &MutationMetrics{
		mutationsTotal: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "crm_mutations_total",
			Help: "Total number of CRM mutations grouped by mutation and result",
		}, []string{"mutation", "result"}),
		mutationDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "crm_mutation_duration_seconds",
			Help:    "Duration of CRM mutations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"mutation"}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "crm_outbox_events_total",
			Help: "Total number of CRM events enqueued to the transactional outbox",
		}),
		lowStockProducts: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "crm_low_stock_products",
			Help: "Number of products below the low-stock threshold after the last restock run",
		}),
		restockedProducts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "crm_restocked_products_total",
			Help: "Total number of products restocked by updateLowStockProducts",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordMutation фиксирует исход мутации и её длительность.
func (m *MutationMetrics) RecordMutation(mutation string, success bool, duration time.Duration) {
	result := "error"
	if success {
		result = "ok"
	}
	m.mutationsTotal.WithLabelValues(mutation, result).Inc()
	m.mutationDuration.WithLabelValues(mutation).Observe(duration.Seconds())
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *MutationMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}

// RecordRestock фиксирует результат пополнения низких остатков.
func (m *MutationMetrics) RecordRestock(restocked, remainingLow int) {
	m.restockedProducts.Add(float64(restocked))
	m.lowStockProducts.Set(float64(remainingLow))
}
