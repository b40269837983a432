package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewMutationMetricsWithRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMutationMetricsWithRegisterer(reg)
	if m == nil {
		t.Fatal("expected metrics instance")
	}

	// Повторная регистрация должна вернуть уже существующие коллекторы.
	again := newMutationMetricsWithRegisterer(reg)
	if again == nil {
		t.Fatal("expected metrics instance on re-register")
	}
}

func TestRecordMutation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMutationMetricsWithRegisterer(reg)

	m.RecordMutation("createCustomer", true, 5*time.Millisecond)
	m.RecordMutation("createCustomer", false, time.Millisecond)
	m.RecordMutation("createOrder", true, time.Millisecond)

	metric := &dto.Metric{}
	if err := m.mutationsTotal.WithLabelValues("createCustomer", "ok").Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected counter value 1.0, got %f", metric.Counter.GetValue())
	}

	if err := m.mutationsTotal.WithLabelValues("createCustomer", "error").Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected counter value 1.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordRestock(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMutationMetricsWithRegisterer(reg)

	m.RecordRestock(3, 0)

	metric := &dto.Metric{}
	if err := m.restockedProducts.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 3.0 {
		t.Errorf("expected counter value 3.0, got %f", metric.Counter.GetValue())
	}

	gauge := &dto.Metric{}
	if err := m.lowStockProducts.Write(gauge); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}
	if gauge.Gauge.GetValue() != 0.0 {
		t.Errorf("expected gauge value 0.0, got %f", gauge.Gauge.GetValue())
	}
}

func TestRecordOutboxEvent(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMutationMetricsWithRegisterer(reg)

	m.RecordOutboxEvent()
	m.RecordOutboxEvent()

	metric := &dto.Metric{}
	if err := m.outboxEvents.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected counter value 2.0, got %f", metric.Counter.GetValue())
	}
}
