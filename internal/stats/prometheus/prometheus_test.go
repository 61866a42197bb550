package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNew_DefaultRegistry(t *testing.T) {
	c := New(nil)
	if c == nil {
		t.Fatal("New(nil) returned nil")
	}
	if c.registry == nil {
		t.Error("registry should not be nil")
	}
}

func TestCollector_IncCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncCounter("test_counter", 5)
	c.IncCounter("test_counter", 3)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := false
	for _, m := range metrics {
		if m.GetName() == "test_counter" {
			found = true
			if len(m.GetMetric()) == 0 {
				t.Fatal("counter has no metrics")
			}
			if val := m.GetMetric()[0].GetCounter().GetValue(); val != 8 {
				t.Errorf("counter value = %v, want 8", val)
			}
		}
	}
	if !found {
		t.Error("counter test_counter not found in registry")
	}
}

func TestCollector_SetGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.SetGauge("test_gauge", 42)
	c.SetGauge("test_gauge", 7)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := false
	for _, m := range metrics {
		if m.GetName() == "test_gauge" {
			found = true
			if len(m.GetMetric()) == 0 {
				t.Fatal("gauge has no metrics")
			}
			if val := m.GetMetric()[0].GetGauge().GetValue(); val != 7 {
				t.Errorf("gauge value = %v, want 7", val)
			}
		}
	}
	if !found {
		t.Error("gauge test_gauge not found in registry")
	}
}

func TestCollector_ObserveHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveHistogram("test_seconds", 0.2)
	c.ObserveHistogram("test_seconds", 1.5)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := false
	for _, m := range metrics {
		if m.GetName() == "test_seconds" {
			found = true
			if len(m.GetMetric()) == 0 {
				t.Fatal("histogram has no metrics")
			}
			h := m.GetMetric()[0].GetHistogram()
			if h.GetSampleCount() != 2 {
				t.Errorf("histogram sample count = %d, want 2", h.GetSampleCount())
			}
		}
	}
	if !found {
		t.Error("histogram test_seconds not found in registry")
	}
}
