package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestAdmissionMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewAdmissionMetrics(reg)

	metrics.ObserveDuration("admitted", 120*time.Millisecond)
	metrics.IncAdmitted()
	metrics.IncRejected(ReasonQuota)
	metrics.IncRejected(ReasonNeedInactive)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	admitted := findMetricFamily(mfs, "shipments_admitted_total")
	if admitted == nil || len(admitted.GetMetric()) == 0 {
		t.Fatal("admitted counter not exported")
	}
	if got := admitted.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected admitted=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "shipments_rejected_total", "reason", ReasonQuota); err != nil {
		t.Fatalf("fetch quota rejections: %v", err)
	} else if got != 1 {
		t.Fatalf("expected quota rejections=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "shipments_rejected_total", "reason", ReasonNeedInactive); err != nil {
		t.Fatalf("fetch need rejections: %v", err)
	} else if got != 1 {
		t.Fatalf("expected need rejections=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "shipment_admission_duration_seconds", "outcome", "admitted"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestAdmissionMetricsNilSafe(t *testing.T) {
	var metrics *AdmissionMetrics
	metrics.IncAdmitted()
	metrics.IncRejected("whatever")
	metrics.ObserveDuration("", time.Second)

	empty := NewAdmissionMetrics(nil)
	empty.IncAdmitted()
	empty.IncRejected(ReasonQuota)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
