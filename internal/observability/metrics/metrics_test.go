package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestTimeclockMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTimeclockMetrics(reg)
	m.ObserveClockAction("clock_in", "accepted")
	m.ObserveClockAction("clock_in", "accepted")
	m.ObserveClockAction("clock_out", "rejected")
	m.ObserveSummaryLatency(0.02)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got := counterValue(families, "clipperdesk_timeclock_clock_actions_total", "clock_in", "accepted"); got != 2 {
		t.Errorf("clock_in accepted = %v, want 2", got)
	}
	if got := counterValue(families, "clipperdesk_timeclock_clock_actions_total", "clock_out", "rejected"); got != 1 {
		t.Errorf("clock_out rejected = %v, want 1", got)
	}
}

func TestSMSMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSMSMetrics(reg)
	m.ObserveOutbound("reminder", "sent")
	m.ObserveOTP("verify", "ok")
}

func TestMetricsNilSafe(t *testing.T) {
	var tc *TimeclockMetrics
	tc.ObserveClockAction("clock_in", "accepted")
	tc.ObserveSummaryLatency(0.1)

	var sms *SMSMetrics
	sms.ObserveOutbound("reminder", "sent")
	sms.ObserveOTP("request", "ok")
}

func counterValue(families []*dto.MetricFamily, name string, labelValues ...string) float64 {
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
	metric:
		for _, m := range fam.GetMetric() {
			if len(m.GetLabel()) != len(labelValues) {
				continue
			}
			for i, l := range m.GetLabel() {
				if l.GetValue() != labelValues[i] {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return -1
}
