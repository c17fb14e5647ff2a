package metrics

import "github.com/prometheus/client_golang/prometheus"

// TimeclockMetrics exposes counters/histograms for clock actions and
// summary reads.
type TimeclockMetrics struct {
	clockActions   *prometheus.CounterVec
	summaryLatency prometheus.Histogram
}

func NewTimeclockMetrics(reg prometheus.Registerer) *TimeclockMetrics {
	m := &TimeclockMetrics{
		clockActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clipperdesk",
			Subsystem: "timeclock",
			Name:      "clock_actions_total",
			Help:      "Clock actions submitted, by action and outcome",
		}, []string{"action", "outcome"}),
		summaryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clipperdesk",
			Subsystem: "timeclock",
			Name:      "summary_latency_seconds",
			Help:      "Latency of cross-barber summary computation",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.clockActions, m.summaryLatency)
	return m
}

func (m *TimeclockMetrics) ObserveClockAction(action, outcome string) {
	if m == nil {
		return
	}
	m.clockActions.WithLabelValues(action, outcome).Inc()
}

func (m *TimeclockMetrics) ObserveSummaryLatency(seconds float64) {
	if m == nil {
		return
	}
	m.summaryLatency.Observe(seconds)
}

// SMSMetrics counts outbound SMS sends and OTP verifications.
type SMSMetrics struct {
	outboundTotal *prometheus.CounterVec
	otpTotal      *prometheus.CounterVec
}

func NewSMSMetrics(reg prometheus.Registerer) *SMSMetrics {
	m := &SMSMetrics{
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clipperdesk",
			Subsystem: "sms",
			Name:      "outbound_total",
			Help:      "Total outbound SMS sends",
		}, []string{"purpose", "status"}),
		otpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clipperdesk",
			Subsystem: "sms",
			Name:      "otp_total",
			Help:      "OTP requests and verification outcomes",
		}, []string{"stage", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.outboundTotal, m.otpTotal)
	return m
}

func (m *SMSMetrics) ObserveOutbound(purpose, status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(purpose, status).Inc()
}

func (m *SMSMetrics) ObserveOTP(stage, outcome string) {
	if m == nil {
		return
	}
	m.otpTotal.WithLabelValues(stage, outcome).Inc()
}
