// Package prometheus collects HTTP and request/reply metrics on a private registry.
package prometheus

import (
	"strings"
	"time"

	"github.com/abhissng/relay/engine"
	"github.com/abhissng/relay/utils/constant"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector is a struct for collecting Prometheus metrics.
type MetricsCollector struct {
	registry             *prometheus.Registry
	serviceName          string
	requestCount         *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	responseSize         *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	sends            *prometheus.CounterVec
	waitSeconds      *prometheus.HistogramVec
	openChannels     prometheus.Gauge
	discardedReplies *prometheus.CounterVec
}

var _ engine.Metrics = (*MetricsCollector)(nil)

// NewMetricsCollector creates a new Prometheus metrics collector with options.
func NewMetricsCollector(options ...MetricsCollectorOptions) *MetricsCollector {
	collector := &MetricsCollector{serviceName: constant.DefaultServiceName}
	for _, option := range options {
		option(collector)
	}
	if collector.registry == nil {
		collector.registry = prometheus.NewRegistry()
		collector.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	collector.serviceName = metricPrefix(collector.serviceName)
	collector.registerDefaultMetrics()
	return collector
}

func metricPrefix(name string) string {
	return strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(name)
}

func (mc *MetricsCollector) registerDefaultMetrics() {
	factory := promauto.With(mc.registry)
	labels := []string{"service", "method", "path", "status_code"}

	mc.requestCount = factory.NewCounterVec(prometheus.CounterOpts{
		Name: mc.serviceName + "_http_requests_total",
		Help: "Total number of HTTP requests",
	}, labels)

	mc.requestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    mc.serviceName + "_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, labels)

	mc.responseSize = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    mc.serviceName + "_http_response_size_bytes",
		Help:    "Size of HTTP responses",
		Buckets: prometheus.ExponentialBuckets(100, 10, 8),
	}, labels)

	mc.httpRequestsInFlight = factory.NewGauge(prometheus.GaugeOpts{
		Name: mc.serviceName + "_http_requests_in_flight",
		Help: "Current number of HTTP requests in flight",
	})

	mc.sends = factory.NewCounterVec(prometheus.CounterOpts{
		Name: mc.serviceName + "_sends_total",
		Help: "Synchronous requests by service and final state",
	}, []string{"service", "outcome"})

	mc.waitSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    mc.serviceName + "_wait_seconds",
		Help:    "Time from send to final state",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"service"})

	mc.openChannels = factory.NewGauge(prometheus.GaugeOpts{
		Name: mc.serviceName + "_open_channels",
		Help: "Broker channels currently held by coordinators",
	})

	mc.discardedReplies = factory.NewCounterVec(prometheus.CounterOpts{
		Name: mc.serviceName + "_discarded_replies_total",
		Help: "Result queue deliveries acknowledged without being returned",
	}, []string{"service", "reason"})
}

// ObserveSend records the final state of one Send.
func (mc *MetricsCollector) ObserveSend(service string, state engine.State, wait time.Duration) {
	mc.sends.WithLabelValues(service, state.String()).Inc()
	mc.waitSeconds.WithLabelValues(service).Observe(wait.Seconds())
}

// ChannelOpened increments the open channel gauge.
func (mc *MetricsCollector) ChannelOpened() {
	mc.openChannels.Inc()
}

// ChannelClosed decrements the open channel gauge.
func (mc *MetricsCollector) ChannelClosed() {
	mc.openChannels.Dec()
}

// ReplyDiscarded counts a delivery that did not answer the pending request.
func (mc *MetricsCollector) ReplyDiscarded(service, reason string) {
	mc.discardedReplies.WithLabelValues(service, reason).Inc()
}
