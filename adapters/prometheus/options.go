package prometheus

import "github.com/prometheus/client_golang/prometheus"

// MetricsCollectorOptions defines the options for configuring MetricsCollector.
type MetricsCollectorOptions func(*MetricsCollector)

// WithServiceName sets the metric name prefix.
func WithServiceName(serviceName string) MetricsCollectorOptions {
	return func(collector *MetricsCollector) {
		if serviceName != "" {
			collector.serviceName = serviceName
		}
	}
}

// WithRegistry sets the Prometheus registry for the metrics collector.
func WithRegistry(registry *prometheus.Registry) MetricsCollectorOptions {
	return func(collector *MetricsCollector) {
		collector.registry = registry
	}
}

// ServiceName returns the service name.
func (collector *MetricsCollector) ServiceName() string {
	return collector.serviceName
}

// Registry returns the Prometheus registry.
func (collector *MetricsCollector) Registry() *prometheus.Registry {
	return collector.registry
}

// HttpRequestsInFlight returns the gauge metric for the number of HTTP requests in flight.
func (collector *MetricsCollector) HttpRequestsInFlight() prometheus.Gauge {
	return collector.httpRequestsInFlight
}

// RequestCount returns the counter metric for the number of HTTP requests.
func (collector *MetricsCollector) RequestCount() *prometheus.CounterVec {
	return collector.requestCount
}

// RequestDuration returns the histogram metric for the duration of HTTP requests.
func (collector *MetricsCollector) RequestDuration() *prometheus.HistogramVec {
	return collector.requestDuration
}

// ResponseSize returns the histogram metric for the size of HTTP responses.
func (collector *MetricsCollector) ResponseSize() *prometheus.HistogramVec {
	return collector.responseSize
}

// OpenChannels returns the open channel gauge.
func (collector *MetricsCollector) OpenChannels() prometheus.Gauge {
	return collector.openChannels
}
