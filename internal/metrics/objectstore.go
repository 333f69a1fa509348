// Package metrics defines the Prometheus collectors of the registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "datapackage_registry"

// Status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Bytes direction label values.
const (
	DirectionRead  = "read"
	DirectionWrite = "write"
)

// ObjectStoreMetrics holds metrics related to object store operations.
type ObjectStoreMetrics struct {
	// LatencyHistogram tracks operation latencies by operation and status.
	LatencyHistogram *prometheus.HistogramVec

	// RequestsTotal tracks total operations by operation and status.
	RequestsTotal *prometheus.CounterVec

	// BytesTotal tracks bytes transferred by direction.
	BytesTotal *prometheus.CounterVec
}

// DefaultObjectStoreLatencyBuckets are latency buckets for object store operations.
// Prefix operations touch many objects, so the range reaches a minute.
var DefaultObjectStoreLatencyBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

var operationLabels = []string{"operation", "status"}

func latencyOpts() prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "objectstore",
		Name:      "operation_latency_seconds",
		Help:      "Object store operation latency in seconds, broken down by operation and status.",
		Buckets:   DefaultObjectStoreLatencyBuckets,
	}
}

func requestsOpts() prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "objectstore",
		Name:      "operations_total",
		Help:      "Total number of object store operations, broken down by operation and status.",
	}
}

func bytesOpts() prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "objectstore",
		Name:      "bytes_total",
		Help:      "Total bytes transferred by direction (read/write).",
	}
}

// NewObjectStoreMetrics creates and registers object store metrics.
// Uses promauto for automatic registration with the default registry.
func NewObjectStoreMetrics() *ObjectStoreMetrics {
	return &ObjectStoreMetrics{
		LatencyHistogram: promauto.NewHistogramVec(latencyOpts(), operationLabels),
		RequestsTotal:    promauto.NewCounterVec(requestsOpts(), operationLabels),
		BytesTotal:       promauto.NewCounterVec(bytesOpts(), []string{"direction"}),
	}
}

// NewObjectStoreMetricsWithRegistry creates object store metrics registered with reg.
// Useful for testing to avoid conflicts with the default registry.
func NewObjectStoreMetricsWithRegistry(reg prometheus.Registerer) *ObjectStoreMetrics {
	factory := promauto.With(reg)
	return &ObjectStoreMetrics{
		LatencyHistogram: factory.NewHistogramVec(latencyOpts(), operationLabels),
		RequestsTotal:    factory.NewCounterVec(requestsOpts(), operationLabels),
		BytesTotal:       factory.NewCounterVec(bytesOpts(), []string{"direction"}),
	}
}

// RecordOperation records an operation latency and increments the request counter.
func (m *ObjectStoreMetrics) RecordOperation(operation string, durationSeconds float64, success bool) {
	status := StatusFailure
	if success {
		status = StatusSuccess
	}
	m.LatencyHistogram.WithLabelValues(operation, status).Observe(durationSeconds)
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
}

// RecordBytesRead records bytes read from the object store.
func (m *ObjectStoreMetrics) RecordBytesRead(bytes int64) {
	m.BytesTotal.WithLabelValues(DirectionRead).Add(float64(bytes))
}

// RecordBytesWritten records bytes written to the object store.
func (m *ObjectStoreMetrics) RecordBytesWritten(bytes int64) {
	m.BytesTotal.WithLabelValues(DirectionWrite).Add(float64(bytes))
}
