package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lifecycle operation label values.
const (
	OpSave         = "save"
	OpFinalize     = "finalize"
	OpTag          = "tag"
	OpSoftDelete   = "soft_delete"
	OpPurge        = "purge"
	OpSignedUpload = "signed_upload"
)

// Outcome label values. The store outcomes name the side that failed, so drift
// between the object store and the metadata store shows up on dashboards.
const (
	OutcomeOK             = "ok"
	OutcomeRejected       = "rejected"
	OutcomeObjectFailure  = "object_store_failure"
	OutcomeMetadataFailed = "metadata_failure"
)

// LifecycleMetrics counts package lifecycle operations by outcome.
type LifecycleMetrics struct {
	OperationsTotal *prometheus.CounterVec
}

func lifecycleOpts() prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "lifecycle",
		Name:      "operations_total",
		Help:      "Total number of package lifecycle operations, broken down by operation and outcome.",
	}
}

// NewLifecycleMetrics creates lifecycle metrics registered with the default registry.
func NewLifecycleMetrics() *LifecycleMetrics {
	return &LifecycleMetrics{
		OperationsTotal: promauto.NewCounterVec(lifecycleOpts(), []string{"operation", "outcome"}),
	}
}

// NewLifecycleMetricsWithRegistry creates lifecycle metrics registered with reg.
func NewLifecycleMetricsWithRegistry(reg prometheus.Registerer) *LifecycleMetrics {
	return &LifecycleMetrics{
		OperationsTotal: promauto.With(reg).NewCounterVec(lifecycleOpts(), []string{"operation", "outcome"}),
	}
}

// Record counts one operation. A nil receiver records nothing.
func (m *LifecycleMetrics) Record(operation, outcome string) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
}
