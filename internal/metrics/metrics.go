// Package metrics records run statistics in a Prometheus registry and
// exports them in the text exposition format for node_exporter's textfile
// collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder holds the metrics of one process. A nil *Recorder records
// nothing, so callers never need to check whether metrics are enabled.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal         *prometheus.CounterVec
	phaseDuration     *prometheus.HistogramVec
	healthChecksTotal *prometheus.CounterVec
	packageOpsTotal   *prometheus.CounterVec
}

// New returns a recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cephrig",
				Name:      "runs_total",
				Help:      "Total number of ceph-ansible runs by result",
			},
			[]string{"result"},
		),

		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cephrig",
				Name:      "phase_duration_seconds",
				Help:      "Duration of run phases in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 13), // 1s to ~68min
			},
			[]string{"phase"},
		),

		healthChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cephrig",
				Subsystem: "health",
				Name:      "checks_total",
				Help:      "Total number of cluster health queries by reported status",
			},
			[]string{"status"},
		),

		packageOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cephrig",
				Subsystem: "package",
				Name:      "operations_total",
				Help:      "Total number of package lifecycle operations by operation and result",
			},
			[]string{"operation", "result"},
		),
	}

	r.registry.MustRegister(
		r.runsTotal,
		r.phaseDuration,
		r.healthChecksTotal,
		r.packageOpsTotal,
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordRun counts a finished run.
func (r *Recorder) RecordRun(err error) {
	if r == nil {
		return
	}
	r.runsTotal.WithLabelValues(result(err)).Inc()
}

// RecordPhase observes the duration of a phase.
func (r *Recorder) RecordPhase(phase string, seconds float64) {
	if r == nil {
		return
	}
	r.phaseDuration.WithLabelValues(phase).Observe(seconds)
}

// RecordHealthCheck counts one health query.
func (r *Recorder) RecordHealthCheck(status string) {
	if r == nil {
		return
	}
	if status == "" {
		status = "unknown"
	}
	r.healthChecksTotal.WithLabelValues(status).Inc()
}

// RecordPackageOperation counts a package lifecycle operation.
func (r *Recorder) RecordPackageOperation(op string, err error) {
	if r == nil {
		return
	}
	r.packageOpsTotal.WithLabelValues(op, result(err)).Inc()
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
