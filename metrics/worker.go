// Package metrics exposes Prometheus collectors for the mining engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nrgminer"

var (
	datasetBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "dataset_builds_total",
		Help:      "Count of dataset builds per device.",
	}, []string{"worker", "status"})
	datasetBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "dataset_build_duration_seconds",
		Help:      "Duration of dataset builds.",
		Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300},
	}, []string{"worker", "status"})
	datasetEpoch = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "dataset_epoch",
		Help:      "Epoch of the dataset resident on the device.",
	}, []string{"worker"})
	candidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "candidates_total",
		Help:      "Device candidates by host verdict.",
	}, []string{"worker", "result"})
	hashesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "hashes_total",
		Help:      "Nonces evaluated per device.",
	}, []string{"worker"})
)

// Worker tracks metrics for one device worker.
type Worker struct {
	worker string
}

// NewWorker creates a Worker collector labelled with the worker name.
func NewWorker(worker string) *Worker {
	if worker == "" {
		worker = "unknown"
	}
	return &Worker{worker: worker}
}

// ObserveDatasetBuild records a dataset build outcome and duration.
func (m Worker) ObserveDatasetBuild(epoch uint64, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	datasetBuildsTotal.WithLabelValues(m.worker, status).Inc()
	datasetBuildDuration.WithLabelValues(m.worker, status).Observe(elapsed.Seconds())
	if err == nil {
		datasetEpoch.WithLabelValues(m.worker).Set(float64(epoch))
	}
}

// ObserveCandidate records whether a device candidate passed host checks.
func (m Worker) ObserveCandidate(valid bool) {
	candidatesTotal.WithLabelValues(m.worker, strconv.FormatBool(valid)).Inc()
}

func (m Worker) AddHashes(n uint64) {
	hashesTotal.WithLabelValues(m.worker).Add(float64(n))
}
