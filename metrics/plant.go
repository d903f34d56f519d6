package metrics

import (
	"github.com/hadv/nrgminer/miner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hashrate = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "plant",
		Name:      "hashrate",
		Help:      "Hashes per second per worker.",
	}, []string{"worker"})
	totalHashrate = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "plant",
		Name:      "total_hashrate",
		Help:      "Hashes per second across all workers.",
	})
	temperature = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "plant",
		Name:      "temperature_celsius",
		Help:      "Device temperature.",
	}, []string{"worker"})
	fanPercent = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "plant",
		Name:      "fan_percent",
		Help:      "Device fan speed.",
	}, []string{"worker"})
	powerWatts = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "plant",
		Name:      "power_watts",
		Help:      "Device power draw.",
	}, []string{"worker"})
	workerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "plant",
		Name:      "worker_state",
		Help:      "1 for the state each worker is in, 0 otherwise.",
	}, []string{"worker", "state"})
	solutions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "plant",
		Name:      "solutions",
		Help:      "Solutions since the last stats reset by verdict.",
	}, []string{"status"})
	uptime = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "plant",
		Name:      "uptime_seconds",
		Help:      "Seconds since mining started.",
	})
)

var states = []miner.WorkerState{
	miner.StateIdle, miner.StateRunning, miner.StatePaused, miner.StateStopping, miner.StateStopped,
}

// Plant publishes plant snapshots as gauges.
type Plant struct{}

func NewPlant() *Plant {
	return &Plant{}
}

// ObserveProgress sets every gauge from one collection tick.
func (Plant) ObserveProgress(p miner.Progress, stats miner.SolutionStats) {
	totalHashrate.Set(p.Hashrate)
	uptime.Set(p.Uptime.Seconds())
	for _, w := range p.Workers {
		hashrate.WithLabelValues(w.Name).Set(w.Hashrate)
		temperature.WithLabelValues(w.Name).Set(w.Temperature)
		fanPercent.WithLabelValues(w.Name).Set(w.FanPercent)
		powerWatts.WithLabelValues(w.Name).Set(w.PowerWatts)
		for _, s := range states {
			v := 0.0
			if s == w.State {
				v = 1
			}
			workerState.WithLabelValues(w.Name, s.String()).Set(v)
		}
	}

	solutions.WithLabelValues("submitted").Set(float64(stats.Submitted))
	solutions.WithLabelValues("accepted").Set(float64(stats.Accepted))
	solutions.WithLabelValues("accepted_stale").Set(float64(stats.AcceptedStale))
	solutions.WithLabelValues("rejected").Set(float64(stats.Rejected))
	solutions.WithLabelValues("failed").Set(float64(stats.Failed))
}
