package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/hadv/nrgminer/miner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

func TestWorkerRecords(t *testing.T) {
	m := NewWorker("gpu/0")

	if inc := delta(t, datasetBuildsTotal.WithLabelValues("gpu/0", "success"), func() {
		m.ObserveDatasetBuild(3, 2*time.Second, nil)
	}); inc != 1 {
		t.Fatalf("expected dataset build success increment, got %v", inc)
	}
	if got := testutil.ToFloat64(datasetEpoch.WithLabelValues("gpu/0")); got != 3 {
		t.Fatalf("expected epoch gauge 3, got %v", got)
	}

	if inc := delta(t, datasetBuildsTotal.WithLabelValues("gpu/0", "error"), func() {
		m.ObserveDatasetBuild(4, time.Second, errors.New("out of memory"))
	}); inc != 1 {
		t.Fatalf("expected dataset build error increment, got %v", inc)
	}
	if got := testutil.ToFloat64(datasetEpoch.WithLabelValues("gpu/0")); got != 3 {
		t.Fatalf("failed build must not move the epoch gauge, got %v", got)
	}

	if inc := delta(t, candidatesTotal.WithLabelValues("gpu/0", "false"), func() {
		m.ObserveCandidate(false)
	}); inc != 1 {
		t.Fatalf("expected invalid candidate increment, got %v", inc)
	}

	if inc := delta(t, hashesTotal.WithLabelValues("gpu/0"), func() {
		m.AddHashes(1024)
	}); inc != 1024 {
		t.Fatalf("expected 1024 hashes, got %v", inc)
	}
}

func TestWorkerUnknownLabel(t *testing.T) {
	m := NewWorker("")
	if inc := delta(t, candidatesTotal.WithLabelValues("unknown", "true"), func() {
		m.ObserveCandidate(true)
	}); inc != 1 {
		t.Fatalf("expected unknown label increment, got %v", inc)
	}
}

func TestPlantObserveProgress(t *testing.T) {
	m := NewPlant()
	m.ObserveProgress(miner.Progress{
		Hashrate: 3e6,
		Uptime:   90 * time.Second,
		Workers: []miner.WorkerStatus{
			{Name: "gpu/0", State: miner.StateRunning, Hashrate: 2e6, Temperature: 65, FanPercent: 40, PowerWatts: 120},
			{Name: "cpu/0", State: miner.StatePaused, Hashrate: 1e6},
		},
	}, miner.SolutionStats{Submitted: 4, Accepted: 2, AcceptedStale: 1, Rejected: 1})

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"total", totalHashrate, 3e6},
		{"uptime", uptime, 90},
		{"gpu hashrate", hashrate.WithLabelValues("gpu/0"), 2e6},
		{"gpu temperature", temperature.WithLabelValues("gpu/0"), 65},
		{"gpu fan", fanPercent.WithLabelValues("gpu/0"), 40},
		{"gpu power", powerWatts.WithLabelValues("gpu/0"), 120},
		{"gpu running", workerState.WithLabelValues("gpu/0", "running"), 1},
		{"gpu not paused", workerState.WithLabelValues("gpu/0", "paused"), 0},
		{"cpu paused", workerState.WithLabelValues("cpu/0", "paused"), 1},
		{"submitted", solutions.WithLabelValues("submitted"), 4},
		{"stale", solutions.WithLabelValues("accepted_stale"), 1},
		{"failed", solutions.WithLabelValues("failed"), 0},
	}
	for _, tc := range checks {
		if got := testutil.ToFloat64(tc.c); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
