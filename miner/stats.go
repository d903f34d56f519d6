package miner

import (
	"fmt"
	"strings"
	"time"
)

// SolutionStats counts pool verdicts on submitted solutions.
type SolutionStats struct {
	Submitted     uint64
	Accepted      uint64
	AcceptedStale uint64
	Rejected      uint64
	Failed        uint64
}

func (s SolutionStats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[A%d", s.Accepted)
	if s.AcceptedStale > 0 {
		fmt.Fprintf(&b, "+%d", s.AcceptedStale)
	}
	if s.Rejected > 0 {
		fmt.Fprintf(&b, ":R%d", s.Rejected)
	}
	if s.Failed > 0 {
		fmt.Fprintf(&b, ":F%d", s.Failed)
	}
	b.WriteString("]")
	return b.String()
}

// WorkerStatus is one worker's line in a progress snapshot.
type WorkerStatus struct {
	Index       int
	Name        string
	Kind        EngineKind
	State       WorkerState
	Hashrate    float64
	Temperature float64
	FanPercent  float64
	PowerWatts  float64
	Err         string
}

// Progress is a point-in-time view of the whole plant.
type Progress struct {
	Time     time.Time
	Uptime   time.Duration
	Hashrate float64
	Workers  []WorkerStatus
}

func (p Progress) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Speed %s", formatHashrate(p.Hashrate))
	for _, w := range p.Workers {
		fmt.Fprintf(&b, " %s %s", w.Name, formatHashrate(w.Hashrate))
		if w.Temperature > 0 {
			fmt.Fprintf(&b, " %.0fC %.0f%%", w.Temperature, w.FanPercent)
		}
		if w.PowerWatts > 0 {
			fmt.Fprintf(&b, " %.0fW", w.PowerWatts)
		}
		if w.State != StateRunning {
			fmt.Fprintf(&b, " (%s)", w.State)
		}
	}
	return b.String()
}

func formatHashrate(h float64) string {
	switch {
	case h >= 1e9:
		return fmt.Sprintf("%.2f GH/s", h/1e9)
	case h >= 1e6:
		return fmt.Sprintf("%.2f MH/s", h/1e6)
	case h >= 1e3:
		return fmt.Sprintf("%.2f kH/s", h/1e3)
	}
	return fmt.Sprintf("%.2f H/s", h)
}
