// Package telemetry ships plant progress to external monitoring stores.
package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hadv/nrgminer/miner"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"
)

// InfluxConfig holds InfluxDB connection settings.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
	Rig    string
}

// InfluxSink writes one point per worker and one for the plant per tick.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	rig      string
	done     chan struct{}
}

// NewInfluxSink connects and checks server health before returning.
func NewInfluxSink(cfg InfluxConfig, logger *zap.Logger) (*InfluxSink, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to check InfluxDB health: %w", err)
	}
	if health.Status != "pass" {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		client.Close()
		return nil, fmt.Errorf("InfluxDB health check failed: %s", msg)
	}

	s := &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		rig:      cfg.Rig,
		done:     make(chan struct{}),
	}
	go s.logErrors(logger)
	return s, nil
}

func (s *InfluxSink) logErrors(logger *zap.Logger) {
	defer close(s.done)
	for err := range s.writeAPI.Errors() {
		logger.Warn("influx write failed", zap.Error(err))
	}
}

// Publish queues the snapshot; the write API flushes in the background.
func (s *InfluxSink) Publish(_ context.Context, p miner.Progress, stats miner.SolutionStats) error {
	for _, pt := range progressPoints(s.rig, p, stats) {
		s.writeAPI.WritePoint(pt)
	}
	return nil
}

// Close flushes pending points and disconnects.
func (s *InfluxSink) Close() {
	s.writeAPI.Flush()
	s.client.Close()
	<-s.done
}

func progressPoints(rig string, p miner.Progress, stats miner.SolutionStats) []*write.Point {
	ts := p.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	points := make([]*write.Point, 0, len(p.Workers)+1)
	for _, w := range p.Workers {
		tags := map[string]string{
			"rig":    rig,
			"worker": w.Name,
			"kind":   string(w.Kind),
			"index":  strconv.Itoa(w.Index),
		}
		fields := map[string]interface{}{
			"hashrate":    w.Hashrate,
			"temperature": w.Temperature,
			"fan":         w.FanPercent,
			"power":       w.PowerWatts,
			"state":       w.State.String(),
		}
		points = append(points, write.NewPoint("worker", tags, fields, ts))
	}

	fields := map[string]interface{}{
		"hashrate":       p.Hashrate,
		"uptime":         p.Uptime.Seconds(),
		"submitted":      int64(stats.Submitted),
		"accepted":       int64(stats.Accepted),
		"accepted_stale": int64(stats.AcceptedStale),
		"rejected":       int64(stats.Rejected),
		"failed":         int64(stats.Failed),
	}
	points = append(points, write.NewPoint("plant", map[string]string{"rig": rig}, fields, ts))
	return points
}
