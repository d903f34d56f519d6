package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hadv/nrgminer/miner"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Rig      string
	// TTL bounds how long a snapshot outlives a dead rig.
	TTL time.Duration
}

// RedisSink keeps the latest snapshot of a rig under rig:<name> and the
// per-worker hash rates under rig:<name>:hashrate.
type RedisSink struct {
	rdb *redis.Client
	rig string
	ttl time.Duration
}

func NewRedisSink(cfg RedisConfig) (*RedisSink, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisSink{rdb: rdb, rig: cfg.Rig, ttl: ttl}, nil
}

type workerSnapshot struct {
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	State       string  `json:"state"`
	Hashrate    float64 `json:"hashrate"`
	Temperature float64 `json:"temperature,omitempty"`
	FanPercent  float64 `json:"fan_percent,omitempty"`
	PowerWatts  float64 `json:"power_watts,omitempty"`
	Err         string  `json:"error,omitempty"`
}

type rigSnapshot struct {
	Rig       string           `json:"rig"`
	Time      time.Time        `json:"time"`
	Uptime    float64          `json:"uptime_seconds"`
	Hashrate  float64          `json:"hashrate"`
	Solutions string           `json:"solutions"`
	Workers   []workerSnapshot `json:"workers"`
}

func newRigSnapshot(rig string, p miner.Progress, stats miner.SolutionStats) rigSnapshot {
	s := rigSnapshot{
		Rig:       rig,
		Time:      p.Time,
		Uptime:    p.Uptime.Seconds(),
		Hashrate:  p.Hashrate,
		Solutions: stats.String(),
		Workers:   make([]workerSnapshot, 0, len(p.Workers)),
	}
	for _, w := range p.Workers {
		s.Workers = append(s.Workers, workerSnapshot{
			Name:        w.Name,
			Kind:        string(w.Kind),
			State:       w.State.String(),
			Hashrate:    w.Hashrate,
			Temperature: w.Temperature,
			FanPercent:  w.FanPercent,
			PowerWatts:  w.PowerWatts,
			Err:         w.Err,
		})
	}
	return s
}

func (s *RedisSink) key() string { return "rig:" + s.rig }

func (s *RedisSink) Publish(ctx context.Context, p miner.Progress, stats miner.SolutionStats) error {
	data, err := json.Marshal(newRigSnapshot(s.rig, p, stats))
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.key(), data, s.ttl)
	if len(p.Workers) > 0 {
		rates := make(map[string]interface{}, len(p.Workers))
		for _, w := range p.Workers {
			rates[w.Name] = w.Hashrate
		}
		hkey := s.key() + ":hashrate"
		pipe.HSet(ctx, hkey, rates)
		pipe.Expire(ctx, hkey, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.rdb.Close()
}
