//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE
package miner

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hadv/nrgminer/hwmon"
)

// Device is the command surface a worker drives. Calls are issued from the
// owning worker's goroutine only. Launches may be asynchronous until Finish.
type Device interface {
	Info() DeviceInfo
	// Compile builds the search and dataset programs for one dataset geometry.
	Compile(p ProgramParams) error
	// Upload allocates the light cache and dataset buffers and copies the
	// light cache to the device.
	Upload(light []uint32, datasetBytes uint64) error
	// GenerateDataset computes dataset items [offset, offset+g.Global).
	GenerateDataset(offset uint32, g LaunchGeometry) error
	WriteHeader(header common.Hash) error
	ResetResults() error
	// Search evaluates nonces [start, start+g.Global) against the 64-bit
	// boundary.
	Search(start, boundary uint64, g LaunchGeometry) error
	ReadResults() (SearchResult, error)
	Finish() error
	// Release frees the program and dataset buffers. The device stays usable.
	Release()
	Close() error
}

// WorkSource is the plant as seen from a worker.
type WorkSource interface {
	Work() Work
	StartNonce(w Work, workerIndex int) uint64
	SubmitProof(sol Solution)
}

// Worker is one device-bound search loop.
type Worker interface {
	Index() int
	Name() string
	Device() DeviceInfo
	Run()
	Pause()
	Resume()
	Stop()
	State() WorkerState
	Hashrate() float64
	Err() error
}

// WorkerMetrics receives per-worker observations.
type WorkerMetrics interface {
	ObserveDatasetBuild(epoch uint64, elapsed time.Duration, err error)
	ObserveCandidate(valid bool)
	AddHashes(n uint64)
}

// PlantMetrics receives one snapshot per collection tick.
type PlantMetrics interface {
	ObserveProgress(p Progress, stats SolutionStats)
}

// HardwareMonitor reads sensors for a device. The plant passes the card
// number from EngineConfig.SensorFor, not the enumeration index.
type HardwareMonitor interface {
	Read(index int) (hwmon.Reading, error)
}

// TelemetrySink publishes collected progress somewhere outside the process.
type TelemetrySink interface {
	Publish(ctx context.Context, p Progress, stats SolutionStats) error
}
