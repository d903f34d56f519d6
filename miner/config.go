package miner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hadv/nrgminer/nrghash"
)

// EngineKind selects a device backend.
type EngineKind string

const (
	EngineGPU EngineKind = "gpu"
	EngineCPU EngineKind = "cpu"
)

// ParseEngineKind accepts "gpu", "opencl" and "cpu".
func ParseEngineKind(s string) (EngineKind, error) {
	switch strings.ToLower(s) {
	case "gpu", "opencl", "cl":
		return EngineGPU, nil
	case "cpu":
		return EngineCPU, nil
	}
	return "", fmt.Errorf("unknown engine %q", s)
}

// DatasetLoadMode controls whether workers may build datasets concurrently.
type DatasetLoadMode int

const (
	DatasetLoadParallel DatasetLoadMode = iota
	DatasetLoadSequential
)

func (m DatasetLoadMode) String() string {
	if m == DatasetLoadSequential {
		return "sequential"
	}
	return "parallel"
}

// UnmarshalFlag lets go-flags parse the mode by name.
func (m *DatasetLoadMode) UnmarshalFlag(value string) error {
	mode, err := ParseDatasetLoadMode(value)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func ParseDatasetLoadMode(s string) (DatasetLoadMode, error) {
	switch strings.ToLower(s) {
	case "parallel", "0":
		return DatasetLoadParallel, nil
	case "sequential", "1":
		return DatasetLoadSequential, nil
	}
	return 0, fmt.Errorf("unknown dataset load mode %q", s)
}

// EngineConfig is the process-wide engine configuration. It is set once
// before Plant.Start and treated as read-only afterwards.
type EngineConfig struct {
	Params nrghash.Params

	LocalWorkSize uint32
	// GlobalWorkSizeMultiplier is the number of local groups per launch.
	// A negative value additionally scales launches to each device's
	// compute unit count.
	GlobalWorkSizeMultiplier int

	PlatformID int
	// DeviceMap overrides the device used by worker slot i when DeviceMap[i]
	// is not negative.
	DeviceMap  []int
	CPUDevices int
	CPUThreads int
	// SensorMap gives the hardware monitor card for GPU enumeration index i
	// when SensorMap[i] is not negative. Unmapped GPUs use their index.
	SensorMap  []int

	DatasetLoadMode DatasetLoadMode
	NoEval          bool
	ExitOnFail      bool

	// NonceSegmentBits is the width of the nonce range owned by each worker.
	NonceSegmentBits uint

	PauseInterval         time.Duration
	NoWorkInterval        time.Duration
	SequencerPollInterval time.Duration
	CollectInterval       time.Duration
	HashrateFlushPasses   uint32
	LightCachesKept       int

	// TStop pauses a worker at or above this temperature (Celsius); TStart
	// resumes it at or below. Zero disables the guard.
	TStart uint
	TStop  uint
}

// DefaultEngineConfig returns the configuration used when no flags are set.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Params:                   nrghash.MainnetParams,
		LocalWorkSize:            DefaultLocalWorkSize,
		GlobalWorkSizeMultiplier: DefaultGlobalWorkSizeMultiplier,
		CPUDevices:               1,
		DatasetLoadMode:          DatasetLoadParallel,
		NonceSegmentBits:         40,
		PauseInterval:            3 * time.Second,
		NoWorkInterval:           time.Second,
		SequencerPollInterval:    100 * time.Millisecond,
		CollectInterval:          5 * time.Second,
		HashrateFlushPasses:      4,
		LightCachesKept:          2,
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *EngineConfig) Validate() error {
	var errs []error
	if err := c.Params.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.HashrateFlushPasses == 0 || c.HashrateFlushPasses&(c.HashrateFlushPasses-1) != 0 {
		errs = append(errs, fmt.Errorf("hashrate flush passes %d must be a power of two", c.HashrateFlushPasses))
	}
	if c.NonceSegmentBits == 0 || c.NonceSegmentBits >= 64 {
		errs = append(errs, fmt.Errorf("nonce segment bits %d out of range", c.NonceSegmentBits))
	}
	if c.PlatformID < 0 {
		errs = append(errs, fmt.Errorf("platform id %d is negative", c.PlatformID))
	}
	if c.CollectInterval <= 0 {
		errs = append(errs, errors.New("collect interval must be positive"))
	}
	if c.TStop > 0 && c.TStart >= c.TStop {
		errs = append(errs, fmt.Errorf("tstart %d must be below tstop %d", c.TStart, c.TStop))
	}
	return errors.Join(errs...)
}

// Geometry returns the launch geometry before any per-device scaling.
func (c *EngineConfig) Geometry() LaunchGeometry {
	return NewLaunchGeometry(c.LocalWorkSize, c.GlobalWorkSizeMultiplier)
}

// AdjustWorkSize reports whether launches scale to compute units.
func (c *EngineConfig) AdjustWorkSize() bool { return c.GlobalWorkSizeMultiplier < 0 }

// DeviceFor maps worker slot to a device index among count devices.
func (c *EngineConfig) DeviceFor(slot, count int) int {
	if count <= 0 {
		return 0
	}
	idx := slot
	if slot < len(c.DeviceMap) && c.DeviceMap[slot] >= 0 {
		idx = c.DeviceMap[slot]
	}
	return idx % count
}

// SensorFor maps a GPU enumeration index to its hardware monitor card.
func (c *EngineConfig) SensorFor(index int) int {
	if index >= 0 && index < len(c.SensorMap) && c.SensorMap[index] >= 0 {
		return c.SensorMap[index]
	}
	return index
}

// Configure validates cfg and checks that every device can hold the dataset
// for currentHeight. All memory shortfalls are reported together.
func Configure(cfg *EngineConfig, currentHeight uint64, devices []DeviceInfo) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(devices) == 0 {
		return ErrNoDevicesAvailable
	}
	need := cfg.Params.DatasetSize(currentHeight)
	var errs []error
	for _, d := range devices {
		if d.GlobalMemory < need {
			errs = append(errs, newDeviceError(ErrInsufficientDeviceMemory, d.Name, "configure",
				fmt.Errorf("have %d bytes, dataset for height %d needs %d", d.GlobalMemory, currentHeight, need)))
		}
	}
	return errors.Join(errs...)
}
