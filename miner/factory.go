package miner

import (
	"fmt"

	"go.uber.org/zap"
)

// WorkerEnv is what the plant shares with every worker it creates.
type WorkerEnv struct {
	Source     WorkSource
	Config     *EngineConfig
	Lights     *LightCaches
	Sequencer  BuildSequencer
	NewMetrics func(worker string) WorkerMetrics
	Logger     *zap.Logger
	// FirstIndex is the plant-wide index of the first worker created.
	FirstIndex int
}

// WorkerFactory creates the workers of one engine kind.
type WorkerFactory func(kind EngineKind, env WorkerEnv) ([]Worker, error)

// DeviceWorkerFactory opens every enumerated device of kind and wraps each
// in a DeviceWorker. Devices that fail to open are skipped.
func DeviceWorkerFactory(kind EngineKind, env WorkerEnv) ([]Worker, error) {
	infos, err := ListDevices(kind, env.Config)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("%w: no %s devices", ErrNoDevicesAvailable, kind)
	}

	slots := len(infos)
	if kind == EngineGPU && len(env.Config.DeviceMap) > 0 {
		slots = min(len(env.Config.DeviceMap), len(infos))
	}

	logger := env.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := make([]Worker, 0, slots)
	for slot := 0; slot < slots; slot++ {
		info := infos[env.Config.DeviceFor(slot, len(infos))]
		dev, err := OpenDevice(info, env.Config)
		if err != nil {
			logger.Warn("skipping device", zap.String("device", info.Label()), zap.Error(err))
			continue
		}
		workers = append(workers, NewDeviceWorker(env.FirstIndex+len(workers), dev, env))
	}
	if len(workers) == 0 {
		return nil, fmt.Errorf("%w: no %s device could be opened", ErrNoDevicesAvailable, kind)
	}
	return workers, nil
}
