package miner

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hadv/nrgminer/nrghash"
	"go.uber.org/zap"
)

// WorkerState is the lifecycle state of a worker.
type WorkerState int32

const (
	StateIdle WorkerState = iota
	StateRunning
	StatePaused
	StateStopping
	StateStopped
)

func (s WorkerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

var errStopping = errors.New("worker stopping")

// DeviceWorker drives one device: it keeps the dataset for the current epoch
// resident, searches consecutive nonce windows and re-checks every candidate
// on the host before submitting it.
type DeviceWorker struct {
	index     int
	name      string
	cfg       *EngineConfig
	source    WorkSource
	device    Device
	dataset   *DatasetCache
	sequencer BuildSequencer
	metrics   WorkerMetrics
	logger    *zap.Logger
	geometry  LaunchGeometry
	now       func() time.Time

	state    atomic.Int32
	paused   atomic.Bool
	quit     chan struct{}
	stopOnce sync.Once
	rate     atomic.Uint64
	total    atomic.Uint64

	errMu sync.Mutex
	err   error

	// Owned by the Run goroutine.
	current    Work
	hasCurrent bool
	idle       bool
	header     common.Hash
	boundary   uint64
	cursor     uint64
	hashCount  uint64
	passes     uint32
	lastFlush  time.Time
}

// NewDeviceWorker builds a worker for device at slot index.
func NewDeviceWorker(index int, device Device, env WorkerEnv) *DeviceWorker {
	info := device.Info()
	name := info.Label()
	logger := env.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("worker").With(zap.Int("index", index), zap.String("device", name))

	var metrics WorkerMetrics = nopWorkerMetrics{}
	if env.NewMetrics != nil {
		metrics = env.NewMetrics(name)
	}
	lights := env.Lights
	if lights == nil {
		lights = NewLightCaches(env.Config.LightCachesKept)
	}
	sequencer := env.Sequencer
	if sequencer == nil {
		sequencer = unorderedBuilds{}
	}

	geometry := env.Config.Geometry()
	if env.Config.AdjustWorkSize() {
		geometry = geometry.ScaleToComputeUnits(info.ComputeUnits)
	}

	w := &DeviceWorker{
		index:     index,
		name:      name,
		cfg:       env.Config,
		source:    env.Source,
		device:    device,
		sequencer: sequencer,
		metrics:   metrics,
		logger:    logger,
		geometry:  geometry,
		now:       time.Now,
		quit:      make(chan struct{}),
	}
	w.lastFlush = w.now()
	w.dataset = NewDatasetCache(device, env.Config.Params, geometry, lights, metrics, logger)
	return w
}

func (w *DeviceWorker) Index() int         { return w.index }
func (w *DeviceWorker) Name() string       { return w.name }
func (w *DeviceWorker) Device() DeviceInfo { return w.device.Info() }
func (w *DeviceWorker) State() WorkerState { return WorkerState(w.state.Load()) }

// Hashrate returns hashes per second over the last flush interval.
func (w *DeviceWorker) Hashrate() float64 { return math.Float64frombits(w.rate.Load()) }

// TotalHashes returns every nonce evaluated since start.
func (w *DeviceWorker) TotalHashes() uint64 { return w.total.Load() }

// Err returns the error that ended the loop, if any.
func (w *DeviceWorker) Err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}

// Pause makes the loop idle before its next launch. The current window is
// kept, so Resume continues where the worker left off.
func (w *DeviceWorker) Pause() { w.paused.Store(true) }

func (w *DeviceWorker) Resume() { w.paused.Store(false) }

// Stop asks the loop to exit. It returns immediately; Run returns once the
// in-flight launch completes.
func (w *DeviceWorker) Stop() {
	w.stopOnce.Do(func() {
		w.state.CompareAndSwap(int32(StateRunning), int32(StateStopping))
		w.state.CompareAndSwap(int32(StatePaused), int32(StateStopping))
		w.state.CompareAndSwap(int32(StateIdle), int32(StateStopping))
		close(w.quit)
	})
}

func (w *DeviceWorker) stopping() bool {
	select {
	case <-w.quit:
		return true
	default:
		return false
	}
}

func (w *DeviceWorker) setState(s WorkerState) {
	if w.stopping() {
		return
	}
	w.state.Store(int32(s))
}

// Run executes the search loop until Stop or a fatal device error.
func (w *DeviceWorker) Run() {
	w.setState(StateRunning)
	w.lastFlush = w.now()
	w.logger.Info("worker started",
		zap.String("device_name", w.device.Info().Name),
		zap.Uint32("local_work_size", w.geometry.Local),
		zap.Uint32("global_work_size", w.geometry.Global))
	defer w.shutdown()

	for w.step() {
	}
}

func (w *DeviceWorker) shutdown() {
	w.dataset.Release()
	if err := w.device.Close(); err != nil {
		w.logger.Warn("closing device", zap.Error(err))
	}
	w.rate.Store(0)
	w.state.Store(int32(StateStopped))
	w.logger.Info("worker stopped", zap.Uint64("total_hashes", w.total.Load()))
}

// step runs one loop iteration and reports whether the loop should go on.
func (w *DeviceWorker) step() bool {
	if w.stopping() {
		return false
	}
	if w.paused.Load() {
		if w.State() != StatePaused {
			w.logger.Info("worker paused")
			w.rate.Store(0)
		}
		w.setState(StatePaused)
		return w.sleep(w.cfg.PauseInterval)
	}
	if w.State() == StatePaused {
		w.logger.Info("worker resumed", zap.Uint64("nonce", w.cursor))
		w.lastFlush = w.now()
		w.hashCount = 0
	}
	w.setState(StateRunning)

	work := w.source.Work()
	if !work.Valid {
		if !w.idle {
			w.rate.Store(0)
			w.hashCount = 0
			w.idle = true
		}
		w.logger.Debug("no work received")
		return w.sleep(w.cfg.NoWorkInterval)
	}
	if w.idle {
		w.idle = false
		w.lastFlush = w.now()
	}

	if !w.hasCurrent || !w.current.Equal(work) {
		if err := w.switchWork(work); err != nil {
			if errors.Is(err, errStopping) {
				return false
			}
			w.fail(err)
			return false
		}
	}

	if err := w.search(); err != nil {
		w.fail(err)
		return false
	}
	return true
}

// sleep waits d or until Stop and reports whether the loop should go on.
func (w *DeviceWorker) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-w.quit:
		return false
	case <-t.C:
		return true
	}
}

func (w *DeviceWorker) switchWork(work Work) error {
	epoch := work.Epoch(w.cfg.Params)
	if !w.dataset.Ready() || w.dataset.Epoch() != epoch {
		if !w.sequencer.Wait(w.quit, epoch, w.index) {
			return errStopping
		}
		_, err := w.dataset.Ensure(work.Height)
		w.sequencer.Done(epoch, w.index)
		if err != nil {
			return err
		}
		// Build time is not search time.
		w.lastFlush = w.now()
		w.hashCount = 0
	}

	w.current = work
	w.hasCurrent = true
	w.header = work.HeaderHash()
	w.boundary = nrghash.Boundary64(work.Target)
	if err := w.device.WriteHeader(w.header); err != nil {
		return err
	}
	if err := w.device.ResetResults(); err != nil {
		return err
	}
	w.cursor = w.source.StartNonce(work, w.index)
	w.logger.Debug("new work",
		zap.Uint64("height", work.Height),
		zap.Uint64("epoch", epoch),
		zap.String("header", w.header.Hex()),
		zap.Uint64("start_nonce", w.cursor))
	return nil
}

func (w *DeviceWorker) search() error {
	if err := w.device.Search(w.cursor, w.boundary, w.geometry); err != nil {
		return err
	}
	res, err := w.device.ReadResults()
	if err != nil {
		return err
	}
	if res.Count > 0 {
		nonce := w.cursor + uint64(res.Gid)
		if err := w.device.ResetResults(); err != nil {
			return err
		}
		w.report(nonce)
	}

	launched := uint64(w.geometry.Global)
	w.cursor += launched
	w.hashCount += launched
	w.total.Add(launched)
	w.metrics.AddHashes(launched)
	w.passes++
	if w.passes&(w.cfg.HashrateFlushPasses-1) == 0 {
		w.flushHashrate()
	}
	return w.device.Finish()
}

func (w *DeviceWorker) flushHashrate() {
	now := w.now()
	if elapsed := now.Sub(w.lastFlush).Seconds(); elapsed > 0 {
		w.rate.Store(math.Float64bits(float64(w.hashCount) / elapsed))
	}
	w.hashCount = 0
	w.lastFlush = now
}

// report re-evaluates a device candidate on the host and submits it when it
// meets the full target.
func (w *DeviceWorker) report(nonce uint64) {
	sol := Solution{
		Work:       w.current,
		Nonce:      nonce,
		ExtraNonce: w.current.ExtraNonce,
		Worker:     w.name,
	}
	if !w.cfg.NoEval {
		spec := w.dataset.Spec()
		mix, result := nrghash.HashimotoLight(w.cfg.Params, w.dataset.Light(), spec.DatasetSize, w.header, nonce)
		if !nrghash.MeetsTarget(result, w.current.Target) {
			w.metrics.ObserveCandidate(false)
			w.logger.Warn("candidate rejected by host check",
				zap.Uint64("nonce", nonce),
				zap.Uint64("height", w.current.Height),
				zap.String("result", result.Hex()),
				zap.Error(ErrInvalidCandidate))
			return
		}
		sol.MixDigest = mix
		sol.Result = result
	}
	w.metrics.ObserveCandidate(true)
	w.logger.Info("solution found", zap.Uint64("nonce", nonce), zap.Uint64("height", w.current.Height))
	w.source.SubmitProof(sol)
}

func (w *DeviceWorker) fail(err error) {
	err = wrapDevice(ErrDeviceRuntime, w.name, "", err)
	w.errMu.Lock()
	w.err = err
	w.errMu.Unlock()

	fields := []zap.Field{zap.Error(err)}
	if code, ok := ErrorCode(err); ok {
		fields = append(fields, zap.Int("code", code))
	}
	w.logger.Error("worker failed", fields...)
}

type nopWorkerMetrics struct{}

func (nopWorkerMetrics) ObserveDatasetBuild(uint64, time.Duration, error) {}
func (nopWorkerMetrics) ObserveCandidate(bool)                           {}
func (nopWorkerMetrics) AddHashes(uint64)                                {}
