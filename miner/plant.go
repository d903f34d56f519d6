package miner

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// PlantOption customizes a Plant.
type PlantOption func(*Plant)

func WithLogger(l *zap.Logger) PlantOption {
	return func(p *Plant) { p.logger = l }
}

// WithHardwareMonitor enables sensor reads and the temperature guard.
func WithHardwareMonitor(m HardwareMonitor) PlantOption {
	return func(p *Plant) { p.monitor = m }
}

func WithTelemetrySinks(sinks ...TelemetrySink) PlantOption {
	return func(p *Plant) { p.sinks = append(p.sinks, sinks...) }
}

func WithPlantMetrics(m PlantMetrics) PlantOption {
	return func(p *Plant) { p.metrics = m }
}

func WithWorkerMetrics(f func(worker string) WorkerMetrics) PlantOption {
	return func(p *Plant) { p.newWorkerMetrics = f }
}

// WithNonceAllocator replaces the random segment allocator drawn on Start.
func WithNonceAllocator(f func() NonceAllocator) PlantOption {
	return func(p *Plant) { p.newAllocator = f }
}

// Plant owns the shared work unit, the workers and the solution statistics.
// Workers pull work from it and push solutions into it.
type Plant struct {
	cfg              *EngineConfig
	factory          WorkerFactory
	logger           *zap.Logger
	monitor          HardwareMonitor
	sinks            []TelemetrySink
	metrics          PlantMetrics
	newWorkerMetrics func(string) WorkerMetrics
	newAllocator     func() NonceAllocator
	lights           *LightCaches

	lifecycle sync.Mutex
	mining    atomic.Bool
	launched  atomic.Int64
	selection []EngineKind
	wg        sync.WaitGroup
	stopTick  chan struct{}
	tickDone  chan struct{}

	mu         sync.RWMutex
	workers    []Worker
	allocator  NonceAllocator
	guardPause map[int]bool

	workMu sync.Mutex
	work   Work

	statsMu sync.Mutex
	stats   SolutionStats

	progressMu sync.Mutex
	progress   Progress

	handlerMu       sync.RWMutex
	onSolutionFound func(Solution)
	onMinerRestart  func()

	poolMu      sync.Mutex
	poolAddress string

	failed chan error
}

// NewPlant returns an idle plant. Nothing runs until Start.
func NewPlant(cfg *EngineConfig, factory WorkerFactory, opts ...PlantOption) *Plant {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	if factory == nil {
		factory = DeviceWorkerFactory
	}
	p := &Plant{
		cfg:     cfg,
		factory: factory,
		logger:  zap.NewNop(),
		metrics: nopPlantMetrics{},
		failed:  make(chan error, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named("plant")
	p.lights = NewLightCaches(cfg.LightCachesKept)
	if p.newAllocator == nil {
		p.newAllocator = func() NonceAllocator {
			a, err := NewSegmentAllocator(cfg.NonceSegmentBits)
			if err != nil {
				p.logger.Warn("random nonce scrambler unavailable", zap.Error(err))
				return NewSegmentAllocatorWithScrambler(cfg.NonceSegmentBits, 0)
			}
			return a
		}
	}
	return p
}

// Start creates workers for every selected engine and launches them. Kinds
// with no usable device are skipped; it fails only when no worker at all
// could be created.
func (p *Plant) Start(selection []EngineKind) error {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	return p.start(selection)
}

func (p *Plant) start(selection []EngineKind) error {
	if p.mining.Load() {
		return ErrAlreadyMining
	}
	if err := p.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}

	var sequencer BuildSequencer = unorderedBuilds{}
	if p.cfg.DatasetLoadMode == DatasetLoadSequential {
		sequencer = newSequentialBuilds(p.cfg.SequencerPollInterval, p.alive)
	}

	var workers []Worker
	for _, kind := range selection {
		env := WorkerEnv{
			Source:     p,
			Config:     p.cfg,
			Lights:     p.lights,
			Sequencer:  sequencer,
			NewMetrics: p.newWorkerMetrics,
			Logger:     p.logger,
			FirstIndex: len(workers),
		}
		created, err := p.factory(kind, env)
		if err != nil {
			p.logger.Warn("engine unavailable", zap.String("engine", string(kind)), zap.Error(err))
			continue
		}
		workers = append(workers, created...)
	}
	if len(workers) == 0 {
		return ErrNoDevicesAvailable
	}

	p.mu.Lock()
	p.workers = workers
	p.allocator = p.newAllocator()
	p.guardPause = make(map[int]bool)
	p.mu.Unlock()

	p.selection = append([]EngineKind(nil), selection...)
	p.launched.Store(time.Now().UnixNano())
	p.mining.Store(true)

	for _, w := range workers {
		p.wg.Add(1)
		go p.runWorker(w)
	}

	p.stopTick = make(chan struct{})
	p.tickDone = make(chan struct{})
	go p.collectLoop(p.stopTick, p.tickDone)

	p.logger.Info("mining started", zap.Int("workers", len(workers)), zap.Stringer("dataset_load", p.cfg.DatasetLoadMode))
	return nil
}

func (p *Plant) runWorker(w Worker) {
	defer p.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w.Run()
	if err := w.Err(); err != nil {
		p.logger.Error("worker died", zap.String("worker", w.Name()), zap.Error(err))
		if p.cfg.ExitOnFail {
			select {
			case p.failed <- err:
			default:
			}
		}
	}
}

// Stop halts the collector and every worker and waits for them to exit.
func (p *Plant) Stop() {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	p.stop()
}

func (p *Plant) stop() {
	if !p.mining.Load() {
		return
	}
	close(p.stopTick)
	<-p.tickDone

	p.mu.RLock()
	workers := p.workers
	p.mu.RUnlock()
	for _, w := range workers {
		w.Stop()
	}
	p.wg.Wait()

	p.mu.Lock()
	p.workers = nil
	p.mu.Unlock()
	p.mining.Store(false)
	p.logger.Info("mining stopped")
}

// Restart stops and starts the same engines, then calls the restart
// handler.
func (p *Plant) Restart() error {
	p.lifecycle.Lock()
	p.stop()
	err := p.start(p.selection)
	p.lifecycle.Unlock()
	if err != nil {
		return err
	}

	p.handlerMu.RLock()
	h := p.onMinerRestart
	p.handlerMu.RUnlock()
	if h != nil {
		h()
	}
	return nil
}

func (p *Plant) IsMining() bool { return p.mining.Load() }

// Failed delivers the error of a dead worker when ExitOnFail is set.
func (p *Plant) Failed() <-chan error { return p.failed }

// FarmLaunched returns when mining last started.
func (p *Plant) FarmLaunched() time.Time {
	if ns := p.launched.Load(); ns != 0 {
		return time.Unix(0, ns)
	}
	return time.Time{}
}

// Uptime returns the time since mining last started, or zero when idle.
func (p *Plant) Uptime() time.Duration {
	if !p.mining.Load() {
		return 0
	}
	return time.Since(p.FarmLaunched())
}

// Workers returns the current workers.
func (p *Plant) Workers() []Worker {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Worker(nil), p.workers...)
}

// alive reports whether worker index still takes its turn in sequential
// dataset builds.
func (p *Plant) alive(index int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if index < 0 || index >= len(p.workers) {
		return false
	}
	// Paused workers do not hold back later builds.
	switch p.workers[index].State() {
	case StateStopped, StatePaused:
		return false
	}
	return true
}

// SetWork replaces the work unit. Workers pick it up at their next pass.
func (p *Plant) SetWork(w Work) {
	w = w.clone()
	p.workMu.Lock()
	p.work = w
	p.workMu.Unlock()
	p.logger.Debug("work updated", zap.Stringer("work", w))
}

// ResetWork invalidates the current work so workers go idle.
func (p *Plant) ResetWork() {
	p.workMu.Lock()
	p.work = Work{}
	p.workMu.Unlock()
}

func (p *Plant) Work() Work {
	p.workMu.Lock()
	defer p.workMu.Unlock()
	return p.work
}

func (p *Plant) StartNonce(w Work, workerIndex int) uint64 {
	p.mu.RLock()
	a := p.allocator
	p.mu.RUnlock()
	if a == nil {
		a = p.newAllocator()
		p.mu.Lock()
		if p.allocator == nil {
			p.allocator = a
		}
		a = p.allocator
		p.mu.Unlock()
	}
	return a.StartNonce(w, workerIndex)
}

// OnSolutionFound registers the handler SubmitProof calls.
func (p *Plant) OnSolutionFound(h func(Solution)) {
	p.handlerMu.Lock()
	p.onSolutionFound = h
	p.handlerMu.Unlock()
}

func (p *Plant) OnMinerRestart(h func()) {
	p.handlerMu.Lock()
	p.onMinerRestart = h
	p.handlerMu.Unlock()
}

// SubmitProof counts the solution and hands it to the solution handler on
// the caller's goroutine.
func (p *Plant) SubmitProof(sol Solution) {
	p.statsMu.Lock()
	p.stats.Submitted++
	p.statsMu.Unlock()

	p.handlerMu.RLock()
	h := p.onSolutionFound
	p.handlerMu.RUnlock()
	if h == nil {
		p.logger.Warn("solution dropped, no handler registered", zap.Uint64("nonce", sol.Nonce))
		return
	}
	h(sol)
}

func (p *Plant) AcceptedSolution(stale bool) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	if stale {
		p.stats.AcceptedStale++
	} else {
		p.stats.Accepted++
	}
}

func (p *Plant) RejectedSolution() {
	p.statsMu.Lock()
	p.stats.Rejected++
	p.statsMu.Unlock()
}

func (p *Plant) FailedSolution() {
	p.statsMu.Lock()
	p.stats.Failed++
	p.statsMu.Unlock()
}

func (p *Plant) SolutionStats() SolutionStats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.stats
}

func (p *Plant) ResetSolutionStats() {
	p.statsMu.Lock()
	p.stats = SolutionStats{}
	p.statsMu.Unlock()
}

func (p *Plant) SetPoolAddress(addr string) {
	p.poolMu.Lock()
	p.poolAddress = addr
	p.poolMu.Unlock()
}

func (p *Plant) PoolAddress() string {
	p.poolMu.Lock()
	defer p.poolMu.Unlock()
	return p.poolAddress
}

// MiningProgress returns the last collected snapshot with live hash rates
// and states.
func (p *Plant) MiningProgress() Progress {
	p.progressMu.Lock()
	prog := p.progress
	prog.Workers = append([]WorkerStatus(nil), p.progress.Workers...)
	p.progressMu.Unlock()

	workers := p.Workers()
	byIndex := make(map[int]int, len(prog.Workers))
	for i, s := range prog.Workers {
		byIndex[s.Index] = i
	}
	prog.Hashrate = 0
	for _, w := range workers {
		i, ok := byIndex[w.Index()]
		if !ok {
			prog.Workers = append(prog.Workers, WorkerStatus{Index: w.Index(), Name: w.Name(), Kind: w.Device().Kind})
			i = len(prog.Workers) - 1
		}
		prog.Workers[i].State = w.State()
		prog.Workers[i].Hashrate = w.Hashrate()
		prog.Hashrate += prog.Workers[i].Hashrate
	}
	prog.Time = time.Now()
	prog.Uptime = p.Uptime()
	return prog
}

// collectLoop runs collect every CollectInterval. The timer is re-armed only
// after a collection finishes, so collections never overlap.
func (p *Plant) collectLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	timer := time.NewTimer(p.cfg.CollectInterval)
	defer timer.Stop()
	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			p.collect()
			timer.Reset(p.cfg.CollectInterval)
		}
	}
}

func (p *Plant) collect() {
	workers := p.Workers()
	prog := Progress{
		Time:    time.Now(),
		Uptime:  p.Uptime(),
		Workers: make([]WorkerStatus, 0, len(workers)),
	}
	for _, w := range workers {
		info := w.Device()
		st := WorkerStatus{
			Index:    w.Index(),
			Name:     w.Name(),
			Kind:     info.Kind,
			State:    w.State(),
			Hashrate: w.Hashrate(),
		}
		if err := w.Err(); err != nil {
			st.Err = err.Error()
		}
		if p.monitor != nil && info.Kind == EngineGPU {
			if r, err := p.monitor.Read(p.cfg.SensorFor(info.Index)); err == nil {
				st.Temperature = r.Temperature
				st.FanPercent = r.FanPercent
				st.PowerWatts = r.PowerWatts
				p.guardTemperature(w, r.Temperature)
			} else {
				p.logger.Debug("sensor read failed", zap.String("worker", w.Name()), zap.Error(err))
			}
		}
		prog.Hashrate += st.Hashrate
		prog.Workers = append(prog.Workers, st)
	}

	p.progressMu.Lock()
	p.progress = prog
	p.progressMu.Unlock()

	stats := p.SolutionStats()
	p.metrics.ObserveProgress(prog, stats)

	if len(p.sinks) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.CollectInterval)
	defer cancel()
	for _, s := range p.sinks {
		if err := s.Publish(ctx, prog, stats); err != nil {
			p.logger.Warn("telemetry publish failed", zap.Error(err))
		}
	}
}

// guardTemperature pauses a worker at or above TStop and resumes it at or
// below TStart. Only workers it paused itself are resumed.
func (p *Plant) guardTemperature(w Worker, temp float64) {
	if p.cfg.TStop == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := w.Index()
	switch {
	case !p.guardPause[idx] && temp >= float64(p.cfg.TStop):
		p.guardPause[idx] = true
		w.Pause()
		p.logger.Warn("pausing hot device", zap.String("worker", w.Name()), zap.Float64("temperature", temp))
	case p.guardPause[idx] && temp <= float64(p.cfg.TStart):
		delete(p.guardPause, idx)
		w.Resume()
		p.logger.Info("resuming cooled device", zap.String("worker", w.Name()), zap.Float64("temperature", temp))
	}
}

type nopPlantMetrics struct{}

func (nopPlantMetrics) ObserveProgress(Progress, SolutionStats) {}
