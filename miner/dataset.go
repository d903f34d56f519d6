package miner

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hadv/nrgminer/nrghash"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LightCaches memoizes light caches per epoch so that workers switching to
// the same epoch share one generation.
type LightCaches struct {
	keep  int
	group singleflight.Group

	mu     sync.Mutex
	caches map[string]*nrghash.Cache
}

// NewLightCaches keeps at most keep epochs in memory.
func NewLightCaches(keep int) *LightCaches {
	if keep < 1 {
		keep = 1
	}
	return &LightCaches{keep: keep, caches: make(map[string]*nrghash.Cache)}
}

func lightKey(p nrghash.Params, epoch uint64) string {
	return fmt.Sprintf("%d/%d", epoch, p.CacheSize(epoch*p.EpochLength))
}

// Get returns the light cache for epoch, generating it at most once.
func (l *LightCaches) Get(p nrghash.Params, epoch uint64) *nrghash.Cache {
	key := lightKey(p, epoch)
	l.mu.Lock()
	c, ok := l.caches[key]
	l.mu.Unlock()
	if ok {
		return c
	}

	v, _, _ := l.group.Do(key, func() (interface{}, error) {
		c := nrghash.NewCache(p, epoch)
		l.mu.Lock()
		l.caches[key] = c
		l.evictLocked()
		l.mu.Unlock()
		return c, nil
	})
	return v.(*nrghash.Cache)
}

// evictLocked drops the oldest epochs beyond the keep limit.
func (l *LightCaches) evictLocked() {
	if len(l.caches) <= l.keep {
		return
	}
	keys := make([]string, 0, len(l.caches))
	for k := range l.caches {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return l.caches[keys[i]].Epoch() < l.caches[keys[j]].Epoch()
	})
	for _, k := range keys[:len(keys)-l.keep] {
		delete(l.caches, k)
	}
}

// Len returns how many epochs are cached.
func (l *LightCaches) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.caches)
}

// DatasetCache owns the dataset resident on one device. At most one epoch is
// resident; a failed build leaves nothing resident.
type DatasetCache struct {
	device   Device
	params   nrghash.Params
	geometry LaunchGeometry
	lights   *LightCaches
	metrics  WorkerMetrics
	logger   *zap.Logger

	ready bool
	spec  DatasetSpec
	light *nrghash.Cache
}

func NewDatasetCache(device Device, params nrghash.Params, geometry LaunchGeometry, lights *LightCaches, metrics WorkerMetrics, logger *zap.Logger) *DatasetCache {
	if metrics == nil {
		metrics = nopWorkerMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetCache{
		device:   device,
		params:   params,
		geometry: geometry,
		lights:   lights,
		metrics:  metrics,
		logger:   logger,
	}
}

// Ensure makes the dataset for height's epoch resident, rebuilding only when
// the epoch differs from the resident one. It reports whether a build ran.
func (d *DatasetCache) Ensure(height uint64) (bool, error) {
	epoch := d.params.Epoch(height)
	if d.ready && d.spec.Epoch == epoch {
		return false, nil
	}

	started := time.Now()
	err := d.build(height)
	d.metrics.ObserveDatasetBuild(epoch, time.Since(started), err)
	if err != nil {
		d.logger.Error("dataset build failed", zap.Uint64("epoch", epoch), zap.Error(err))
		return true, err
	}
	d.logger.Info("dataset ready",
		zap.Uint64("epoch", epoch),
		zap.Uint64("dataset_bytes", d.spec.DatasetSize),
		zap.Duration("elapsed", time.Since(started)))
	return true, nil
}

func (d *DatasetCache) build(height uint64) error {
	label := d.device.Info().Label()
	spec := NewDatasetSpec(d.params, height)
	if mem := d.device.Info().GlobalMemory; mem < spec.DatasetSize {
		d.Release()
		return newDeviceError(ErrInsufficientDeviceMemory, label, "build dataset",
			fmt.Errorf("epoch %d needs %d bytes, device has %d", spec.Epoch, spec.DatasetSize, mem))
	}

	d.Release()
	d.logger.Info("building dataset",
		zap.Uint64("epoch", spec.Epoch),
		zap.String("seed", spec.Seed.Hex()),
		zap.Uint64("dataset_bytes", spec.DatasetSize))

	light := d.lights.Get(d.params, spec.Epoch)
	if err := d.device.Compile(newProgramParams(d.params, spec, light, d.geometry)); err != nil {
		return wrapDevice(ErrKernelBuild, label, "compile", err)
	}
	if err := d.device.Upload(light.Words(), spec.DatasetSize); err != nil {
		d.device.Release()
		return wrapDevice(ErrDeviceRuntime, label, "upload", err)
	}

	items := spec.Items()
	launch := d.geometry.Global
	runs := (items + launch - 1) / launch
	for i := uint32(0); i < runs; i++ {
		if err := d.device.GenerateDataset(i*launch, d.geometry); err != nil {
			d.device.Release()
			return wrapDevice(ErrDeviceRuntime, label, "generate dataset", err)
		}
		if err := d.device.Finish(); err != nil {
			d.device.Release()
			return wrapDevice(ErrDeviceRuntime, label, "generate dataset", err)
		}
	}

	d.spec = spec
	d.light = light
	d.ready = true
	return nil
}

// Ready reports whether a dataset is resident.
func (d *DatasetCache) Ready() bool { return d.ready }

// Epoch returns the resident epoch. It is meaningless when not Ready.
func (d *DatasetCache) Epoch() uint64 { return d.spec.Epoch }

// Spec returns the resident dataset geometry.
func (d *DatasetCache) Spec() DatasetSpec { return d.spec }

// Light returns the light cache matching the resident dataset.
func (d *DatasetCache) Light() *nrghash.Cache { return d.light }

// Release frees the resident dataset on the device.
func (d *DatasetCache) Release() {
	if d.ready {
		d.logger.Info("dataset destroyed", zap.Uint64("epoch", d.spec.Epoch))
	}
	d.device.Release()
	d.ready = false
	d.light = nil
}
