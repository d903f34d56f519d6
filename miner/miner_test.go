package miner

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hadv/nrgminer/nrghash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLaunchGeometry(t *testing.T) {
	tests := []struct {
		local      uint32
		multiplier int
		want       LaunchGeometry
	}{
		{128, 8192, LaunchGeometry{Local: 128, Global: 128 * 8192}},
		{100, 10, LaunchGeometry{Local: 104, Global: 1040}},
		{8, -4, LaunchGeometry{Local: 8, Global: 32}},
		{0, 0, LaunchGeometry{Local: DefaultLocalWorkSize, Global: DefaultLocalWorkSize * DefaultGlobalWorkSizeMultiplier}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%d", tt.local, tt.multiplier), func(t *testing.T) {
			assert.Equal(t, tt.want, NewLaunchGeometry(tt.local, tt.multiplier))
		})
	}
}

func TestScaleToComputeUnits(t *testing.T) {
	g := NewLaunchGeometry(128, 8192)

	assert.Equal(t, g, g.ScaleToComputeUnits(36))
	assert.Equal(t, g, g.ScaleToComputeUnits(14), "14 units is the 36 unit part")
	assert.Equal(t, g, g.ScaleToComputeUnits(0))
	assert.Equal(t, g.Global*2, g.ScaleToComputeUnits(72).Global)
	assert.Equal(t, g.Global/2, g.ScaleToComputeUnits(18).Global)

	odd := g.ScaleToComputeUnits(5)
	assert.Equal(t, g.Local, odd.Local)
	assert.Zero(t, odd.Global%odd.Local)
	assert.GreaterOrEqual(t, uint64(odd.Global), uint64(g.Global)*5/36)
	assert.Less(t, uint64(odd.Global), uint64(g.Global)*5/36+uint64(g.Local))
}

func TestWorkEqualAndClone(t *testing.T) {
	w := Work{Height: 10, Header: []byte{1, 2, 3}, Target: nrghash.TargetFromDifficulty(7), Valid: true}
	c := w.clone()
	require.True(t, w.Equal(c))

	c.Header[0] = 9
	assert.False(t, w.Equal(c))
	assert.Equal(t, byte(1), w.Header[0])

	other := w
	other.ExtraNonce = 1
	assert.False(t, w.Equal(other))

	assert.Equal(t, "work{none}", Work{}.String())
	assert.Contains(t, w.String(), "height=10")
}

func TestDatasetSpec(t *testing.T) {
	p := nrghash.DevParams
	spec := NewDatasetSpec(p, 45)

	assert.Equal(t, uint64(1), spec.Epoch)
	assert.Equal(t, nrghash.SeedHash(1), spec.Seed)
	assert.Equal(t, p.CacheSize(45), spec.CacheSize)
	assert.Equal(t, uint32(spec.DatasetSize/nrghash.HashBytes), spec.Items())
	assert.Equal(t, spec.Items()/2, spec.Pages())
}

func TestSegmentAllocator(t *testing.T) {
	a := NewSegmentAllocatorWithScrambler(40, 7)
	w := Work{Valid: true}

	assert.Equal(t, uint64(7), a.StartNonce(w, 0))
	assert.Equal(t, uint64(7)+3<<40, a.StartNonce(w, 3))
	assert.Equal(t, uint64(1)<<40, a.SegmentSize())
	assert.Equal(t, uint64(1)<<24, a.MaxWorkers())
	assert.Equal(t, uint64(7), a.Scrambler())
}

func TestSegmentAllocatorRangesAreDisjoint(t *testing.T) {
	// Scrambler near the top so segments wrap around zero.
	a := NewSegmentAllocatorWithScrambler(16, ^uint64(0)-5)
	w := Work{Valid: true}

	const workers = 64
	for i := 0; i < workers; i++ {
		for j := i + 1; j < workers; j++ {
			gap := a.StartNonce(w, j) - a.StartNonce(w, i)
			assert.GreaterOrEqual(t, gap, a.SegmentSize(), "workers %d and %d", i, j)
		}
	}
}

func TestNewSegmentAllocatorIsRandom(t *testing.T) {
	a, err := NewSegmentAllocator(40)
	require.NoError(t, err)
	b, err := NewSegmentAllocator(40)
	require.NoError(t, err)
	assert.NotEqual(t, a.Scrambler(), b.Scrambler())
}

func TestSegmentAllocatorRedrawsPerWork(t *testing.T) {
	a, err := NewSegmentAllocator(40)
	require.NoError(t, err)
	first := Work{Height: 1, Header: []byte{1}, Valid: true}
	second := Work{Height: 2, Header: []byte{2}, Valid: true}

	n0 := a.StartNonce(first, 0)
	assert.Equal(t, n0+1<<40, a.StartNonce(first, 1))
	assert.Equal(t, n0, a.StartNonce(first, 0))

	m0 := a.StartNonce(second, 0)
	assert.NotEqual(t, n0, m0)
	assert.Equal(t, m0+3<<40, a.StartNonce(second, 3))
	assert.Equal(t, m0, a.Scrambler())

	fixed := NewSegmentAllocatorWithScrambler(40, 7)
	assert.Equal(t, uint64(7), fixed.StartNonce(first, 0))
	assert.Equal(t, uint64(7), fixed.StartNonce(second, 0))
}

func TestXoroshiro128plus(t *testing.T) {
	r := &xoroshiro128plus{s0: 1, s1: 2}
	assert.Equal(t, uint64(3), r.next())
	assert.NotEqual(t, uint64(3), r.next())
}

func TestEngineConfigValidate(t *testing.T) {
	require.NoError(t, DefaultEngineConfig().Validate())

	cfg := DefaultEngineConfig()
	cfg.HashrateFlushPasses = 3
	cfg.TStart = 80
	cfg.TStop = 70
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "power of two")
	assert.Contains(t, err.Error(), "tstart")

	cfg = DefaultEngineConfig()
	cfg.NonceSegmentBits = 64
	assert.Error(t, cfg.Validate())

	cfg = DefaultEngineConfig()
	cfg.Params.EpochLength = 0
	assert.Error(t, cfg.Validate())
}

func TestParseEngineKind(t *testing.T) {
	for in, want := range map[string]EngineKind{"gpu": EngineGPU, "OpenCL": EngineGPU, "cpu": EngineCPU} {
		got, err := ParseEngineKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseEngineKind("cuda")
	assert.Error(t, err)
}

func TestDatasetLoadModeFlag(t *testing.T) {
	var m DatasetLoadMode
	require.NoError(t, m.UnmarshalFlag("sequential"))
	assert.Equal(t, DatasetLoadSequential, m)
	require.NoError(t, m.UnmarshalFlag("0"))
	assert.Equal(t, DatasetLoadParallel, m)
	assert.Error(t, m.UnmarshalFlag("lazy"))
	assert.Equal(t, "parallel", m.String())
}

func TestDeviceFor(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.DeviceMap = []int{2, -1, 0}

	assert.Equal(t, 2, cfg.DeviceFor(0, 3))
	assert.Equal(t, 1, cfg.DeviceFor(1, 3))
	assert.Equal(t, 0, cfg.DeviceFor(2, 3))
	assert.Equal(t, 0, cfg.DeviceFor(3, 3))
	assert.Equal(t, 0, cfg.DeviceFor(0, 2))
	assert.Equal(t, 0, cfg.DeviceFor(0, 0))
}

func TestConfigure(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Params = nrghash.DevParams
	need := cfg.Params.DatasetSize(100)

	assert.ErrorIs(t, Configure(cfg, 100, nil), ErrNoDevicesAvailable)
	assert.NoError(t, Configure(cfg, 100, []DeviceInfo{{Name: "big", GlobalMemory: need}}))

	err := Configure(cfg, 100, []DeviceInfo{
		{Name: "small-a", GlobalMemory: need - 1},
		{Name: "big", GlobalMemory: need * 2},
		{Name: "small-b", GlobalMemory: 1},
	})
	require.ErrorIs(t, err, ErrInsufficientDeviceMemory)
	assert.Contains(t, err.Error(), "small-a")
	assert.Contains(t, err.Error(), "small-b")
	assert.NotContains(t, err.Error(), "big")

	cfg.HashrateFlushPasses = 0
	assert.Error(t, Configure(cfg, 100, []DeviceInfo{{Name: "big", GlobalMemory: need}}))
}

type codedError struct{ code int }

func (e codedError) Error() string  { return fmt.Sprintf("status %d", e.code) }
func (e codedError) ErrorCode() int { return e.code }

func TestDeviceError(t *testing.T) {
	err := newDeviceError(ErrDeviceRuntime, "gpu/1", "search", codedError{code: -5})

	assert.ErrorIs(t, err, ErrDeviceRuntime)
	assert.ErrorIs(t, err, codedError{code: -5})
	assert.Equal(t, "gpu/1: search device runtime error: status -5", err.Error())

	code, ok := ErrorCode(fmt.Errorf("worker: %w", err))
	require.True(t, ok)
	assert.Equal(t, -5, code)

	_, ok = ErrorCode(errors.New("plain"))
	assert.False(t, ok)
}

func TestWrapDeviceKeepsKind(t *testing.T) {
	inner := newDeviceError(ErrKernelBuild, "gpu/0", "compile", errors.New("bad source"))
	err := wrapDevice(ErrDeviceRuntime, "gpu/0", "", inner)

	assert.ErrorIs(t, err, ErrKernelBuild)
	assert.NotErrorIs(t, err, ErrDeviceRuntime)
	assert.NoError(t, wrapDevice(ErrDeviceRuntime, "gpu/0", "", nil))

	plain := wrapDevice(ErrDeviceRuntime, "cpu/0", "", errors.New("boom"))
	assert.ErrorIs(t, plain, ErrDeviceRuntime)
	assert.Equal(t, "cpu/0: device runtime error: boom", plain.Error())
}

func TestSolutionStatsString(t *testing.T) {
	assert.Equal(t, "[A0]", SolutionStats{}.String())
	assert.Equal(t, "[A3]", SolutionStats{Submitted: 3, Accepted: 3}.String())
	assert.Equal(t, "[A3+1:R2:F1]", SolutionStats{Accepted: 3, AcceptedStale: 1, Rejected: 2, Failed: 1}.String())
}

func TestProgressString(t *testing.T) {
	p := Progress{
		Hashrate: 25.5e6,
		Workers: []WorkerStatus{
			{Name: "gpu/0", State: StateRunning, Hashrate: 25e6, Temperature: 70, FanPercent: 50, PowerWatts: 110},
			{Name: "cpu/0", State: StatePaused, Hashrate: 500e3},
		},
	}
	assert.Equal(t, "Speed 25.50 MH/s gpu/0 25.00 MH/s 70C 50% 110W cpu/0 500.00 kH/s (paused)", p.String())
}
