package miner

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cloudflare/circl/simd/keccakf1600"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hadv/nrgminer/nrghash"
)

// HostDevice runs the device programs on CPU goroutines. Every launch is
// synchronous, so Finish has nothing to wait for.
type HostDevice struct {
	info    DeviceInfo
	threads int
	simd    bool

	prog     ProgramParams
	compiled bool
	light    []uint32
	dataset  []uint32
	header   common.Hash

	count atomic.Uint32
	gid   atomic.Uint32
}

// NewHostDevice returns a host device splitting launches over threads
// goroutines.
func NewHostDevice(info DeviceInfo, threads int) *HostDevice {
	if threads < 1 {
		threads = 1
	}
	return &HostDevice{info: info, threads: threads, simd: nrghash.X4Enabled()}
}

func (d *HostDevice) Info() DeviceInfo { return d.info }

func (d *HostDevice) Compile(p ProgramParams) error {
	if err := p.Params.Validate(); err != nil {
		return newDeviceError(ErrKernelBuild, d.info.Label(), "compile", err)
	}
	if p.Local == 0 || p.DatasetPages == 0 || p.LightRows == 0 {
		return newDeviceError(ErrKernelBuild, d.info.Label(), "compile",
			fmt.Errorf("bad program geometry local=%d pages=%d rows=%d", p.Local, p.DatasetPages, p.LightRows))
	}
	d.prog = p
	d.compiled = true
	return nil
}

func (d *HostDevice) Upload(light []uint32, datasetBytes uint64) error {
	if !d.compiled {
		return newDeviceError(ErrDeviceRuntime, d.info.Label(), "upload", fmt.Errorf("no program loaded"))
	}
	if datasetBytes > d.info.GlobalMemory {
		return newDeviceError(ErrInsufficientDeviceMemory, d.info.Label(), "upload",
			fmt.Errorf("dataset needs %d bytes, device has %d", datasetBytes, d.info.GlobalMemory))
	}
	d.light = light
	d.dataset = make([]uint32, datasetBytes/nrghash.WordBytes)
	return nil
}

func (d *HostDevice) GenerateDataset(offset uint32, g LaunchGeometry) error {
	if d.dataset == nil {
		return newDeviceError(ErrDeviceRuntime, d.info.Label(), "generate dataset", fmt.Errorf("no dataset buffer"))
	}
	d.parallel(g.Global, func(from, to uint32) {
		nrghash.GenerateDataset(d.prog.Params, d.light, d.dataset, offset+from, offset+to)
	})
	return nil
}

func (d *HostDevice) WriteHeader(header common.Hash) error {
	d.header = header
	return nil
}

func (d *HostDevice) ResetResults() error {
	d.count.Store(0)
	d.gid.Store(0)
	return nil
}

func (d *HostDevice) Search(start, boundary uint64, g LaunchGeometry) error {
	if d.dataset == nil {
		return newDeviceError(ErrDeviceRuntime, d.info.Label(), "search", fmt.Errorf("no dataset buffer"))
	}
	d.parallel(g.Global, func(from, to uint32) {
		d.searchRange(start, boundary, from, to)
	})
	return nil
}

func (d *HostDevice) searchRange(start, boundary uint64, from, to uint32) {
	p := d.prog.Params
	size := uint64(len(d.dataset)) * nrghash.WordBytes
	lookup := nrghash.DatasetLookup(d.dataset)

	gid := from
	if d.simd {
		var perm keccakf1600.StateX4
		var seeds [4]nrghash.Seed
		for ; gid+4 <= to; gid += 4 {
			base := start + uint64(gid)
			nrghash.SeedsX4(&perm, d.header, [4]uint64{base, base + 1, base + 2, base + 3}, &seeds)
			for lane := range seeds {
				_, result := nrghash.Hashimoto(p, seeds[lane], size, lookup)
				if nrghash.PassesBoundary(result, boundary) {
					d.report(gid + uint32(lane))
				}
			}
		}
	}
	for ; gid < to; gid++ {
		_, result := nrghash.Hashimoto(p, nrghash.NewSeed(d.header, start+uint64(gid)), size, lookup)
		if nrghash.PassesBoundary(result, boundary) {
			d.report(gid)
		}
	}
}

// report keeps the first match of a launch, like the kernel's atomic slot.
func (d *HostDevice) report(gid uint32) {
	if d.count.Add(1) == 1 {
		d.gid.Store(gid)
	}
}

func (d *HostDevice) ReadResults() (SearchResult, error) {
	return SearchResult{Count: d.count.Load(), Gid: d.gid.Load()}, nil
}

func (d *HostDevice) Finish() error { return nil }

func (d *HostDevice) Release() {
	d.dataset = nil
	d.light = nil
	d.compiled = false
}

func (d *HostDevice) Close() error {
	d.Release()
	return nil
}

func (d *HostDevice) parallel(n uint32, fn func(from, to uint32)) {
	if n == 0 {
		return
	}
	threads := uint32(d.threads)
	if threads > n {
		threads = n
	}
	chunk := (n + threads - 1) / threads

	var wg sync.WaitGroup
	for from := uint32(0); from < n; from += chunk {
		to := min(from+chunk, n)
		wg.Add(1)
		go func(from, to uint32) {
			defer wg.Done()
			fn(from, to)
		}(from, to)
	}
	wg.Wait()
}
