// Package miner runs the nrghash search on CPU and GPU devices: it builds the
// per-epoch dataset on each device, hands out disjoint nonce ranges, validates
// candidates on the host and reports solutions through a Plant.
package miner

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hadv/nrgminer/nrghash"
)

const (
	// MaxSearchResults is how many matches one search launch can report.
	// Further matches in the same launch are lost.
	MaxSearchResults = 1

	DefaultLocalWorkSize            = 128
	DefaultGlobalWorkSizeMultiplier = 8192

	// localWorkSizeQuantum is the multiple local sizes are rounded up to.
	localWorkSizeQuantum = 8
)

// Work is one unit of mining work. It is immutable once published via
// Plant.SetWork; the plant keeps its own copy of Header.
type Work struct {
	Height     uint64
	Header     []byte
	Target     common.Hash
	ExtraNonce uint64
	Valid      bool
}

// Equal reports whether two work units describe the same search.
func (w Work) Equal(o Work) bool {
	return w.Valid == o.Valid &&
		w.Height == o.Height &&
		w.Target == o.Target &&
		w.ExtraNonce == o.ExtraNonce &&
		bytes.Equal(w.Header, o.Header)
}

// Epoch returns the dataset epoch of the work's height.
func (w Work) Epoch(p nrghash.Params) uint64 { return p.Epoch(w.Height) }

// HeaderHash returns the digest devices search over.
func (w Work) HeaderHash() common.Hash { return nrghash.HeaderHash(w.Header) }

func (w Work) clone() Work {
	w.Header = bytes.Clone(w.Header)
	return w
}

func (w Work) String() string {
	if !w.Valid {
		return "work{none}"
	}
	return fmt.Sprintf("work{height=%d header=%x}", w.Height, w.HeaderHash().Bytes()[:4])
}

// Solution is a host-validated nonce for a work unit.
type Solution struct {
	Work       Work
	Nonce      uint64
	MixDigest  common.Hash
	Result     common.Hash
	ExtraNonce uint64
	Worker     string
}

// LaunchGeometry is the work-item layout of one kernel launch.
type LaunchGeometry struct {
	Local  uint32
	Global uint32
}

// NewLaunchGeometry rounds local up to a multiple of eight and sizes the
// launch as multiplier local groups.
func NewLaunchGeometry(local uint32, multiplier int) LaunchGeometry {
	if local == 0 {
		local = DefaultLocalWorkSize
	}
	local = (local + localWorkSizeQuantum - 1) / localWorkSizeQuantum * localWorkSizeQuantum
	if multiplier < 0 {
		multiplier = -multiplier
	}
	if multiplier == 0 {
		multiplier = DefaultGlobalWorkSizeMultiplier
	}
	return LaunchGeometry{Local: local, Global: local * uint32(multiplier)}
}

// ScaleToComputeUnits scales the global size from the 36 compute-unit
// reference card to cu units, keeping it a multiple of the local size.
// Drivers reporting 14 units are reporting a 36 unit part.
func (g LaunchGeometry) ScaleToComputeUnits(cu int) LaunchGeometry {
	if cu == 14 {
		cu = 36
	}
	if cu <= 0 || cu == 36 {
		return g
	}
	global := uint64(g.Global) * uint64(cu) / 36
	if rem := global % uint64(g.Local); rem != 0 {
		global += uint64(g.Local) - rem
	}
	if global == 0 {
		global = uint64(g.Local)
	}
	return LaunchGeometry{Local: g.Local, Global: uint32(global)}
}

// DatasetSpec describes the dataset a device holds for one epoch.
type DatasetSpec struct {
	Epoch       uint64
	Seed        common.Hash
	CacheSize   uint64
	DatasetSize uint64
}

// NewDatasetSpec derives the dataset geometry for a block height.
func NewDatasetSpec(p nrghash.Params, height uint64) DatasetSpec {
	epoch := p.Epoch(height)
	return DatasetSpec{
		Epoch:       epoch,
		Seed:        nrghash.SeedHash(epoch),
		CacheSize:   p.CacheSize(height),
		DatasetSize: p.DatasetSize(height),
	}
}

// Items returns the number of 64-byte dataset items.
func (s DatasetSpec) Items() uint32 { return uint32(s.DatasetSize / nrghash.HashBytes) }

// Pages returns the number of 128-byte pages the search reads.
func (s DatasetSpec) Pages() uint32 { return uint32(s.DatasetSize / nrghash.MixBytes) }
