// Package nrghash implements the memory-hard proof-of-work function searched by
// nrgminer. It is an ethash-family construction: a per-epoch light cache seeds
// a much larger dataset, and every nonce evaluation mixes pseudo-random dataset
// pages into a 128-byte state.
package nrghash

import (
	"errors"
	"math/big"
)

// Word and row geometry shared by the host implementation and device kernels.
const (
	WordBytes = 4
	HashBytes = 64
	MixBytes  = 128
	HashWords = HashBytes / WordBytes
	MixWords  = MixBytes / WordBytes
	MixNodes  = MixBytes / HashBytes
)

// Params holds the tunables of the algorithm. MainnetParams is what the
// network mines; DevParams keeps caches and datasets tiny for local runs.
type Params struct {
	EpochLength        uint64
	CacheBytesInit     uint64
	CacheBytesGrowth   uint64
	DatasetBytesInit   uint64
	DatasetBytesGrowth uint64
	CacheRounds        int
	DatasetParents     uint32
	Accesses           uint32
}

var MainnetParams = Params{
	EpochLength:        30000,
	CacheBytesInit:     1 << 24,
	CacheBytesGrowth:   1 << 17,
	DatasetBytesInit:   1 << 30,
	DatasetBytesGrowth: 1 << 23,
	CacheRounds:        3,
	DatasetParents:     256,
	Accesses:           64,
}

var DevParams = Params{
	EpochLength:        30,
	CacheBytesInit:     1 << 12,
	CacheBytesGrowth:   1 << 7,
	DatasetBytesInit:   1 << 15,
	DatasetBytesGrowth: 1 << 10,
	CacheRounds:        3,
	DatasetParents:     256,
	Accesses:           64,
}

var errInvalidParams = errors.New("nrghash: invalid params")

// Validate rejects parameter sets the size search cannot work with.
func (p Params) Validate() error {
	switch {
	case p.EpochLength == 0:
		return errInvalidParams
	case p.CacheBytesInit < 4*HashBytes || p.DatasetBytesInit < 4*MixBytes:
		return errInvalidParams
	case p.CacheRounds < 0 || p.DatasetParents == 0 || p.Accesses == 0:
		return errInvalidParams
	}
	return nil
}

// Epoch returns the epoch number a block height belongs to.
func (p Params) Epoch(height uint64) uint64 {
	return height / p.EpochLength
}

// CacheSize returns the light cache size in bytes for the epoch of height.
// The row count is the largest prime not above the linear growth target.
func (p Params) CacheSize(height uint64) uint64 {
	size := p.CacheBytesInit + p.CacheBytesGrowth*p.Epoch(height) - HashBytes
	for !isPrime(size / HashBytes) {
		size -= 2 * HashBytes
	}
	return size
}

// DatasetSize returns the full dataset size in bytes for the epoch of height.
func (p Params) DatasetSize(height uint64) uint64 {
	size := p.DatasetBytesInit + p.DatasetBytesGrowth*p.Epoch(height) - MixBytes
	for !isPrime(size / MixBytes) {
		size -= 2 * MixBytes
	}
	return size
}

func isPrime(n uint64) bool {
	return new(big.Int).SetUint64(n).ProbablyPrime(1)
}

func fnv(a, b uint32) uint32 {
	return a*0x01000193 ^ b
}

func fnvHash(mix []uint32, data []uint32) {
	for i := 0; i < len(mix); i++ {
		mix[i] = mix[i]*0x01000193 ^ data[i]
	}
}
