package miner

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"
)

// NonceAllocator hands each worker the first nonce of its search range for a
// work unit.
type NonceAllocator interface {
	StartNonce(w Work, workerIndex int) uint64
}

// SegmentAllocator splits the 64-bit nonce space into 2^(64-bits) segments of
// 2^bits nonces. Worker i starts at scrambler + i<<bits, so distinct workers
// never overlap unless one exhausts its whole segment.
type SegmentAllocator struct {
	bits uint

	mu        sync.Mutex
	rng       *xoroshiro128plus
	scrambler uint64
	last      Work
}

// NewSegmentAllocator seeds a generator from crypto/rand and draws a fresh
// scrambler for every new work unit, so separate processes and successive
// jobs start at unrelated offsets.
func NewSegmentAllocator(bits uint) (*SegmentAllocator, error) {
	rng, err := newXoroshiro128plus()
	if err != nil {
		return nil, err
	}
	return &SegmentAllocator{bits: bits, rng: rng, scrambler: rng.next()}, nil
}

// NewSegmentAllocatorWithScrambler keeps scrambler for every work unit.
func NewSegmentAllocatorWithScrambler(bits uint, scrambler uint64) *SegmentAllocator {
	return &SegmentAllocator{scrambler: scrambler, bits: bits}
}

func (a *SegmentAllocator) StartNonce(w Work, workerIndex int) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rng != nil && !w.Equal(a.last) {
		a.scrambler = a.rng.next()
		a.last = w.clone()
	}
	return a.scrambler + uint64(workerIndex)<<a.bits
}

// SegmentSize returns the number of nonces each worker owns.
func (a *SegmentAllocator) SegmentSize() uint64 { return 1 << a.bits }

// MaxWorkers returns how many workers get disjoint segments.
func (a *SegmentAllocator) MaxWorkers() uint64 { return 1 << (64 - a.bits) }

// Scrambler returns the base offset of the current work unit.
func (a *SegmentAllocator) Scrambler() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scrambler
}

// xoroshiro128plus is a fast non-cryptographic PRNG. Only the seed comes
// from crypto/rand.
type xoroshiro128plus struct {
	s0, s1 uint64
}

func newXoroshiro128plus() (*xoroshiro128plus, error) {
	var seed [16]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("seed nonce scrambler: %w", err)
	}
	r := &xoroshiro128plus{
		s0: binary.LittleEndian.Uint64(seed[:8]),
		s1: binary.LittleEndian.Uint64(seed[8:]),
	}
	if r.s0|r.s1 == 0 {
		r.s1 = 1
	}
	return r, nil
}

func rotl(x uint64, k int) uint64 {
	return (x << k) | (x >> (64 - k))
}

func (r *xoroshiro128plus) next() uint64 {
	s0, s1 := r.s0, r.s1
	result := s0 + s1

	s1 ^= s0
	r.s0 = rotl(s0, 24) ^ s1 ^ (s1 << 16)
	r.s1 = rotl(s1, 37)
	return result
}
