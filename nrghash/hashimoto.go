package nrghash

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

// Seed is the keccak512 digest of header hash and little-endian nonce that
// starts every evaluation.
type Seed [HashBytes]byte

// NewSeed computes the evaluation seed for one nonce.
func NewSeed(header common.Hash, nonce uint64) Seed {
	var in [40]byte
	copy(in[:], header[:])
	binary.LittleEndian.PutUint64(in[32:], nonce)
	var s Seed
	newKeccak512().sum(s[:], in[:])
	return s
}

// Lookup returns dataset item index as HashWords words.
type Lookup func(index uint32) []uint32

// Hashimoto evaluates the proof-of-work for a precomputed seed against a
// dataset of datasetSize bytes, returning the mix digest and final result.
func Hashimoto(p Params, seed Seed, datasetSize uint64, lookup Lookup) (mixDigest, result common.Hash) {
	pages := uint32(datasetSize / MixBytes)
	head := binary.LittleEndian.Uint32(seed[:])

	var mix, temp [MixWords]uint32
	for i := range mix {
		mix[i] = binary.LittleEndian.Uint32(seed[(i%HashWords)*WordBytes:])
	}
	for i := uint32(0); i < p.Accesses; i++ {
		parent := fnv(i^head, mix[i%MixWords]) % pages
		for j := uint32(0); j < MixNodes; j++ {
			copy(temp[j*HashWords:], lookup(parent*MixNodes+j))
		}
		fnvHash(mix[:], temp[:])
	}

	for i := 0; i < MixWords; i += 4 {
		cmix := fnv(fnv(fnv(mix[i], mix[i+1]), mix[i+2]), mix[i+3])
		binary.LittleEndian.PutUint32(mixDigest[i:], cmix)
	}
	newKeccak256().sum(result[:], seed[:], mixDigest[:])
	return mixDigest, result
}

// HashimotoLight evaluates a nonce computing the dataset items it touches from
// the light cache. It is what the host uses to re-check device candidates.
func HashimotoLight(p Params, cache *Cache, datasetSize uint64, header common.Hash, nonce uint64) (common.Hash, common.Hash) {
	g := NewItemGenerator(p, cache.words)
	item := make([]uint32, HashWords)
	lookup := func(index uint32) []uint32 {
		g.Item(item, index)
		return item
	}
	return Hashimoto(p, NewSeed(header, nonce), datasetSize, lookup)
}

// HashimotoFull evaluates a nonce against a fully generated dataset.
func HashimotoFull(p Params, dataset []uint32, header common.Hash, nonce uint64) (common.Hash, common.Hash) {
	return Hashimoto(p, NewSeed(header, nonce), uint64(len(dataset))*WordBytes, DatasetLookup(dataset))
}

// DatasetLookup adapts a generated dataset to a Lookup.
func DatasetLookup(dataset []uint32) Lookup {
	return func(index uint32) []uint32 {
		off := index * HashWords
		return dataset[off : off+HashWords]
	}
}
