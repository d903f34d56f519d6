package nrghash

import (
	"encoding/binary"
	"hash"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// hasher wraps a legacy Keccak state so it can be reused across rows.
type hasher struct {
	h hash.Hash
}

func newKeccak512() hasher { return hasher{h: sha3.NewLegacyKeccak512()} }

func newKeccak256() hasher { return hasher{h: sha3.NewLegacyKeccak256()} }

func (k hasher) sum(dst []byte, data ...[]byte) []byte {
	k.h.Reset()
	for _, b := range data {
		k.h.Write(b)
	}
	return k.h.Sum(dst[:0])
}

// SeedHash returns the dataset seed of an epoch: keccak256 applied epoch times
// to 32 zero bytes.
func SeedHash(epoch uint64) common.Hash {
	var seed common.Hash
	k := newKeccak256()
	for i := uint64(0); i < epoch; i++ {
		k.sum(seed[:], seed[:])
	}
	return seed
}

// HeaderHash returns the 32-byte digest devices search over.
func HeaderHash(header []byte) common.Hash {
	var h common.Hash
	newKeccak256().sum(h[:], header)
	return h
}

// Cache is the light cache of one epoch held as little-endian 32-bit words.
// It is immutable once built and safe to share between goroutines.
type Cache struct {
	epoch uint64
	words []uint32
}

// NewCache builds the light cache for an epoch.
func NewCache(p Params, epoch uint64) *Cache {
	size := p.CacheSize(epoch * p.EpochLength)
	seed := SeedHash(epoch)
	return &Cache{epoch: epoch, words: generateCache(p, size, seed)}
}

func generateCache(p Params, size uint64, seed common.Hash) []uint32 {
	rows := int(size / HashBytes)
	buf := make([]byte, size)
	k := newKeccak512()

	k.sum(buf[:HashBytes], seed[:])
	for off := HashBytes; off < len(buf); off += HashBytes {
		k.sum(buf[off:off+HashBytes], buf[off-HashBytes:off])
	}

	temp := make([]byte, HashBytes)
	for round := 0; round < p.CacheRounds; round++ {
		for i := 0; i < rows; i++ {
			src := ((i - 1 + rows) % rows) * HashBytes
			dst := i * HashBytes
			xor := int(binary.LittleEndian.Uint32(buf[dst:])%uint32(rows)) * HashBytes
			for j := 0; j < HashBytes; j++ {
				temp[j] = buf[src+j] ^ buf[xor+j]
			}
			k.sum(buf[dst:dst+HashBytes], temp)
		}
	}

	words := make([]uint32, len(buf)/WordBytes)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(buf[i*WordBytes:])
	}
	return words
}

// Epoch returns the epoch the cache was built for.
func (c *Cache) Epoch() uint64 { return c.epoch }

// Words exposes the raw cache words for upload to a device. Callers must not
// modify the returned slice.
func (c *Cache) Words() []uint32 { return c.words }

// Rows returns the number of 64-byte rows in the cache.
func (c *Cache) Rows() uint32 { return uint32(len(c.words) / HashWords) }

// Size returns the cache size in bytes.
func (c *Cache) Size() uint64 { return uint64(len(c.words)) * WordBytes }
