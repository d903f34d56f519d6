package nrghash

import "encoding/binary"

// ItemGenerator computes 64-byte dataset items from a light cache. It keeps
// scratch buffers, so each goroutine needs its own generator.
type ItemGenerator struct {
	cache   []uint32
	rows    uint32
	parents uint32
	k       hasher
	buf     [HashBytes]byte
}

// NewItemGenerator returns a generator over raw light cache words.
func NewItemGenerator(p Params, cache []uint32) *ItemGenerator {
	return &ItemGenerator{
		cache:   cache,
		rows:    uint32(len(cache) / HashWords),
		parents: p.DatasetParents,
		k:       newKeccak512(),
	}
}

// Item writes dataset item index into dst, which must hold HashWords words.
func (g *ItemGenerator) Item(dst []uint32, index uint32) {
	row := g.cache[(index%g.rows)*HashWords:]
	mix := g.buf[:]
	binary.LittleEndian.PutUint32(mix, row[0]^index)
	for i := 1; i < HashWords; i++ {
		binary.LittleEndian.PutUint32(mix[i*WordBytes:], row[i])
	}
	g.k.sum(mix, mix)

	for i := 0; i < HashWords; i++ {
		dst[i] = binary.LittleEndian.Uint32(mix[i*WordBytes:])
	}
	for i := uint32(0); i < g.parents; i++ {
		parent := fnv(index^i, dst[i%HashWords]) % g.rows
		fnvHash(dst[:HashWords], g.cache[parent*HashWords:])
	}

	for i := 0; i < HashWords; i++ {
		binary.LittleEndian.PutUint32(mix[i*WordBytes:], dst[i])
	}
	g.k.sum(mix, mix)
	for i := 0; i < HashWords; i++ {
		dst[i] = binary.LittleEndian.Uint32(mix[i*WordBytes:])
	}
}

// GenerateDataset fills dataset items [from, to) of dst, a word slice covering
// the whole dataset.
func GenerateDataset(p Params, cache []uint32, dst []uint32, from, to uint32) {
	g := NewItemGenerator(p, cache)
	items := uint32(len(dst) / HashWords)
	if to > items {
		to = items
	}
	for i := from; i < to; i++ {
		g.Item(dst[i*HashWords:(i+1)*HashWords], i)
	}
}
