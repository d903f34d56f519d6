package nrghash

import (
	"encoding/binary"

	"github.com/cloudflare/circl/simd/keccakf1600"
	"github.com/ethereum/go-ethereum/common"
)

// X4Enabled reports whether four-way SIMD Keccak is available on this CPU.
func X4Enabled() bool {
	return keccakf1600.IsEnabledX4()
}

// SeedsX4 computes the evaluation seeds of four nonces at once. It falls back
// to sequential hashing when the CPU lacks the AVX2 permutation.
func SeedsX4(perm *keccakf1600.StateX4, header common.Hash, nonces [4]uint64, out *[4]Seed) {
	if !keccakf1600.IsEnabledX4() {
		for lane := range nonces {
			out[lane] = NewSeed(header, nonces[lane])
		}
		return
	}

	state := perm.Initialize(false)
	for i := range state {
		state[i] = 0
	}

	// keccak512 absorbs 72 bytes per block; header and nonce fill five words.
	for lane := 0; lane < 4; lane++ {
		for word := 0; word < 4; word++ {
			state[4*word+lane] = binary.LittleEndian.Uint64(header[word*8:])
		}
		state[4*4+lane] = nonces[lane]
		state[4*5+lane] = 0x01
		state[4*8+lane] = 0x8000000000000000
	}

	perm.Permute()

	for lane := 0; lane < 4; lane++ {
		for word := 0; word < HashBytes/8; word++ {
			binary.LittleEndian.PutUint64(out[lane][word*8:], state[4*word+lane])
		}
	}
}
