package nrghash

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Boundary64 returns the upper 64 bits of a big-endian target. Device kernels
// compare only this prefix, so their matches are approximate.
func Boundary64(target common.Hash) uint64 {
	return binary.BigEndian.Uint64(target[:8])
}

// PassesBoundary is the device-side check: the first eight result bytes read
// big-endian must not exceed the boundary.
func PassesBoundary(result common.Hash, boundary uint64) bool {
	return binary.BigEndian.Uint64(result[:8]) <= boundary
}

// MeetsTarget reports whether result <= target as 256-bit big-endian integers.
func MeetsTarget(result, target common.Hash) bool {
	r := new(uint256.Int).SetBytes32(result[:])
	t := new(uint256.Int).SetBytes32(target[:])
	return !r.Gt(t)
}

// TargetFromDifficulty returns (2^256-1) / difficulty. A zero difficulty maps
// to the maximum target.
func TargetFromDifficulty(difficulty uint64) common.Hash {
	target := new(uint256.Int).Not(new(uint256.Int))
	if difficulty > 1 {
		target.Div(target, uint256.NewInt(difficulty))
	}
	return common.Hash(target.Bytes32())
}
