// Package siphash implements SipHash-1-3: one compression round per input
// block, three finalization rounds. This exact parameterization backs the
// shard router's key hash; it is not something any library in the dependency
// set already provides, so it is written directly from the published SipHash
// round structure rather than reused from elsewhere.
package siphash

import "encoding/binary"

// Key is the 128-bit key used to keep the hash function unpredictable to
// clients; callers should generate one randomly at process start and reuse
// it for the lifetime of the process so routing stays stable.
type Key struct {
	K0, K1 uint64
}

// Sum64 computes the SipHash-1-3 digest of data under k.
func Sum64(k Key, data []byte) uint64 {
	v0 := k.K0 ^ 0x736f6d6570736575
	v1 := k.K1 ^ 0x646f72616e646f6d
	v2 := k.K0 ^ 0x6c7967656e657261
	v3 := k.K1 ^ 0x7465646279746573

	length := len(data)
	end := length - (length % 8)

	for i := 0; i < end; i += 8 {
		m := binary.LittleEndian.Uint64(data[i : i+8])
		v3 ^= m
		v0, v1, v2, v3 = round(v0, v1, v2, v3)
		v0 ^= m
	}

	var last [8]byte
	copy(last[:], data[end:])
	last[7] = byte(length)
	m := binary.LittleEndian.Uint64(last[:])
	v3 ^= m
	v0, v1, v2, v3 = round(v0, v1, v2, v3)
	v0 ^= m

	v2 ^= 0xff
	v0, v1, v2, v3 = round(v0, v1, v2, v3)
	v0, v1, v2, v3 = round(v0, v1, v2, v3)
	v0, v1, v2, v3 = round(v0, v1, v2, v3)

	return v0 ^ v1 ^ v2 ^ v3
}

func round(v0, v1, v2, v3 uint64) (uint64, uint64, uint64, uint64) {
	v0 += v1
	v1 = rotl(v1, 13)
	v1 ^= v0
	v0 = rotl(v0, 32)

	v2 += v3
	v3 = rotl(v3, 16)
	v3 ^= v2

	v0 += v3
	v3 = rotl(v3, 21)
	v3 ^= v0

	v2 += v1
	v1 = rotl(v1, 17)
	v1 ^= v2
	v2 = rotl(v2, 32)

	return v0, v1, v2, v3
}

func rotl(x uint64, b uint) uint64 {
	return (x << b) | (x >> (64 - b))
}
