// Package aof implements the per-shard append-only command log: checksum
// framed records, a configurable fsync policy, and startup replay.
package aof

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Magic is the fixed sentinel byte every record frame begins with.
const Magic byte = 0xF3

// headerLen is magic(1) + payload length(4).
const headerLen = 5

// trailerLen is the checksum(8).
const trailerLen = 8

// EncodeRecord frames payload as <magic><len LE><payload><checksum LE>.
func EncodeRecord(payload []byte) []byte {
	buf := make([]byte, headerLen+len(payload)+trailerLen)
	buf[0] = Magic
	binary.LittleEndian.PutUint32(buf[1:5], uint32(len(payload)))
	copy(buf[headerLen:], payload)
	sum := xxhash.Sum64(payload)
	binary.LittleEndian.PutUint64(buf[headerLen+len(payload):], sum)
	return buf
}

// checksum returns the xxhash64 digest used to frame and verify records.
func checksum(payload []byte) uint64 {
	return xxhash.Sum64(payload)
}
