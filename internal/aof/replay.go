package aof

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/Le-Stef/ferrumdb/internal/protocol"
)

// Apply is called once per successfully verified record during replay, with
// the decoded command array, so the caller can push it into a store without
// re-appending it to the AOF.
type Apply func(cmd protocol.Value) error

// Replay walks the AOF file at path in order, verifying each record's
// checksum and applying it via apply. A record with a bad checksum or a
// truncated tail stops replay there; the file is then truncated to the end
// of the last good record so future appends start from a clean boundary.
// Returns the number of records applied.
func Replay(path string, apply Apply) (int, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "aof: open %s for replay", path)
	}
	defer f.Close()

	applied := 0
	var goodOffset int64

	for {
		recStart := goodOffset
		header := make([]byte, headerLen)
		n, err := io.ReadFull(f, header)
		if err != nil || n < headerLen {
			break
		}
		if header[0] != Magic {
			break
		}
		payloadLen := binary.LittleEndian.Uint32(header[1:5])

		payload := make([]byte, payloadLen)
		if _, err := io.ReadFull(f, payload); err != nil {
			break
		}

		trailer := make([]byte, trailerLen)
		if _, err := io.ReadFull(f, trailer); err != nil {
			break
		}
		want := binary.LittleEndian.Uint64(trailer)
		if checksum(payload) != want {
			break
		}

		res := protocol.TryDecode(payload)
		if res.Status != protocol.Complete || res.Consumed != len(payload) {
			break
		}

		if err := apply(res.Value); err != nil {
			return applied, errors.Wrapf(err, "aof: apply record at offset %d", recStart)
		}
		applied++
		goodOffset = recStart + int64(headerLen) + int64(payloadLen) + int64(trailerLen)
	}

	if err := f.Truncate(goodOffset); err != nil {
		return applied, errors.Wrapf(err, "aof: truncate %s to %d", path, goodOffset)
	}
	return applied, nil
}
