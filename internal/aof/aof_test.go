package aof

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Le-Stef/ferrumdb/internal/protocol"
)

func tempAOFPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "ferrumdb_shard_0.aof")
}

func TestWriteThenReplay(t *testing.T) {
	path := tempAOFPath(t)
	w, err := Open(path, SyncAlways)
	require.NoError(t, err)

	require.NoError(t, w.Append(protocol.BulkStrings("SET", "foo", "bar")))
	require.NoError(t, w.Append(protocol.BulkStrings("SET", "baz", "qux")))
	require.NoError(t, w.Close())

	var applied []protocol.Value
	n, err := Replay(path, func(cmd protocol.Value) error {
		applied = append(applied, cmd)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, "SET", applied[0].Array[0].Str)
	require.Equal(t, "foo", applied[0].Array[1].Str)
}

func TestReplayMissingFileIsNotError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does_not_exist.aof")
	n, err := Replay(path, func(protocol.Value) error { return nil })
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestChecksumCorruptionStopsReplay(t *testing.T) {
	path := tempAOFPath(t)
	w, err := Open(path, SyncAlways)
	require.NoError(t, err)
	require.NoError(t, w.Append(protocol.BulkStrings("SET", "a", "1")))
	require.NoError(t, w.Append(protocol.BulkStrings("SET", "b", "2")))
	require.NoError(t, w.Close())

	// Flip a bit in the second record's payload.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	firstRecordLen := headerLen + len(protocol.EncodeBytes(protocol.BulkStrings("SET", "a", "1"))) + trailerLen
	corruptIdx := firstRecordLen + headerLen
	data[corruptIdx] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	applied := 0
	n, err := Replay(path, func(protocol.Value) error {
		applied++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 1, applied)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.EqualValues(t, firstRecordLen, info.Size())
}

func TestTruncatedTailStopsReplay(t *testing.T) {
	path := tempAOFPath(t)
	w, err := Open(path, SyncAlways)
	require.NoError(t, err)
	require.NoError(t, w.Append(protocol.BulkStrings("SET", "a", "1")))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-3], 0o644))

	n, err := Replay(path, func(protocol.Value) error { return nil })
	require.NoError(t, err)
	require.Equal(t, 0, n)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.EqualValues(t, 0, info.Size())
}

func TestEverySecPolicyStartsAndStopsTicker(t *testing.T) {
	path := tempAOFPath(t)
	w, err := Open(path, SyncEverySecond)
	require.NoError(t, err)
	require.NoError(t, w.Append(protocol.BulkStrings("SET", "a", "1")))
	require.NoError(t, w.Close())
}
