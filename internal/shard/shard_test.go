package shard

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Le-Stef/ferrumdb/internal/aof"
	"github.com/Le-Stef/ferrumdb/internal/metrics"
	"github.com/Le-Stef/ferrumdb/internal/protocol"
)

func newTestShard(t *testing.T) *Shard {
	dir := t.TempDir()
	cfg := Config{
		ID:                 0,
		AOFPath:            AOFPathForShard(dir, 0),
		SyncPolicy:         aof.SyncAlways,
		InboxCapacity:      16,
		ActiveExpireSample: 20,
		ActiveExpireEvery:  100,
		Log:                zerolog.New(io.Discard),
	}
	s, err := New(cfg)
	require.NoError(t, err)
	go s.Run()
	t.Cleanup(func() { s.Shutdown() })
	return s
}

func submit(t *testing.T, s *Shard, name string, args ...string) protocol.Value {
	t.Helper()
	reply := make(chan protocol.Value, 1)
	s.Submit(WorkItem{Name: name, Args: args, Reply: reply})
	return <-reply
}

func TestShardExecutesAndPublishesSnapshot(t *testing.T) {
	s := newTestShard(t)

	reply := submit(t, s, "SET", "foo", "bar")
	require.Equal(t, protocol.OK(), reply)

	getReply := submit(t, s, "GET", "foo")
	require.Equal(t, "bar", getReply.Str)

	snap := s.Snapshot()
	require.NotNil(t, snap)
	require.EqualValues(t, 1, snap.KeyCount)
	require.True(t, snap.Alive)
}

func TestShardSurvivesRestartByReplayingAOF(t *testing.T) {
	dir := t.TempDir()
	path := AOFPathForShard(dir, 0)
	cfg := Config{
		ID:                 0,
		AOFPath:            path,
		SyncPolicy:         aof.SyncAlways,
		InboxCapacity:      16,
		ActiveExpireSample: 20,
		ActiveExpireEvery:  100,
		Log:                zerolog.New(io.Discard),
	}

	s1, err := New(cfg)
	require.NoError(t, err)
	go s1.Run()
	submit(t, s1, "SET", "foo", "bar")
	require.NoError(t, s1.Shutdown())

	s2, err := New(cfg)
	require.NoError(t, err)
	go s2.Run()
	defer s2.Shutdown()

	getReply := submit(t, s2, "GET", "foo")
	require.Equal(t, "bar", getReply.Str)
}

func TestShardObservesConfiguredRegistry(t *testing.T) {
	dir := t.TempDir()
	reg := metrics.NewRegistry()
	cfg := Config{
		ID:                 0,
		AOFPath:            AOFPathForShard(dir, 0),
		SyncPolicy:         aof.SyncAlways,
		InboxCapacity:      16,
		ActiveExpireSample: 20,
		ActiveExpireEvery:  100,
		Log:                zerolog.New(io.Discard),
		Metrics:            reg,
	}
	s, err := New(cfg)
	require.NoError(t, err)
	go s.Run()
	t.Cleanup(func() { s.Shutdown() })

	submit(t, s, "SET", "foo", "bar")

	count, err := reg.Gatherer.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, count)
}
