package server

import (
	"bufio"
	"io"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Le-Stef/ferrumdb/internal/aof"
	"github.com/Le-Stef/ferrumdb/internal/cluster"
	"github.com/Le-Stef/ferrumdb/internal/shard"
	"github.com/Le-Stef/ferrumdb/internal/siphash"
)

func newTestCluster(t *testing.T) *cluster.Manager {
	dir := t.TempDir()
	cfg := shard.Config{
		ID:                 0,
		AOFPath:            shard.AOFPathForShard(dir, 0),
		SyncPolicy:         aof.SyncAlways,
		InboxCapacity:      16,
		ActiveExpireSample: 20,
		ActiveExpireEvery:  100,
		Log:                zerolog.New(io.Discard),
	}
	s, err := shard.New(cfg)
	require.NoError(t, err)
	go s.Run()
	t.Cleanup(func() { s.Shutdown() })
	return cluster.NewManager([]*shard.Shard{s}, siphash.Key{K0: 7, K1: 9})
}

func startTestListener(t *testing.T) net.Addr {
	mgr := newTestCluster(t)
	ln, err := Listen("127.0.0.1:0", mgr, zerolog.New(io.Discard))
	require.NoError(t, err)
	go ln.Serve()
	t.Cleanup(func() { ln.Close() })
	return ln.Addr()
}

func TestBasicSetGetOverTheWire(t *testing.T) {
	addr := startTestListener(t)
	conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n"))
	require.NoError(t, err)
	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "+OK\r\n", line)

	_, err = conn.Write([]byte("*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n"))
	require.NoError(t, err)
	lengthLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "$3\r\n", lengthLine)
	valueLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "bar\r\n", valueLine)
}

func TestPingInlineCommand(t *testing.T) {
	addr := startTestListener(t)
	conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("PING\r\n"))
	require.NoError(t, err)
	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "+PONG\r\n", line)
}

func TestClientSetNameAndGetName(t *testing.T) {
	addr := startTestListener(t)
	conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("*3\r\n$6\r\nCLIENT\r\n$7\r\nSETNAME\r\n$4\r\ntest\r\n"))
	require.NoError(t, err)
	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "+OK\r\n", line)

	_, err = conn.Write([]byte("*2\r\n$6\r\nCLIENT\r\n$7\r\nGETNAME\r\n"))
	require.NoError(t, err)
	lenLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "$4\r\n", lenLine)
	nameLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "test\r\n", nameLine)
}
