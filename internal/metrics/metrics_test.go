package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPublisherStartsEmpty(t *testing.T) {
	var p Publisher
	require.Nil(t, p.Load())
}

func TestPublisherReturnsLatestSnapshot(t *testing.T) {
	var p Publisher
	p.Publish(Snapshot{ShardID: 1, KeyCount: 5, Alive: true})
	p.Publish(Snapshot{ShardID: 1, KeyCount: 9, Alive: true})

	snap := p.Load()
	require.NotNil(t, snap)
	require.EqualValues(t, 9, snap.KeyCount)
}

func TestRegistryObserveDoesNotPanic(t *testing.T) {
	reg := NewRegistry()
	reg.Observe("0", Snapshot{KeyCount: 3, ApproxMemoryBytes: 100, LastAOFOffset: 50}, 2)
}

func TestServerExposesMetricsEndpoint(t *testing.T) {
	reg := NewRegistry()
	reg.Observe("0", Snapshot{KeyCount: 7, ApproxMemoryBytes: 42}, 3)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ln.Close()

	srv := NewServer(ln.Addr().String(), reg.Gatherer, zerolog.Nop())
	go srv.Serve()
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + ln.Addr().String() + "/metrics")
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "ferrumdb_keys")
}
