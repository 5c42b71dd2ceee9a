package server

import (
	"net"

	"github.com/rs/zerolog"

	"github.com/Le-Stef/ferrumdb/internal/cluster"
)

// Listener accepts TCP connections and spawns one goroutine per connection,
// each running its own Connection.Serve loop.
type Listener struct {
	ln       net.Listener
	registry *Registry
	cluster  *cluster.Manager
	log      zerolog.Logger
}

func Listen(addr string, mgr *cluster.Manager, log zerolog.Logger) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Listener{ln: ln, registry: NewRegistry(), cluster: mgr, log: log}, nil
}

// Addr reports the bound address, useful when the configured port was 0.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Serve accepts connections until the listener is closed.
func (l *Listener) Serve() error {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			return err
		}
		c := NewConnection(conn, l.registry, l.cluster, l.log)
		go c.Serve()
	}
}

// Close stops accepting new connections.
func (l *Listener) Close() error {
	return l.ln.Close()
}
