package server

import (
	"net"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Le-Stef/ferrumdb/internal/cluster"
	"github.com/Le-Stef/ferrumdb/internal/protocol"
)

// Connection owns one client socket's growing decode buffer and
// client-metadata record. It is ephemeral: it exists from accept to close.
type Connection struct {
	conn         net.Conn
	registry     *Registry
	cluster      *cluster.Manager
	log          zerolog.Logger
	info         *ClientInfo
	replyOff     bool
	skipNext     bool
	suppressThis bool
	buf          []byte
}

func NewConnection(conn net.Conn, registry *Registry, mgr *cluster.Manager, log zerolog.Logger) *Connection {
	info := registry.Connect(conn.RemoteAddr().String())
	return &Connection{conn: conn, registry: registry, cluster: mgr, log: log, info: info}
}

// Serve runs the read-decode-dispatch-reply loop until the socket closes or
// a protocol-fatal decode error occurs.
func (c *Connection) Serve() {
	defer c.conn.Close()
	defer c.registry.Disconnect(c.info.ID)

	readBuf := make([]byte, 64*1024)
	for {
		n, err := c.conn.Read(readBuf)
		if n > 0 {
			c.buf = append(c.buf, readBuf[:n]...)
		}
		if err != nil {
			return
		}

		for {
			res := protocol.TryDecode(c.buf)
			if res.Status == protocol.Incomplete {
				break
			}
			if res.Status == protocol.Fatal {
				return
			}
			c.buf = c.buf[res.Consumed:]
			if !c.handleCommand(res.Value) {
				return
			}
		}
	}
}

// handleCommand processes one decoded record, returns false if the
// connection must now close.
func (c *Connection) handleCommand(v protocol.Value) bool {
	if v.Kind != protocol.KindArray || len(v.Array) == 0 {
		return true
	}
	name := strings.ToUpper(v.Array[0].Str)
	args := make([]string, len(v.Array)-1)
	for i, item := range v.Array[1:] {
		args[i] = item.Str
	}

	c.suppressThis = false
	var reply protocol.Value
	switch name {
	case "PING":
		if len(args) > 0 {
			reply = protocol.BulkString(args[0])
		} else {
			reply = protocol.SimpleString("PONG")
		}
	case "ECHO":
		if len(args) != 1 {
			reply = protocol.Error("ERR wrong number of arguments for 'echo' command")
		} else {
			reply = protocol.BulkString(args[0])
		}
	case "CLIENT":
		reply = c.handleClient(args)
	default:
		reply = c.cluster.Execute(name, args)
	}

	c.writeReply(reply)
	return true
}

// writeReply applies CLIENT REPLY state: OFF suppresses every reply until
// ON, SKIP suppresses exactly the one reply following the SKIP call itself,
// and CLIENT REPLY OFF and SKIP never reply to themselves (CLIENT REPLY ON
// replies +OK).
func (c *Connection) writeReply(reply protocol.Value) {
	if c.suppressThis {
		return
	}
	if c.replyOff {
		return
	}
	if c.skipNext {
		c.skipNext = false
		return
	}
	c.conn.Write(protocol.EncodeBytes(reply))
}

func (c *Connection) handleClient(args []string) protocol.Value {
	if len(args) == 0 {
		return protocol.Error("ERR wrong number of arguments for 'client' command")
	}
	sub := strings.ToUpper(args[0])
	switch sub {
	case "SETNAME":
		if len(args) != 2 {
			return protocol.Error("ERR wrong number of arguments for 'client|setname' command")
		}
		c.registry.SetName(c.info.ID, args[1])
		return protocol.OK()
	case "GETNAME":
		return protocol.BulkString(c.info.Name)
	case "ID":
		return protocol.BulkString(c.info.ID)
	case "SETINFO":
		// Accepted and ignored: library identification metadata has no
		// effect on behavior in this design.
		return protocol.OK()
	case "LIST":
		var sb strings.Builder
		for _, ci := range c.registry.List() {
			sb.WriteString("id=" + ci.ID + " addr=" + ci.Addr + " name=" + ci.Name + "\n")
		}
		return protocol.BulkString(sb.String())
	case "REPLY":
		if len(args) != 2 {
			return protocol.Error("ERR wrong number of arguments for 'client|reply' command")
		}
		switch strings.ToUpper(args[1]) {
		case "ON":
			c.replyOff = false
			return protocol.OK()
		case "OFF":
			c.replyOff = true
			c.suppressThis = true
			return protocol.Value{}
		case "SKIP":
			c.skipNext = true
			c.suppressThis = true
			return protocol.Value{}
		default:
			return protocol.Error("ERR syntax error")
		}
	default:
		return protocol.Error("ERR unknown subcommand or wrong number of arguments for '" + strconv.Quote(sub) + "'")
	}
}
