// Package cluster routes commands to shards by key hash and aggregates the
// handful of admin commands that must touch every shard.
package cluster

import (
	"fmt"
	"strings"
	"time"

	"github.com/Le-Stef/ferrumdb/internal/command"
	"github.com/Le-Stef/ferrumdb/internal/protocol"
	"github.com/Le-Stef/ferrumdb/internal/shard"
	"github.com/Le-Stef/ferrumdb/internal/siphash"
)

// Manager owns every shard and is the single entry point commands are
// dispatched through, whether they arrive from a connection or from the
// dashboard's command-injection interface.
type Manager struct {
	shards    []*shard.Shard
	routeKey  siphash.Key
	startedAt time.Time
}

func NewManager(shards []*shard.Shard, routeKey siphash.Key) *Manager {
	return &Manager{shards: shards, routeKey: routeKey, startedAt: time.Now()}
}

func (m *Manager) ShardCount() int { return len(m.shards) }

func (m *Manager) Shards() []*shard.Shard { return m.shards }

// routeIndex hashes a routing key to a shard index with SipHash-1-3 under
// the process-lifetime key, mod the fixed shard count.
func (m *Manager) routeIndex(key string) int {
	h := siphash.Sum64(m.routeKey, []byte(key))
	return int(h % uint64(len(m.shards)))
}

// Execute runs one already-decoded command. name is case-insensitive.
func (m *Manager) Execute(name string, args []string) protocol.Value {
	upper := strings.ToUpper(name)

	if command.IsAdmin(upper) {
		return m.broadcast(upper, args)
	}

	spec, ok := command.Lookup(upper)
	if !ok {
		return protocol.Error("ERR unknown command '" + name + "'")
	}
	if len(args) < spec.MinArgs {
		return protocol.Error("ERR wrong number of arguments for '" + strings.ToLower(upper) + "' command")
	}

	idx := m.routeIndex(args[0])
	return m.dispatchTo(idx, upper, args)
}

func (m *Manager) dispatchTo(idx int, name string, args []string) protocol.Value {
	reply := make(chan protocol.Value, 1)
	m.shards[idx].Submit(shard.WorkItem{Name: name, Args: args, Reply: reply})
	return <-reply
}

func (m *Manager) broadcast(name string, args []string) protocol.Value {
	replies := make([]protocol.Value, len(m.shards))
	chans := make([]chan protocol.Value, len(m.shards))
	for i, s := range m.shards {
		ch := make(chan protocol.Value, 1)
		chans[i] = ch
		s.Submit(shard.WorkItem{Name: name, Args: args, Reply: ch})
	}
	for i, ch := range chans {
		replies[i] = <-ch
	}

	if name != "INFO" {
		for _, r := range replies {
			if r.IsError() {
				return r
			}
		}
	}

	switch name {
	case "FLUSHDB":
		var total int64
		for _, r := range replies {
			total += r.Int
		}
		return protocol.Integer(total)
	case "KEYS":
		var all []protocol.Value
		for _, r := range replies {
			all = append(all, r.Array...)
		}
		return protocol.Array(all)
	case "INFO":
		return m.aggregateInfo(replies)
	default:
		return replies[0]
	}
}

// aggregateInfo builds the full INFO text: process-wide sections computed
// here, followed by the concatenation of every shard's own block, per the
// admin-aggregation "concatenation of info blocks" semantics.
func (m *Manager) aggregateInfo(shardReplies []protocol.Value) protocol.Value {
	var sb strings.Builder
	sb.WriteString("# Server\r\n")
	fmt.Fprintf(&sb, "uptime_seconds:%d\r\n", int64(time.Since(m.startedAt).Seconds()))
	fmt.Fprintf(&sb, "shards:%d\r\n", len(m.shards))

	var totalKeys, totalMemory int64
	for _, s := range m.shards {
		if snap := s.Snapshot(); snap != nil {
			totalKeys += snap.KeyCount
			totalMemory += snap.ApproxMemoryBytes
		}
	}
	sb.WriteString("# Memory\r\n")
	fmt.Fprintf(&sb, "total_approx_memory_bytes:%d\r\n", totalMemory)

	var totalCommands int64
	for _, s := range m.shards {
		if snap := s.Snapshot(); snap != nil {
			totalCommands += snap.CommandsProcessed
		}
	}
	sb.WriteString("# Stats\r\n")
	fmt.Fprintf(&sb, "total_keys:%d\r\n", totalKeys)
	fmt.Fprintf(&sb, "commands_processed:%d\r\n", totalCommands)

	sb.WriteString("# Shards\r\n")
	for i, r := range shardReplies {
		fmt.Fprintf(&sb, "shard%d:", i)
		if r.IsError() {
			sb.WriteString("error\r\n")
			continue
		}
		sb.WriteString(r.Str)
	}

	return protocol.BulkString(sb.String())
}

// Inject decodes one RESP2 command and runs it against the named shard
// directly, the equivalent of enqueuing a command without a socket, for the
// interactive dashboard console.
func (m *Manager) Inject(shardIdx int, raw []byte) (protocol.Value, error) {
	if shardIdx < 0 || shardIdx >= len(m.shards) {
		return protocol.Value{}, fmt.Errorf("cluster: shard index %d out of range", shardIdx)
	}
	res := protocol.TryDecode(raw)
	if res.Status != protocol.Complete {
		return protocol.Value{}, fmt.Errorf("cluster: inject payload did not decode to a complete command")
	}
	if res.Value.Kind != protocol.KindArray || len(res.Value.Array) == 0 {
		return protocol.Value{}, fmt.Errorf("cluster: inject payload must be a non-empty command array")
	}
	name := strings.ToUpper(res.Value.Array[0].Str)
	args := make([]string, len(res.Value.Array)-1)
	for i, v := range res.Value.Array[1:] {
		args[i] = v.Str
	}
	return m.dispatchTo(shardIdx, name, args), nil
}

// Shutdown stops every shard's executor, flushing each AOF regardless of
// its configured sync policy.
func (m *Manager) Shutdown() error {
	var firstErr error
	for _, s := range m.shards {
		if err := s.Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
