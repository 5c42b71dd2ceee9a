package command

import (
	"fmt"

	"github.com/Le-Stef/ferrumdb/internal/protocol"
)

func init() {
	register(&Spec{Name: "KEYS", MinArgs: 1, MaxArgs: 1, Admin: true, Exec: execKeys})
	register(&Spec{Name: "FLUSHDB", MinArgs: 0, MaxArgs: 0, Admin: true, Exec: execFlushDB})
	register(&Spec{Name: "INFO", MinArgs: 0, MaxArgs: 0, Admin: true, Exec: execInfo})
}

func execKeys(ctx *Context, args []string) (protocol.Value, bool) {
	keys := ctx.Store.Keys(args[0])
	items := make([]protocol.Value, len(keys))
	for i, k := range keys {
		items[i] = protocol.BulkString(k)
	}
	return protocol.Array(items), false
}

func execFlushDB(ctx *Context, args []string) (protocol.Value, bool) {
	n := ctx.Store.Flush()
	return protocol.Integer(int64(n)), n > 0
}

// execInfo returns this shard's contribution to the aggregated INFO text's
// "# Shards" section; the cluster manager prepends the process-wide
// "# Server"/"# Memory"/"# Stats" sections and concatenates every shard's
// block per the INFO aggregation semantics.
func execInfo(ctx *Context, args []string) (protocol.Value, bool) {
	block := fmt.Sprintf("keys:%d\r\nmemory_bytes:%d\r\n", ctx.Store.Len(), ctx.Store.ApproxMemoryBytes())
	return protocol.BulkString(block), false
}
