package command

import (
	"github.com/Le-Stef/ferrumdb/internal/protocol"
	"github.com/Le-Stef/ferrumdb/internal/store"
)

func init() {
	register(&Spec{Name: "HSET", MinArgs: 3, MaxArgs: -1, Exec: execHSet})
	register(&Spec{Name: "HGET", MinArgs: 2, MaxArgs: 2, Exec: execHGet})
	register(&Spec{Name: "HGETALL", MinArgs: 1, MaxArgs: 1, Exec: execHGetAll})
	register(&Spec{Name: "HDEL", MinArgs: 2, MaxArgs: -1, Exec: execHDel})
	register(&Spec{Name: "HKEYS", MinArgs: 1, MaxArgs: 1, Exec: execHKeys})
}

func execHSet(ctx *Context, args []string) (protocol.Value, bool) {
	if len(args[1:])%2 != 0 {
		return errSyntax(), false
	}
	key := args[0]
	v, ok := ctx.Store.Get(key)
	existed := ok
	if !ok {
		v = store.NewHash()
	} else if v.Kind != store.KindHash {
		return errWrongType(), false
	}

	created := int64(0)
	for i := 1; i < len(args); i += 2 {
		field, val := args[i], args[i+1]
		if _, has := v.Hash[field]; !has {
			created++
		}
		v.Hash[field] = val
	}

	if existed {
		ctx.Store.PutValue(key, v)
	} else {
		ctx.Store.Set(key, v)
	}
	return protocol.Integer(created), true
}

func execHGet(ctx *Context, args []string) (protocol.Value, bool) {
	v, ok := ctx.Store.Get(args[0])
	if !ok {
		return protocol.NullBulk(), false
	}
	if v.Kind != store.KindHash {
		return errWrongType(), false
	}
	val, ok := v.Hash[args[1]]
	if !ok {
		return protocol.NullBulk(), false
	}
	return protocol.BulkString(val), false
}

func execHGetAll(ctx *Context, args []string) (protocol.Value, bool) {
	v, ok := ctx.Store.Get(args[0])
	if !ok {
		return protocol.Array(nil), false
	}
	if v.Kind != store.KindHash {
		return errWrongType(), false
	}
	items := make([]protocol.Value, 0, len(v.Hash)*2)
	for f, val := range v.Hash {
		items = append(items, protocol.BulkString(f), protocol.BulkString(val))
	}
	return protocol.Array(items), false
}

func execHDel(ctx *Context, args []string) (protocol.Value, bool) {
	v, ok := ctx.Store.Get(args[0])
	if !ok {
		return protocol.Integer(0), false
	}
	if v.Kind != store.KindHash {
		return errWrongType(), false
	}
	removed := int64(0)
	for _, f := range args[1:] {
		if _, has := v.Hash[f]; has {
			delete(v.Hash, f)
			removed++
		}
	}
	if removed > 0 {
		ctx.Store.PutValue(args[0], v)
	}
	return protocol.Integer(removed), removed > 0
}

func execHKeys(ctx *Context, args []string) (protocol.Value, bool) {
	v, ok := ctx.Store.Get(args[0])
	if !ok {
		return protocol.Array(nil), false
	}
	if v.Kind != store.KindHash {
		return errWrongType(), false
	}
	items := make([]protocol.Value, 0, len(v.Hash))
	for f := range v.Hash {
		items = append(items, protocol.BulkString(f))
	}
	return protocol.Array(items), false
}
