package command

import (
	"github.com/Le-Stef/ferrumdb/internal/protocol"
	"github.com/Le-Stef/ferrumdb/internal/store"
)

func init() {
	register(&Spec{Name: "SADD", MinArgs: 2, MaxArgs: -1, Exec: execSAdd})
	register(&Spec{Name: "SMEMBERS", MinArgs: 1, MaxArgs: 1, Exec: execSMembers})
	register(&Spec{Name: "SCARD", MinArgs: 1, MaxArgs: 1, Exec: execSCard})
}

func execSAdd(ctx *Context, args []string) (protocol.Value, bool) {
	key := args[0]
	v, ok := ctx.Store.Get(key)
	existed := ok
	if !ok {
		v = store.NewSet()
	} else if v.Kind != store.KindSet {
		return errWrongType(), false
	}

	added := int64(0)
	for _, m := range args[1:] {
		if _, already := v.Set[m]; !already {
			v.Set[m] = struct{}{}
			added++
		}
	}

	if existed {
		ctx.Store.PutValue(key, v)
	} else {
		ctx.Store.Set(key, v)
	}
	return protocol.Integer(added), added > 0
}

func execSMembers(ctx *Context, args []string) (protocol.Value, bool) {
	v, ok := ctx.Store.Get(args[0])
	if !ok {
		return protocol.Array(nil), false
	}
	if v.Kind != store.KindSet {
		return errWrongType(), false
	}
	items := make([]protocol.Value, 0, len(v.Set))
	for m := range v.Set {
		items = append(items, protocol.BulkString(m))
	}
	return protocol.Array(items), false
}

func execSCard(ctx *Context, args []string) (protocol.Value, bool) {
	v, ok := ctx.Store.Get(args[0])
	if !ok {
		return protocol.Integer(0), false
	}
	if v.Kind != store.KindSet {
		return errWrongType(), false
	}
	return protocol.Integer(int64(len(v.Set))), false
}
