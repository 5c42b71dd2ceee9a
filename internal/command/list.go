package command

import (
	"strconv"

	"github.com/Le-Stef/ferrumdb/internal/protocol"
	"github.com/Le-Stef/ferrumdb/internal/store"
)

func init() {
	register(&Spec{Name: "LPUSH", MinArgs: 2, MaxArgs: -1, Exec: execLPush})
	register(&Spec{Name: "RPUSH", MinArgs: 2, MaxArgs: -1, Exec: execRPush})
	register(&Spec{Name: "LRANGE", MinArgs: 3, MaxArgs: 3, Exec: execLRange})
	register(&Spec{Name: "LLEN", MinArgs: 1, MaxArgs: 1, Exec: execLLen})
}

func loadList(ctx *Context, key string) (store.Value, bool, protocol.Value) {
	v, ok := ctx.Store.Get(key)
	if !ok {
		return store.NewList(), false, protocol.Value{}
	}
	if v.Kind != store.KindList {
		return store.Value{}, false, errWrongType()
	}
	return v, true, protocol.Value{}
}

func execLPush(ctx *Context, args []string) (protocol.Value, bool) {
	key := args[0]
	v, existed, errVal := loadList(ctx, key)
	if errVal.Kind == protocol.KindError {
		return errVal, false
	}
	for _, val := range args[1:] {
		v.List.PushFront([]byte(val))
	}
	if existed {
		ctx.Store.PutValue(key, v)
	} else {
		ctx.Store.Set(key, v)
	}
	return protocol.Integer(int64(v.List.Len())), true
}

func execRPush(ctx *Context, args []string) (protocol.Value, bool) {
	key := args[0]
	v, existed, errVal := loadList(ctx, key)
	if errVal.Kind == protocol.KindError {
		return errVal, false
	}
	for _, val := range args[1:] {
		v.List.PushBack([]byte(val))
	}
	if existed {
		ctx.Store.PutValue(key, v)
	} else {
		ctx.Store.Set(key, v)
	}
	return protocol.Integer(int64(v.List.Len())), true
}

func execLLen(ctx *Context, args []string) (protocol.Value, bool) {
	v, ok := ctx.Store.Get(args[0])
	if !ok {
		return protocol.Integer(0), false
	}
	if v.Kind != store.KindList {
		return errWrongType(), false
	}
	return protocol.Integer(int64(v.List.Len())), false
}

func execLRange(ctx *Context, args []string) (protocol.Value, bool) {
	start, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return errNotInteger(), false
	}
	end, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return errNotInteger(), false
	}

	v, ok := ctx.Store.Get(args[0])
	if !ok {
		return protocol.Array(nil), false
	}
	if v.Kind != store.KindList {
		return errWrongType(), false
	}

	n := int64(v.List.Len())
	s, e := normalizeRange(start, end, n)
	if s > e {
		return protocol.Array(nil), false
	}

	items := make([]protocol.Value, 0, e-s+1)
	i := int64(0)
	for el := v.List.Front(); el != nil; el = el.Next() {
		if i > e {
			break
		}
		if i >= s {
			items = append(items, protocol.BulkString(string(el.Value.([]byte))))
		}
		i++
	}
	return protocol.Array(items), false
}

// normalizeRange clamps negative, tail-relative indices and out-of-bounds
// endpoints into [0, n), returning a range that is empty (s > e) when
// there is nothing to return.
func normalizeRange(start, end, n int64) (int64, int64) {
	if n == 0 {
		return 0, -1
	}
	if start < 0 {
		start += n
	}
	if end < 0 {
		end += n
	}
	if start < 0 {
		start = 0
	}
	if end >= n {
		end = n - 1
	}
	if start >= n || end < 0 {
		return 0, -1
	}
	return start, end
}
