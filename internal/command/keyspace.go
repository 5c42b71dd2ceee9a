package command

import (
	"strconv"
	"strings"
	"time"

	"github.com/Le-Stef/ferrumdb/internal/protocol"
	"github.com/Le-Stef/ferrumdb/internal/store"
)

func init() {
	register(&Spec{Name: "SET", MinArgs: 2, MaxArgs: -1, Exec: execSet})
	register(&Spec{Name: "GET", MinArgs: 1, MaxArgs: 1, Exec: execGet})
	register(&Spec{Name: "DEL", MinArgs: 1, MaxArgs: -1, Exec: execDel})
	register(&Spec{Name: "EXISTS", MinArgs: 1, MaxArgs: -1, Exec: execExists})
	register(&Spec{Name: "EXPIRE", MinArgs: 2, MaxArgs: 2, Exec: execExpire})
	register(&Spec{Name: "TTL", MinArgs: 1, MaxArgs: 1, Exec: execTTL})
}

// execSet implements SET k v [EX seconds | PX milliseconds].
func execSet(ctx *Context, args []string) (protocol.Value, bool) {
	key, val := args[0], args[1]
	var deadline time.Time

	for i := 2; i < len(args); i++ {
		opt := strings.ToUpper(args[i])
		switch opt {
		case "EX", "PX":
			i++
			if i >= len(args) {
				return errSyntax(), false
			}
			n, err := strconv.ParseInt(args[i], 10, 64)
			if err != nil {
				return errNotInteger(), false
			}
			if opt == "EX" {
				deadline = time.Now().Add(time.Duration(n) * time.Second)
			} else {
				deadline = time.Now().Add(time.Duration(n) * time.Millisecond)
			}
		default:
			return errSyntax(), false
		}
	}

	if deadline.IsZero() {
		ctx.Store.Set(key, store.NewString(val))
	} else {
		ctx.Store.SetWithDeadline(key, store.NewString(val), deadline)
	}
	return protocol.OK(), true
}

func execGet(ctx *Context, args []string) (protocol.Value, bool) {
	v, ok := ctx.Store.Get(args[0])
	if !ok {
		return protocol.NullBulk(), false
	}
	if v.Kind != store.KindString {
		return errWrongType(), false
	}
	return protocol.BulkString(v.Str), false
}

func execDel(ctx *Context, args []string) (protocol.Value, bool) {
	removed := int64(0)
	for _, k := range args {
		if ctx.Store.Delete(k) {
			removed++
		}
	}
	return protocol.Integer(removed), removed > 0
}

func execExists(ctx *Context, args []string) (protocol.Value, bool) {
	count := int64(0)
	for _, k := range args {
		if ctx.Store.Exists(k) {
			count++
		}
	}
	return protocol.Integer(count), false
}

func execExpire(ctx *Context, args []string) (protocol.Value, bool) {
	seconds, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return errNotInteger(), false
	}
	if seconds < 0 {
		return protocol.Error("ERR invalid expire time"), false
	}
	ok := ctx.Store.SetDeadline(args[0], time.Now().Add(time.Duration(seconds)*time.Second))
	if !ok {
		return protocol.Integer(0), false
	}
	return protocol.Integer(1), true
}

func execTTL(ctx *Context, args []string) (protocol.Value, bool) {
	return protocol.Integer(ctx.Store.TTL(args[0])), false
}
