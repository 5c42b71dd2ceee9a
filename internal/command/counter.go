package command

import (
	"strconv"

	"github.com/Le-Stef/ferrumdb/internal/protocol"
	"github.com/Le-Stef/ferrumdb/internal/store"
)

func init() {
	register(&Spec{Name: "INCR", MinArgs: 1, MaxArgs: 1, Exec: execIncr})
	register(&Spec{Name: "DECR", MinArgs: 1, MaxArgs: 1, Exec: execDecr})
	register(&Spec{Name: "INCRBY", MinArgs: 2, MaxArgs: 2, Exec: execIncrBy})
	register(&Spec{Name: "DECRBY", MinArgs: 2, MaxArgs: 2, Exec: execDecrBy})
	register(&Spec{Name: "HINCRBY", MinArgs: 3, MaxArgs: 3, Exec: execHIncrBy})
}

// addToCounter reads key as a signed i64 (treating a missing key as 0),
// adds delta, detects overflow, and writes the new value back as a String.
func addToCounter(ctx *Context, key string, delta int64) (protocol.Value, bool) {
	cur := int64(0)
	if v, ok := ctx.Store.Get(key); ok {
		if v.Kind != store.KindString {
			return errWrongType(), false
		}
		n, err := strconv.ParseInt(v.Str, 10, 64)
		if err != nil {
			return errNotInteger(), false
		}
		cur = n
	}

	sum, overflow := addOverflow(cur, delta)
	if overflow {
		return protocol.Error("ERR increment or decrement would overflow"), false
	}

	ctx.Store.PutValue(key, store.NewString(strconv.FormatInt(sum, 10)))
	return protocol.Integer(sum), true
}

func addOverflow(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, true
	}
	return sum, false
}

func execIncr(ctx *Context, args []string) (protocol.Value, bool) {
	return addToCounter(ctx, args[0], 1)
}

func execDecr(ctx *Context, args []string) (protocol.Value, bool) {
	return addToCounter(ctx, args[0], -1)
}

func execIncrBy(ctx *Context, args []string) (protocol.Value, bool) {
	n, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return errNotInteger(), false
	}
	return addToCounter(ctx, args[0], n)
}

func execDecrBy(ctx *Context, args []string) (protocol.Value, bool) {
	n, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return errNotInteger(), false
	}
	neg, overflow := negateOverflow(n)
	if overflow {
		return protocol.Error("ERR increment or decrement would overflow"), false
	}
	return addToCounter(ctx, args[0], neg)
}

func negateOverflow(n int64) (int64, bool) {
	if n == -9223372036854775808 {
		return 0, true
	}
	return -n, false
}

func execHIncrBy(ctx *Context, args []string) (protocol.Value, bool) {
	key, field := args[0], args[1]
	n, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return errNotInteger(), false
	}

	v, ok := ctx.Store.Get(key)
	if !ok {
		v = store.NewHash()
	} else if v.Kind != store.KindHash {
		return errWrongType(), false
	}

	cur := int64(0)
	if existing, ok := v.Hash[field]; ok {
		parsed, err := strconv.ParseInt(existing, 10, 64)
		if err != nil {
			return errNotInteger(), false
		}
		cur = parsed
	}

	sum, overflow := addOverflow(cur, n)
	if overflow {
		return protocol.Error("ERR increment or decrement would overflow"), false
	}

	v.Hash[field] = strconv.FormatInt(sum, 10)
	ctx.Store.PutValue(key, v)
	return protocol.Integer(sum), true
}
