// Package command implements the store-level semantics of every command the
// executor can run: argument validation, the WRONGTYPE/SYNTAX/ERR error
// conventions, and whether a successful call must be appended to the AOF.
package command

import (
	"strings"

	"github.com/Le-Stef/ferrumdb/internal/protocol"
	"github.com/Le-Stef/ferrumdb/internal/store"
)

// Context is everything a command body needs to run against one shard.
type Context struct {
	Store *store.Store
}

// Func executes one command's body. mutated reports whether the store
// changed, which tells the caller whether to append an AOF record.
type Func func(ctx *Context, args []string) (reply protocol.Value, mutated bool)

// Spec describes one command's shape for dispatch-time validation.
type Spec struct {
	Name string
	// MinArgs/MaxArgs bound len(args) (the command name itself excluded).
	// MaxArgs of -1 means unbounded.
	MinArgs, MaxArgs int
	// Admin marks a command that must be broadcast to every shard rather
	// than routed by key (FLUSHDB, KEYS, INFO).
	Admin   bool
	Exec    Func
}

var registry = make(map[string]*Spec)

func register(s *Spec) {
	registry[s.Name] = s
}

// Lookup resolves a command name case-insensitively.
func Lookup(name string) (*Spec, bool) {
	s, ok := registry[strings.ToUpper(name)]
	return s, ok
}

// Dispatch validates arity and runs the command body, returning an ERR
// reply for an unknown command or a wrong-arity call without ever invoking
// Exec in those cases (so such calls never touch the store or the AOF).
func Dispatch(ctx *Context, name string, args []string) (protocol.Value, bool) {
	spec, ok := Lookup(name)
	if !ok {
		return errUnknown(name), false
	}
	if len(args) < spec.MinArgs || (spec.MaxArgs >= 0 && len(args) > spec.MaxArgs) {
		return errWrongArgs(strings.ToLower(spec.Name)), false
	}
	return spec.Exec(ctx, args)
}

// IsAdmin reports whether name is a shard-broadcast admin command.
func IsAdmin(name string) bool {
	s, ok := Lookup(name)
	return ok && s.Admin
}
