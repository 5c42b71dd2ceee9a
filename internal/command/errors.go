package command

import "github.com/Le-Stef/ferrumdb/internal/protocol"

func errWrongType() protocol.Value {
	return protocol.Error("WRONGTYPE Operation against a key holding the wrong kind of value")
}

func errSyntax() protocol.Value {
	return protocol.Error("SYNTAX syntax error")
}

func errWrongArgs(name string) protocol.Value {
	return protocol.Error("ERR wrong number of arguments for '" + name + "' command")
}

func errNotInteger() protocol.Value {
	return protocol.Error("ERR not an integer or out of range")
}

func errUnknown(name string) protocol.Value {
	return protocol.Error("ERR unknown command '" + name + "'")
}
