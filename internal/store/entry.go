package store

import "time"

// Entry is one keyspace slot: a typed Value plus an optional absolute
// expiration deadline. A zero Deadline means the key never expires.
type Entry struct {
	Value    Value
	Deadline time.Time
}

func (e Entry) hasTTL() bool {
	return !e.Deadline.IsZero()
}

func (e Entry) expired(now time.Time) bool {
	return e.hasTTL() && now.After(e.Deadline)
}
