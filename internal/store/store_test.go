package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetGetRoundTrip(t *testing.T) {
	s := New()
	s.Set("foo", NewString("bar"))
	v, ok := s.Get("foo")
	require.True(t, ok)
	require.Equal(t, "bar", v.Str)
}

func TestLazyExpiration(t *testing.T) {
	s := New()
	s.SetWithDeadline("k", NewString("v"), time.Now().Add(-time.Second))
	_, ok := s.Get("k")
	require.False(t, ok)
	require.Equal(t, 0, s.Len())
}

func TestTTLStates(t *testing.T) {
	s := New()
	require.EqualValues(t, -2, s.TTL("missing"))

	s.Set("k", NewString("v"))
	require.EqualValues(t, -1, s.TTL("k"))

	s.SetDeadline("k", time.Now().Add(5*time.Second))
	ttl := s.TTL("k")
	require.True(t, ttl == 4 || ttl == 5)
}

func TestActiveExpireCycleRemovesExpiredSample(t *testing.T) {
	s := New()
	s.SetWithDeadline("a", NewString("1"), time.Now().Add(-time.Second))
	s.SetWithDeadline("b", NewString("2"), time.Now().Add(-time.Second))
	s.Set("c", NewString("3"))

	removed := s.ActiveExpireCycle(10)
	require.Equal(t, 2, removed)
	require.Equal(t, 1, s.Len())
}

func TestKeysGlob(t *testing.T) {
	s := New()
	s.Set("foo", NewString("1"))
	s.Set("foobar", NewString("1"))
	s.Set("bar", NewString("1"))

	matches := s.Keys("foo*")
	require.ElementsMatch(t, []string{"foo", "foobar"}, matches)
}

func TestFlushClearsEverything(t *testing.T) {
	s := New()
	s.Set("a", NewString("1"))
	s.Set("b", NewString("2"))
	n := s.Flush()
	require.Equal(t, 2, n)
	require.Equal(t, 0, s.Len())
}

func TestMatchGlobClasses(t *testing.T) {
	require.True(t, MatchGlob("h[ae]llo", "hello"))
	require.True(t, MatchGlob("h[ae]llo", "hallo"))
	require.False(t, MatchGlob("h[ae]llo", "hillo"))
	require.True(t, MatchGlob("h[!ae]llo", "hillo"))
	require.True(t, MatchGlob("[a-z]oo", "foo"))
	require.False(t, MatchGlob("[a-z]oo", "1oo"))
	require.True(t, MatchGlob(`\*literal`, "*literal"))
}
