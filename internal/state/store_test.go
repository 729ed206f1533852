package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertReportsNewVsExisting(t *testing.T) {
	s := NewStore[string, int]()
	now := time.Now().UnixNano()

	assert.True(t, s.Upsert("a", 1, now))
	assert.False(t, s.Upsert("a", 2, now))

	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestSweepEvictsOnlyStaleRecords(t *testing.T) {
	s := NewStore[string, string]()
	base := time.Now().UnixNano()
	ttl := int64(time.Minute)

	s.Upsert("old", "x", base)
	s.Upsert("fresh", "y", base+int64(50*time.Second))

	evicted := s.Sweep(base+int64(70*time.Second), ttl)
	assert.Equal(t, []string{"old"}, evicted)
	assert.Equal(t, 1, s.Len())

	_, ok := s.Get("fresh")
	assert.True(t, ok)
}

func TestReplaceSwapsEntireRecordSet(t *testing.T) {
	s := NewStore[string, int]()
	now := time.Now().UnixNano()
	s.Upsert("stale", 1, now)

	s.Replace(map[string]int{"a": 1, "b": 2}, now)
	assert.Equal(t, 2, s.Len())
	_, ok := s.Get("stale")
	assert.False(t, ok)
}

func TestCleanerSweepsEveryRegisteredStore(t *testing.T) {
	a := NewStore[string, int]()
	b := NewStore[int, string]()
	base := time.Now().UnixNano()

	a.Upsert("k", 1, base)
	b.Upsert(7, "v", base)

	c := NewCleaner()
	c.Register(Registered[string, int]{Store: a, TTL: int64(time.Second)})
	c.Register(Registered[int, string]{Store: b, TTL: int64(time.Hour)})

	n := c.SweepAll(base + int64(time.Minute))
	assert.Equal(t, 1, n, "only the short-TTL store evicts")
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 1, b.Len())
}
