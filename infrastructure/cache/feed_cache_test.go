package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowSetDigest(t *testing.T) {
	t.Run("order independent", func(t *testing.T) {
		a := FollowSetDigest([]string{"bob", "carol", "dave"})
		b := FollowSetDigest([]string{"dave", "bob", "carol"})
		assert.Equal(t, a, b)
	})

	t.Run("membership sensitive", func(t *testing.T) {
		a := FollowSetDigest([]string{"bob", "carol"})
		b := FollowSetDigest([]string{"bob", "carol", "dave"})
		assert.NotEqual(t, a, b)
	})

	t.Run("empty set digests consistently", func(t *testing.T) {
		assert.Equal(t, FollowSetDigest(nil), FollowSetDigest([]string{}))
	})
}

func TestWindowKey(t *testing.T) {
	followSet := []string{"bob", "carol"}
	latest := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	base := WindowKey("alice", "2026-08-01", "2026-08-07", followSet, latest)

	t.Run("stable for identical inputs", func(t *testing.T) {
		assert.Equal(t, base, WindowKey("alice", "2026-08-01", "2026-08-07", []string{"carol", "bob"}, latest))
	})

	t.Run("changes with user", func(t *testing.T) {
		assert.NotEqual(t, base, WindowKey("bob", "2026-08-01", "2026-08-07", followSet, latest))
	})

	t.Run("changes with window", func(t *testing.T) {
		assert.NotEqual(t, base, WindowKey("alice", "2026-08-01", "2026-08-08", followSet, latest))
	})

	t.Run("changes with follow set", func(t *testing.T) {
		assert.NotEqual(t, base, WindowKey("alice", "2026-08-01", "2026-08-07", []string{"bob"}, latest))
	})

	t.Run("changes with any mutation, even sub-second", func(t *testing.T) {
		assert.NotEqual(t, base, WindowKey("alice", "2026-08-01", "2026-08-07", followSet, latest.Add(time.Nanosecond)))
	})
}

func TestServiceTiers(t *testing.T) {
	s := NewService()
	defer s.Stop()

	t.Run("follow set round trip", func(t *testing.T) {
		_, ok := s.GetFollowSet("alice")
		require.False(t, ok)

		s.SetFollowSet("alice", []string{"bob", "carol"})
		got, ok := s.GetFollowSet("alice")
		require.True(t, ok)
		assert.Equal(t, []string{"bob", "carol"}, got)
	})

	t.Run("invalidation drops only the named user", func(t *testing.T) {
		s.SetFollowSet("alice", []string{"bob"})
		s.SetFollowSet("dave", []string{"bob"})

		s.InvalidateFollowSet("alice")

		_, ok := s.GetFollowSet("alice")
		assert.False(t, ok)
		_, ok = s.GetFollowSet("dave")
		assert.True(t, ok)
	})

	t.Run("an empty follow set is a hit, not a miss", func(t *testing.T) {
		s.SetFollowSet("loner", []string{})
		got, ok := s.GetFollowSet("loner")
		require.True(t, ok)
		assert.Empty(t, got)
	})

	t.Run("ranked window round trip", func(t *testing.T) {
		key := WindowKey("alice", "2026-08-01", "2026-08-07", []string{"bob"}, time.Now())

		_, ok := s.GetRankedWindow(key)
		require.False(t, ok)

		s.SetRankedWindow(key, []string{"s-1", "s-2"})
		got, ok := s.GetRankedWindow(key)
		require.True(t, ok)
		assert.Equal(t, []string{"s-1", "s-2"}, got)
	})
}
