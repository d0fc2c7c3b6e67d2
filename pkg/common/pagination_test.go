package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationMeta(t *testing.T) {
	t.Run("first of two pages", func(t *testing.T) {
		meta := NewPaginationMeta(1, 3, 5)

		assert.Equal(t, 1, meta.CurrentPage)
		assert.Equal(t, 3, meta.PerPage)
		assert.Equal(t, 0, meta.Offset)
		assert.True(t, meta.HasNextPage)
		assert.False(t, meta.HasPrevPage)
	})

	t.Run("last partial page", func(t *testing.T) {
		meta := NewPaginationMeta(2, 3, 5)

		assert.Equal(t, 3, meta.Offset)
		assert.False(t, meta.HasNextPage)
		assert.True(t, meta.HasPrevPage)
	})

	t.Run("exact boundary has no phantom next page", func(t *testing.T) {
		meta := NewPaginationMeta(2, 3, 6)

		assert.False(t, meta.HasNextPage)
	})

	t.Run("empty window", func(t *testing.T) {
		meta := NewPaginationMeta(1, 20, 0)

		assert.False(t, meta.HasNextPage)
		assert.False(t, meta.HasPrevPage)
	})
}

func TestSlicePage(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}

	assert.Equal(t, []string{"a", "b"}, SlicePage(ids, 1, 2))
	assert.Equal(t, []string{"c", "d"}, SlicePage(ids, 2, 2))
	assert.Equal(t, []string{"e"}, SlicePage(ids, 3, 2))
	assert.Nil(t, SlicePage(ids, 4, 2))
	assert.Nil(t, SlicePage(nil, 1, 2))
}
