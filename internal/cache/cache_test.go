package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notarium/core/pkg/types"
)

func TestEntityCacheGetPutInvalidate(t *testing.T) {
	c, err := NewEntityCache[*types.Tag](8)
	require.NoError(t, err)

	_, ok := c.Get("missing")
	require.False(t, ok)

	tag := &types.Tag{LocalID: "t1", Name: "one"}
	c.Put(tag.LocalID, tag)
	got, ok := c.Get(tag.LocalID)
	require.True(t, ok)
	require.Same(t, tag, got)
	require.Equal(t, 1, c.Len())

	c.Invalidate(tag.LocalID)
	_, ok = c.Get(tag.LocalID)
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}

func TestEntityCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewEntityCache[*types.Tag](2)
	require.NoError(t, err)

	c.Put("a", &types.Tag{LocalID: "a"})
	c.Put("b", &types.Tag{LocalID: "b"})
	// touch "a" so "b" becomes the least recently used entry
	_, _ = c.Get("a")
	c.Put("c", &types.Tag{LocalID: "c"})

	_, ok := c.Get("b")
	require.False(t, ok, "b should have been evicted as the least recently used entry")
	_, ok = c.Get("a")
	require.True(t, ok)
	_, ok = c.Get("c")
	require.True(t, ok)
}

func TestNewBuildsAllFourCaches(t *testing.T) {
	caches, err := New(10, 10, 10, 10)
	require.NoError(t, err)
	require.NotNil(t, caches.Notebooks)
	require.NotNil(t, caches.Notes)
	require.NotNil(t, caches.Tags)
	require.NotNil(t, caches.SavedSearches)
}
