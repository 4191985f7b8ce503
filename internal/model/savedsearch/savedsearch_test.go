package savedsearch

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/notarium/core/internal/cache"
	"github.com/notarium/core/internal/facade"
	"github.com/notarium/core/internal/storage"
	"github.com/notarium/core/pkg/types"
)

func newTestModel(t *testing.T) (*Model, *facade.Facade) {
	t.Helper()
	engine, err := storage.Open(":memory:", false, zerolog.Nop())
	require.NoError(t, err)
	caches, err := cache.New(64, 64, 64, 64)
	require.NoError(t, err)
	f := facade.New(engine, caches, zerolog.Nop())
	t.Cleanup(func() {
		f.Close()
		engine.Close()
	})
	return New(f), f
}

func awaitCompletion(t *testing.T, f *facade.Facade, token facade.Token) facade.Completion {
	t.Helper()
	for c := range f.Completions() {
		if c.Token == token {
			return c
		}
	}
	t.Fatal("façade closed before completion arrived")
	return facade.Completion{}
}

func TestAddRejectsAccountWideDuplicateName(t *testing.T) {
	m, f := newTestModel(t)
	s1 := &types.SavedSearch{LocalID: types.NewLocalID(), Name: "Unread"}
	require.NoError(t, m.Add(s1, "t1"))
	awaitCompletion(t, f, "t1")

	s2 := &types.SavedSearch{LocalID: types.NewLocalID(), Name: "unread"}
	err := m.Add(s2, "t2")
	require.True(t, types.IsKind(err, types.KindConflict))
}

func TestRenameValidatesAndUpdates(t *testing.T) {
	m, f := newTestModel(t)
	s := &types.SavedSearch{LocalID: types.NewLocalID(), Name: "Old Name"}
	require.NoError(t, m.Add(s, "t1"))
	awaitCompletion(t, f, "t1")

	require.NoError(t, m.Rename(s.LocalID, "New Name", "t2"))
	c := awaitCompletion(t, f, "t2")
	require.NoError(t, c.Err)

	list := m.List(types.Ascending)
	require.Len(t, list, 1)
	require.Equal(t, "New Name", list[0].Name)
}

func TestRenameRejectsUntrimmedName(t *testing.T) {
	m, f := newTestModel(t)
	s := &types.SavedSearch{LocalID: types.NewLocalID(), Name: "Keep"}
	require.NoError(t, m.Add(s, "t1"))
	awaitCompletion(t, f, "t1")

	err := m.Rename(s.LocalID, "  padded  ", "t2")
	require.True(t, types.IsKind(err, types.KindInvalidInput))
}

func TestListSortsByNameBothDirections(t *testing.T) {
	m, f := newTestModel(t)
	for i, name := range []string{"Zebra", "Apple", "Mango"} {
		s := &types.SavedSearch{LocalID: types.NewLocalID(), Name: name}
		token := facade.Token(string(rune('a' + i)))
		require.NoError(t, m.Add(s, token))
		awaitCompletion(t, f, token)
	}

	asc := m.List(types.Ascending)
	require.Equal(t, []string{"Apple", "Mango", "Zebra"}, []string{asc[0].Name, asc[1].Name, asc[2].Name})

	desc := m.List(types.Descending)
	require.Equal(t, []string{"Zebra", "Mango", "Apple"}, []string{desc[0].Name, desc[1].Name, desc[2].Name})
}

func TestOnExpungeCompleteRemovesEntry(t *testing.T) {
	m, f := newTestModel(t)
	s := &types.SavedSearch{LocalID: types.NewLocalID(), Name: "Temp"}
	require.NoError(t, m.Add(s, "t1"))
	awaitCompletion(t, f, "t1")

	m.OnExpungeComplete(s.LocalID)
	require.Empty(t, m.List(types.Ascending))
}
