package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notarium/core/pkg/types"
)

func TestAddFindSavedSearchRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	s := &types.SavedSearch{Name: "Unread Travel Notes", Query: "notebook:Travel -tag:read"}
	require.NoError(t, e.AddSavedSearch(s))

	found, err := e.FindSavedSearchByLocalID(s.LocalID)
	require.NoError(t, err)
	require.Equal(t, s.Query, found.Query)
}

func TestAddSavedSearchDuplicateNameConflict(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddSavedSearch(&types.SavedSearch{Name: "Unique"}))
	err := e.AddSavedSearch(&types.SavedSearch{Name: "unique"})
	require.True(t, types.IsKind(err, types.KindConflict))
}

func TestExpungeSavedSearchNotFound(t *testing.T) {
	e := newTestEngine(t)
	err := e.ExpungeSavedSearch("missing")
	require.True(t, types.IsKind(err, types.KindNotFound))
}

func TestListSavedSearchesOrderedByName(t *testing.T) {
	e := newTestEngine(t)
	for _, name := range []string{"Zebra", "apple"} {
		require.NoError(t, e.AddSavedSearch(&types.SavedSearch{Name: name}))
	}
	out, err := e.ListSavedSearches(types.SavedSearchOrderByName, types.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"apple", "Zebra"}, []string{out[0].Name, out[1].Name})
}
