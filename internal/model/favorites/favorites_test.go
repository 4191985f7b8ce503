package favorites

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notarium/core/pkg/types"
)

func TestAllListedRequiresAllFourStreamsDone(t *testing.T) {
	m := New(nil)
	m.AddNotebookPage(nil, true)
	require.False(t, m.AllListed())
	m.AddTagPage(nil, true)
	require.False(t, m.AllListed())
	m.AddNotePage(nil, true)
	require.False(t, m.AllListed())
	m.AddSavedSearchPage(nil, true)
	require.True(t, m.AllListed())
}

func TestPagesOnlyKeepFavoritedRows(t *testing.T) {
	m := New(nil)
	m.AddNotebookPage([]*types.Notebook{
		{LocalID: "nb1", Name: "Kept", IsFavorited: true},
		{LocalID: "nb2", Name: "Dropped", IsFavorited: false},
	}, true)

	rows := m.List(types.Ascending)
	require.Len(t, rows, 1)
	require.Equal(t, "Kept", rows[0].DisplayName)
}

func TestUnionAcrossEntityKinds(t *testing.T) {
	m := New(nil)
	m.AddNotebookPage([]*types.Notebook{{LocalID: "nb1", Name: "B Notebook", IsFavorited: true}}, false)
	m.AddTagPage([]*types.Tag{{LocalID: "tag1", Name: "A Tag", IsFavorited: true}}, false)
	m.AddNotePage([]*types.Note{{LocalID: "note1", Title: "C Note", IsFavorited: true}}, false)
	m.AddSavedSearchPage([]*types.SavedSearch{{LocalID: "s1", Name: "D Search", IsFavorited: true}}, false)

	rows := m.List(types.Ascending)
	require.Len(t, rows, 4)
	var names []string
	for _, r := range rows {
		names = append(names, r.DisplayName)
	}
	require.Equal(t, []string{"A Tag", "B Notebook", "C Note", "D Search"}, names)
}

func TestAdjustNumNotesTargetedOnlyAffectsKnownCounts(t *testing.T) {
	m := New(nil)
	m.AddNotebookPage([]*types.Notebook{{LocalID: "nb1", Name: "Counted", IsFavorited: true}}, false)
	m.AdjustNumNotesTargeted(KindNotebook, "nb1", 3)

	rows := m.List(types.Ascending)
	require.Equal(t, -1, rows[0].NumNotesTargeted) // notebook note counts are unknown (-1) until queried

	m.Upsert(KindNotebook, "nb1", "Counted", 2)
	m.AdjustNumNotesTargeted(KindNotebook, "nb1", 3)
	rows = m.List(types.Ascending)
	require.Equal(t, 5, rows[0].NumNotesTargeted)
}

func TestAdjustNumNotesTargetedResolvesUnknownCountViaResolver(t *testing.T) {
	m := New(nil)
	m.AddNotebookPage([]*types.Notebook{{LocalID: "nb1", Name: "Counted", IsFavorited: true}}, false)

	var resolveCalls int
	m.SetCountResolver(func(kind Kind, localID string) {
		resolveCalls++
		require.Equal(t, KindNotebook, kind)
		require.Equal(t, "nb1", localID)
	})

	m.AdjustNumNotesTargeted(KindNotebook, "nb1", 1) // add #1: unknown -> triggers resolution
	require.Equal(t, -1, m.List(types.Ascending)[0].NumNotesTargeted)

	m.AdjustNumNotesTargeted(KindNotebook, "nb1", 1) // add #2: resolution already in flight, no second query
	m.AdjustNumNotesTargeted(KindNotebook, "nb1", 1) // add #3
	require.Equal(t, 1, resolveCalls)

	m.ReconcileCount(KindNotebook, "nb1", 3)
	require.Equal(t, 3, m.List(types.Ascending)[0].NumNotesTargeted)
}

func TestRequestCountOnlyIssuesOnceWhileInFlight(t *testing.T) {
	m := New(nil)
	m.AddTagPage([]*types.Tag{{LocalID: "tag1", Name: "Tag", IsFavorited: true}}, false)

	var issued int
	first := m.RequestCount(KindTag, "tag1", func() { issued++ })
	second := m.RequestCount(KindTag, "tag1", func() { issued++ })
	require.True(t, first)
	require.False(t, second)
	require.Equal(t, 1, issued)

	m.ReconcileCount(KindTag, "tag1", 7)
	require.Equal(t, 7, m.List(types.Ascending)[0].NumNotesTargeted)

	// a fresh request is allowed again once the prior one resolved
	require.True(t, m.RequestCount(KindTag, "tag1", func() { issued++ }))
	require.Equal(t, 2, issued)
}

func TestUnfavoriteRemovesRowAndIssuesUpdate(t *testing.T) {
	m := New(nil)
	m.Upsert(KindTag, "tag1", "Goodbye", -1)

	var issued bool
	m.Unfavorite(KindTag, "tag1", func() { issued = true })

	require.True(t, issued)
	require.Empty(t, m.List(types.Ascending))
}
