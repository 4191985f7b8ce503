package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notarium/core/pkg/types"
)

func TestAddFindNotebookRoundTrip(t *testing.T) {
	e := newTestEngine(t)

	n := &types.Notebook{
		Name:       "Travel",
		IsDefault:  true,
		IsLocal:    true,
		IsDirty:    true,
		Restrictions: &types.NotebookRestrictions{NoExpungeNotebook: true},
		SharedNotebooks: []types.SharedNotebook{
			{UserID: 1, Email: "a@example.com", Privilege: 1},
		},
	}
	require.NoError(t, e.AddNotebook(n))
	require.NotEmpty(t, n.LocalID)

	found, err := e.FindNotebookByLocalID(n.LocalID)
	require.NoError(t, err)
	require.Equal(t, "Travel", found.Name)
	require.True(t, found.IsDefault)
	require.NotNil(t, found.Restrictions)
	require.True(t, found.Restrictions.NoExpungeNotebook)
	require.Len(t, found.SharedNotebooks, 1)
	require.Equal(t, "a@example.com", found.SharedNotebooks[0].Email)
}

func TestFindNotebookByNameCaseInsensitive(t *testing.T) {
	e := newTestEngine(t)
	n := &types.Notebook{Name: "Work"}
	require.NoError(t, e.AddNotebook(n))

	found, err := e.FindNotebookByName("wORK", types.Scope{})
	require.NoError(t, err)
	require.Equal(t, n.LocalID, found.LocalID)
}

func TestAddNotebookDuplicateNameConflict(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddNotebook(&types.Notebook{Name: "Dup"}))
	err := e.AddNotebook(&types.Notebook{Name: "dup"})
	require.True(t, types.IsKind(err, types.KindConflict))
}

func TestUpdateNotebookNotFound(t *testing.T) {
	e := newTestEngine(t)
	err := e.UpdateNotebook(&types.Notebook{LocalID: "missing", Name: "X"})
	require.True(t, types.IsKind(err, types.KindNotFound))
}

func TestExpungeNotebookCascadesNotes(t *testing.T) {
	e := newTestEngine(t)
	n := &types.Notebook{Name: "Gone"}
	require.NoError(t, e.AddNotebook(n))

	note := &types.Note{Title: "bye", NotebookLocalID: n.LocalID}
	require.NoError(t, e.AddNote(note))

	require.NoError(t, e.ExpungeNotebook(n.LocalID))

	_, err := e.FindNotebookByLocalID(n.LocalID)
	require.True(t, types.IsKind(err, types.KindNotFound))
	_, err = e.FindNoteByLocalID(note.LocalID)
	require.True(t, types.IsKind(err, types.KindNotFound))
}

func TestListNotebooksOrderedByNameWithLocalIDTiebreak(t *testing.T) {
	e := newTestEngine(t)
	for _, name := range []string{"Charlie", "alpha", "Bravo"} {
		require.NoError(t, e.AddNotebook(&types.Notebook{Name: name}))
	}

	out, err := e.ListNotebooks(types.NotebookOrderByName, types.ListOptions{})
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Equal(t, []string{"alpha", "Bravo", "Charlie"}, []string{out[0].Name, out[1].Name, out[2].Name})
}

func TestListNotebooksPagination(t *testing.T) {
	e := newTestEngine(t)
	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, e.AddNotebook(&types.Notebook{Name: name}))
	}
	page, err := e.ListNotebooks(types.NotebookOrderByName, types.ListOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, []string{"b", "c"}, []string{page[0].Name, page[1].Name})
}

func TestGetNotebookCount(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddNotebook(&types.Notebook{Name: "one"}))
	require.NoError(t, e.AddNotebook(&types.Notebook{Name: "two"}))
	n, err := e.GetNotebookCount(types.Scope{})
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
