package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notarium/core/pkg/types"
)

func addTestNotebook(t *testing.T, e *Engine, name string) *types.Notebook {
	t.Helper()
	n := &types.Notebook{Name: name}
	require.NoError(t, e.AddNotebook(n))
	return n
}

func addTestTag(t *testing.T, e *Engine, name string) *types.Tag {
	t.Helper()
	tag := &types.Tag{Name: name, Active: true}
	require.NoError(t, e.AddTag(tag))
	return tag
}

func TestAddNoteRejectsMissingNotebook(t *testing.T) {
	e := newTestEngine(t)
	err := e.AddNote(&types.Note{Title: "orphan", NotebookLocalID: "missing"})
	require.True(t, types.IsKind(err, types.KindInvalidInput))
}

func TestAddFindNoteDerivesProjections(t *testing.T) {
	e := newTestEngine(t)
	nb := addTestNotebook(t, e, "Inbox")

	note := &types.Note{Title: "Hello", Content: "<p>hello world</p>", NotebookLocalID: nb.LocalID}
	require.NoError(t, e.AddNote(note))

	found, err := e.FindNoteByLocalID(note.LocalID)
	require.NoError(t, err)
	require.Equal(t, "hello world", found.PlainText)
	require.Contains(t, found.ListOfWords, "hello")
	require.Contains(t, found.ListOfWords, "world")
}

func TestUpdateNoteReturnsPreviousTagIDs(t *testing.T) {
	e := newTestEngine(t)
	nb := addTestNotebook(t, e, "Inbox")
	tagA := addTestTag(t, e, "a")
	tagB := addTestTag(t, e, "b")

	note := &types.Note{Title: "tagged", Content: "x", NotebookLocalID: nb.LocalID, TagLocalIDs: []string{tagA.LocalID}}
	require.NoError(t, e.AddNote(note))

	note.TagLocalIDs = []string{tagB.LocalID}
	previous, err := e.UpdateNote(note)
	require.NoError(t, err)
	require.Equal(t, []string{tagA.LocalID}, previous)

	found, err := e.FindNoteByLocalID(note.LocalID)
	require.NoError(t, err)
	require.Equal(t, []string{tagB.LocalID}, found.TagLocalIDs)
}

func TestUpdateNoteMovesNotebook(t *testing.T) {
	e := newTestEngine(t)
	src := addTestNotebook(t, e, "Source")
	dst := addTestNotebook(t, e, "Destination")

	note := &types.Note{Title: "movable", Content: "x", NotebookLocalID: src.LocalID}
	require.NoError(t, e.AddNote(note))

	note.NotebookLocalID = dst.LocalID
	_, err := e.UpdateNote(note)
	require.NoError(t, err)

	found, err := e.FindNoteByLocalID(note.LocalID)
	require.NoError(t, err)
	require.Equal(t, dst.LocalID, found.NotebookLocalID)
}

func TestDeleteThenExpungeNote(t *testing.T) {
	e := newTestEngine(t)
	nb := addTestNotebook(t, e, "Inbox")
	note := &types.Note{Title: "doomed", Content: "x", NotebookLocalID: nb.LocalID}
	require.NoError(t, e.AddNote(note))

	require.NoError(t, e.DeleteNote(note.LocalID, 999))
	found, err := e.FindNoteByLocalID(note.LocalID)
	require.NoError(t, err)
	require.False(t, found.Active)

	require.NoError(t, e.ExpungeNote(note.LocalID))
	_, err = e.FindNoteByLocalID(note.LocalID)
	require.True(t, types.IsKind(err, types.KindNotFound))
}

func TestListNotesFilteredByTag(t *testing.T) {
	e := newTestEngine(t)
	nb := addTestNotebook(t, e, "Inbox")
	tag := addTestTag(t, e, "filterme")

	tagged := &types.Note{Title: "tagged", Content: "x", NotebookLocalID: nb.LocalID, TagLocalIDs: []string{tag.LocalID}, Active: true}
	require.NoError(t, e.AddNote(tagged))
	untagged := &types.Note{Title: "untagged", Content: "x", NotebookLocalID: nb.LocalID, Active: true}
	require.NoError(t, e.AddNote(untagged))

	out, err := e.ListNotes(types.NoteOrderByTitle, types.ListOptions{TagLocalID: tag.LocalID})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "tagged", out[0].Title)
}

func TestLinkUnlinkTagWithNote(t *testing.T) {
	e := newTestEngine(t)
	nb := addTestNotebook(t, e, "Inbox")
	tag := addTestTag(t, e, "linkme")
	note := &types.Note{Title: "n", Content: "x", NotebookLocalID: nb.LocalID}
	require.NoError(t, e.AddNote(note))

	require.NoError(t, e.LinkTagWithNote(note.LocalID, tag.LocalID))
	found, err := e.FindNoteByLocalID(note.LocalID)
	require.NoError(t, err)
	require.Equal(t, []string{tag.LocalID}, found.TagLocalIDs)

	require.NoError(t, e.UnlinkTagWithNote(note.LocalID, tag.LocalID))
	found, err = e.FindNoteByLocalID(note.LocalID)
	require.NoError(t, err)
	require.Empty(t, found.TagLocalIDs)
}

func TestUnlinkTagWithNoteNotFound(t *testing.T) {
	e := newTestEngine(t)
	err := e.UnlinkTagWithNote("missing", "missing")
	require.True(t, types.IsKind(err, types.KindNotFound))
}
