package facade

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/notarium/core/internal/cache"
	"github.com/notarium/core/internal/storage"
	"github.com/notarium/core/pkg/types"
)

func newTestFacade(t *testing.T) *Facade {
	t.Helper()
	engine, err := storage.Open(":memory:", false, zerolog.Nop())
	require.NoError(t, err)
	caches, err := cache.New(64, 64, 64, 64)
	require.NoError(t, err)
	f := New(engine, caches, zerolog.Nop())
	t.Cleanup(func() {
		f.Close()
		engine.Close()
	})
	return f
}

func awaitOne(t *testing.T, f *Facade, token Token) Completion {
	t.Helper()
	for c := range f.Completions() {
		if c.Token == token {
			return c
		}
	}
	t.Fatal("façade closed before completion arrived")
	return Completion{}
}

func TestAddAndFindNotebookRoundTrip(t *testing.T) {
	f := newTestFacade(t)

	n := &types.Notebook{Name: "Ideas"}
	f.AddNotebook("t1", n)
	c := awaitOne(t, f, "t1")
	require.NoError(t, c.Err)
	require.Equal(t, "AddNotebook", c.Op)

	f.FindNotebook("t2", n.LocalID)
	c = awaitOne(t, f, "t2")
	require.NoError(t, c.Err)
	found := c.Result.(*types.Notebook)
	require.Equal(t, "Ideas", found.Name)
}

func TestUpdateNoteFansOutNotebookMoveAndTagChange(t *testing.T) {
	f := newTestFacade(t)

	src := &types.Notebook{Name: "Source"}
	f.AddNotebook("nb1", src)
	require.NoError(t, awaitOne(t, f, "nb1").Err)
	dst := &types.Notebook{Name: "Destination"}
	f.AddNotebook("nb2", dst)
	require.NoError(t, awaitOne(t, f, "nb2").Err)
	tag := &types.Tag{Name: "moved", Active: true}
	f.AddTag("tag1", tag)
	require.NoError(t, awaitOne(t, f, "tag1").Err)

	note := &types.Note{Title: "n", Content: "x", NotebookLocalID: src.LocalID}
	f.AddNote("note1", note)
	require.NoError(t, awaitOne(t, f, "note1").Err)

	note.NotebookLocalID = dst.LocalID
	note.TagLocalIDs = []string{tag.LocalID}
	f.UpdateNote("note2", note, src.LocalID)
	c := awaitOne(t, f, "note2")
	require.NoError(t, c.Err)

	var sawMove, sawTagChange bool
	for i := 0; i < 2; i++ {
		event := <-f.FanOut()
		switch ev := event.(type) {
		case NoteMovedToAnotherNotebook:
			sawMove = true
			require.Equal(t, src.LocalID, ev.FromNotebookID)
			require.Equal(t, dst.LocalID, ev.ToNotebookID)
		case NoteTagListChanged:
			sawTagChange = true
			require.Empty(t, ev.PreviousTagIDs)
			require.Equal(t, []string{tag.LocalID}, ev.NewTagIDs)
		}
	}
	require.True(t, sawMove)
	require.True(t, sawTagChange)
}

func TestFindNotebookFailureCompletion(t *testing.T) {
	f := newTestFacade(t)

	f.FindNotebook("missing-token", "does-not-exist")
	c := awaitOne(t, f, "missing-token")
	require.Error(t, c.Err)
	require.True(t, types.IsKind(c.Err, types.KindNotFound))
}

func TestFindNotebookConsultsCacheBeforeStorage(t *testing.T) {
	engine, err := storage.Open(":memory:", false, zerolog.Nop())
	require.NoError(t, err)
	caches, err := cache.New(64, 64, 64, 64)
	require.NoError(t, err)
	f := New(engine, caches, zerolog.Nop())

	n := &types.Notebook{Name: "Cached"}
	f.AddNotebook("add", n)
	require.NoError(t, awaitOne(t, f, "add").Err)
	f.Close()
	engine.Close()

	// The engine is gone; a cache hit must resolve without touching
	// storage, so a façade over a nil engine sharing the same caches
	// can still answer FindNotebook.
	f2 := New(nil, caches, zerolog.Nop())
	defer f2.Close()
	f2.FindNotebook("find", n.LocalID)
	c := awaitOne(t, f2, "find")
	require.NoError(t, c.Err)
	require.Equal(t, "Cached", c.Result.(*types.Notebook).Name)
}

func TestUpdateNotebookInvalidatesCacheAtBeginOfUpdate(t *testing.T) {
	f := newTestFacade(t)

	n := &types.Notebook{Name: "Original"}
	f.AddNotebook("add", n)
	require.NoError(t, awaitOne(t, f, "add").Err)
	f.FindNotebook("find1", n.LocalID)
	require.NoError(t, awaitOne(t, f, "find1").Err)

	updated := *n
	updated.Name = "Renamed"
	f.UpdateNotebook("update", &updated)
	require.NoError(t, awaitOne(t, f, "update").Err)

	f.FindNotebook("find2", n.LocalID)
	c := awaitOne(t, f, "find2")
	require.NoError(t, c.Err)
	require.Equal(t, "Renamed", c.Result.(*types.Notebook).Name)
}

func TestCloseDrainsQueueBeforeReturning(t *testing.T) {
	engine, err := storage.Open(":memory:", false, zerolog.Nop())
	require.NoError(t, err)
	defer engine.Close()
	caches, err := cache.New(64, 64, 64, 64)
	require.NoError(t, err)
	f := New(engine, caches, zerolog.Nop())

	for i := 0; i < 5; i++ {
		f.AddNotebook(Token(string(rune('a'+i))), &types.Notebook{Name: "n" + string(rune('a'+i))})
	}
	f.Close()

	count, err := engine.GetNotebookCount(types.Scope{})
	require.NoError(t, err)
	require.Equal(t, 5, count)
}
