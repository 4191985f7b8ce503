package notebook

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

func TestAddNotebookTracksNotInStorageUntilComplete(t *testing.T) {
	m, f := newTestModel(t)

	n := &types.Notebook{LocalID: types.NewLocalID(), Name: "Projects"}
	require.NoError(t, m.Add(n, "t1"))

	rows := m.ListPersonal(types.Ascending)
	require.Len(t, rows, 1)
	require.Equal(t, stateNotInStorage, m.leaves[n.LocalID].state)

	c := awaitCompletion(t, f, "t1")
	require.NoError(t, c.Err)
	m.OnAddComplete(n.LocalID)
	require.Equal(t, stateInStorage, m.leaves[n.LocalID].state)

	rows = m.ListPersonal(types.Ascending)
	require.Len(t, rows, 1)
	require.Equal(t, "Projects", rows[0].Notebook.Name)
}

func TestAddNotebookRejectsDuplicateNameInScope(t *testing.T) {
	m, f := newTestModel(t)
	n1 := &types.Notebook{LocalID: types.NewLocalID(), Name: "Work"}
	require.NoError(t, m.Add(n1, "t1"))
	awaitCompletion(t, f, "t1")
	m.OnAddComplete(n1.LocalID)

	n2 := &types.Notebook{LocalID: types.NewLocalID(), Name: "work"}
	err := m.Add(n2, "t2")
	require.True(t, types.IsKind(err, types.KindConflict))
}

func TestMoveToStackSynthesizesAndCleansUpStacks(t *testing.T) {
	m, f := newTestModel(t)
	n := &types.Notebook{LocalID: types.NewLocalID(), Name: "Recipe Box"}
	require.NoError(t, m.Add(n, "t1"))
	awaitCompletion(t, f, "t1")
	m.OnAddComplete(n.LocalID)

	require.NoError(t, m.MoveToStack(n.LocalID, "Kitchen", "t2"))
	c := awaitCompletion(t, f, "t2")
	require.NoError(t, c.Err)

	rows := m.ListPersonal(types.Ascending)
	require.Len(t, rows, 1)
	require.Equal(t, "Kitchen", rows[0].Notebook.Stack)
	require.Len(t, m.stacks, 1)

	require.NoError(t, m.MoveToStack(n.LocalID, "", "t3"))
	c = awaitCompletion(t, f, "t3")
	require.NoError(t, c.Err)
	rows = m.ListPersonal(types.Ascending)
	require.Equal(t, "", rows[0].Notebook.Stack)
	require.Empty(t, m.stacks)
}

func TestRenameStackRenamesEveryMember(t *testing.T) {
	m, f := newTestModel(t)
	var ids []string
	for i, name := range []string{"Soup", "Stew"} {
		n := &types.Notebook{LocalID: types.NewLocalID(), Name: name, Stack: "Kitchen"}
		token := facade.Token(string(rune('a' + i)))
		require.NoError(t, m.Add(n, token))
		awaitCompletion(t, f, token)
		m.OnAddComplete(n.LocalID)
		ids = append(ids, n.LocalID)
	}

	renamed, err := m.RenameStack(types.PersonalScope(), "Kitchen", "Pantry", func(localID string) facade.Token {
		return facade.Token(localID)
	})
	require.NoError(t, err)
	require.Len(t, renamed, 2)
	for _, n := range renamed {
		require.Equal(t, "Pantry", n.Stack)
		awaitCompletion(t, f, facade.Token(n.LocalID))
	}
}

func TestSetDefaultUnsetsPrevious(t *testing.T) {
	m, f := newTestModel(t)
	n1 := &types.Notebook{LocalID: types.NewLocalID(), Name: "First", IsDefault: true}
	require.NoError(t, m.Add(n1, "t1"))
	awaitCompletion(t, f, "t1")
	m.OnAddComplete(n1.LocalID)

	n2 := &types.Notebook{LocalID: types.NewLocalID(), Name: "Second"}
	require.NoError(t, m.Add(n2, "t2"))
	awaitCompletion(t, f, "t2")
	m.OnAddComplete(n2.LocalID)

	require.NoError(t, m.SetDefault(n2.LocalID, "t3", "t4"))
	awaitCompletion(t, f, "t3")
	awaitCompletion(t, f, "t4")

	rows := m.ListPersonal(types.Ascending)
	var defaults int
	for _, r := range rows {
		if r.Notebook.LocalID == n2.LocalID {
			require.True(t, r.Notebook.IsDefault)
		}
		if r.Notebook.IsDefault {
			defaults++
		}
	}
	require.Equal(t, 1, defaults)
}

func TestSetSynchronizableIsOneWayAndAccountGated(t *testing.T) {
	m, f := newTestModel(t)
	n := &types.Notebook{LocalID: types.NewLocalID(), Name: "Local Only", IsLocal: true}
	require.NoError(t, m.Add(n, "t1"))
	awaitCompletion(t, f, "t1")
	m.OnAddComplete(n.LocalID)

	err := m.SetSynchronizable(n.LocalID, true, "t2")
	require.True(t, types.IsKind(err, types.KindInvalidInput))

	require.NoError(t, m.SetSynchronizable(n.LocalID, false, "t3"))
	c := awaitCompletion(t, f, "t3")
	require.NoError(t, c.Err)

	rows := m.ListPersonal(types.Ascending)
	require.False(t, rows[0].Notebook.IsLocal)

	err = m.SetSynchronizable(n.LocalID, false, "t4")
	require.True(t, types.IsKind(err, types.KindInvalidInput))
}

func TestRemoveRejectsSynchronizedNotebook(t *testing.T) {
	m, _ := newTestModel(t)
	n := &types.Notebook{LocalID: types.NewLocalID(), Name: "Synced", GUID: "server-guid"}
	m.mu.Lock()
	m.leaves[n.LocalID] = &leaf{notebook: n, state: stateInStorage, noteCount: 0, index: m.allocIndex()}
	m.mu.Unlock()

	err := m.Remove(n.LocalID, "t1")
	require.True(t, types.IsKind(err, types.KindInvalidInput))
}

func TestAdjustNoteCountSkippedWhileCountInFlight(t *testing.T) {
	m, f := newTestModel(t)
	n := &types.Notebook{LocalID: types.NewLocalID(), Name: "Counted"}
	require.NoError(t, m.Add(n, "t1"))
	awaitCompletion(t, f, "t1")
	m.OnAddComplete(n.LocalID)
	m.ReconcileNoteCount(n.LocalID, 5)

	require.True(t, m.RequestNoteCount(n.LocalID))
	m.AdjustNoteCount(n.LocalID, 1) // should be dropped: count is in flight
	require.Equal(t, 5, m.ListPersonal(types.Ascending)[0].NoteCount)

	m.ReconcileNoteCount(n.LocalID, 9)
	rows := m.ListPersonal(types.Ascending)
	require.Equal(t, 9, rows[0].NoteCount)
}
