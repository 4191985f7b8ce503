// Package notebook implements the in-memory notebook tree: personal
// notebooks and stacks plus one root per linked notebook, all parented
// by an invisible root. The model is the authority for view-facing
// concerns (stable item identity, sort order, default-notebook
// exclusivity) that the storage engine does not need to know about.
package notebook

import (
	"sort"
	"strings"
	"sync"

	"github.com/notarium/core/internal/facade"
	"github.com/notarium/core/pkg/types"
)

// ItemKind distinguishes the three node variants plus the invisible
// root.
type ItemKind int

const (
	KindRoot ItemKind = iota
	KindNotebook
	KindStack
	KindLinkedNotebookRoot
)

// IndexID is an opaque, stable identity for a tree item, unaffected
// by sort reshuffles. Views key their selection state off of it.
type IndexID int64

// itemState is the per-notebook-leaf lifecycle state.
type itemState int

const (
	stateNotInStorage itemState = iota
	stateInStorage
)

// leaf wraps a stored notebook projection plus view/model-only state.
type leaf struct {
	notebook  *types.Notebook
	state     itemState
	noteCount int
	index     IndexID
}

// stack groups sibling notebooks sharing a stack name within one
// scope.
type stack struct {
	name     string
	scope    types.Scope
	children []*leaf
	index    IndexID
}

// linkedRoot is the interior node hosting one linked notebook's
// stacks and notebooks.
type linkedRoot struct {
	guid   string
	index  IndexID
	stacks map[string]*stack
	loose  []*leaf // notebooks directly under the linked root, no stack
}

func stackKey(scope types.Scope, name string) string {
	return scope.LinkedNotebookGUID + "\x00" + strings.ToUpper(name)
}

// Model is the notebook tree. All mutation happens through its
// exported methods, which validate editing contracts, apply the change
// to the tree and then issue a storage request via the façade; a new
// row stays NotInStorage until OnAddComplete reports its completion.
type Model struct {
	mu sync.RWMutex

	facade *facade.Facade

	leaves      map[string]*leaf   // by notebook local id
	stacks      map[string]*stack  // by stackKey
	linkedRoots map[string]*linkedRoot

	nextIndex  IndexID
	pendingAdd map[string]facade.Token // local id -> outstanding AddNotebook token
	countInFlight map[string]bool

	direction types.Direction
}

// New constructs an empty notebook model bound to a façade.
func New(f *facade.Facade) *Model {
	return &Model{
		facade:        f,
		leaves:        make(map[string]*leaf),
		stacks:        make(map[string]*stack),
		linkedRoots:   make(map[string]*linkedRoot),
		pendingAdd:    make(map[string]facade.Token),
		countInFlight: make(map[string]bool),
		direction:     types.Ascending,
	}
}

func (m *Model) allocIndex() IndexID {
	m.nextIndex++
	return m.nextIndex
}

// Populate seeds the tree from a full listing, e.g. right after
// construction. Existing state is replaced.
func (m *Model) Populate(notebooks []*types.Notebook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves = make(map[string]*leaf)
	m.stacks = make(map[string]*stack)
	m.linkedRoots = make(map[string]*linkedRoot)

	for _, n := range notebooks {
		l := &leaf{notebook: n, state: stateInStorage, noteCount: -1, index: m.allocIndex()}
		m.leaves[n.LocalID] = l
		m.attachLocked(l)
	}
}

// attachLocked wires a leaf into its stack/linked-root parent,
// synthesizing intermediate nodes as needed. Caller holds m.mu.
func (m *Model) attachLocked(l *leaf) {
	scope := l.notebook.Scope()
	if !scope.IsPersonal() {
		lr, ok := m.linkedRoots[scope.LinkedNotebookGUID]
		if !ok {
			lr = &linkedRoot{guid: scope.LinkedNotebookGUID, index: m.allocIndex(), stacks: make(map[string]*stack)}
			m.linkedRoots[scope.LinkedNotebookGUID] = lr
		}
		if l.notebook.Stack != "" {
			key := stackKey(scope, l.notebook.Stack)
			st, ok := lr.stacks[key]
			if !ok {
				st = &stack{name: l.notebook.Stack, scope: scope, index: m.allocIndex()}
				lr.stacks[key] = st
			}
			st.children = append(st.children, l)
		} else {
			lr.loose = append(lr.loose, l)
		}
		return
	}

	if l.notebook.Stack == "" {
		return
	}
	key := stackKey(scope, l.notebook.Stack)
	st, ok := m.stacks[key]
	if !ok {
		st = &stack{name: l.notebook.Stack, scope: scope, index: m.allocIndex()}
		m.stacks[key] = st
	}
	st.children = append(st.children, l)
}

// detachLocked removes a leaf from its current stack/linked-root
// parent, cleaning up an emptied stack. Caller holds m.mu.
func (m *Model) detachLocked(l *leaf) {
	scope := l.notebook.Scope()
	remove := func(children []*leaf) []*leaf {
		out := children[:0]
		for _, c := range children {
			if c.notebook.LocalID != l.notebook.LocalID {
				out = append(out, c)
			}
		}
		return out
	}

	if !scope.IsPersonal() {
		lr, ok := m.linkedRoots[scope.LinkedNotebookGUID]
		if !ok {
			return
		}
		if l.notebook.Stack == "" {
			lr.loose = remove(lr.loose)
			return
		}
		key := stackKey(scope, l.notebook.Stack)
		if st, ok := lr.stacks[key]; ok {
			st.children = remove(st.children)
			if len(st.children) == 0 {
				delete(lr.stacks, key)
			}
		}
		return
	}

	if l.notebook.Stack == "" {
		return
	}
	key := stackKey(scope, l.notebook.Stack)
	if st, ok := m.stacks[key]; ok {
		st.children = remove(st.children)
		if len(st.children) == 0 {
			delete(m.stacks, key)
		}
	}
}

// Add validates and issues an AddNotebook request, tracking the
// notebook in the NotInStorage state until the completion arrives.
func (m *Model) Add(n *types.Notebook, token facade.Token) error {
	if err := n.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	if m.collidesLocked(n.Scope(), n.Name, "") {
		m.mu.Unlock()
		return types.NewError(types.KindConflict, "notebook.Add", "a notebook with this name already exists in scope", nil)
	}
	l := &leaf{notebook: n, state: stateNotInStorage, noteCount: 0, index: m.allocIndex()}
	m.leaves[n.LocalID] = l
	m.attachLocked(l)
	m.pendingAdd[n.LocalID] = token
	m.mu.Unlock()

	m.facade.AddNotebook(token, n)
	return nil
}

// OnAddComplete transitions a pending notebook to InStorage.
func (m *Model) OnAddComplete(localID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.leaves[localID]; ok {
		l.state = stateInStorage
	}
	delete(m.pendingAdd, localID)
}

// OnAddFailed rolls back a failed add, removing the notebook and its
// synthesized stack/linked-root if they are now empty.
func (m *Model) OnAddFailed(localID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.leaves[localID]; ok {
		m.detachLocked(l)
		delete(m.leaves, localID)
	}
	delete(m.pendingAdd, localID)
}

func (m *Model) collidesLocked(scope types.Scope, name, excludeLocalID string) bool {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for id, l := range m.leaves {
		if id == excludeLocalID {
			continue
		}
		if l.notebook.Scope() == scope && strings.ToUpper(l.notebook.Name) == upper {
			return true
		}
	}
	return false
}

// Rename validates length/trim/collision and, if an add is still
// in flight for this notebook, queues nothing (caller should wait for
// OnAddComplete first) — a rename on a NotInStorage item fails fast
// since the entity does not exist in storage yet to update.
func (m *Model) Rename(localID, newName string, token facade.Token) error {
	trimmed := strings.TrimSpace(newName)
	if trimmed != newName || len(trimmed) < types.NotebookNameMinLength || len(trimmed) > types.NotebookNameMaxLength {
		return types.NewError(types.KindInvalidInput, "notebook.Rename", "name length/trim invariant violated", nil)
	}
	m.mu.Lock()
	l, ok := m.leaves[localID]
	if !ok {
		m.mu.Unlock()
		return types.NewError(types.KindNotFound, "notebook.Rename", "notebook not found", nil)
	}
	if l.state == stateNotInStorage {
		m.mu.Unlock()
		return types.NewError(types.KindConflict, "notebook.Rename", "notebook add is still in flight", nil)
	}
	if l.notebook.Restrictions != nil && !l.notebook.Restrictions.CanRenameNotebook() {
		m.mu.Unlock()
		return types.NewError(types.KindInvalidInput, "notebook.Rename", "notebook forbids rename", nil)
	}
	if m.collidesLocked(l.notebook.Scope(), trimmed, localID) {
		m.mu.Unlock()
		return types.NewError(types.KindConflict, "notebook.Rename", "a notebook with this name already exists in scope", nil)
	}
	updated := *l.notebook
	updated.Name = trimmed
	updated.IsDirty = true
	l.notebook = &updated
	m.mu.Unlock()

	m.facade.UpdateNotebook(token, &updated)
	return nil
}

// SetDefault marks localID as the account-scope default, unsetting
// the previous default and recording a dirty write for both.
func (m *Model) SetDefault(localID string, tokenNew, tokenOld facade.Token) error {
	m.mu.Lock()
	target, ok := m.leaves[localID]
	if !ok {
		m.mu.Unlock()
		return types.NewError(types.KindNotFound, "notebook.SetDefault", "notebook not found", nil)
	}
	if target.notebook.Restrictions != nil && !target.notebook.Restrictions.CanUpdateNotebook() {
		m.mu.Unlock()
		return types.NewError(types.KindInvalidInput, "notebook.SetDefault", "notebook forbids update", nil)
	}
	var previous *leaf
	for _, l := range m.leaves {
		if l.notebook.IsDefault && l.notebook.Scope() == target.notebook.Scope() && l != target {
			previous = l
			break
		}
	}
	updatedTarget := *target.notebook
	updatedTarget.IsDefault = true
	updatedTarget.IsDirty = true
	target.notebook = &updatedTarget

	var updatedPrevious *types.Notebook
	if previous != nil {
		u := *previous.notebook
		u.IsDefault = false
		u.IsDirty = true
		previous.notebook = &u
		updatedPrevious = &u
	}
	m.mu.Unlock()

	m.facade.UpdateNotebook(tokenNew, &updatedTarget)
	if updatedPrevious != nil {
		m.facade.UpdateNotebook(tokenOld, updatedPrevious)
	}
	return nil
}

// SetSynchronizable flips a local-only notebook to synchronizable.
// The transition is one-way — a synchronizable notebook can never be
// turned back into a local-only one through this method — and only
// permitted on a non-local account, since a local account has no sync
// target to promote the notebook toward.
func (m *Model) SetSynchronizable(localID string, isLocalAccount bool, token facade.Token) error {
	if isLocalAccount {
		return types.NewError(types.KindInvalidInput, "notebook.SetSynchronizable", "cannot make a notebook synchronizable on a local account", nil)
	}
	m.mu.Lock()
	l, ok := m.leaves[localID]
	if !ok {
		m.mu.Unlock()
		return types.NewError(types.KindNotFound, "notebook.SetSynchronizable", "notebook not found", nil)
	}
	if !l.notebook.IsLocal {
		m.mu.Unlock()
		return types.NewError(types.KindInvalidInput, "notebook.SetSynchronizable", "notebook is already synchronizable", nil)
	}
	updated := *l.notebook
	updated.IsLocal = false
	updated.IsDirty = true
	l.notebook = &updated
	m.mu.Unlock()

	m.facade.UpdateNotebook(token, &updated)
	return nil
}

// MoveToStack removes localID from its current parent and inserts it
// under stackName, synthesizing the stack if it does not yet exist
// and removing the previous stack if it becomes empty. The stack is
// always taken in the notebook's own scope; this method has no way to
// move a notebook to another scope.
func (m *Model) MoveToStack(localID, stackName string, token facade.Token) error {
	m.mu.Lock()
	l, ok := m.leaves[localID]
	if !ok {
		m.mu.Unlock()
		return types.NewError(types.KindNotFound, "notebook.MoveToStack", "notebook not found", nil)
	}
	m.detachLocked(l)
	updated := *l.notebook
	updated.Stack = stackName
	l.notebook = &updated
	m.attachLocked(l)
	m.mu.Unlock()

	m.facade.UpdateNotebook(token, &updated)
	return nil
}

// RenameStack renames every notebook in a stack to carry the new
// stack name, re-homes them under the renamed stack node, removes the
// old stack node, and returns the renamed notebooks so the caller can
// emit a "stack renamed" event once all UpdateNotebook calls land.
func (m *Model) RenameStack(scope types.Scope, oldName, newName string, tokenFor func(localID string) facade.Token) ([]*types.Notebook, error) {
	trimmed := strings.TrimSpace(newName)
	if trimmed != newName || len(trimmed) < types.NotebookNameMinLength || len(trimmed) > types.NotebookNameMaxLength {
		return nil, types.NewError(types.KindInvalidInput, "notebook.RenameStack", "stack name length/trim invariant violated", nil)
	}
	m.mu.Lock()
	key := stackKey(scope, oldName)
	var children []*leaf
	if scope.IsPersonal() {
		st, ok := m.stacks[key]
		if !ok {
			m.mu.Unlock()
			return nil, types.NewError(types.KindNotFound, "notebook.RenameStack", "stack not found", nil)
		}
		children = append(children, st.children...)
	} else {
		lr, ok := m.linkedRoots[scope.LinkedNotebookGUID]
		if !ok {
			m.mu.Unlock()
			return nil, types.NewError(types.KindNotFound, "notebook.RenameStack", "linked notebook root not found", nil)
		}
		st, ok := lr.stacks[key]
		if !ok {
			m.mu.Unlock()
			return nil, types.NewError(types.KindNotFound, "notebook.RenameStack", "stack not found", nil)
		}
		children = append(children, st.children...)
	}

	renamed := make([]*types.Notebook, 0, len(children))
	for _, l := range children {
		m.detachLocked(l)
		updated := *l.notebook
		updated.Stack = trimmed
		updated.IsDirty = true
		l.notebook = &updated
		m.attachLocked(l)
		renamed = append(renamed, &updated)
	}
	m.mu.Unlock()

	for _, n := range renamed {
		m.facade.UpdateNotebook(tokenFor(n.LocalID), n)
	}
	return renamed, nil
}

// Remove validates the expunge preconditions (non-synchronized,
// not a linked notebook) and issues the ExpungeNotebook request.
func (m *Model) Remove(localID string, token facade.Token) error {
	m.mu.RLock()
	l, ok := m.leaves[localID]
	m.mu.RUnlock()
	if !ok {
		return types.NewError(types.KindNotFound, "notebook.Remove", "notebook not found", nil)
	}
	if l.notebook.GUID != "" {
		return types.NewError(types.KindInvalidInput, "notebook.Remove", "cannot remove a synchronized notebook", nil)
	}
	if l.notebook.LinkedNotebookGUID != "" {
		return types.NewError(types.KindInvalidInput, "notebook.Remove", "cannot remove a linked notebook", nil)
	}
	if l.notebook.Restrictions != nil && !l.notebook.Restrictions.CanExpungeNotebook() {
		return types.NewError(types.KindInvalidInput, "notebook.Remove", "notebook forbids expunge", nil)
	}
	m.facade.ExpungeNotebook(token, localID)
	return nil
}

// OnExpungeComplete removes a notebook from the tree.
func (m *Model) OnExpungeComplete(localID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.leaves[localID]; ok {
		m.detachLocked(l)
		delete(m.leaves, localID)
	}
}

// AdjustNoteCount applies a delta to a notebook's cached note count,
// or — if a count request is already in flight for it — defers to
// ReconcileNoteCount once that request completes, to avoid a
// lost-update race between the delta and the stale query result.
func (m *Model) AdjustNoteCount(localID string, delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leaves[localID]
	if !ok {
		return
	}
	if m.countInFlight[localID] {
		return
	}
	if l.noteCount < 0 {
		return
	}
	l.noteCount += delta
}

// RequestNoteCount marks a count request in flight for localID,
// returning false if one is already outstanding.
func (m *Model) RequestNoteCount(localID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countInFlight[localID] {
		return false
	}
	m.countInFlight[localID] = true
	return true
}

// ReconcileNoteCount applies a freshly queried count, clearing the
// in-flight marker.
func (m *Model) ReconcileNoteCount(localID string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.countInFlight, localID)
	if l, ok := m.leaves[localID]; ok {
		l.noteCount = count
	}
}

// Row is the flattened, sort-ordered view of one notebook leaf.
type Row struct {
	Index     IndexID
	Notebook  *types.Notebook
	NoteCount int
}

// ListPersonal returns the personal-scope notebooks sorted by name.
// Stack membership is available via Notebook.Stack on each row.
func (m *Model) ListPersonal(dir types.Direction) []Row {
	return m.list(types.PersonalScope(), dir)
}

// ListLinked returns one linked notebook root's notebooks sorted by
// name. Linked-notebook roots themselves always sort after personal
// items in a combined view, irrespective of the requested direction.
func (m *Model) ListLinked(guid string, dir types.Direction) []Row {
	return m.list(types.LinkedScope(guid), dir)
}

func (m *Model) list(scope types.Scope, dir types.Direction) []Row {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []Row
	for _, l := range m.leaves {
		if l.notebook.Scope() != scope {
			continue
		}
		rows = append(rows, Row{Index: l.index, Notebook: l.notebook, NoteCount: l.noteCount})
	}
	sort.Slice(rows, func(i, j int) bool {
		a := strings.ToUpper(rows[i].Notebook.Name)
		b := strings.ToUpper(rows[j].Notebook.Name)
		if dir == types.Descending {
			return a > b
		}
		return a < b
	})
	return rows
}
