// Package tag implements the in-memory tag forest: one sub-forest for
// personal tags plus one per linked notebook, with creation plus
// promote/demote/moveToParent/removeFromParent editing gated by a
// linked notebook's create/update-tag restrictions where applicable,
// and note-count maintenance driven by noteTagListChanged fan-out
// events.
package tag

import (
	"sort"
	"strings"
	"sync"

	"github.com/notarium/core/internal/facade"
	"github.com/notarium/core/pkg/types"
)

// node is one tag in the forest plus model-only bookkeeping.
type node struct {
	tag       *types.Tag
	noteCount int
}

// restrictionState caches what is known about a linked notebook's
// create/update-tag permissions, discovered lazily via a notebook
// find when a linked tag first arrives.
type restrictionState struct {
	known         bool
	canCreateTags bool
	canUpdateTags bool
}

// Model is the tag forest.
type Model struct {
	mu sync.RWMutex

	facade *facade.Facade

	nodes map[string]*node // by tag local id

	linkedRestrictions map[string]*restrictionState // by linked notebook guid

	pendingRestrictionFind map[string]bool

	// findNotebookFn issues the lazy restriction-discovery notebook
	// find; bound by the wiring code that owns the façade's completion
	// stream and routes the result into OnNotebookRestrictionsKnown.
	findNotebookFn func(guid string)
}

// SetRestrictionResolver wires the callback reparent/Add use to
// discover a linked notebook's create/update-tag restrictions the
// first time a tag from it is seen. Left unset, linked-scope tags are
// treated as update/create-forbidden until a caller wires this in.
func (m *Model) SetRestrictionResolver(fn func(guid string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findNotebookFn = fn
}

// New constructs an empty tag model bound to a façade.
func New(f *facade.Facade) *Model {
	return &Model{
		facade:                 f,
		nodes:                  make(map[string]*node),
		linkedRestrictions:     make(map[string]*restrictionState),
		pendingRestrictionFind: make(map[string]bool),
	}
}

// Populate seeds the forest from a full listing and a batch
// local-id-to-note-count map obtained on model construction.
func (m *Model) Populate(tags []*types.Tag, noteCounts map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes = make(map[string]*node)
	for _, t := range tags {
		m.nodes[t.LocalID] = &node{tag: t, noteCount: noteCounts[t.LocalID]}
		if !t.Scope().IsPersonal() {
			m.ensureRestrictionTrackedLocked(t.LinkedNotebookGUID)
		}
	}
}

// Add validates t and, for a linked-notebook tag, checks the owning
// notebook's create-tag restriction before issuing the AddTag call.
func (m *Model) Add(t *types.Tag, token facade.Token) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if !m.canCreate(t) {
		return types.NewError(types.KindRestrictionViolation, "tag.Add", "linked notebook forbids tag creation", nil)
	}
	m.mu.Lock()
	m.nodes[t.LocalID] = &node{tag: t}
	if !t.Scope().IsPersonal() {
		m.ensureRestrictionTrackedLocked(t.LinkedNotebookGUID)
	}
	m.mu.Unlock()

	m.facade.AddTag(token, t)
	return nil
}

func (m *Model) ensureRestrictionTrackedLocked(guid string) {
	if _, ok := m.linkedRestrictions[guid]; !ok {
		m.linkedRestrictions[guid] = &restrictionState{}
	}
}

// OnNotebookRestrictionsKnown records the create/update-tag
// permissions discovered for a linked notebook, in response to the
// notebook find the model issued when it first saw a linked tag whose
// restriction state was unknown.
func (m *Model) OnNotebookRestrictionsKnown(guid string, restrictions *types.NotebookRestrictions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linkedRestrictions[guid] = &restrictionState{
		known:         true,
		canCreateTags: restrictions.CanCreateTags(),
		canUpdateTags: restrictions.CanUpdateTags(),
	}
	delete(m.pendingRestrictionFind, guid)
}

// checkRestriction reports whether t's linked-notebook restrictions
// permit an operation, per the need function, lazily issuing a
// notebook find for an unresolved restriction state. A personal-scope
// tag always permits; a linked-scope tag is treated as forbidden until
// its owning notebook's restrictions are known. Caller holds no lock.
func (m *Model) checkRestriction(t *types.Tag, need func(*restrictionState) bool) bool {
	if t.Scope().IsPersonal() {
		return true
	}
	m.mu.Lock()
	rs, ok := m.linkedRestrictions[t.LinkedNotebookGUID]
	if !ok || !rs.known {
		findNotebook := m.findNotebookFn
		if !m.pendingRestrictionFind[t.LinkedNotebookGUID] {
			m.pendingRestrictionFind[t.LinkedNotebookGUID] = true
			m.mu.Unlock()
			if findNotebook != nil {
				findNotebook(t.LinkedNotebookGUID)
			}
			return false
		}
		m.mu.Unlock()
		return false
	}
	m.mu.Unlock()
	return need(rs)
}

// canCreate reports whether a new tag may be created in t's scope.
func (m *Model) canCreate(t *types.Tag) bool {
	return m.checkRestriction(t, func(rs *restrictionState) bool { return rs.canCreateTags })
}

// canUpdate reports whether t may be mutated.
func (m *Model) canUpdate(t *types.Tag) bool {
	return m.checkRestriction(t, func(rs *restrictionState) bool { return rs.canUpdateTags })
}

// ancestorsLocked walks parent links starting at localID, returning
// every ancestor's local id. Caller holds m.mu.
func (m *Model) ancestorsLocked(localID string) []string {
	var ancestors []string
	cur := localID
	seen := map[string]bool{}
	for {
		n, ok := m.nodes[cur]
		if !ok || n.tag.ParentLocalID == "" || seen[n.tag.ParentLocalID] {
			return ancestors
		}
		ancestors = append(ancestors, n.tag.ParentLocalID)
		seen[n.tag.ParentLocalID] = true
		cur = n.tag.ParentLocalID
	}
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// reparent validates scope/cycle/restriction constraints and issues
// the UpdateTag call. newParentLocalID == "" means removeFromParent.
func (m *Model) reparent(localID, newParentLocalID string, token facade.Token) error {
	m.mu.RLock()
	n, ok := m.nodes[localID]
	m.mu.RUnlock()
	if !ok {
		return types.NewError(types.KindNotFound, "tag.reparent", "tag not found", nil)
	}
	if !m.canUpdate(n.tag) {
		return types.NewError(types.KindRestrictionViolation, "tag.reparent", "linked notebook forbids tag update", nil)
	}

	m.mu.Lock()
	n, ok = m.nodes[localID]
	if !ok {
		m.mu.Unlock()
		return types.NewError(types.KindNotFound, "tag.reparent", "tag not found", nil)
	}
	if newParentLocalID != "" {
		parent, ok := m.nodes[newParentLocalID]
		if !ok {
			m.mu.Unlock()
			return types.NewError(types.KindNotFound, "tag.reparent", "target parent tag not found", nil)
		}
		if parent.tag.Scope() != n.tag.Scope() {
			m.mu.Unlock()
			return types.NewError(types.KindInvalidInput, "tag.reparent", "cannot reparent across scopes", nil)
		}
		if newParentLocalID == localID || containsString(m.ancestorsLocked(newParentLocalID), localID) {
			m.mu.Unlock()
			return types.NewError(types.KindInvalidInput, "tag.reparent", "reparenting would create a cycle", nil)
		}
	}
	updated := *n.tag
	updated.ParentLocalID = newParentLocalID
	updated.IsDirty = true
	n.tag = &updated
	m.mu.Unlock()

	m.facade.UpdateTag(token, &updated)
	return nil
}

// Promote reparents a tag to its grandparent.
func (m *Model) Promote(localID string, token facade.Token) error {
	m.mu.RLock()
	n, ok := m.nodes[localID]
	m.mu.RUnlock()
	if !ok {
		return types.NewError(types.KindNotFound, "tag.Promote", "tag not found", nil)
	}
	if n.tag.ParentLocalID == "" {
		return types.NewError(types.KindInvalidInput, "tag.Promote", "tag is already a root", nil)
	}
	m.mu.RLock()
	parent, ok := m.nodes[n.tag.ParentLocalID]
	m.mu.RUnlock()
	if !ok {
		return types.NewError(types.KindInternal, "tag.Promote", "parent tag missing from forest", nil)
	}
	return m.reparent(localID, parent.tag.ParentLocalID, token)
}

// Demote reparents a tag to its previous sibling, if one exists.
func (m *Model) Demote(localID string, token facade.Token) error {
	m.mu.RLock()
	n, ok := m.nodes[localID]
	if !ok {
		m.mu.RUnlock()
		return types.NewError(types.KindNotFound, "tag.Demote", "tag not found", nil)
	}
	var siblings []*node
	for _, c := range m.nodes {
		if c.tag.ParentLocalID == n.tag.ParentLocalID && c.tag.Scope() == n.tag.Scope() {
			siblings = append(siblings, c)
		}
	}
	m.mu.RUnlock()
	sort.Slice(siblings, func(i, j int) bool { return strings.ToUpper(siblings[i].tag.Name) < strings.ToUpper(siblings[j].tag.Name) })
	var previous *node
	for _, s := range siblings {
		if s.tag.LocalID == localID {
			break
		}
		previous = s
	}
	if previous == nil {
		return types.NewError(types.KindInvalidInput, "tag.Demote", "no previous sibling to demote under", nil)
	}
	return m.reparent(localID, previous.tag.LocalID, token)
}

// MoveToParent reparents localID under the tag named parentName
// within the same scope.
func (m *Model) MoveToParent(localID, parentName string, token facade.Token) error {
	m.mu.RLock()
	n, ok := m.nodes[localID]
	if !ok {
		m.mu.RUnlock()
		return types.NewError(types.KindNotFound, "tag.MoveToParent", "tag not found", nil)
	}
	var target *node
	for _, c := range m.nodes {
		if c.tag.Scope() == n.tag.Scope() && strings.EqualFold(c.tag.Name, parentName) {
			target = c
			break
		}
	}
	m.mu.RUnlock()
	if target == nil {
		return types.NewError(types.KindNotFound, "tag.MoveToParent", "named parent tag not found in scope", nil)
	}
	return m.reparent(localID, target.tag.LocalID, token)
}

// RemoveFromParent makes localID a root within its scope.
func (m *Model) RemoveFromParent(localID string, token facade.Token) error {
	return m.reparent(localID, "", token)
}

// OnNoteTagListChanged updates per-tag note counts in response to a
// noteTagListChanged fan-out event: added tags gain one, removed tags
// lose one.
func (m *Model) OnNoteTagListChanged(event facade.NoteTagListChanged) {
	m.mu.Lock()
	defer m.mu.Unlock()
	previous := map[string]bool{}
	for _, id := range event.PreviousTagIDs {
		previous[id] = true
	}
	next := map[string]bool{}
	for _, id := range event.NewTagIDs {
		next[id] = true
	}
	for id := range next {
		if !previous[id] {
			if n, ok := m.nodes[id]; ok {
				n.noteCount++
			}
		}
	}
	for id := range previous {
		if !next[id] {
			if n, ok := m.nodes[id]; ok && n.noteCount > 0 {
				n.noteCount--
			}
		}
	}
}

// OnExpungeComplete removes the expunged tag plus every cascaded
// child tag id, per the storage engine's expunge-tag cascade report.
func (m *Model) OnExpungeComplete(expungedIDs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range expungedIDs {
		delete(m.nodes, id)
	}
}

// Row is a flattened forest entry.
type Row struct {
	Tag       *types.Tag
	NoteCount int
}

// Children returns the direct children of parentLocalID within scope,
// sorted by name. parentLocalID == "" lists the scope's roots.
func (m *Model) Children(scope types.Scope, parentLocalID string, dir types.Direction) []Row {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []Row
	for _, n := range m.nodes {
		if n.tag.Scope() == scope && n.tag.ParentLocalID == parentLocalID {
			rows = append(rows, Row{Tag: n.tag, NoteCount: n.noteCount})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := strings.ToUpper(rows[i].Tag.Name), strings.ToUpper(rows[j].Tag.Name)
		if dir == types.Descending {
			return a > b
		}
		return a < b
	})
	return rows
}
