// Package favorites implements the single flat list that unions every
// favorited notebook, tag, note, and saved search.
package favorites

import (
	"sort"
	"strings"
	"sync"

	"github.com/notarium/core/internal/facade"
	"github.com/notarium/core/pkg/types"
)

// Kind identifies which entity type a Row targets.
type Kind int

const (
	KindNotebook Kind = iota
	KindTag
	KindNote
	KindSavedSearch
)

// Row is one favorited entity as the union view presents it.
// NumNotesTargeted is meaningful for notebooks and tags, -1 when
// unknown, and 0 for notes and searches.
type Row struct {
	Kind              Kind
	LocalID           string
	DisplayName       string
	NumNotesTargeted  int
}

// Model is the favorites union list.
type Model struct {
	mu    sync.RWMutex
	facade *facade.Facade

	rows map[string]*Row // keyed by Kind+LocalID

	streamsDone [4]bool
	allListed   bool

	countInFlight map[string]bool // by Kind+LocalID

	// countResolver issues the count query (GetNoteCount/GetTagCount)
	// for a row whose NumNotesTargeted is unknown; the caller routes
	// the completion back into ReconcileCount.
	countResolver func(kind Kind, localID string)
}

// SetCountResolver wires the callback AdjustNumNotesTargeted uses to
// resolve an unknown (-1) note count into a real one. Left unset, an
// unknown count simply never resolves, matching the prior behavior.
func (m *Model) SetCountResolver(fn func(kind Kind, localID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countResolver = fn
}

func rowKey(kind Kind, localID string) string {
	switch kind {
	case KindNotebook:
		return "nb:" + localID
	case KindTag:
		return "tag:" + localID
	case KindNote:
		return "note:" + localID
	default:
		return "search:" + localID
	}
}

// New constructs an empty favorites model bound to a façade.
func New(f *facade.Facade) *Model {
	return &Model{facade: f, rows: make(map[string]*Row), countInFlight: make(map[string]bool)}
}

// AddNotebookPage ingests one page of a favorited-only notebook
// listing.
func (m *Model) AddNotebookPage(notebooks []*types.Notebook, done bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range notebooks {
		if !n.IsFavorited {
			continue
		}
		m.rows[rowKey(KindNotebook, n.LocalID)] = &Row{Kind: KindNotebook, LocalID: n.LocalID, DisplayName: n.Name, NumNotesTargeted: -1}
	}
	if done {
		m.streamsDone[0] = true
		m.maybeSignalDoneLocked()
	}
}

// AddTagPage ingests one page of a favorited-only tag listing.
func (m *Model) AddTagPage(tags []*types.Tag, done bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tags {
		if !t.IsFavorited {
			continue
		}
		m.rows[rowKey(KindTag, t.LocalID)] = &Row{Kind: KindTag, LocalID: t.LocalID, DisplayName: t.Name, NumNotesTargeted: -1}
	}
	if done {
		m.streamsDone[1] = true
		m.maybeSignalDoneLocked()
	}
}

// AddNotePage ingests one page of a favorited-only note listing.
func (m *Model) AddNotePage(notes []*types.Note, done bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range notes {
		if !n.IsFavorited {
			continue
		}
		m.rows[rowKey(KindNote, n.LocalID)] = &Row{Kind: KindNote, LocalID: n.LocalID, DisplayName: n.Title, NumNotesTargeted: 0}
	}
	if done {
		m.streamsDone[2] = true
		m.maybeSignalDoneLocked()
	}
}

// AddSavedSearchPage ingests one page of a favorited-only saved
// search listing.
func (m *Model) AddSavedSearchPage(searches []*types.SavedSearch, done bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range searches {
		if !s.IsFavorited {
			continue
		}
		m.rows[rowKey(KindSavedSearch, s.LocalID)] = &Row{Kind: KindSavedSearch, LocalID: s.LocalID, DisplayName: s.Name, NumNotesTargeted: 0}
	}
	if done {
		m.streamsDone[3] = true
		m.maybeSignalDoneLocked()
	}
}

func (m *Model) maybeSignalDoneLocked() {
	for _, done := range m.streamsDone {
		if !done {
			return
		}
	}
	m.allListed = true
}

// AllListed reports whether every population stream has reached its
// end.
func (m *Model) AllListed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allListed
}

// Upsert inserts or updates a row in reaction to an add/update event
// on a favorited entity.
func (m *Model) Upsert(kind Kind, localID, displayName string, numNotesTargeted int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[rowKey(kind, localID)] = &Row{Kind: kind, LocalID: localID, DisplayName: displayName, NumNotesTargeted: numNotesTargeted}
}

// Remove drops a row, in reaction to an expunge event or the entity
// losing its favorited flag.
func (m *Model) Remove(kind Kind, localID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, rowKey(kind, localID))
}

// AdjustNumNotesTargeted applies a delta to a notebook or tag row's
// note count, used when note add/move/expunge affects a favorited
// notebook or tag. A row whose count is still unknown (-1) cannot be
// adjusted by a delta; instead this triggers (at most once per row,
// while a prior resolution is outstanding) a fresh count query via the
// resolver set with SetCountResolver, landed through ReconcileCount.
func (m *Model) AdjustNumNotesTargeted(kind Kind, localID string, delta int) {
	m.mu.Lock()
	key := rowKey(kind, localID)
	r, ok := m.rows[key]
	if !ok {
		m.mu.Unlock()
		return
	}
	if r.NumNotesTargeted < 0 {
		if m.countInFlight[key] {
			m.mu.Unlock()
			return
		}
		m.countInFlight[key] = true
		resolver := m.countResolver
		m.mu.Unlock()
		if resolver != nil {
			resolver(kind, localID)
		}
		return
	}
	r.NumNotesTargeted += delta
	m.mu.Unlock()
}

// RequestCount marks a count resolution in flight for kind/localID,
// issuing it via issueCount unless one is already outstanding.
// Returns false when a request was already in flight.
func (m *Model) RequestCount(kind Kind, localID string, issueCount func()) bool {
	m.mu.Lock()
	key := rowKey(kind, localID)
	if m.countInFlight[key] {
		m.mu.Unlock()
		return false
	}
	m.countInFlight[key] = true
	m.mu.Unlock()
	issueCount()
	return true
}

// ReconcileCount applies a freshly queried note count to a row,
// clearing the in-flight marker. A row that no longer exists (e.g. it
// lost its favorited flag while the query was in flight) is ignored.
func (m *Model) ReconcileCount(kind Kind, localID string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := rowKey(kind, localID)
	delete(m.countInFlight, key)
	if r, ok := m.rows[key]; ok {
		r.NumNotesTargeted = count
	}
}

// Unfavorite performs the read-modify-write that clears the
// favorited flag on the full entity: the caller supplies issueUpdate,
// which issues the UpdateNotebook/UpdateTag/UpdateNote/UpdateSavedSearch
// call for the up-to-date entity with its own token; Unfavorite removes
// the local row optimistically and then calls issueUpdate.
func (m *Model) Unfavorite(kind Kind, localID string, issueUpdate func()) {
	m.Remove(kind, localID)
	issueUpdate()
}

// List returns every favorited row sorted by display name.
func (m *Model) List(dir types.Direction) []*Row {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Row, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToUpper(out[i].DisplayName), strings.ToUpper(out[j].DisplayName)
		if dir == types.Descending {
			return a > b
		}
		return a < b
	})
	return out
}
