// Package savedsearch implements the flat, name-sorted saved search
// list with account-wide case-insensitive name uniqueness.
package savedsearch

import (
	"sort"
	"strings"
	"sync"

	"github.com/notarium/core/internal/facade"
	"github.com/notarium/core/pkg/types"
)

// Model is the saved search list.
type Model struct {
	mu      sync.RWMutex
	facade  *facade.Facade
	byID    map[string]*types.SavedSearch
}

// New constructs an empty saved search model bound to a façade.
func New(f *facade.Facade) *Model {
	return &Model{facade: f, byID: make(map[string]*types.SavedSearch)}
}

// Populate seeds the list from a full listing.
func (m *Model) Populate(searches []*types.SavedSearch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID = make(map[string]*types.SavedSearch)
	for _, s := range searches {
		m.byID[s.LocalID] = s
	}
}

func (m *Model) collidesLocked(name, excludeLocalID string) bool {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for id, s := range m.byID {
		if id == excludeLocalID {
			continue
		}
		if strings.ToUpper(s.Name) == upper {
			return true
		}
	}
	return false
}

// Add validates, checks account-wide collision, and issues the
// AddSavedSearch request.
func (m *Model) Add(s *types.SavedSearch, token facade.Token) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	if m.collidesLocked(s.Name, "") {
		m.mu.Unlock()
		return types.NewError(types.KindConflict, "savedsearch.Add", "a saved search with this name already exists", nil)
	}
	m.byID[s.LocalID] = s
	m.mu.Unlock()
	m.facade.AddSavedSearch(token, s)
	return nil
}

// Rename validates collision and issues an UpdateSavedSearch request.
func (m *Model) Rename(localID, newName string, token facade.Token) error {
	trimmed := strings.TrimSpace(newName)
	if trimmed != newName || len(trimmed) < types.SavedSearchNameMinLength || len(trimmed) > types.SavedSearchNameMaxLength {
		return types.NewError(types.KindInvalidInput, "savedsearch.Rename", "name length/trim invariant violated", nil)
	}
	m.mu.Lock()
	s, ok := m.byID[localID]
	if !ok {
		m.mu.Unlock()
		return types.NewError(types.KindNotFound, "savedsearch.Rename", "saved search not found", nil)
	}
	if m.collidesLocked(trimmed, localID) {
		m.mu.Unlock()
		return types.NewError(types.KindConflict, "savedsearch.Rename", "a saved search with this name already exists", nil)
	}
	updated := *s
	updated.Name = trimmed
	updated.IsDirty = true
	m.byID[localID] = &updated
	m.mu.Unlock()
	m.facade.UpdateSavedSearch(token, &updated)
	return nil
}

// Remove issues an ExpungeSavedSearch request.
func (m *Model) Remove(localID string, token facade.Token) {
	m.facade.ExpungeSavedSearch(token, localID)
}

// OnExpungeComplete removes a saved search from the list.
func (m *Model) OnExpungeComplete(localID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, localID)
}

// List returns every saved search sorted by name. Reversing direction
// on an already-sorted list is cheap: the caller may just reverse the
// slice rather than re-sorting.
func (m *Model) List(dir types.Direction) []*types.SavedSearch {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*types.SavedSearch, 0, len(m.byID))
	for _, s := range m.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToUpper(out[i].Name), strings.ToUpper(out[j].Name)
		if dir == types.Descending {
			return a > b
		}
		return a < b
	})
	return out
}
