// Package cache implements the per-entity-type LRU caches that sit in
// front of the storage engine: one each for notebooks, notes, tags,
// and saved searches, keyed by local id.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/notarium/core/pkg/types"
)

// Caches bundles the four per-entity-type LRUs a model consults
// before issuing a storage find.
type Caches struct {
	Notebooks     *EntityCache[*types.Notebook]
	Notes         *EntityCache[*types.Note]
	Tags          *EntityCache[*types.Tag]
	SavedSearches *EntityCache[*types.SavedSearch]
}

// New builds the four caches with the given capacities (from
// config.CacheConfig).
func New(noteCap, notebookCap, tagCap, savedSearchCap int) (*Caches, error) {
	notebooks, err := NewEntityCache[*types.Notebook](notebookCap)
	if err != nil {
		return nil, err
	}
	notes, err := NewEntityCache[*types.Note](noteCap)
	if err != nil {
		return nil, err
	}
	tags, err := NewEntityCache[*types.Tag](tagCap)
	if err != nil {
		return nil, err
	}
	searches, err := NewEntityCache[*types.SavedSearch](savedSearchCap)
	if err != nil {
		return nil, err
	}
	return &Caches{Notebooks: notebooks, Notes: notes, Tags: tags, SavedSearches: searches}, nil
}

// EntityCache wraps a strict-LRU cache of one entity type keyed by
// local id. Eviction on begin-of-update removes rather than
// overwrites, so a read already in flight cannot resurrect a stale
// value once the update lands.
type EntityCache[T any] struct {
	lru *lru.Cache[string, T]
}

// NewEntityCache builds an EntityCache with the given maximum size.
func NewEntityCache[T any](capacity int) (*EntityCache[T], error) {
	c, err := lru.New[string, T](capacity)
	if err != nil {
		return nil, types.NewError(types.KindInternal, "cache.NewEntityCache", "failed to construct LRU", err)
	}
	return &EntityCache[T]{lru: c}, nil
}

// Get returns the cached value for localID, if present.
func (c *EntityCache[T]) Get(localID string) (T, bool) {
	return c.lru.Get(localID)
}

// Put populates the cache with a freshly fetched or updated value.
func (c *EntityCache[T]) Put(localID string, value T) {
	c.lru.Add(localID, value)
}

// Invalidate removes an entry, used at begin-of-update so a read in
// flight never poisons the cache with a value that is about to become
// stale.
func (c *EntityCache[T]) Invalidate(localID string) {
	c.lru.Remove(localID)
}

// Len reports the number of entries currently cached.
func (c *EntityCache[T]) Len() int {
	return c.lru.Len()
}
