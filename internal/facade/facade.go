// Package facade wraps the storage engine with an async
// request/response contract: every call carries an opaque correlation
// token, is serialized onto a single worker goroutine, and resolves to
// exactly one completion or failure message plus zero or more
// fire-and-forget fan-out events.
package facade

import (
	"github.com/rs/zerolog"

	"github.com/notarium/core/internal/cache"
	"github.com/notarium/core/internal/storage"
	"github.com/notarium/core/pkg/types"
)

// Token is the caller-generated opaque correlation token echoed back
// unchanged on the matching completion message.
type Token string

// Completion is the single message the façade emits per request: Err
// nil means Result carries the op's result; Err non-nil means the
// operation failed and Result is the best-effort context value (e.g.
// the entity the caller tried to update), mirroring
// <op>Failed(<results-for-context>, errorDescription, token).
type Completion struct {
	Op     string
	Token  Token
	Result interface{}
	Err    error
}

// NoteMovedToAnotherNotebook is a fan-out event with no correlation
// token.
type NoteMovedToAnotherNotebook struct {
	NoteLocalID     string
	FromNotebookID  string
	ToNotebookID    string
}

// NoteTagListChanged is a fan-out event with no correlation token.
type NoteTagListChanged struct {
	NoteLocalID     string
	PreviousTagIDs  []string
	NewTagIDs       []string
}

// ExpungeNotelessTagsFromLinkedNotebooksComplete is a fan-out event
// with no correlation token.
type ExpungeNotelessTagsFromLinkedNotebooksComplete struct {
	LinkedNotebookGUID string
	ExpungedTagIDs     []string
}

// request is the internal envelope the worker goroutine drains;
// fn runs on the worker and its result becomes the Completion.
type request struct {
	op    string
	token Token
	fn    func() (interface{}, error)
}

// Facade serializes every call onto one worker goroutine so the
// (not internally parallel) storage engine is driven by at most one
// in-flight mutation at a time.
type Facade struct {
	engine *storage.Engine
	caches *cache.Caches
	log    zerolog.Logger

	requests chan request
	done     chan struct{}

	completions chan Completion
	fanOut      chan interface{}
}

// New starts the façade's single worker goroutine. caches may be nil,
// in which case every find falls through to the storage engine on
// every call; callers that want the consult-before-find/invalidate-
// on-update-begin behavior pass the caches built by cache.New.
func New(engine *storage.Engine, caches *cache.Caches, log zerolog.Logger) *Facade {
	f := &Facade{
		engine:      engine,
		caches:      caches,
		log:         log.With().Str("component", "facade").Logger(),
		requests:    make(chan request, 64),
		done:        make(chan struct{}),
		completions: make(chan Completion, 64),
		fanOut:      make(chan interface{}, 64),
	}
	go f.run()
	return f
}

// Completions returns the channel of <op>Complete/<op>Failed
// messages. Callers whose correlation token is no longer in their
// outstanding-request set simply drop the message.
func (f *Facade) Completions() <-chan Completion { return f.completions }

// FanOut returns the channel of token-less fan-out events:
// NoteMovedToAnotherNotebook, NoteTagListChanged,
// ExpungeNotelessTagsFromLinkedNotebooksComplete.
func (f *Facade) FanOut() <-chan interface{} { return f.fanOut }

// Close stops the worker goroutine once the queue drains.
func (f *Facade) Close() {
	close(f.requests)
	<-f.done
}

func (f *Facade) run() {
	defer close(f.done)
	for req := range f.requests {
		result, err := req.fn()
		f.log.Debug().Str("op", req.op).Str("token", string(req.token)).Bool("failed", err != nil).Msg("storage op complete")
		f.completions <- Completion{Op: req.op, Token: req.token, Result: result, Err: err}
	}
}

func (f *Facade) submit(op string, token Token, fn func() (interface{}, error)) {
	f.requests <- request{op: op, token: token, fn: fn}
}

func (f *Facade) emit(event interface{}) {
	f.fanOut <- event
}

// AddNotebook issues an AddNotebook request and populates the
// notebook cache with the newly stored row on success.
func (f *Facade) AddNotebook(token Token, n *types.Notebook) {
	f.submit("AddNotebook", token, func() (interface{}, error) {
		err := f.engine.AddNotebook(n)
		if err == nil && f.caches != nil {
			f.caches.Notebooks.Put(n.LocalID, n)
		}
		return n, err
	})
}

// FindNotebook issues a FindNotebook-by-local-id request, consulting
// the notebook cache before it falls through to the storage engine.
func (f *Facade) FindNotebook(token Token, localID string) {
	if f.caches != nil {
		if n, ok := f.caches.Notebooks.Get(localID); ok {
			f.submit("FindNotebook", token, func() (interface{}, error) { return n, nil })
			return
		}
	}
	f.submit("FindNotebook", token, func() (interface{}, error) {
		n, err := f.engine.FindNotebookByLocalID(localID)
		if err == nil && f.caches != nil {
			f.caches.Notebooks.Put(localID, n)
		}
		return n, err
	})
}

// UpdateNotebook issues an UpdateNotebook request. The cache entry is
// invalidated before the write lands so a read already in flight
// cannot repopulate it with the value about to become stale, then
// repopulated with the updated row on success.
func (f *Facade) UpdateNotebook(token Token, n *types.Notebook) {
	if f.caches != nil {
		f.caches.Notebooks.Invalidate(n.LocalID)
	}
	f.submit("UpdateNotebook", token, func() (interface{}, error) {
		err := f.engine.UpdateNotebook(n)
		if err == nil && f.caches != nil {
			f.caches.Notebooks.Put(n.LocalID, n)
		}
		return n, err
	})
}

// ExpungeNotebook issues an ExpungeNotebook request and drops the
// cache entry up front.
func (f *Facade) ExpungeNotebook(token Token, localID string) {
	if f.caches != nil {
		f.caches.Notebooks.Invalidate(localID)
	}
	f.submit("ExpungeNotebook", token, func() (interface{}, error) {
		return localID, f.engine.ExpungeNotebook(localID)
	})
}

// ListNotebooks issues a ListNotebooks request.
func (f *Facade) ListNotebooks(token Token, order types.NotebookOrder, opts types.ListOptions) {
	f.submit("ListNotebooks", token, func() (interface{}, error) {
		return f.engine.ListNotebooks(order, opts)
	})
}

// GetNotebookCount issues a GetNotebookCount request.
func (f *Facade) GetNotebookCount(token Token, scope types.Scope) {
	f.submit("GetNotebookCount", token, func() (interface{}, error) {
		return f.engine.GetNotebookCount(scope)
	})
}

// AddTag issues an AddTag request and populates the tag cache on
// success.
func (f *Facade) AddTag(token Token, t *types.Tag) {
	f.submit("AddTag", token, func() (interface{}, error) {
		err := f.engine.AddTag(t)
		if err == nil && f.caches != nil {
			f.caches.Tags.Put(t.LocalID, t)
		}
		return t, err
	})
}

// FindTag issues a FindTag-by-local-id request, consulting the tag
// cache first.
func (f *Facade) FindTag(token Token, localID string) {
	if f.caches != nil {
		if t, ok := f.caches.Tags.Get(localID); ok {
			f.submit("FindTag", token, func() (interface{}, error) { return t, nil })
			return
		}
	}
	f.submit("FindTag", token, func() (interface{}, error) {
		t, err := f.engine.FindTagByLocalID(localID)
		if err == nil && f.caches != nil {
			f.caches.Tags.Put(localID, t)
		}
		return t, err
	})
}

// UpdateTag issues an UpdateTag request, invalidating the cache entry
// at begin-of-update and repopulating it once the write lands.
func (f *Facade) UpdateTag(token Token, t *types.Tag) {
	if f.caches != nil {
		f.caches.Tags.Invalidate(t.LocalID)
	}
	f.submit("UpdateTag", token, func() (interface{}, error) {
		err := f.engine.UpdateTag(t)
		if err == nil && f.caches != nil {
			f.caches.Tags.Put(t.LocalID, t)
		}
		return t, err
	})
}

// ExpungeTag issues an ExpungeTag request. localID is dropped from the
// cache up front; once the expunge succeeds every expunged id (the tag
// and its cascaded descendants) is dropped as well and returned as the
// completion's Result. No fan-out event is emitted.
func (f *Facade) ExpungeTag(token Token, localID string) {
	if f.caches != nil {
		f.caches.Tags.Invalidate(localID)
	}
	f.submit("ExpungeTag", token, func() (interface{}, error) {
		expunged, err := f.engine.ExpungeTag(localID)
		if err == nil && f.caches != nil {
			for _, id := range expunged {
				f.caches.Tags.Invalidate(id)
			}
		}
		return expunged, err
	})
}

// ListTags issues a ListTags request.
func (f *Facade) ListTags(token Token, order types.TagOrder, opts types.ListOptions) {
	f.submit("ListTags", token, func() (interface{}, error) {
		return f.engine.ListTags(order, opts)
	})
}

// GetTagCount issues a GetTagCount request.
func (f *Facade) GetTagCount(token Token, scope types.Scope, opts types.CountOptions) {
	f.submit("GetTagCount", token, func() (interface{}, error) {
		return f.engine.GetTagCount(scope, opts)
	})
}

// AddSavedSearch issues an AddSavedSearch request and populates the
// saved-search cache on success.
func (f *Facade) AddSavedSearch(token Token, s *types.SavedSearch) {
	f.submit("AddSavedSearch", token, func() (interface{}, error) {
		err := f.engine.AddSavedSearch(s)
		if err == nil && f.caches != nil {
			f.caches.SavedSearches.Put(s.LocalID, s)
		}
		return s, err
	})
}

// UpdateSavedSearch issues an UpdateSavedSearch request, invalidating
// the cache entry at begin-of-update and repopulating it once the
// write lands.
func (f *Facade) UpdateSavedSearch(token Token, s *types.SavedSearch) {
	if f.caches != nil {
		f.caches.SavedSearches.Invalidate(s.LocalID)
	}
	f.submit("UpdateSavedSearch", token, func() (interface{}, error) {
		err := f.engine.UpdateSavedSearch(s)
		if err == nil && f.caches != nil {
			f.caches.SavedSearches.Put(s.LocalID, s)
		}
		return s, err
	})
}

// ExpungeSavedSearch issues an ExpungeSavedSearch request, dropping
// the cache entry up front.
func (f *Facade) ExpungeSavedSearch(token Token, localID string) {
	if f.caches != nil {
		f.caches.SavedSearches.Invalidate(localID)
	}
	f.submit("ExpungeSavedSearch", token, func() (interface{}, error) {
		return localID, f.engine.ExpungeSavedSearch(localID)
	})
}

// ListSavedSearches issues a ListSavedSearches request.
func (f *Facade) ListSavedSearches(token Token, order types.SavedSearchOrder, opts types.ListOptions) {
	f.submit("ListSavedSearches", token, func() (interface{}, error) {
		return f.engine.ListSavedSearches(order, opts)
	})
}

// AddNote issues an AddNote request and populates the note cache on
// success.
func (f *Facade) AddNote(token Token, n *types.Note) {
	f.submit("AddNote", token, func() (interface{}, error) {
		err := f.engine.AddNote(n)
		if err == nil && f.caches != nil {
			f.caches.Notes.Put(n.LocalID, n)
		}
		return n, err
	})
}

// FindNote issues a FindNote-by-local-id request, consulting the
// note cache first.
func (f *Facade) FindNote(token Token, localID string) {
	if f.caches != nil {
		if n, ok := f.caches.Notes.Get(localID); ok {
			f.submit("FindNote", token, func() (interface{}, error) { return n, nil })
			return
		}
	}
	f.submit("FindNote", token, func() (interface{}, error) {
		n, err := f.engine.FindNoteByLocalID(localID)
		if err == nil && f.caches != nil {
			f.caches.Notes.Put(localID, n)
		}
		return n, err
	})
}

// UpdateNote issues an UpdateNote request. On success it fans out
// noteMovedToAnotherNotebook (when previousNotebookLocalID differs
// from n.NotebookLocalID) and noteTagListChanged (when the tag set
// changed).
func (f *Facade) UpdateNote(token Token, n *types.Note, previousNotebookLocalID string) {
	if f.caches != nil {
		f.caches.Notes.Invalidate(n.LocalID)
	}
	f.submit("UpdateNote", token, func() (interface{}, error) {
		previousTagIDs, err := f.engine.UpdateNote(n)
		if err != nil {
			return n, err
		}
		if f.caches != nil {
			f.caches.Notes.Put(n.LocalID, n)
		}
		if previousNotebookLocalID != "" && previousNotebookLocalID != n.NotebookLocalID {
			f.emit(NoteMovedToAnotherNotebook{
				NoteLocalID:    n.LocalID,
				FromNotebookID: previousNotebookLocalID,
				ToNotebookID:   n.NotebookLocalID,
			})
		}
		if !stringSlicesEqual(previousTagIDs, n.TagLocalIDs) {
			f.emit(NoteTagListChanged{
				NoteLocalID:    n.LocalID,
				PreviousTagIDs: previousTagIDs,
				NewTagIDs:      n.TagLocalIDs,
			})
		}
		return n, nil
	})
}

// ExpungeNote issues an ExpungeNote request, dropping the cache entry
// up front.
func (f *Facade) ExpungeNote(token Token, localID string) {
	if f.caches != nil {
		f.caches.Notes.Invalidate(localID)
	}
	f.submit("ExpungeNote", token, func() (interface{}, error) {
		return localID, f.engine.ExpungeNote(localID)
	})
}

// ListNotes issues a ListNotes request.
func (f *Facade) ListNotes(token Token, order types.NoteOrder, opts types.ListOptions) {
	f.submit("ListNotes", token, func() (interface{}, error) {
		return f.engine.ListNotes(order, opts)
	})
}

// GetNoteCount issues a GetNoteCount request.
func (f *Facade) GetNoteCount(token Token, notebookLocalID string, opts types.CountOptions) {
	f.submit("GetNoteCount", token, func() (interface{}, error) {
		return f.engine.GetNoteCount(notebookLocalID, opts)
	})
}

// LinkTagWithNote issues a LinkTagWithNote request and fans out
// noteTagListChanged.
func (f *Facade) LinkTagWithNote(token Token, noteLocalID, tagLocalID string, previousTagIDs []string) {
	if f.caches != nil {
		f.caches.Notes.Invalidate(noteLocalID)
	}
	f.submit("LinkTagWithNote", token, func() (interface{}, error) {
		err := f.engine.LinkTagWithNote(noteLocalID, tagLocalID)
		if err == nil {
			f.emit(NoteTagListChanged{
				NoteLocalID:    noteLocalID,
				PreviousTagIDs: previousTagIDs,
				NewTagIDs:      append(append([]string{}, previousTagIDs...), tagLocalID),
			})
		}
		return struct{ NoteLocalID, TagLocalID string }{noteLocalID, tagLocalID}, err
	})
}

// UnlinkTagWithNote issues an UnlinkTagWithNote request.
func (f *Facade) UnlinkTagWithNote(token Token, noteLocalID, tagLocalID string, previousTagIDs, newTagIDs []string) {
	if f.caches != nil {
		f.caches.Notes.Invalidate(noteLocalID)
	}
	f.submit("UnlinkTagWithNote", token, func() (interface{}, error) {
		err := f.engine.UnlinkTagWithNote(noteLocalID, tagLocalID)
		if err == nil {
			f.emit(NoteTagListChanged{NoteLocalID: noteLocalID, PreviousTagIDs: previousTagIDs, NewTagIDs: newTagIDs})
		}
		return struct{ NoteLocalID, TagLocalID string }{noteLocalID, tagLocalID}, err
	})
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
