package types

// Direction controls ascending vs. descending ordering for list
// operations.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// NotebookOrder enumerates the fixed set of total orderings the
// storage engine supports for notebooks. Every ordering appends local
// id as a final tiebreaker so paged listings are stable.
type NotebookOrder int

const (
	NotebookOrderNone NotebookOrder = iota
	NotebookOrderByUpdateSequenceNumber
	NotebookOrderByName
	NotebookOrderByCreationTimestamp
	NotebookOrderByModificationTimestamp
)

// NoteOrder enumerates the fixed set of total orderings for notes.
type NoteOrder int

const (
	NoteOrderNone NoteOrder = iota
	NoteOrderByCreationTimestamp
	NoteOrderByModificationTimestamp
	NoteOrderByTitle
	NoteOrderByUpdateSequenceNumber
)

// TagOrder enumerates the fixed set of total orderings for tags.
type TagOrder int

const (
	TagOrderNone TagOrder = iota
	TagOrderByName
	TagOrderByUpdateSequenceNumber
)

// SavedSearchOrder enumerates the fixed set of total orderings for
// saved searches.
type SavedSearchOrder int

const (
	SavedSearchOrderNone SavedSearchOrder = iota
	SavedSearchOrderByName
	SavedSearchOrderByUpdateSequenceNumber
)

// ListOptions bounds and orders a List{Entity} call. Limit == 0 means
// unbounded.
type ListOptions struct {
	Limit              int
	Offset             int
	Direction          Direction
	LinkedNotebookGUID string // empty: no linked-notebook filter
	// NotebookLocalID filters ListNotes to a single notebook. Empty
	// means no notebook filter.
	NotebookLocalID string
	// TagLocalID filters ListNotes to notes carrying this tag.
	TagLocalID string
}

// CountFlag is a bit in a CountOptions set.
type CountFlag uint8

const (
	CountIncludeNonDeleted CountFlag = 1 << iota
	CountIncludeDeleted
)

// CountOptions selects which rows a Get{Entity}Count call considers.
// The zero value means CountIncludeNonDeleted.
type CountOptions struct {
	Flags CountFlag
}

// Includes reports whether the option set has the given flag set,
// treating an empty set as CountIncludeNonDeleted.
func (o CountOptions) Includes(f CountFlag) bool {
	if o.Flags == 0 {
		return f == CountIncludeNonDeleted
	}
	return o.Flags&f != 0
}
