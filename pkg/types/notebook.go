package types

import "strings"

const (
	// NotebookNameMinLength and NotebookNameMaxLength bound notebook
	// and stack display names.
	NotebookNameMinLength = 1
	NotebookNameMaxLength = 100
)

// Notebook is a container of notes, optionally grouped into a stack
// and optionally mirrored from a linked notebook.
type Notebook struct {
	LocalID     string
	GUID        string // empty until synchronized
	USN         int32
	Name        string
	CreationTimestamp     int64
	ModificationTimestamp int64
	IsDefault   bool
	IsLastUsed  bool
	Stack       string // empty: not stacked

	Publishing    *NotebookPublishing
	Business      *BusinessNotebook
	Restrictions  *NotebookRestrictions
	SharedNotebooks []SharedNotebook

	LinkedNotebookGUID string // empty: personal notebook

	IsDirty     bool
	IsLocal     bool
	IsFavorited bool
}

// Scope returns the uniqueness/tree scope this notebook belongs to.
func (n *Notebook) Scope() Scope { return Scope{LinkedNotebookGUID: n.LinkedNotebookGUID} }

// Validate checks length and trimming invariants. Case-insensitive
// uniqueness within scope is enforced by the storage engine, which
// alone knows the full sibling set.
func (n *Notebook) Validate() error {
	trimmed := strings.TrimSpace(n.Name)
	if trimmed != n.Name {
		return NewError(KindInvalidInput, "Notebook.Validate", "notebook name must be trimmed", nil)
	}
	if len(trimmed) < NotebookNameMinLength || len(trimmed) > NotebookNameMaxLength {
		return NewError(KindInvalidInput, "Notebook.Validate", "notebook name length out of bounds", nil)
	}
	if n.LocalID == "" {
		return NewError(KindInvalidInput, "Notebook.Validate", "local id must not be empty", nil)
	}
	return nil
}

// NotebookPublishing holds the optional publish-to-web sub-record.
type NotebookPublishing struct {
	URI          string
	Order        int32
	Ascending    bool
	PublicDescription string
	IsPublic     bool
}

// BusinessNotebook holds the optional business-account sub-record.
type BusinessNotebook struct {
	Notebook         string
	Privilege        int32
	Recommended      bool
}

// NotebookRestrictions gates every mutating operation a notebook
// allows. All fields default false (most permissive) when nil.
type NotebookRestrictions struct {
	NoUpdateNotebook   bool
	NoExpungeNotebook  bool
	NoSetDefaultNotebook bool
	NoRenameNotebook   bool
	NoCreateNotes      bool
	NoUpdateNotes      bool
	NoExpungeNotes     bool
	NoShareNotes       bool
	NoEmailNotes       bool
	NoCreateTags       bool
	NoUpdateTags       bool
	NoExpungeTags      bool
	NoSetParentTag     bool
	NoCreateSharedNotebooks bool
}

// allows reports whether the restriction set permits the named
// operation; a nil receiver permits everything.
func (r *NotebookRestrictions) allows(denied bool) bool {
	if r == nil {
		return true
	}
	return !denied
}

func (r *NotebookRestrictions) CanUpdateNotebook() bool  { return r.allows(r != nil && r.NoUpdateNotebook) }
func (r *NotebookRestrictions) CanRenameNotebook() bool  { return r.allows(r != nil && r.NoRenameNotebook) }
func (r *NotebookRestrictions) CanExpungeNotebook() bool { return r.allows(r != nil && r.NoExpungeNotebook) }
func (r *NotebookRestrictions) CanCreateNotes() bool     { return r.allows(r != nil && r.NoCreateNotes) }
func (r *NotebookRestrictions) CanUpdateNotes() bool     { return r.allows(r != nil && r.NoUpdateNotes) }
func (r *NotebookRestrictions) CanExpungeNotes() bool    { return r.allows(r != nil && r.NoExpungeNotes) }
func (r *NotebookRestrictions) CanCreateTags() bool      { return r.allows(r != nil && r.NoCreateTags) }
func (r *NotebookRestrictions) CanUpdateTags() bool      { return r.allows(r != nil && r.NoUpdateTags) }
func (r *NotebookRestrictions) CanExpungeTags() bool     { return r.allows(r != nil && r.NoExpungeTags) }
func (r *NotebookRestrictions) CanSetParentTag() bool    { return r.allows(r != nil && r.NoSetParentTag) }

// SharedNotebook records one invitee on a notebook.
type SharedNotebook struct {
	ID              int64
	UserID          int64
	NotebookGUID    string
	Email           string
	CreationTimestamp     int64
	ModificationTimestamp int64
	ShareKey        string
	Username        string
	Privilege       int32
	AllowPreview    bool
	RecipientReminderNotifyEmail bool
	RecipientReminderNotifyInApp bool
}
