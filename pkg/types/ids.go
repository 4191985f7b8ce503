package types

import "github.com/google/uuid"

// NewLocalID returns an opaque, process-wide unique local id for a
// newly created entity. Local ids are never reused.
func NewLocalID() string {
	return uuid.NewString()
}

// Scope identifies the namespace in which notebook and tag name
// uniqueness and tree membership are evaluated: either the user's own
// account or a specific linked notebook.
type Scope struct {
	// LinkedNotebookGUID is empty for the personal scope.
	LinkedNotebookGUID string
}

// IsPersonal reports whether the scope is the user's own account.
func (s Scope) IsPersonal() bool { return s.LinkedNotebookGUID == "" }

// PersonalScope is the scope of the user's own account.
func PersonalScope() Scope { return Scope{} }

// LinkedScope is the scope of a specific linked notebook.
func LinkedScope(guid string) Scope { return Scope{LinkedNotebookGUID: guid} }
