package types

import "strings"

const (
	TagNameMinLength = 1
	TagNameMaxLength = 100
)

// Tag is a forest node: ParentLocalID is empty for a root tag within
// its scope.
type Tag struct {
	LocalID       string
	GUID          string
	USN           int32
	Name          string
	ParentLocalID string

	LinkedNotebookGUID string

	DeletionTimestamp *int64
	Active            bool

	IsDirty     bool
	IsLocal     bool
	IsFavorited bool
}

// Scope returns the uniqueness/tree scope this tag belongs to.
func (t *Tag) Scope() Scope { return Scope{LinkedNotebookGUID: t.LinkedNotebookGUID} }

// Validate checks length and trimming invariants; parent resolution
// and cycle detection require the full tag set and are checked by the
// tag model when it reparents a tag. The storage engine stores
// ParentLocalID without resolving it.
func (t *Tag) Validate() error {
	trimmed := strings.TrimSpace(t.Name)
	if trimmed != t.Name {
		return NewError(KindInvalidInput, "Tag.Validate", "tag name must be trimmed", nil)
	}
	if len(trimmed) < TagNameMinLength || len(trimmed) > TagNameMaxLength {
		return NewError(KindInvalidInput, "Tag.Validate", "tag name length out of bounds", nil)
	}
	if t.LocalID == "" {
		return NewError(KindInvalidInput, "Tag.Validate", "local id must not be empty", nil)
	}
	if t.ParentLocalID != "" && t.ParentLocalID == t.LocalID {
		return NewError(KindInvalidInput, "Tag.Validate", "tag cannot be its own parent", nil)
	}
	return nil
}
