package types

// LinkedNotebook is a reference to a notebook shared by another
// account, keyed by guid (it has no local-only existence: a linked
// notebook is meaningless until synchronized).
type LinkedNotebook struct {
	GUID           string
	USN            int32
	ShareName      string
	Username       string
	ShardID        string
	ShareKey       string
	URI            string
	NoteStoreURL   string
	WebAPIURLPrefix string
	Stack          string
	BusinessID     int32
}

// Validate checks the minimal invariant the storage engine requires.
func (l *LinkedNotebook) Validate() error {
	if l.GUID == "" {
		return NewError(KindInvalidInput, "LinkedNotebook.Validate", "guid must not be empty", nil)
	}
	return nil
}
