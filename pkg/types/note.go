package types

import (
	"regexp"
	"strings"

	"github.com/orsinium-labs/stopwords"
)

const (
	NoteTitleMaxLength = 255
)

// Note is the primary content-bearing entity. Content is an
// XML-like document; PlainText and ListOfWords are derived
// projections computed by ApplyDerivedProjections and persisted alongside
// the document so the storage engine can support LIKE/MATCH search
// without re-parsing content on every query. There is no full-text
// index beyond these projections.
type Note struct {
	LocalID     string
	GUID        string
	USN         int32
	Title       string
	Content     string
	PlainText   string
	ListOfWords []string

	CreationTimestamp     int64
	ModificationTimestamp int64
	DeletionTimestamp     *int64
	Active                bool

	NotebookLocalID string
	TagLocalIDs     []string // ordered
	Resources       []Resource

	Attributes *NoteAttributes
	Thumbnail  []byte

	IsDirty     bool
	IsLocal     bool
	IsFavorited bool
}

// Validate checks the invariants enforceable without consulting the
// storage engine (notebook existence is a storage-layer invariant).
func (n *Note) Validate() error {
	if n.LocalID == "" {
		return NewError(KindInvalidInput, "Note.Validate", "local id must not be empty", nil)
	}
	if len(n.Title) > NoteTitleMaxLength {
		return NewError(KindInvalidInput, "Note.Validate", "title exceeds maximum length", nil)
	}
	if n.NotebookLocalID == "" {
		return NewError(KindInvalidInput, "Note.Validate", "note must reference a notebook", nil)
	}
	return nil
}

var tagStripper = regexp.MustCompile(`<[^>]*>`)
var wordSplitter = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

var englishStopwords = stopwords.MustGet("en")

// DerivePlainText strips the note's XML-like markup down to plain
// text, mirroring how the storage engine keeps a searchable
// projection of Content.
func DerivePlainText(content string) string {
	return strings.TrimSpace(tagStripper.ReplaceAllString(content, " "))
}

// DeriveListOfWords tokenizes plainText into lowercase words, dropping
// common English stopwords so the projection used for LIKE/MATCH
// filtering and "words in note" counts stays meaningful.
func DeriveListOfWords(plainText string) []string {
	tokens := wordSplitter.Split(plainText, -1)
	words := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		lower := strings.ToLower(tok)
		if englishStopwords.Contains(lower) {
			continue
		}
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		words = append(words, lower)
	}
	return words
}

// ApplyDerivedProjections recomputes PlainText and ListOfWords from
// Content. Callers invoke this before Add/Update so the storage
// engine never has to parse markup itself.
func (n *Note) ApplyDerivedProjections() {
	n.PlainText = DerivePlainText(n.Content)
	n.ListOfWords = DeriveListOfWords(n.PlainText)
}

// NoteAttributes is the optional-field-rich attribute blob attached to
// a note; persisted via the codec package.
type NoteAttributes struct {
	SubjectDate           *int64
	Latitude              *float64
	Longitude             *float64
	Altitude              *float64
	Author                *string
	Source                *string
	SourceURL             *string
	SourceApplication     *string
	ShareDate             *int64
	ReminderOrder         *int64
	ReminderDoneTime      *int64
	ReminderTime          *int64
	PlaceName             *string
	ContentClass          *string
	LastEditedBy          *string
	CreatorID             *int32
	LastEditorID          *int32
	SharedWithBusiness    *bool
	ConflictSourceNoteGUID *string
	NoteTitleQuality      *int32

	ApplicationDataKeysOnly []string
	ApplicationDataFullMap  map[string]string
}
