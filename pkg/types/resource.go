package types

import (
	"crypto/md5"
	"fmt"
)

// Resource is an attachment (image, audio, PDF, ...) owned by exactly
// one note.
type Resource struct {
	LocalID string
	GUID    string
	USN     int32

	NoteLocalID string
	MimeType    string
	Width       int16
	Height      int16

	DataBody []byte
	DataSize int32
	DataHash []byte

	RecognitionBody []byte
	RecognitionSize int32
	RecognitionHash []byte

	AlternateDataBody []byte
	AlternateDataSize int32
	AlternateDataHash []byte

	Attributes *ResourceAttributes
}

// Validate checks that size/hash are consistent with body, computing
// them from DataBody when the caller left them zero.
func (r *Resource) Validate() error {
	if r.LocalID == "" {
		return NewError(KindInvalidInput, "Resource.Validate", "local id must not be empty", nil)
	}
	if r.NoteLocalID == "" {
		return NewError(KindInvalidInput, "Resource.Validate", "resource must reference a note", nil)
	}
	if r.DataBody != nil {
		if r.DataSize != 0 && int(r.DataSize) != len(r.DataBody) {
			return NewError(KindInvalidInput, "Resource.Validate", "data size does not match body length", nil)
		}
		r.DataSize = int32(len(r.DataBody))
		if len(r.DataHash) == 0 {
			r.DataHash = ContentHash(r.DataBody)
		}
	}
	if r.AlternateDataBody != nil {
		r.AlternateDataSize = int32(len(r.AlternateDataBody))
		if len(r.AlternateDataHash) == 0 {
			r.AlternateDataHash = ContentHash(r.AlternateDataBody)
		}
	}
	if r.RecognitionBody != nil {
		r.RecognitionSize = int32(len(r.RecognitionBody))
		if len(r.RecognitionHash) == 0 {
			r.RecognitionHash = ContentHash(r.RecognitionBody)
		}
	}
	return nil
}

// ContentHash returns the content-addressed hash used for resource
// body deduplication and integrity checks.
func ContentHash(body []byte) []byte {
	sum := md5.Sum(body)
	return sum[:]
}

// ContentHashHex is a convenience formatter for diagnostics/logging.
func ContentHashHex(body []byte) string {
	return fmt.Sprintf("%x", ContentHash(body))
}

// ResourceAttributes is the optional-field-rich attribute blob
// attached to a resource.
type ResourceAttributes struct {
	SourceURL     *string
	Timestamp     *int64
	Latitude      *float64
	Longitude     *float64
	Altitude      *float64
	CameraMake    *string
	CameraModel   *string
	ClientWillIndex *bool
	FileName      *string
	Attachment    *bool

	ApplicationDataKeysOnly []string
	ApplicationDataFullMap  map[string]string
}
