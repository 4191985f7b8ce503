package codec

import (
	"fmt"

	"github.com/notarium/core/pkg/types"
)

// noteAttributesFieldCount is the number of individually optional
// fields declared on types.NoteAttributes, in the order
// EncodeNoteAttributes writes them.
const noteAttributesFieldCount = 20

// EncodeNoteAttributes serializes a using the same bitmask + ordered
// values scheme as EncodeUserAttributes.
func EncodeNoteAttributes(a *types.NoteAttributes) []byte {
	if a == nil {
		a = &types.NoteAttributes{}
	}
	w := &bitmaskWriter{}

	w.Bit(a.SubjectDate != nil)
	w.Bit(a.Latitude != nil)
	w.Bit(a.Longitude != nil)
	w.Bit(a.Altitude != nil)
	w.Bit(a.Author != nil)
	w.Bit(a.Source != nil)
	w.Bit(a.SourceURL != nil)
	w.Bit(a.SourceApplication != nil)
	w.Bit(a.ShareDate != nil)
	w.Bit(a.ReminderOrder != nil)
	w.Bit(a.ReminderDoneTime != nil)
	w.Bit(a.ReminderTime != nil)
	w.Bit(a.PlaceName != nil)
	w.Bit(a.ContentClass != nil)
	w.Bit(a.LastEditedBy != nil)
	w.Bit(a.CreatorID != nil)
	w.Bit(a.LastEditorID != nil)
	w.Bit(a.SharedWithBusiness != nil)
	w.Bit(a.ConflictSourceNoteGUID != nil)
	w.Bit(a.NoteTitleQuality != nil)

	if len(w.bits) != noteAttributesFieldCount {
		panic(fmt.Sprintf("codec: NoteAttributes field count drifted: got %d bits, want %d", len(w.bits), noteAttributesFieldCount))
	}

	buf := getBuffer()
	defer putBuffer(buf)

	if a.SubjectDate != nil {
		writeInt64(buf, *a.SubjectDate)
	}
	if a.Latitude != nil {
		writeFloat64(buf, *a.Latitude)
	}
	if a.Longitude != nil {
		writeFloat64(buf, *a.Longitude)
	}
	if a.Altitude != nil {
		writeFloat64(buf, *a.Altitude)
	}
	if a.Author != nil {
		writeString(buf, *a.Author)
	}
	if a.Source != nil {
		writeString(buf, *a.Source)
	}
	if a.SourceURL != nil {
		writeString(buf, *a.SourceURL)
	}
	if a.SourceApplication != nil {
		writeString(buf, *a.SourceApplication)
	}
	if a.ShareDate != nil {
		writeInt64(buf, *a.ShareDate)
	}
	if a.ReminderOrder != nil {
		writeInt64(buf, *a.ReminderOrder)
	}
	if a.ReminderDoneTime != nil {
		writeInt64(buf, *a.ReminderDoneTime)
	}
	if a.ReminderTime != nil {
		writeInt64(buf, *a.ReminderTime)
	}
	if a.PlaceName != nil {
		writeString(buf, *a.PlaceName)
	}
	if a.ContentClass != nil {
		writeString(buf, *a.ContentClass)
	}
	if a.LastEditedBy != nil {
		writeString(buf, *a.LastEditedBy)
	}
	if a.CreatorID != nil {
		writeInt64(buf, int64(*a.CreatorID))
	}
	if a.LastEditorID != nil {
		writeInt64(buf, int64(*a.LastEditorID))
	}
	if a.SharedWithBusiness != nil {
		writeBool(buf, *a.SharedWithBusiness)
	}
	if a.ConflictSourceNoteGUID != nil {
		writeString(buf, *a.ConflictSourceNoteGUID)
	}
	if a.NoteTitleQuality != nil {
		writeInt64(buf, int64(*a.NoteTitleQuality))
	}

	writeApplicationData(buf, a.ApplicationDataKeysOnly, a.ApplicationDataFullMap)

	out := w.Bytes()
	out = append(out, buf.Bytes()...)
	return out
}

// DecodeNoteAttributes reverses EncodeNoteAttributes.
func DecodeNoteAttributes(data []byte) (*types.NoteAttributes, error) {
	r, err := newBitmaskReader(data, noteAttributesFieldCount)
	if err != nil {
		return nil, fmt.Errorf("codec: decode NoteAttributes: %w", err)
	}
	a := &types.NoteAttributes{}

	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		a.SubjectDate = &v
	}
	if r.Bit() {
		v, err := readFloat64(r.values)
		if err != nil {
			return nil, err
		}
		a.Latitude = &v
	}
	if r.Bit() {
		v, err := readFloat64(r.values)
		if err != nil {
			return nil, err
		}
		a.Longitude = &v
	}
	if r.Bit() {
		v, err := readFloat64(r.values)
		if err != nil {
			return nil, err
		}
		a.Altitude = &v
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.Author = &s
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.Source = &s
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.SourceURL = &s
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.SourceApplication = &s
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		a.ShareDate = &v
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		a.ReminderOrder = &v
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		a.ReminderDoneTime = &v
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		a.ReminderTime = &v
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.PlaceName = &s
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.ContentClass = &s
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.LastEditedBy = &s
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		v32 := int32(v)
		a.CreatorID = &v32
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		v32 := int32(v)
		a.LastEditorID = &v32
	}
	if r.Bit() {
		v, err := readBool(r.values)
		if err != nil {
			return nil, err
		}
		a.SharedWithBusiness = &v
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.ConflictSourceNoteGUID = &s
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		v32 := int32(v)
		a.NoteTitleQuality = &v32
	}

	keysOnly, fullMap, err := readApplicationData(r.values)
	if err != nil {
		return nil, err
	}
	a.ApplicationDataKeysOnly = keysOnly
	a.ApplicationDataFullMap = fullMap

	return a, nil
}
