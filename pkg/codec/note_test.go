package codec

import (
	"testing"

	"github.com/notarium/core/pkg/types"
	"github.com/stretchr/testify/require"
)

func noteAttributesForMask(mask int) *types.NoteAttributes {
	a := &types.NoteAttributes{}
	if mask&(1<<0) != 0 {
		a.SubjectDate = i64Ptr(1400000000000)
	}
	if mask&(1<<1) != 0 {
		a.Latitude = f64Ptr(37.7749)
	}
	if mask&(1<<2) != 0 {
		a.Longitude = f64Ptr(-122.4194)
	}
	if mask&(1<<3) != 0 {
		a.Altitude = f64Ptr(15.5)
	}
	if mask&(1<<4) != 0 {
		a.Author = strPtr("author")
	}
	if mask&(1<<5) != 0 {
		a.Source = strPtr("mobile.android")
	}
	if mask&(1<<6) != 0 {
		a.SourceURL = strPtr("https://example.com")
	}
	if mask&(1<<7) != 0 {
		a.SourceApplication = strPtr("evernote.mac")
	}
	if mask&(1<<8) != 0 {
		a.ShareDate = i64Ptr(1400000001000)
	}
	if mask&(1<<9) != 0 {
		a.ReminderOrder = i64Ptr(12345)
	}
	if mask&(1<<10) != 0 {
		a.ReminderDoneTime = i64Ptr(1400000002000)
	}
	if mask&(1<<11) != 0 {
		a.ReminderTime = i64Ptr(1400000003000)
	}
	if mask&(1<<12) != 0 {
		a.PlaceName = strPtr("San Francisco")
	}
	if mask&(1<<13) != 0 {
		a.ContentClass = strPtr("evernote.food.meal")
	}
	if mask&(1<<14) != 0 {
		a.LastEditedBy = strPtr("editor")
	}
	if mask&(1<<15) != 0 {
		v := int32(7)
		a.CreatorID = &v
	}
	if mask&(1<<16) != 0 {
		v := int32(8)
		a.LastEditorID = &v
	}
	if mask&(1<<17) != 0 {
		a.SharedWithBusiness = boolPtr(true)
	}
	if mask&(1<<18) != 0 {
		a.ConflictSourceNoteGUID = strPtr("guid-1234")
	}
	if mask&(1<<19) != 0 {
		v := int32(80)
		a.NoteTitleQuality = &v
	}
	return a
}

// TestNoteAttributesRoundTripExhaustive enumerates every combination
// of the 20 optional fields being present or absent: 2^20 (~1M) cases,
// the same exhaustive treatment TestResourceAttributesRoundTripExhaustive
// gives the smaller ResourceAttributes field set.
func TestNoteAttributesRoundTripExhaustive(t *testing.T) {
	for mask := 0; mask < (1 << noteAttributesFieldCount); mask++ {
		a := noteAttributesForMask(mask)
		encoded := EncodeNoteAttributes(a)
		decoded, err := DecodeNoteAttributes(encoded)
		require.NoError(t, err)
		require.Equal(t, a, decoded, "mask=%b", mask)

		reEncoded := EncodeNoteAttributes(decoded)
		require.Equal(t, encoded, reEncoded, "re-encode must be byte-identical, mask=%b", mask)
	}
}

func TestNoteAttributesApplicationData(t *testing.T) {
	a := &types.NoteAttributes{
		Author:                  strPtr("jane"),
		ApplicationDataKeysOnly: []string{"x", "y"},
		ApplicationDataFullMap:  map[string]string{"tag": "recipe"},
	}
	encoded := EncodeNoteAttributes(a)
	decoded, err := DecodeNoteAttributes(encoded)
	require.NoError(t, err)
	require.Equal(t, a, decoded)
}

func TestEncodeNoteAttributesNilIsEmpty(t *testing.T) {
	encoded := EncodeNoteAttributes(nil)
	decoded, err := DecodeNoteAttributes(encoded)
	require.NoError(t, err)
	require.Equal(t, &types.NoteAttributes{}, decoded)
}
