package codec

import (
	"testing"

	"github.com/notarium/core/pkg/types"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string    { return &s }
func i64Ptr(v int64) *int64      { return &v }
func f64Ptr(v float64) *float64  { return &v }
func boolPtr(v bool) *bool       { return &v }

// TestResourceAttributesRoundTripExhaustive enumerates every
// combination of the 10 optional fields being present or absent: 1024
// cases, cheap enough to run exhaustively.
func TestResourceAttributesRoundTripExhaustive(t *testing.T) {
	for mask := 0; mask < (1 << resourceAttributesFieldCount); mask++ {
		a := &types.ResourceAttributes{}
		if mask&(1<<0) != 0 {
			a.SourceURL = strPtr("https://example.com/a.png")
		}
		if mask&(1<<1) != 0 {
			a.Timestamp = i64Ptr(1234567890)
		}
		if mask&(1<<2) != 0 {
			a.Latitude = f64Ptr(37.7749)
		}
		if mask&(1<<3) != 0 {
			a.Longitude = f64Ptr(-122.4194)
		}
		if mask&(1<<4) != 0 {
			a.Altitude = f64Ptr(15.5)
		}
		if mask&(1<<5) != 0 {
			a.CameraMake = strPtr("Acme")
		}
		if mask&(1<<6) != 0 {
			a.CameraModel = strPtr("Model X")
		}
		if mask&(1<<7) != 0 {
			a.ClientWillIndex = boolPtr(true)
		}
		if mask&(1<<8) != 0 {
			a.FileName = strPtr("photo.png")
		}
		if mask&(1<<9) != 0 {
			a.Attachment = boolPtr(false)
		}

		encoded := EncodeResourceAttributes(a)
		decoded, err := DecodeResourceAttributes(encoded)
		require.NoError(t, err)
		require.Equal(t, a, decoded, "mask=%b", mask)

		reEncoded := EncodeResourceAttributes(decoded)
		require.Equal(t, encoded, reEncoded, "re-encode must be byte-identical, mask=%b", mask)
	}
}

func TestResourceAttributesApplicationData(t *testing.T) {
	a := &types.ResourceAttributes{
		FileName:                strPtr("doc.pdf"),
		ApplicationDataKeysOnly: []string{"zeta", "alpha", "mu"},
		ApplicationDataFullMap:  map[string]string{"b": "2", "a": "1"},
	}
	encoded := EncodeResourceAttributes(a)
	decoded, err := DecodeResourceAttributes(encoded)
	require.NoError(t, err)
	require.Equal(t, a.ApplicationDataKeysOnly, decoded.ApplicationDataKeysOnly)
	require.Equal(t, a.ApplicationDataFullMap, decoded.ApplicationDataFullMap)

	reEncoded := EncodeResourceAttributes(decoded)
	require.Equal(t, encoded, reEncoded)
}

func TestDecodeResourceAttributesTruncated(t *testing.T) {
	_, err := DecodeResourceAttributes([]byte{0x01})
	require.Error(t, err)
}
