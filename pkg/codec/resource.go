package codec

import (
	"fmt"

	"github.com/notarium/core/pkg/types"
)

// resourceAttributesFieldCount is the number of individually optional
// fields declared on types.ResourceAttributes, in the order
// EncodeResourceAttributes writes them.
const resourceAttributesFieldCount = 10

// EncodeResourceAttributes serializes a using the same bitmask +
// ordered values scheme as EncodeUserAttributes.
func EncodeResourceAttributes(a *types.ResourceAttributes) []byte {
	if a == nil {
		a = &types.ResourceAttributes{}
	}
	w := &bitmaskWriter{}

	w.Bit(a.SourceURL != nil)
	w.Bit(a.Timestamp != nil)
	w.Bit(a.Latitude != nil)
	w.Bit(a.Longitude != nil)
	w.Bit(a.Altitude != nil)
	w.Bit(a.CameraMake != nil)
	w.Bit(a.CameraModel != nil)
	w.Bit(a.ClientWillIndex != nil)
	w.Bit(a.FileName != nil)
	w.Bit(a.Attachment != nil)

	if len(w.bits) != resourceAttributesFieldCount {
		panic(fmt.Sprintf("codec: ResourceAttributes field count drifted: got %d bits, want %d", len(w.bits), resourceAttributesFieldCount))
	}

	buf := getBuffer()
	defer putBuffer(buf)

	if a.SourceURL != nil {
		writeString(buf, *a.SourceURL)
	}
	if a.Timestamp != nil {
		writeInt64(buf, *a.Timestamp)
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
	if a.CameraMake != nil {
		writeString(buf, *a.CameraMake)
	}
	if a.CameraModel != nil {
		writeString(buf, *a.CameraModel)
	}
	if a.ClientWillIndex != nil {
		writeBool(buf, *a.ClientWillIndex)
	}
	if a.FileName != nil {
		writeString(buf, *a.FileName)
	}
	if a.Attachment != nil {
		writeBool(buf, *a.Attachment)
	}

	writeApplicationData(buf, a.ApplicationDataKeysOnly, a.ApplicationDataFullMap)

	out := w.Bytes()
	out = append(out, buf.Bytes()...)
	return out
}

// DecodeResourceAttributes reverses EncodeResourceAttributes.
func DecodeResourceAttributes(data []byte) (*types.ResourceAttributes, error) {
	r, err := newBitmaskReader(data, resourceAttributesFieldCount)
	if err != nil {
		return nil, fmt.Errorf("codec: decode ResourceAttributes: %w", err)
	}
	a := &types.ResourceAttributes{}

	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.SourceURL = &s
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		a.Timestamp = &v
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
		a.CameraMake = &s
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.CameraModel = &s
	}
	if r.Bit() {
		v, err := readBool(r.values)
		if err != nil {
			return nil, err
		}
		a.ClientWillIndex = &v
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.FileName = &s
	}
	if r.Bit() {
		v, err := readBool(r.values)
		if err != nil {
			return nil, err
		}
		a.Attachment = &v
	}

	keysOnly, fullMap, err := readApplicationData(r.values)
	if err != nil {
		return nil, err
	}
	a.ApplicationDataKeysOnly = keysOnly
	a.ApplicationDataFullMap = fullMap

	return a, nil
}
