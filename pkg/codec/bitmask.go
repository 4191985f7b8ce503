// Package codec implements the deterministic, bit-exact encode/decode
// of the optional-field-rich attribute blobs (UserAttributes,
// NoteAttributes, ResourceAttributes) for storage in opaque SQL
// columns. Re-encoding a decoded blob yields byte-identical output
// for the same logical value.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
)

// bitmaskWriter accumulates a sequence of presence bits and the bytes
// for each present field. Field count (and therefore bitmask width)
// is derived from how many times Bit is called, never hardcoded.
type bitmaskWriter struct {
	bits   []bool
	values bytes.Buffer
}

func (w *bitmaskWriter) Bit(present bool) {
	w.bits = append(w.bits, present)
}

// Bytes assembles the final encoding: bitmask bytes (ceil(n/8)) then
// the values buffer.
func (w *bitmaskWriter) Bytes() []byte {
	mask := make([]byte, (len(w.bits)+7)/8)
	for i, present := range w.bits {
		if present {
			mask[i/8] |= 1 << uint(i%8)
		}
	}
	out := make([]byte, 0, len(mask)+w.values.Len())
	out = append(out, mask...)
	out = append(out, w.values.Bytes()...)
	return out
}

// bitmaskReader is the Decode-side counterpart. fieldCount must match
// the number of Bit calls made when the blob was encoded; it is
// supplied by each struct's field-count constant, which the encoder
// checks against its Bit calls.
type bitmaskReader struct {
	mask   []byte
	index  int
	values *bytes.Reader
}

func newBitmaskReader(data []byte, fieldCount int) (*bitmaskReader, error) {
	maskLen := (fieldCount + 7) / 8
	if len(data) < maskLen {
		return nil, fmt.Errorf("codec: truncated bitmask: need %d bytes, have %d", maskLen, len(data))
	}
	return &bitmaskReader{
		mask:   data[:maskLen],
		values: bytes.NewReader(data[maskLen:]),
	}, nil
}

// Bit returns whether the next field in declaration order was present
// when encoded, and advances the cursor.
func (r *bitmaskReader) Bit() bool {
	i := r.index
	r.index++
	present := r.mask[i/8]&(1<<uint(i%8)) != 0
	return present
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeInt64(buf *bytes.Buffer, v int64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	buf.Write(tmp[:])
}

func writeFloat64(buf *bytes.Buffer, v float64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], math.Float64bits(v))
	buf.Write(tmp[:])
}

func writeBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func writeString(buf *bytes.Buffer, v string) {
	writeUint32(buf, uint32(len(v)))
	buf.WriteString(v)
}

func writeStringSlice(buf *bytes.Buffer, v []string) {
	writeUint32(buf, uint32(len(v)))
	for _, s := range v {
		writeString(buf, s)
	}
}

func readUint32(r io.Reader) (uint32, error) {
	var tmp [4]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(tmp[:]), nil
}

func readInt64(r io.Reader) (int64, error) {
	var tmp [8]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(tmp[:])), nil
}

func readFloat64(r io.Reader) (float64, error) {
	var tmp [8]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(tmp[:])), nil
}

func readBool(r io.Reader) (bool, error) {
	var tmp [1]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return false, err
	}
	return tmp[0] != 0, nil
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readStringSlice(r io.Reader) ([]string, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// writeApplicationData writes the key-only set followed by the full
// key/value map, per the application-data wire format shared by every
// attribute blob.
func writeApplicationData(buf *bytes.Buffer, keysOnly []string, fullMap map[string]string) {
	writeUint32(buf, uint32(len(keysOnly)))
	for _, k := range keysOnly {
		writeString(buf, k)
	}
	writeUint32(buf, uint32(len(fullMap)))
	keys := make([]string, 0, len(fullMap))
	for k := range fullMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeString(buf, k)
		writeString(buf, fullMap[k])
	}
}

func readApplicationData(r io.Reader) ([]string, map[string]string, error) {
	keysN, err := readUint32(r)
	if err != nil {
		return nil, nil, err
	}
	var keysOnly []string
	if keysN > 0 {
		keysOnly = make([]string, 0, keysN)
	}
	for i := uint32(0); i < keysN; i++ {
		k, err := readString(r)
		if err != nil {
			return nil, nil, err
		}
		keysOnly = append(keysOnly, k)
	}
	mapN, err := readUint32(r)
	if err != nil {
		return nil, nil, err
	}
	var fullMap map[string]string
	if mapN > 0 {
		fullMap = make(map[string]string, mapN)
	}
	for i := uint32(0); i < mapN; i++ {
		k, err := readString(r)
		if err != nil {
			return nil, nil, err
		}
		v, err := readString(r)
		if err != nil {
			return nil, nil, err
		}
		fullMap[k] = v
	}
	return keysOnly, fullMap, nil
}
