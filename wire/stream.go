package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// AppendString appends a length-prefixed string: uvarint byte count, then
// the raw bytes.
func AppendString(into []byte, s string) []byte {
	into = binary.AppendUvarint(into, uint64(len(s)))
	return append(into, s...)
}

// AppendZigZag appends a signed integer as a zigzag-folded uvarint.
func AppendZigZag(into []byte, i int64) []byte {
	return binary.AppendUvarint(into, ZigZagInt64(i))
}

// Reader consumes a byte slice field by field. Returned byte slices alias
// the input; string reads copy.
type Reader struct {
	data []byte
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len is the number of unconsumed bytes.
func (r *Reader) Len() int {
	return len(r.data)
}

// Rest returns the unconsumed tail without consuming it.
func (r *Reader) Rest() []byte {
	return r.data
}

// Bytes consumes exactly n bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || n > len(r.data) {
		return nil, errors.Join(ErrIncomplete, fmt.Errorf("want %d bytes, have %d", n, len(r.data)))
	}
	b := r.data[:n]
	r.data = r.data[n:]
	return b, nil
}

// Uvarint consumes one unsigned varint.
func (r *Reader) Uvarint() (uint64, error) {
	u, n := binary.Uvarint(r.data)
	if n == 0 {
		return 0, ErrIncomplete
	}
	if n < 0 {
		return 0, errors.Join(ErrBadRecord, errors.New("uvarint overflow"))
	}
	r.data = r.data[n:]
	return u, nil
}

// ZigZag consumes one zigzag-folded signed varint.
func (r *Reader) ZigZag() (int64, error) {
	u, err := r.Uvarint()
	if err != nil {
		return 0, err
	}
	return ZagZigUint64(u), nil
}

// Uint64LE consumes a fixed 8-byte little-endian integer.
func (r *Reader) Uint64LE() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// String consumes a length-prefixed string written by AppendString.
func (r *Reader) String() (string, error) {
	n, err := r.Uvarint()
	if err != nil {
		return "", err
	}
	if n > uint64(len(r.data)) {
		return "", errors.Join(ErrIncomplete, fmt.Errorf("string of %d bytes, have %d", n, len(r.data)))
	}
	b, _ := r.Bytes(int(n))
	return string(b), nil
}

// Record consumes one TLV record of the given type and returns its body.
func (r *Reader) Record(lit byte) ([]byte, error) {
	body, rest, err := TakeWary(lit, r.data)
	if err != nil {
		return nil, err
	}
	r.data = rest
	return body, nil
}
