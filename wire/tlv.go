// Package wire implements the byte-level encoding used by the delta
// serializer: TLV record framing plus compact integer packing.
//
// A TLV record is a one-letter type, a length, and a body. Three header
// layouts exist, picked by body size:
//
//	tiny:  [ '0'+len ]                      bodies of 0..9 bytes, type erased
//	short: [ lowercase type, len:1 ]        bodies up to 255 bytes
//	long:  [ uppercase type, len:4 LE ]     bodies up to 2GB
//
// Record types are uppercase A..Z. Passing a lowercase type letter to the
// append functions permits the tiny layout for small bodies; an uppercase
// letter forbids it, which keeps the type readable on the wire.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const caseBit byte = 'a' - 'A'

var (
	// ErrIncomplete marks input that ends mid-record. The caller may retry
	// once more bytes arrive.
	ErrIncomplete = errors.New("wire: incomplete record")
	// ErrBadRecord marks input that cannot be a record at all.
	ErrBadRecord = errors.New("wire: bad record format")
)

// Records is a batch of encoded records, one per element.
type Records [][]byte

// TotalLen is the byte length of the batch when concatenated.
func (recs Records) TotalLen() (total int) {
	for _, r := range recs {
		total += len(r)
	}
	return
}

// ProbeHeader inspects the header at the start of data.
// lit is the canonical (uppercase) record type, '0' for the tiny layout,
// '-' for garbage, and 0 when data is too short to tell.
func ProbeHeader(data []byte) (lit byte, hdrlen, bodylen int) {
	if len(data) == 0 {
		return 0, 0, 0
	}
	switch b := data[0]; {
	case b >= '0' && b <= '9':
		return '0', 1, int(b - '0')
	case b >= 'a' && b <= 'z':
		if len(data) < 2 {
			return 0, 0, 0
		}
		return b - caseBit, 2, int(data[1])
	case b >= 'A' && b <= 'Z':
		if len(data) < 5 {
			return 0, 0, 0
		}
		l := binary.LittleEndian.Uint32(data[1:5])
		if l > 0x7fffffff {
			return '-', 0, 0
		}
		return b, 5, int(l)
	default:
		return '-', 0, 0
	}
}

// AppendHeader appends a record header for a body of bodylen bytes.
// A lowercase lit allows the tiny layout.
func AppendHeader(into []byte, lit byte, bodylen int) []byte {
	up := lit &^ caseBit
	if up < 'A' || up > 'Z' {
		panic("wire: record type must be A..Z")
	}
	switch {
	case bodylen < 10 && lit&caseBit != 0:
		return append(into, byte('0'+bodylen))
	case bodylen <= 0xff:
		return append(into, lit|caseBit, byte(bodylen))
	case bodylen <= 0x7fffffff:
		into = append(into, up)
		return binary.LittleEndian.AppendUint32(into, uint32(bodylen))
	default:
		panic("wire: oversized record")
	}
}

// Append appends one complete record framing the given body parts.
func Append(into []byte, lit byte, body ...[]byte) []byte {
	total := 0
	for _, b := range body {
		total += len(b)
	}
	into = AppendHeader(into, lit, total)
	for _, b := range body {
		into = append(into, b...)
	}
	return into
}

// Record encodes one complete record into a fresh buffer.
func Record(lit byte, body ...[]byte) []byte {
	total := 0
	for _, b := range body {
		total += len(b)
	}
	return Append(make([]byte, 0, total+5), lit, body...)
}

// Take extracts the body of the record of the given type from trusted data.
// Returns nil body on a type mismatch; rest==data means incomplete input.
func Take(lit byte, data []byte) (body, rest []byte) {
	got, hdrlen, bodylen := ProbeHeader(data)
	if got == 0 || hdrlen+bodylen > len(data) {
		return nil, data
	}
	if got != lit && got != '0' {
		return nil, nil
	}
	return data[hdrlen : hdrlen+bodylen], data[hdrlen+bodylen:]
}

// TakeWary is Take for untrusted data: mismatches and truncation surface
// as explicit errors instead of nil returns.
func TakeWary(lit byte, data []byte) (body, rest []byte, err error) {
	got, hdrlen, bodylen := ProbeHeader(data)
	if got == '-' {
		return nil, data, ErrBadRecord
	}
	if got == 0 || hdrlen+bodylen > len(data) {
		return nil, data, errors.Join(ErrIncomplete, fmt.Errorf("want %d bytes, have %d", hdrlen+bodylen, len(data)))
	}
	if got != lit && got != '0' {
		return nil, data, errors.Join(ErrBadRecord, fmt.Errorf("want %q record, got %q", lit, got))
	}
	return data[hdrlen : hdrlen+bodylen], data[hdrlen+bodylen:], nil
}

// OpenHeader starts a record whose body length is not known yet. It writes
// a long-layout header with a blank length and returns a bookmark for
// CloseHeader. Body bytes are appended to the returned buffer by the caller.
func OpenHeader(buf []byte, lit byte) (bookmark int, res []byte) {
	lit &^= caseBit
	if lit < 'A' || lit > 'Z' {
		panic("wire: record type must be A..Z")
	}
	res = append(buf, lit, 0, 0, 0, 0)
	return len(res), res
}

// CloseHeader fixes up the length of a record started with OpenHeader.
func CloseHeader(buf []byte, bookmark int) {
	if bookmark < 5 || len(buf) < bookmark {
		panic("wire: bookmark does not match OpenHeader")
	}
	binary.LittleEndian.PutUint32(buf[bookmark-4:bookmark], uint32(len(buf)-bookmark))
}
