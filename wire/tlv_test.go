package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderLayouts(t *testing.T) {
	// lowercase type, small body: tiny layout, type erased
	tiny := Record('d', []byte("abc"))
	assert.Equal(t, []byte("3abc"), tiny)
	lit, hdrlen, bodylen := ProbeHeader(tiny)
	assert.Equal(t, byte('0'), lit)
	assert.Equal(t, 1, hdrlen)
	assert.Equal(t, 3, bodylen)

	// uppercase type, small body: short layout
	short := Record('D', []byte("abc"))
	assert.Equal(t, []byte{'d', 3, 'a', 'b', 'c'}, short)
	lit, hdrlen, bodylen = ProbeHeader(short)
	assert.Equal(t, byte('D'), lit)
	assert.Equal(t, 2, hdrlen)
	assert.Equal(t, 3, bodylen)

	// big body: long layout
	big := bytes.Repeat([]byte{'x'}, 300)
	long := Record('D', big)
	lit, hdrlen, bodylen = ProbeHeader(long)
	assert.Equal(t, byte('D'), lit)
	assert.Equal(t, 5, hdrlen)
	assert.Equal(t, 300, bodylen)
}

func TestTakeRoundTrip(t *testing.T) {
	buf := Record('K', []byte("one"))
	buf = Append(buf, 'K', []byte("two"))

	body, rest := Take('K', buf)
	assert.Equal(t, []byte("one"), body)
	body, rest = Take('K', rest)
	assert.Equal(t, []byte("two"), body)
	assert.Empty(t, rest)
}

func TestTakeWary(t *testing.T) {
	rec := Record('A', []byte("payload"))

	_, _, err := TakeWary('B', rec)
	assert.ErrorIs(t, err, ErrBadRecord)

	_, _, err = TakeWary('A', rec[:3])
	assert.ErrorIs(t, err, ErrIncomplete)

	_, _, err = TakeWary('A', []byte{0xff, 1, 2})
	assert.ErrorIs(t, err, ErrBadRecord)

	body, rest, err := TakeWary('A', rec)
	assert.NoError(t, err)
	assert.Equal(t, []byte("payload"), body)
	assert.Empty(t, rest)
}

func TestOpenCloseHeader(t *testing.T) {
	bm, buf := OpenHeader(nil, 'X')
	buf = append(buf, []byte("some body built incrementally")...)
	CloseHeader(buf, bm)

	body, rest, err := TakeWary('X', buf)
	assert.NoError(t, err)
	assert.Equal(t, []byte("some body built incrementally"), body)
	assert.Empty(t, rest)
}

func TestRecordsTotalLen(t *testing.T) {
	recs := Records{Record('A', []byte("aa")), Record('B', []byte("bbb"))}
	assert.Equal(t, len(recs[0])+len(recs[1]), recs.TotalLen())
}
