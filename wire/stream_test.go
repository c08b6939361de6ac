package wire

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReaderFields(t *testing.T) {
	var buf []byte
	buf = binary.AppendUvarint(buf, 300)
	buf = AppendZigZag(buf, -42)
	buf = binary.LittleEndian.AppendUint64(buf, 0xdeadbeef)
	buf = AppendString(buf, "cluster state")

	r := NewReader(buf)
	u, err := r.Uvarint()
	assert.NoError(t, err)
	assert.Equal(t, uint64(300), u)
	i, err := r.ZigZag()
	assert.NoError(t, err)
	assert.Equal(t, int64(-42), i)
	f, err := r.Uint64LE()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0xdeadbeef), f)
	s, err := r.String()
	assert.NoError(t, err)
	assert.Equal(t, "cluster state", s)
	assert.Equal(t, 0, r.Len())
}

func TestReaderTruncation(t *testing.T) {
	r := NewReader(nil)
	_, err := r.Uvarint()
	assert.ErrorIs(t, err, ErrIncomplete)

	r = NewReader([]byte{5, 'a', 'b'}) // string promises 5 bytes, has 2
	_, err = r.String()
	assert.ErrorIs(t, err, ErrIncomplete)

	r = NewReader([]byte{1, 2, 3})
	_, err = r.Uint64LE()
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestReaderRecord(t *testing.T) {
	buf := Record('M', []byte("body"))
	buf = append(buf, 0xff)
	r := NewReader(buf)
	body, err := r.Record('M')
	assert.NoError(t, err)
	assert.Equal(t, []byte("body"), body)
	assert.Equal(t, []byte{0xff}, r.Rest())

	_, err = r.Record('M')
	assert.ErrorIs(t, err, ErrBadRecord)
}
