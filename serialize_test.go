package statediff

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clustermesh/statediff/wire"
)

// gatedValue carries the protocol version it first appeared in.
type gatedValue struct {
	S     string
	Since Version
}

type gatedCodec struct {
	OpaqueCodec[string, gatedValue]
}

func (gatedCodec) AppendValue(into []byte, v gatedValue) ([]byte, error) {
	into = binary.AppendUvarint(into, uint64(v.Since))
	return wire.AppendString(into, v.S), nil
}

func (gatedCodec) ReadValue(r *wire.Reader, _ string) (gatedValue, error) {
	since, err := r.Uvarint()
	if err != nil {
		return gatedValue{}, err
	}
	s, err := r.String()
	return gatedValue{S: s, Since: Version(since)}, err
}

func (gatedCodec) Equal(a, b gatedValue) bool { return a == b }

func (gatedCodec) SupportsValue(v gatedValue, ver Version) bool {
	return ver >= v.Since
}

func TestVersionFilterDropsNewEntries(t *testing.T) {
	after := map[string]gatedValue{
		"old": {S: "everyone", Since: 1},
		"new": {S: "v2-only", Since: 2},
	}
	d := DiffMaps(nil, after, StringKey{}, gatedCodec{})
	require.NotNil(t, d)

	// a v2 receiver gets both entries
	buf, err := d.AppendTo(nil, 2)
	require.NoError(t, err)
	got, _, err := ReadMapDiff(buf, StringKey{}, gatedCodec{})
	require.NoError(t, err)
	assert.Equal(t, after, got.Apply(nil))

	// a v1 receiver never sees the v2 entry
	buf, err = d.AppendTo(nil, 1)
	require.NoError(t, err)
	got, _, err = ReadMapDiff(buf, StringKey{}, gatedCodec{})
	require.NoError(t, err)
	assert.Equal(t, map[string]gatedValue{"old": after["old"]}, got.Apply(nil))
}

func TestVersionFilterCollapsesToEmpty(t *testing.T) {
	after := map[string]gatedValue{
		"new": {S: "v2-only", Since: 2},
	}
	d := DiffMaps(nil, after, StringKey{}, gatedCodec{})
	require.NotNil(t, d)

	buf, err := d.AppendTo(nil, 1)
	require.NoError(t, err)
	got, rest, err := ReadMapDiff(buf, StringKey{}, gatedCodec{})
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Nil(t, got) // everything filtered: canonical empty delta
}

func TestReadRejectsTruncatedDelta(t *testing.T) {
	d := DiffMaps(nil, map[string]int64{"a": 1, "b": 2}, StringKey{}, int64Codec[string]{})
	buf, err := d.AppendTo(nil, VersionCurrent)
	require.NoError(t, err)

	for cut := 1; cut < len(buf); cut++ {
		_, _, err := ReadMapDiff(buf[:cut], StringKey{}, int64Codec[string]{})
		assert.Error(t, err, "cut at %d", cut)
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	_, _, err := ReadMapDiff([]byte{0xfe, 0xff, 0x00}, StringKey{}, int64Codec[string]{})
	assert.ErrorIs(t, err, ErrBadDelta)

	// claims more entries than bytes remain
	buf := wire.Record('D', []byte{0x7f})
	_, _, err = ReadMapDiff(buf, StringKey{}, int64Codec[string]{})
	assert.ErrorIs(t, err, ErrBadDelta)
}

func TestReadRejectsDiffsForOpaqueCodec(t *testing.T) {
	// a delta with a diff entry, decoded with an opaque codec
	before := map[string]Counter{"a": 1}
	after := map[string]Counter{"a": 2}
	d := DiffMaps(before, after, StringKey{}, CounterCodec[string]())
	buf, err := d.AppendTo(nil, VersionCurrent)
	require.NoError(t, err)

	_, _, err = ReadMapDiff(buf, StringKey{}, int64Codec[string]{})
	assert.ErrorIs(t, err, ErrBadDelta)
}

func TestNegativeKeySurfacesOnEncode(t *testing.T) {
	d := DiffMaps(nil, map[int64]int64{-5: 1}, UvarintKey{}, int64Codec[int64]{})
	require.NotNil(t, d)
	_, err := d.AppendTo(nil, VersionCurrent)
	assert.ErrorIs(t, err, ErrNegativeKey)
}

func TestDeltasConcatenate(t *testing.T) {
	d1 := DiffMaps(nil, map[string]int64{"a": 1}, StringKey{}, int64Codec[string]{})
	d2 := DiffMaps(map[string]int64{"a": 1}, map[string]int64{"a": 2}, StringKey{}, int64Codec[string]{})

	buf, err := d1.AppendTo(nil, VersionCurrent)
	require.NoError(t, err)
	buf, err = d2.AppendTo(buf, VersionCurrent)
	require.NoError(t, err)

	g1, rest, err := ReadMapDiff(buf, StringKey{}, int64Codec[string]{})
	require.NoError(t, err)
	g2, rest, err := ReadMapDiff(rest, StringKey{}, int64Codec[string]{})
	require.NoError(t, err)
	assert.Empty(t, rest)

	snap := g2.Apply(g1.Apply(nil))
	assert.Equal(t, map[string]int64{"a": 2}, snap)
}
