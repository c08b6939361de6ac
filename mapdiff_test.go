package statediff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clustermesh/statediff/wire"
)

// int64Codec replaces whole int64 values; the opaque scenario codec.
type int64Codec[K comparable] struct {
	OpaqueCodec[K, int64]
}

func (int64Codec[K]) AppendValue(into []byte, v int64) ([]byte, error) {
	return wire.AppendZigZag(into, v), nil
}

func (int64Codec[K]) ReadValue(r *wire.Reader, _ K) (int64, error) {
	return r.ZigZag()
}

func (int64Codec[K]) Equal(a, b int64) bool { return a == b }

func TestDiffMapsOpaque(t *testing.T) {
	before := map[string]int64{"a": 1, "b": 2}
	after := map[string]int64{"b": 3, "c": 4}

	d := DiffMaps(before, after, StringKey{}, int64Codec[string]{})
	require.NotNil(t, d)
	assert.Equal(t, []string{"a"}, d.Deletes())
	assert.Empty(t, d.Diffs())
	ups := map[string]int64{}
	for _, e := range d.Upserts() {
		ups[e.Key] = e.Value
	}
	assert.Equal(t, map[string]int64{"b": 3, "c": 4}, ups)

	assert.Equal(t, after, d.Apply(before))
	// inputs untouched
	assert.Equal(t, map[string]int64{"a": 1, "b": 2}, before)
}

func TestDiffMapsDiffable(t *testing.T) {
	before := map[string]Counter{"a": 1, "b": 2}
	after := map[string]Counter{"b": 3, "c": 4}

	d := DiffMaps(before, after, StringKey{}, CounterCodec[string]())
	require.NotNil(t, d)
	assert.Equal(t, []string{"a"}, d.Deletes())
	require.Len(t, d.Diffs(), 1)
	assert.Equal(t, "b", d.Diffs()[0].Key)
	assert.Equal(t, CounterDelta(1), d.Diffs()[0].Diff)
	require.Len(t, d.Upserts(), 1)
	assert.Equal(t, Entry[string, Counter]{"c", 4}, d.Upserts()[0])

	assert.Equal(t, after, d.Apply(before))
}

func TestDiffMapsEqualSnapshots(t *testing.T) {
	snap := map[string]int64{"a": 1, "b": 2}
	same := map[string]int64{"b": 2, "a": 1}

	d := DiffMaps(snap, same, StringKey{}, int64Codec[string]{})
	assert.Nil(t, d) // the canonical empty delta

	applied := d.Apply(snap)
	assert.Equal(t, snap, applied)
}

func TestDiffMapsWriteOnly(t *testing.T) {
	before := map[string]Counter{"a": 1}
	after := map[string]Counter{"a": 5}

	d := DiffDiffableMaps(before, after, StringKey{})
	require.NotNil(t, d)
	assert.Equal(t, after, d.Apply(before))

	buf, err := d.AppendTo(nil, VersionCurrent)
	require.NoError(t, err)

	// the write-only codec serializes fine but refuses to decode
	_, _, err = ReadMapDiff(buf, StringKey{}, DiffableCodec[string, Counter]{})
	assert.ErrorIs(t, err, ErrWriteOnly)

	// a codec with decode hooks reads it back
	got, rest, err := ReadMapDiff(buf, StringKey{}, CounterCodec[string]())
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, after, got.Apply(before))
}

func TestPartitionExactness(t *testing.T) {
	before := map[int64]int64{}
	after := map[int64]int64{}
	for i := int64(0); i < 100; i++ {
		before[i] = i * 10
	}
	// 0..29 deleted, 30..59 changed, 60..99 unchanged, 100..119 inserted
	for i := int64(30); i < 60; i++ {
		after[i] = -i
	}
	for i := int64(60); i < 100; i++ {
		after[i] = i * 10
	}
	for i := int64(100); i < 120; i++ {
		after[i] = i
	}

	d := DiffMaps(before, after, Int64Key{}, int64Codec[int64]{})
	require.NotNil(t, d)
	assert.Len(t, d.Deletes(), 30)
	assert.Len(t, d.Upserts(), 50) // 30 changed (opaque) + 20 inserted
	assert.Empty(t, d.Diffs())

	seen := map[int64]bool{}
	for _, k := range d.Deletes() {
		_, inAfter := after[k]
		assert.False(t, inAfter)
		assert.False(t, seen[k])
		seen[k] = true
	}
	for _, e := range d.Upserts() {
		assert.NotEqual(t, before[e.Key], e.Value)
		assert.False(t, seen[e.Key])
		seen[e.Key] = true
	}

	assert.Equal(t, after, d.Apply(before))
}

func TestMapDiffWireRoundTrip(t *testing.T) {
	before := map[string]Counter{"a": 1, "b": 2, "x": 100}
	after := map[string]Counter{"b": 30, "c": 4, "x": 100}

	d := DiffMaps(before, after, StringKey{}, CounterCodec[string]())
	buf, err := d.AppendTo(nil, VersionCurrent)
	require.NoError(t, err)

	got, rest, err := ReadMapDiff(buf, StringKey{}, CounterCodec[string]())
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, after, got.Apply(before))
}

func TestEmptyDeltaWireRoundTrip(t *testing.T) {
	var d *MapDiff[string, Counter]
	buf, err := d.AppendTo(nil, VersionCurrent)
	require.NoError(t, err)

	got, rest, err := ReadMapDiff(buf, StringKey{}, CounterCodec[string]())
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Nil(t, got)
}

func TestApplyToEmptyBase(t *testing.T) {
	after := map[string]int64{"a": 1}
	d := DiffMaps(nil, after, StringKey{}, int64Codec[string]{})
	require.NotNil(t, d)
	assert.Equal(t, after, d.Apply(nil))
}
