package statediff

import (
	"iter"
	"maps"
)

// MapDiff describes the change between two map[K]V snapshots.
//
// The nil *MapDiff is the canonical empty delta: DiffMaps returns it when
// before equals after, ReadMapDiff returns it when every section decodes
// empty, and applying it returns the base unchanged. Emptiness checks are
// therefore plain nil comparisons.
//
// A MapDiff is immutable once built and safe to share across goroutines.
type MapDiff[K comparable, V any] struct {
	delta[K, V]
}

type mapView[K comparable, V any] map[K]V

func (m mapView[K, V]) Len() int { return len(m) }

func (m mapView[K, V]) Get(key K) (V, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapView[K, V]) All() iter.Seq2[K, V] { return maps.All(m) }

// DiffMaps computes the delta turning before into after.
func DiffMaps[K comparable, V any](before, after map[K]V, keys KeyCodec[K], vals ValueCodec[K, V]) *MapDiff[K, V] {
	if maps.EqualFunc(before, after, vals.Equal) {
		stats.computed.WithLabelValues("map", "empty").Inc()
		return nil
	}
	d := &MapDiff[K, V]{computeDelta(mapView[K, V](before), mapView[K, V](after), keys, vals)}
	stats.observe("map", len(d.deletes), len(d.diffs), len(d.upserts))
	return d
}

// DiffDiffableMaps is DiffMaps for self-diffing values, using the
// write-only codec form: the result serializes but cannot decode. Use a
// DiffableCodec with decode hooks on the receiving side.
func DiffDiffableMaps[K comparable, V DiffableValue[V]](before, after map[K]V, keys KeyCodec[K]) *MapDiff[K, V] {
	return DiffMaps(before, after, keys, DiffableCodec[K, V]{})
}

// Apply rebuilds the after-snapshot from base. Base must be the snapshot
// the delta was computed against; deletes and upserts individually
// tolerate drift (remove-if-present, insert-or-overwrite), diff entries
// do not.
func (d *MapDiff[K, V]) Apply(base map[K]V) map[K]V {
	if d == nil {
		return base
	}
	next := maps.Clone(base)
	if next == nil {
		next = make(map[K]V, len(d.upserts))
	}
	for _, key := range d.deletes {
		delete(next, key)
	}
	for _, e := range d.diffs {
		next[e.Key] = e.Diff.Apply(next[e.Key])
	}
	for _, e := range d.upserts {
		next[e.Key] = e.Value
	}
	return next
}

// AppendTo serializes the delta for a receiver on the given protocol
// version, filtering out entries the receiver cannot decode.
func (d *MapDiff[K, V]) AppendTo(into []byte, ver Version) ([]byte, error) {
	if d == nil {
		return appendEmpty(into), nil
	}
	return d.appendTo(into, ver)
}

// ReadMapDiff decodes one delta and returns the unconsumed tail. A delta
// whose sections are all empty decodes as the canonical nil delta.
func ReadMapDiff[K comparable, V any](data []byte, keys KeyCodec[K], vals ValueCodec[K, V]) (*MapDiff[K, V], []byte, error) {
	d, rest, err := readDelta(data, keys, vals)
	if err != nil {
		return nil, nil, err
	}
	if d.isZero() {
		return nil, rest, nil
	}
	return &MapDiff[K, V]{d}, rest, nil
}

// Deletes returns the keys removed by this delta. Callers must not modify
// the returned slice.
func (d *MapDiff[K, V]) Deletes() []K {
	if d == nil {
		return nil
	}
	return d.deletes
}

// Diffs returns the incremental-update entries.
func (d *MapDiff[K, V]) Diffs() []DiffEntry[K, V] {
	if d == nil {
		return nil
	}
	return d.diffs
}

// Upserts returns the insert-or-full-replace entries.
func (d *MapDiff[K, V]) Upserts() []Entry[K, V] {
	if d == nil {
		return nil
	}
	return d.upserts
}
