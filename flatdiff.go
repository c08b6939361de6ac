package statediff

// FlatDiff describes the change between two FlatMap snapshots. The
// partition algorithm is shared with MapDiff; only the post-apply rebuild
// differs, going through a FlatMapBuilder.
//
// The nil *FlatDiff is the canonical empty delta, exactly as for MapDiff.
type FlatDiff[K comparable, V any] struct {
	delta[K, V]
}

// DiffFlatMaps computes the delta turning before into after.
func DiffFlatMaps[K comparable, V any](before, after *FlatMap[K, V], keys KeyCodec[K], vals ValueCodec[K, V]) *FlatDiff[K, V] {
	if before.Equal(after, vals.Equal) {
		stats.computed.WithLabelValues("flat", "empty").Inc()
		return nil
	}
	d := &FlatDiff[K, V]{computeDelta[K, V](before, after, keys, vals)}
	stats.observe("flat", len(d.deletes), len(d.diffs), len(d.upserts))
	return d
}

// DiffDiffableFlatMaps is DiffFlatMaps for self-diffing values, using the
// write-only codec form.
func DiffDiffableFlatMaps[K comparable, V DiffableValue[V]](before, after *FlatMap[K, V], keys KeyCodec[K]) *FlatDiff[K, V] {
	return DiffFlatMaps(before, after, keys, DiffableCodec[K, V]{})
}

// Apply rebuilds the after-snapshot from base through a builder. The same
// caller contract as MapDiff.Apply holds.
func (d *FlatDiff[K, V]) Apply(base *FlatMap[K, V]) *FlatMap[K, V] {
	if d == nil {
		return base
	}
	b := base.Builder()
	for _, key := range d.deletes {
		b.Delete(key)
	}
	for _, e := range d.diffs {
		cur, _ := b.Get(e.Key)
		b.Put(e.Key, e.Diff.Apply(cur))
	}
	for _, e := range d.upserts {
		b.Put(e.Key, e.Value)
	}
	return b.Freeze()
}

// AppendTo serializes the delta for a receiver on the given protocol
// version. The wire form is identical to MapDiff's; the container type is
// a local choice, not a protocol one.
func (d *FlatDiff[K, V]) AppendTo(into []byte, ver Version) ([]byte, error) {
	if d == nil {
		return appendEmpty(into), nil
	}
	return d.appendTo(into, ver)
}

// ReadFlatDiff decodes one delta and returns the unconsumed tail,
// collapsing an all-empty delta to nil.
func ReadFlatDiff[K comparable, V any](data []byte, keys KeyCodec[K], vals ValueCodec[K, V]) (*FlatDiff[K, V], []byte, error) {
	d, rest, err := readDelta(data, keys, vals)
	if err != nil {
		return nil, nil, err
	}
	if d.isZero() {
		return nil, rest, nil
	}
	return &FlatDiff[K, V]{d}, rest, nil
}

// Deletes returns the keys removed by this delta.
func (d *FlatDiff[K, V]) Deletes() []K {
	if d == nil {
		return nil
	}
	return d.deletes
}

// Diffs returns the incremental-update entries.
func (d *FlatDiff[K, V]) Diffs() []DiffEntry[K, V] {
	if d == nil {
		return nil
	}
	return d.diffs
}

// Upserts returns the insert-or-full-replace entries.
func (d *FlatDiff[K, V]) Upserts() []Entry[K, V] {
	if d == nil {
		return nil
	}
	return d.upserts
}
