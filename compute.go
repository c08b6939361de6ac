package statediff

import "iter"

// Entry is an insert-or-full-replace delta entry.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// DiffEntry is an incremental-update delta entry.
type DiffEntry[K comparable, V any] struct {
	Key  K
	Diff Diff[V]
}

// view is the read side shared by the snapshot containers: the partition
// algorithm is written once against it, only the post-apply rebuild differs
// per container.
type view[K comparable, V any] interface {
	Len() int
	Get(key K) (V, bool)
	All() iter.Seq2[K, V]
}

// delta is the shared core of MapDiff and FlatDiff: the three entry lists
// plus the codecs that serialize them.
type delta[K comparable, V any] struct {
	keys    KeyCodec[K]
	vals    ValueCodec[K, V]
	deletes []K
	diffs   []DiffEntry[K, V]
	upserts []Entry[K, V]
}

func (d *delta[K, V]) isZero() bool {
	return len(d.deletes) == 0 && len(d.diffs) == 0 && len(d.upserts) == 0
}

// computeDelta partitions the change from before to after. Callers check
// snapshot equality first; this always walks after in full.
func computeDelta[K comparable, V any](before, after view[K, V], keys KeyCodec[K], vals ValueCodec[K, V]) delta[K, V] {
	inserts := 0
	var diffs []DiffEntry[K, V]
	var upserts []Entry[K, V]
	diffable := vals.Diffable()
	for key, val := range after.All() {
		old, ok := before.Get(key)
		switch {
		case !ok:
			upserts = append(upserts, Entry[K, V]{key, val})
			inserts++
		case !vals.Equal(val, old):
			if diffable {
				diffs = append(diffs, DiffEntry[K, V]{key, vals.DiffValues(val, old)})
			} else {
				upserts = append(upserts, Entry[K, V]{key, val})
			}
		}
	}

	// Every after-key is an insert, a change to an existing key, or
	// unchanged, so this count of before-only keys is exact as long as
	// keys are unique within a snapshot. It bounds the scan below.
	expected := before.Len() + inserts - after.Len()
	var deletes []K
	if expected > 0 {
		deletes = make([]K, 0, expected)
		for key := range before.All() {
			if _, ok := after.Get(key); !ok {
				deletes = append(deletes, key)
				if len(deletes) == expected {
					break
				}
			}
		}
	}

	return delta[K, V]{keys: keys, vals: vals, deletes: deletes, diffs: diffs, upserts: upserts}
}
