package statediff

import (
	"encoding/binary"
	"iter"

	"github.com/cespare/xxhash"
)

// FlatMap is an immutable open-addressed hash map: keys and values live
// in one flat table probed linearly, which keeps scans cache-friendly on
// the large metadata maps this engine was built for. Mutation goes
// through FlatMapBuilder; a frozen map never changes.
type FlatMap[K comparable, V any] struct {
	hash  func(K) uint64
	slots []flatSlot[K, V]
	mask  uint64
	count int
}

type flatSlot[K comparable, V any] struct {
	key  K
	val  V
	used bool
}

// StringHash is the default hasher for string keys.
func StringHash(s string) uint64 { return xxhash.Sum64String(s) }

// Int64Hash hashes integer keys through the same digest to spread
// sequential ids across the table.
func Int64Hash(i int64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(i))
	return xxhash.Sum64(b[:])
}

// NewFlatMap returns an empty map using the given hasher.
func NewFlatMap[K comparable, V any](hash func(K) uint64) *FlatMap[K, V] {
	return &FlatMap[K, V]{hash: hash}
}

// FlatMapOf freezes a plain map into a FlatMap.
func FlatMapOf[K comparable, V any](hash func(K) uint64, m map[K]V) *FlatMap[K, V] {
	b := NewFlatMapBuilder[K, V](hash, len(m))
	for k, v := range m {
		b.Put(k, v)
	}
	return b.Freeze()
}

func (m *FlatMap[K, V]) Len() int { return m.count }

func (m *FlatMap[K, V]) Get(key K) (V, bool) {
	if len(m.slots) == 0 {
		var zero V
		return zero, false
	}
	for i := m.hash(key) & m.mask; m.slots[i].used; i = (i + 1) & m.mask {
		if m.slots[i].key == key {
			return m.slots[i].val, true
		}
	}
	var zero V
	return zero, false
}

// All iterates entries in table order, which is stable for a given frozen
// map but otherwise unspecified.
func (m *FlatMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := range m.slots {
			if m.slots[i].used && !yield(m.slots[i].key, m.slots[i].val) {
				return
			}
		}
	}
}

// Equal compares two maps entry by entry under eq.
func (m *FlatMap[K, V]) Equal(other *FlatMap[K, V], eq func(a, b V) bool) bool {
	if m.count != other.count {
		return false
	}
	for key, val := range m.All() {
		oval, ok := other.Get(key)
		if !ok || !eq(val, oval) {
			return false
		}
	}
	return true
}

// Builder starts a mutable copy of this map.
func (m *FlatMap[K, V]) Builder() *FlatMapBuilder[K, V] {
	b := NewFlatMapBuilder[K, V](m.hash, m.count)
	for key, val := range m.All() {
		b.Put(key, val)
	}
	return b
}

const (
	slotFree = iota
	slotLive
	slotDead
)

// FlatMapBuilder accumulates puts and deletes, then freezes into a
// FlatMap. Deletes leave tombstones; Freeze rehashes live entries into a
// tight clean table, so a heavily churned builder still freezes compact.
type FlatMapBuilder[K comparable, V any] struct {
	hash  func(K) uint64
	slots []buildSlot[K, V]
	mask  uint64
	live  int
	used  int // live plus tombstones
}

type buildSlot[K comparable, V any] struct {
	key   K
	val   V
	state uint8
}

func NewFlatMapBuilder[K comparable, V any](hash func(K) uint64, sizeHint int) *FlatMapBuilder[K, V] {
	b := &FlatMapBuilder[K, V]{hash: hash}
	b.grow(tableSize(sizeHint))
	return b
}

// tableSize picks the power-of-two table length for n entries at no more
// than 3/4 load.
func tableSize(n int) int {
	size := 8
	for size*3/4 < n {
		size <<= 1
	}
	return size
}

func (b *FlatMapBuilder[K, V]) grow(size int) {
	old := b.slots
	b.slots = make([]buildSlot[K, V], size)
	b.mask = uint64(size - 1)
	b.live, b.used = 0, 0
	for i := range old {
		if old[i].state == slotLive {
			b.Put(old[i].key, old[i].val)
		}
	}
}

func (b *FlatMapBuilder[K, V]) Len() int { return b.live }

func (b *FlatMapBuilder[K, V]) Get(key K) (V, bool) {
	for i := b.hash(key) & b.mask; b.slots[i].state != slotFree; i = (i + 1) & b.mask {
		if b.slots[i].state == slotLive && b.slots[i].key == key {
			return b.slots[i].val, true
		}
	}
	var zero V
	return zero, false
}

// Put inserts or overwrites.
func (b *FlatMapBuilder[K, V]) Put(key K, val V) {
	if (b.used+1)*4 > len(b.slots)*3 {
		b.grow(len(b.slots) * 2)
	}
	reuse := -1
	i := b.hash(key) & b.mask
	for ; b.slots[i].state != slotFree; i = (i + 1) & b.mask {
		switch {
		case b.slots[i].state == slotLive && b.slots[i].key == key:
			b.slots[i].val = val
			return
		case b.slots[i].state == slotDead && reuse < 0:
			reuse = int(i)
		}
	}
	if reuse >= 0 {
		i = uint64(reuse)
	} else {
		b.used++
	}
	b.slots[i] = buildSlot[K, V]{key: key, val: val, state: slotLive}
	b.live++
}

// Delete removes the key if present.
func (b *FlatMapBuilder[K, V]) Delete(key K) {
	for i := b.hash(key) & b.mask; b.slots[i].state != slotFree; i = (i + 1) & b.mask {
		if b.slots[i].state == slotLive && b.slots[i].key == key {
			// tombstone, not free: probe chains must stay unbroken
			var zero buildSlot[K, V]
			b.slots[i] = zero
			b.slots[i].state = slotDead
			b.live--
			return
		}
	}
}

// Freeze rebuilds the live entries into an immutable FlatMap.
func (b *FlatMapBuilder[K, V]) Freeze() *FlatMap[K, V] {
	size := tableSize(b.live)
	m := &FlatMap[K, V]{
		hash:  b.hash,
		slots: make([]flatSlot[K, V], size),
		mask:  uint64(size - 1),
		count: b.live,
	}
	for i := range b.slots {
		if b.slots[i].state != slotLive {
			continue
		}
		j := m.hash(b.slots[i].key) & m.mask
		for m.slots[j].used {
			j = (j + 1) & m.mask
		}
		m.slots[j] = flatSlot[K, V]{key: b.slots[i].key, val: b.slots[i].val, used: true}
	}
	return m
}
