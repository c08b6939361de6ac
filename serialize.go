package statediff

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/clustermesh/statediff/wire"
)

// Wire layout of one delta: three records in fixed order.
//
//	'D' deletes:  count:uvarint, count × key
//	'I' diffs:    count:uvarint (post version-filter), count × (key, diff)
//	'U' upserts:  count:uvarint (post version-filter), count × (key, value)
//
// The record bodies grow as entries are filtered against the target
// version, so sections are framed with open headers and patched shut.
const (
	litDeletes = 'D'
	litDiffs   = 'I'
	litUpserts = 'U'
)

func (d *delta[K, V]) appendTo(into []byte, ver Version) (_ []byte, err error) {
	bm, into := wire.OpenHeader(into, litDeletes)
	into = binary.AppendUvarint(into, uint64(len(d.deletes)))
	for _, key := range d.deletes {
		if into, err = d.keys.AppendKey(into, key); err != nil {
			return nil, err
		}
	}
	wire.CloseHeader(into, bm)

	kept := 0
	for _, e := range d.diffs {
		if d.vals.SupportsDiff(e.Diff, ver) {
			kept++
		}
	}
	stats.filtered.Add(float64(len(d.diffs) - kept))
	bm, into = wire.OpenHeader(into, litDiffs)
	into = binary.AppendUvarint(into, uint64(kept))
	for _, e := range d.diffs {
		if !d.vals.SupportsDiff(e.Diff, ver) {
			continue
		}
		if into, err = d.keys.AppendKey(into, e.Key); err != nil {
			return nil, err
		}
		if into, err = d.vals.AppendDiff(into, e.Diff); err != nil {
			return nil, err
		}
	}
	wire.CloseHeader(into, bm)

	kept = 0
	for _, e := range d.upserts {
		if d.vals.SupportsValue(e.Value, ver) {
			kept++
		}
	}
	stats.filtered.Add(float64(len(d.upserts) - kept))
	bm, into = wire.OpenHeader(into, litUpserts)
	into = binary.AppendUvarint(into, uint64(kept))
	for _, e := range d.upserts {
		if !d.vals.SupportsValue(e.Value, ver) {
			continue
		}
		if into, err = d.keys.AppendKey(into, e.Key); err != nil {
			return nil, err
		}
		if into, err = d.vals.AppendValue(into, e.Value); err != nil {
			return nil, err
		}
	}
	wire.CloseHeader(into, bm)

	return into, nil
}

// appendEmpty writes the canonical empty delta: three zero-count sections.
// It needs no codecs, so the nil delta can serialize itself.
func appendEmpty(into []byte) []byte {
	zero := []byte{0}
	into = wire.Append(into, litDeletes, zero)
	into = wire.Append(into, litDiffs, zero)
	return wire.Append(into, litUpserts, zero)
}

func badDelta(err error) error {
	return errors.Join(ErrBadDelta, err)
}

// section opens the record of the given type and hands back a field reader
// plus the entry count, with a cheap bound against hostile counts.
func section(data []byte, lit byte) (r *wire.Reader, count int, rest []byte, err error) {
	body, rest, err := wire.TakeWary(lit, data)
	if err != nil {
		return nil, 0, nil, badDelta(err)
	}
	r = wire.NewReader(body)
	n, err := r.Uvarint()
	if err != nil {
		return nil, 0, nil, badDelta(err)
	}
	// every entry costs at least one byte
	if n > uint64(r.Len()) {
		return nil, 0, nil, badDelta(fmt.Errorf("%d entries in %d bytes", n, r.Len()))
	}
	return r, int(n), rest, nil
}

func drained(r *wire.Reader) error {
	if r.Len() != 0 {
		return badDelta(fmt.Errorf("%d trailing bytes in section", r.Len()))
	}
	return nil
}

// readDelta decodes the three sections in order. On any error the whole
// delta is rejected; there is no partial result.
func readDelta[K comparable, V any](data []byte, keys KeyCodec[K], vals ValueCodec[K, V]) (d delta[K, V], rest []byte, err error) {
	d.keys, d.vals = keys, vals

	r, count, rest, err := section(data, litDeletes)
	if err != nil {
		return d, nil, err
	}
	if count > 0 {
		d.deletes = make([]K, 0, count)
	}
	for i := 0; i < count; i++ {
		key, err := keys.ReadKey(r)
		if err != nil {
			return d, nil, badDelta(err)
		}
		d.deletes = append(d.deletes, key)
	}
	if err = drained(r); err != nil {
		return d, nil, err
	}

	r, count, rest, err = section(rest, litDiffs)
	if err != nil {
		return d, nil, err
	}
	if count > 0 && !vals.Diffable() {
		return d, nil, badDelta(errors.New("diff entries for an opaque value codec"))
	}
	if count > 0 {
		d.diffs = make([]DiffEntry[K, V], 0, count)
	}
	for i := 0; i < count; i++ {
		key, err := keys.ReadKey(r)
		if err != nil {
			return d, nil, badDelta(err)
		}
		diff, err := vals.ReadDiff(r, key)
		if err != nil {
			return d, nil, badDelta(err)
		}
		d.diffs = append(d.diffs, DiffEntry[K, V]{key, diff})
	}
	if err = drained(r); err != nil {
		return d, nil, err
	}

	r, count, rest, err = section(rest, litUpserts)
	if err != nil {
		return d, nil, err
	}
	if count > 0 {
		d.upserts = make([]Entry[K, V], 0, count)
	}
	for i := 0; i < count; i++ {
		key, err := keys.ReadKey(r)
		if err != nil {
			return d, nil, badDelta(err)
		}
		val, err := vals.ReadValue(r, key)
		if err != nil {
			return d, nil, badDelta(err)
		}
		d.upserts = append(d.upserts, Entry[K, V]{key, val})
	}
	if err = drained(r); err != nil {
		return d, nil, err
	}

	return d, rest, nil
}
