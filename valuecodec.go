package statediff

import (
	"github.com/clustermesh/statediff/wire"
)

// ValueCodec encodes and decodes map values and, when the value type
// supports it, their incremental diffs. Encodings must be self-delimiting.
//
// Do not implement this interface from scratch: build on DiffableCodec or
// embed OpaqueCodec, so that the capability split stays visible in the
// type system rather than scattered across call sites.
type ValueCodec[K comparable, V any] interface {
	AppendValue(into []byte, value V) ([]byte, error)
	// ReadValue may depend on the key the value is stored under.
	ReadValue(r *wire.Reader, key K) (V, error)

	// Equal is the structural equality snapshots are compared by.
	Equal(a, b V) bool

	// Diffable is a fixed capability flag: true means DiffValues,
	// AppendDiff and ReadDiff are usable.
	Diffable() bool
	DiffValues(newer, older V) Diff[V]
	AppendDiff(into []byte, diff Diff[V]) ([]byte, error)
	ReadDiff(r *wire.Reader, key K) (Diff[V], error)

	// SupportsValue and SupportsDiff decide whether an entry can be sent
	// to a receiver on the given protocol version. Unsupported entries are
	// silently dropped from outbound deltas.
	SupportsValue(value V, ver Version) bool
	SupportsDiff(diff Diff[V], ver Version) bool
}

// DiffableCodec handles values that diff, encode and compare themselves.
// Writing needs no hooks; the zero value is the write-only form used
// during delta computation, whose ReadValue and ReadDiff fail with
// ErrWriteOnly. Supply DecodeValue and DecodeDiff on the receiving side.
type DiffableCodec[K comparable, V DiffableValue[V]] struct {
	DecodeValue func(r *wire.Reader, key K) (V, error)
	DecodeDiff  func(r *wire.Reader, key K) (Diff[V], error)
}

func (c DiffableCodec[K, V]) AppendValue(into []byte, value V) ([]byte, error) {
	return value.AppendBinary(into)
}

func (c DiffableCodec[K, V]) ReadValue(r *wire.Reader, key K) (V, error) {
	if c.DecodeValue == nil {
		var zero V
		return zero, ErrWriteOnly
	}
	return c.DecodeValue(r, key)
}

func (c DiffableCodec[K, V]) Equal(a, b V) bool {
	return a.Equal(b)
}

func (c DiffableCodec[K, V]) Diffable() bool { return true }

func (c DiffableCodec[K, V]) DiffValues(newer, older V) Diff[V] {
	return newer.DiffFrom(older)
}

func (c DiffableCodec[K, V]) AppendDiff(into []byte, diff Diff[V]) ([]byte, error) {
	return diff.AppendBinary(into)
}

func (c DiffableCodec[K, V]) ReadDiff(r *wire.Reader, key K) (Diff[V], error) {
	if c.DecodeDiff == nil {
		return nil, ErrWriteOnly
	}
	return c.DecodeDiff(r, key)
}

func (c DiffableCodec[K, V]) SupportsValue(V, Version) bool { return true }

func (c DiffableCodec[K, V]) SupportsDiff(Diff[V], Version) bool { return true }

// OpaqueCodec is the embeddable base of codecs whose values can only be
// replaced whole. Its diff operations panic with ErrNotDiffable: reaching
// them means a wiring bug in the caller, not a recoverable condition. The
// embedding type provides AppendValue, ReadValue and Equal.
type OpaqueCodec[K comparable, V any] struct{}

func (OpaqueCodec[K, V]) Diffable() bool { return false }

func (OpaqueCodec[K, V]) DiffValues(newer, older V) Diff[V] {
	panic(ErrNotDiffable)
}

func (OpaqueCodec[K, V]) AppendDiff(into []byte, diff Diff[V]) ([]byte, error) {
	panic(ErrNotDiffable)
}

func (OpaqueCodec[K, V]) ReadDiff(r *wire.Reader, key K) (Diff[V], error) {
	panic(ErrNotDiffable)
}

func (OpaqueCodec[K, V]) SupportsValue(V, Version) bool { return true }

func (OpaqueCodec[K, V]) SupportsDiff(Diff[V], Version) bool { return true }
