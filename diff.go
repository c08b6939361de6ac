// Package statediff computes, serializes and applies incremental deltas
// between keyed snapshots of replicated cluster state.
//
// A coordinating node holds two immutable snapshots of the same logical
// map, "before" and "after", and wants every member node to reach "after"
// without receiving the full map. DiffMaps (or DiffFlatMaps) partitions
// the change into deletions, incremental value diffs and full upserts; the
// resulting delta serializes with per-entry protocol-version filtering for
// mixed-version clusters and applies deterministically on the receiver.
//
// Snapshots and deltas are values: once built they are never mutated, so
// any number of goroutines may share and apply them concurrently.
package statediff

import "encoding"

// Version is the wire protocol generation of a peer. Codecs may declare
// individual values or diffs unsupported below a given version; such
// entries are dropped from outbound deltas rather than sent to a receiver
// that cannot decode them.
type Version uint32

// VersionCurrent is what this build speaks.
const VersionCurrent Version = 1

// Diff is an incremental change to a value of type T. Apply must be given
// the exact predecessor the diff was computed against; anything else is
// undefined. A diff carries its own wire form.
type Diff[T any] interface {
	Apply(base T) T
	encoding.BinaryAppender
}

// Diffable values produce incremental diffs against their predecessors,
// with new.DiffFrom(old).Apply(old) == new.
type Diffable[T any] interface {
	DiffFrom(old T) Diff[T]
}

// DiffableValue is the full contract a map value must satisfy to be
// handled by DiffableCodec: self-diffing, self-encoding, self-comparing.
type DiffableValue[T any] interface {
	Diffable[T]
	encoding.BinaryAppender
	Equal(other T) bool
}
