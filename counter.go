package statediff

import (
	"github.com/clustermesh/statediff/wire"
)

// Counter is an int64 map value whose diff is the arithmetic difference,
// so an incremented counter replicates as a small delta instead of its
// absolute value.
type Counter int64

func (c Counter) DiffFrom(old Counter) Diff[Counter] {
	return CounterDelta(c - old)
}

func (c Counter) Equal(other Counter) bool { return c == other }

func (c Counter) AppendBinary(into []byte) ([]byte, error) {
	return wire.AppendZigZag(into, int64(c)), nil
}

// CounterDelta shifts a Counter by a signed amount.
type CounterDelta int64

func (d CounterDelta) Apply(base Counter) Counter {
	return base + Counter(d)
}

func (d CounterDelta) AppendBinary(into []byte) ([]byte, error) {
	return wire.AppendZigZag(into, int64(d)), nil
}

// CounterCodec builds the read-write codec for Counter values.
func CounterCodec[K comparable]() DiffableCodec[K, Counter] {
	return DiffableCodec[K, Counter]{
		DecodeValue: func(r *wire.Reader, _ K) (Counter, error) {
			i, err := r.ZigZag()
			return Counter(i), err
		},
		DecodeDiff: func(r *wire.Reader, _ K) (Diff[Counter], error) {
			i, err := r.ZigZag()
			return CounterDelta(i), err
		},
	}
}
