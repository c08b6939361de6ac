package statediff

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/clustermesh/statediff/wire"
)

// KeyCodec encodes and decodes map keys. Encodings must be
// self-delimiting: ReadKey consumes exactly the bytes AppendKey produced.
type KeyCodec[K comparable] interface {
	AppendKey(into []byte, key K) ([]byte, error)
	ReadKey(r *wire.Reader) (K, error)
}

// StringKey encodes string keys as length-prefixed text.
type StringKey struct{}

func (StringKey) AppendKey(into []byte, key string) ([]byte, error) {
	return wire.AppendString(into, key), nil
}

func (StringKey) ReadKey(r *wire.Reader) (string, error) {
	return r.String()
}

// Int64Key encodes integer keys as fixed 8-byte little-endian two's
// complement.
type Int64Key struct{}

func (Int64Key) AppendKey(into []byte, key int64) ([]byte, error) {
	return binary.LittleEndian.AppendUint64(into, uint64(key)), nil
}

func (Int64Key) ReadKey(r *wire.Reader) (int64, error) {
	u, err := r.Uint64LE()
	return int64(u), err
}

// UvarintKey encodes non-negative integer keys as unsigned varints.
// Negative keys fail with ErrNegativeKey at write time.
type UvarintKey struct{}

func (UvarintKey) AppendKey(into []byte, key int64) ([]byte, error) {
	if key < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeKey, key)
	}
	return binary.AppendUvarint(into, uint64(key)), nil
}

func (UvarintKey) ReadKey(r *wire.Reader) (int64, error) {
	u, err := r.Uvarint()
	if err != nil {
		return 0, err
	}
	if u > math.MaxInt64 {
		return 0, fmt.Errorf("%w: varint key overflows int64", ErrBadDelta)
	}
	return int64(u), nil
}
