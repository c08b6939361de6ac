package statediff

import (
	"encoding/binary"
	"slices"

	"github.com/clustermesh/statediff/wire"
)

// StringSetCodec serializes sorted []string values whole. Sets do not diff
// incrementally; a changed set travels as a full upsert.
type StringSetCodec[K comparable] struct {
	OpaqueCodec[K, []string]
}

func (StringSetCodec[K]) AppendValue(into []byte, value []string) ([]byte, error) {
	into = binary.AppendUvarint(into, uint64(len(value)))
	for _, s := range value {
		into = wire.AppendString(into, s)
	}
	return into, nil
}

func (StringSetCodec[K]) ReadValue(r *wire.Reader, _ K) ([]string, error) {
	n, err := r.Uvarint()
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Len()) {
		return nil, wire.ErrIncomplete
	}
	set := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		s, err := r.String()
		if err != nil {
			return nil, err
		}
		set = append(set, s)
	}
	return set, nil
}

// Equal treats values as sorted sets; callers keep them sorted and
// deduplicated.
func (StringSetCodec[K]) Equal(a, b []string) bool {
	return slices.Equal(a, b)
}
