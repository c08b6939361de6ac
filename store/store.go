// Package store persists the locally applied snapshot of each logical map
// together with its generation number. A snapshot is stored in the delta
// wire format as a full-upsert delta against the empty map, so the same
// codecs serve both replication and persistence.
package store

import (
	"slices"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"

	"github.com/clustermesh/statediff"
	"github.com/clustermesh/statediff/utils"
	"github.com/clustermesh/statediff/wire"
)

type Store struct {
	db  *pebble.DB
	log utils.Logger
}

func Open(dir string, log utils.Logger) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "store: open")
	}
	log.Debug("store opened", "dir", dir)
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func metaKey(name string) []byte { return append([]byte("meta:"), name...) }
func snapKey(name string) []byte { return append([]byte("snap:"), name...) }

// Generation returns the applied generation of the named map and how many
// entries its snapshot holds. An unknown map is at generation zero.
func (s *Store) Generation(name string) (gen uint64, entries int, err error) {
	data, closer, err := s.db.Get(metaKey(name))
	if err == pebble.ErrNotFound {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, errors.Wrap(err, "store: meta")
	}
	defer closer.Close()
	body, _, err := wire.TakeWary('G', data)
	if err != nil {
		return 0, 0, err
	}
	gen, n := wire.UnzipUint64Pair(body)
	return gen, int(n), nil
}

// Save writes the snapshot of the named map at the given generation. Both
// records go in one synced batch, so a crash never splits meta from data.
func Save[K comparable, V any](s *Store, name string, gen uint64, snap map[K]V,
	keys statediff.KeyCodec[K], vals statediff.ValueCodec[K, V]) error {

	full := statediff.DiffMaps(nil, snap, keys, vals)
	data, err := full.AppendTo(nil, statediff.VersionCurrent)
	if err != nil {
		return err
	}
	meta := wire.Record('G', wire.ZipUint64Pair(gen, uint64(len(snap))))

	batch := s.db.NewBatch()
	if err := batch.Set(metaKey(name), meta, nil); err != nil {
		return err
	}
	if err := batch.Set(snapKey(name), data, nil); err != nil {
		return err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return errors.Wrap(err, "store: commit")
	}
	s.log.Debug("snapshot saved", "map", name, "gen", gen, "entries", len(snap))
	return nil
}

// Load reads the named snapshot back, or an empty map at generation zero
// if it was never saved.
func Load[K comparable, V any](s *Store, name string,
	keys statediff.KeyCodec[K], vals statediff.ValueCodec[K, V]) (map[K]V, uint64, error) {

	gen, _, err := s.Generation(name)
	if err != nil {
		return nil, 0, err
	}
	data, closer, err := s.db.Get(snapKey(name))
	if err == pebble.ErrNotFound {
		return map[K]V{}, gen, nil
	}
	if err != nil {
		return nil, 0, errors.Wrap(err, "store: snapshot")
	}
	// the value is only valid until closer.Close, decode from a copy
	buf := slices.Clone(data)
	_ = closer.Close()

	d, _, err := statediff.ReadMapDiff(buf, keys, vals)
	if err != nil {
		return nil, 0, err
	}
	snap := d.Apply(nil)
	if snap == nil {
		snap = map[K]V{}
	}
	return snap, gen, nil
}
