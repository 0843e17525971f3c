// Package badgerstore is an optional durable backing for the engine-store
// contract (store.EngineStore), demonstrating that the contract is
// implementation-agnostic (§6/§9). InMemoryEngineStore remains the
// default; nothing in the core requires this package.
package badgerstore

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/i2/radix-engine-library/particle"
	"github.com/i2/radix-engine-library/spin"
	"github.com/i2/radix-engine-library/store"
)

const spinKeyPrefix = "spin/"

// Store is a store.EngineStore backed by a badger key-value database. It
// persists only a particle's current spin; the containing atom is not
// stored, so GetAtomContaining always reports false.
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) a badger database at dir.
func Open(dir string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir))
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func spinKey(k particle.Key) []byte {
	return append([]byte(spinKeyPrefix), k[:]...)
}

func (s *Store) GetSpin(p particle.Particle) spin.Spin {
	var result spin.Spin
	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(spinKey(p.Key()))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				result = spin.NEUTRAL
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 1 {
				return fmt.Errorf("badgerstore: corrupt spin value for key %x", p.Key())
			}
			result = spin.Spin(val[0])
			return nil
		})
	})
	return result
}

// GetAtomContaining is not supported by this store: it persists only spin
// state, not atom bodies, so it always reports not-found.
func (s *Store) GetAtomContaining(particle.Particle, bool) (*particle.Atom, bool) {
	return nil, false
}

// StoreAtom advances every touched particle's spin by one step, in a
// single badger transaction, matching InMemoryEngineStore's "apply without
// re-validating" contract (§4.2, §5).
func (s *Store) StoreAtom(atom *particle.Atom) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, group := range atom.Groups {
			for _, sp := range group {
				key := spinKey(sp.Particle.Key())
				cur := spin.NEUTRAL
				item, err := txn.Get(key)
				switch {
				case err == nil:
					if getErr := item.Value(func(val []byte) error {
						if len(val) != 1 {
							return fmt.Errorf("badgerstore: corrupt spin value for key %x", sp.Particle.Key())
						}
						cur = spin.Spin(val[0])
						return nil
					}); getErr != nil {
						return getErr
					}
				case err == badger.ErrKeyNotFound:
					// cur stays NEUTRAL
				default:
					return err
				}
				next, nextErr := spin.Next(cur)
				if nextErr != nil {
					return nextErr
				}
				if err := txn.Set(key, []byte{byte(next)}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *Store) Supports(particle.EUIDSet) bool { return true }

func (s *Store) DeleteAtom(particle.AtomID) error { return store.ErrUnsupportedOperation }

// snapshot is an internal, JSON-serializable form used only for diagnostic
// export; never written to the database itself.
type snapshot struct {
	Spins map[string]byte `json:"spins"`
}

// DumpSpins returns every stored (key, spin) pair as JSON, for debugging.
func (s *Store) DumpSpins() ([]byte, error) {
	out := snapshot{Spins: make(map[string]byte)}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(spinKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			k := string(item.KeyCopy(nil))
			err := item.Value(func(val []byte) error {
				if len(val) == 1 {
					out.Spins[k] = val[0]
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

var _ store.EngineStore = (*Store)(nil)
