package store

import (
	"sync"

	"github.com/i2/radix-engine-library/particle"
	"github.com/i2/radix-engine-library/spin"
	"go.uber.org/atomic"
)

type entry struct {
	spin spin.Spin
	atom *particle.Atom
}

// InMemoryEngineStore is the conforming, non-persistent EngineStore
// implementation, the Go rendition of the source's InMemoryEngineStore:
// sufficient for the core (§1 scope), used by default and by tests.
//
// store_atom must observe serial ordering against other committers (§5); a
// single mutex enforces that here, matching the "exclusive writer, many
// readers" contract.
type InMemoryEngineStore struct {
	mu       sync.RWMutex
	byKey    map[particle.Key]entry
	numStored atomic.Int64
}

func NewInMemoryEngineStore() *InMemoryEngineStore {
	return &InMemoryEngineStore{
		byKey: make(map[particle.Key]entry),
	}
}

func (s *InMemoryEngineStore) GetSpin(p particle.Particle) spin.Spin {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byKey[p.Key()]
	if !ok {
		return spin.NEUTRAL
	}
	return e.spin
}

func (s *InMemoryEngineStore) GetAtomContaining(p particle.Particle, _ bool) (*particle.Atom, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byKey[p.Key()]
	if !ok {
		return nil, false
	}
	return e.atom, true
}

// StoreAtom applies every PUSH in atom, advancing each touched particle's
// spin by spin.Next. It does not re-validate the atom; the caller is
// expected to have called Machine.Validate first (§4.3.3: "the store is not
// mutated by C3; the caller decides whether to persist").
func (s *InMemoryEngineStore) StoreAtom(atom *particle.Atom) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make(map[particle.Key]spin.Spin)
	for _, group := range atom.Groups {
		for _, sp := range group {
			key := sp.Particle.Key()
			cur, ok := pending[key]
			if !ok {
				cur = spin.NEUTRAL
				if e, ok := s.byKey[key]; ok {
					cur = e.spin
				}
			}
			next, err := spin.Next(cur)
			if err != nil {
				return err
			}
			pending[key] = next
		}
	}
	for key, next := range pending {
		s.byKey[key] = entry{spin: next, atom: atom}
	}
	s.numStored.Add(int64(atom.NumParticles()))
	return nil
}

func (s *InMemoryEngineStore) Supports(particle.EUIDSet) bool {
	return true
}

func (s *InMemoryEngineStore) DeleteAtom(particle.AtomID) error {
	return ErrUnsupportedOperation
}

// NumStored reports the number of PUSH instructions applied across all
// StoreAtom calls, a cheap auxiliary counter for metrics/tests.
func (s *InMemoryEngineStore) NumStored() int64 {
	return s.numStored.Load()
}
