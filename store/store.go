// Package store defines the engine-store contract (C2, §4.2): the mapping
// from particle identity to (spin, containing atom), and the virtualization
// mechanism that lets never-stored particles answer with a spin other than
// NEUTRAL.
package store

import (
	"errors"

	"github.com/i2/radix-engine-library/particle"
	"github.com/i2/radix-engine-library/spin"
)

// ErrUnsupportedOperation is returned by DeleteAtom: the core is append-only
// with respect to accepted atoms (§4.2 Failure semantics, §7).
var ErrUnsupportedOperation = errors.New("store: operation not supported, the engine store is append-only")

// EngineStore is the mutable-resource boundary the constraint machine
// borrows a read view of during validate, and the caller writes to after a
// successful validation (§4.2, §5).
type EngineStore interface {
	// GetSpin returns the current spin of p; NEUTRAL if p has never been
	// stored, unless a virtualization rule overrides that answer.
	GetSpin(p particle.Particle) spin.Spin

	// GetAtomContaining returns the atom that most recently drove p to its
	// current spin, and whether one was found. Undefined (implementation-
	// defined) if p is at NEUTRAL.
	GetAtomContaining(p particle.Particle, isInput bool) (*particle.Atom, bool)

	// StoreAtom atomically applies every PUSH micro-instruction of atom to
	// the store, advancing each touched particle's spin by spin.Next.
	StoreAtom(atom *particle.Atom) error

	// Supports reports whether this store serves the given shard set.
	Supports(destinations particle.EUIDSet) bool

	// DeleteAtom always fails: the core does not support deletion.
	DeleteAtom(id particle.AtomID) error
}
