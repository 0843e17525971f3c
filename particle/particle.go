// Package particle defines the core's leaf data model: the immutable
// Particle value, its identity and destination contract, and the Atom the
// constraint machine decomposes into micro-instructions (§3).
package particle

import "github.com/i2/radix-engine-library/spin"

// ClassTag discriminates a particle's application-defined type, the key
// definitions and transition procedures register against. It stands in for
// the source's Class<? extends Particle> without runtime reflection (§9).
type ClassTag string

// Key is a content-addressed, comparable identity for a particle. The
// application is responsible for deriving it deterministically from the
// particle's content; the core only ever compares Keys for equality and
// uses them as engine-store map keys. This is the Go rendition of "identity
// is by value equality" that avoids requiring every concrete particle type
// to be a `==`-comparable Go value (some carry slices, e.g. destination
// sets computed on the fly).
type Key [32]byte

// Particle is an immutable, opaque application value. Concrete particle
// types implement this interface; the machine never inspects their fields
// directly, only through the ParticleDefinition a constraint scrypt
// registers for the ClassTag (§3, §4.4).
type Particle interface {
	ClassTag() ClassTag
	Key() Key
	// Destinations is the particle's own declared shard set. Invariant 4
	// requires it be non-empty and equal to what the registered
	// ParticleDefinition's shard mapper independently computes for this
	// particle.
	Destinations() []EUID
}

// SpunParticle asserts a particle's spin after this instruction executes.
// Spin must be UP or DOWN; NEUTRAL is never an instruction target.
type SpunParticle struct {
	Particle Particle
	Spin     spin.Spin
}

// ParticleGroup is a non-empty, ordered sequence of spun particles. Groups
// are the unit of atom structure; cross-group ordering matters for
// transition dispatch, intra-group ordering is the unit of consecutive-
// instruction coupling (§3).
type ParticleGroup []SpunParticle
