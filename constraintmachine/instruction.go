package constraintmachine

import (
	"github.com/i2/radix-engine-library/constraintmachine/cmerror"
	"github.com/i2/radix-engine-library/particle"
	"github.com/i2/radix-engine-library/spin"
)

// MicroOp discriminates a micro-instruction.
type MicroOp int

const (
	Push MicroOp = iota
	GroupEnd
)

// MicroInstruction is the flat, lowered form of an atom: a PUSH carrying a
// DataPointer for diagnostics, or a group-boundary marker (§3).
type MicroInstruction struct {
	Op           MicroOp
	SpunParticle particle.SpunParticle // valid only when Op == Push
	Pointer      particle.DataPointer
}

// ToMicroInstructions walks an atom's particle groups in order and emits the
// flat PUSH/GROUP_END stream, enforcing the two atom-local checks that need
// no store access (§4.3.1):
//
//   - no two PUSHes for the same particle name the same target spin
//     (ParticleConflict), whether adjacent or not, and even within a single
//     group (a particle may appear at most once per group);
//   - no two PUSHes for the same particle describe a sequence that violates
//     spin monotonicity purely from the atom's own structure (DOWN has no
//     successor, so nothing may follow a DOWN push of the same particle).
//
// Lowering is pure and deterministic: it consults nothing but atom.
func ToMicroInstructions(atom *particle.Atom) ([]MicroInstruction, error) {
	out := make([]MicroInstruction, 0, atom.NumParticles()+len(atom.Groups))
	lastTarget := make(map[particle.Key]spin.Spin)

	for gi, group := range atom.Groups {
		seenInGroup := make(map[particle.Key]struct{}, len(group))
		for pi, sp := range group {
			ptr := particle.DataPointer{GroupIndex: gi, ParticleIndex: pi}

			if !spin.IsTarget(sp.Spin) {
				return nil, cmerror.New(cmerror.SpinConflict, ptr, "target spin must be UP or DOWN, got %s", sp.Spin)
			}

			key := sp.Particle.Key()
			if _, dup := seenInGroup[key]; dup {
				return nil, cmerror.New(cmerror.ParticleConflict, ptr, "particle pushed twice within the same group")
			}
			seenInGroup[key] = struct{}{}

			if prev, ok := lastTarget[key]; ok {
				switch {
				case prev == sp.Spin:
					return nil, cmerror.New(cmerror.ParticleConflict, ptr,
						"particle pushed twice with target spin %s within this atom", sp.Spin)
				case prev == spin.DOWN:
					return nil, cmerror.New(cmerror.SpinConflict, ptr,
						"particle already pushed to terminal spin DOWN earlier in this atom")
				}
			}
			lastTarget[key] = sp.Spin

			out = append(out, MicroInstruction{Op: Push, SpunParticle: sp, Pointer: ptr})
		}
		out = append(out, MicroInstruction{Op: GroupEnd, Pointer: particle.DataPointer{GroupIndex: gi, ParticleIndex: len(group)}})
	}
	return out, nil
}
