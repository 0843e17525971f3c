package atomos

import (
	"fmt"

	"github.com/i2/radix-engine-library/constraintmachine"
	"github.com/i2/radix-engine-library/particle"
	"github.com/i2/radix-engine-library/spin"
)

// CreateTransitionFromRRI registers the standard "mint a new instance
// identified by an RRI" transition: consuming an RRI-bearing particle and
// producing the application's own output particle. precondition and
// witness may be nil.
func CreateTransitionFromRRI(
	env ConstraintScryptEnv,
	rriClass, outputClass particle.ClassTag,
	precondition func(in, out particle.Particle) error,
	witness func(in particle.Particle, w particle.WitnessData) error,
) error {
	token := constraintmachine.TransitionToken{
		InputClass: rriClass, InputUsedType: "Void",
		OutputClass: outputClass, OutputUsedType: "Void",
	}
	proc := constraintmachine.NewProcedure[particle.Particle, constraintmachine.VoidUsedData, particle.Particle, constraintmachine.VoidUsedData](
		func(in particle.Particle, _ constraintmachine.VoidUsedData, out particle.Particle, _ constraintmachine.VoidUsedData) error {
			if precondition != nil {
				return precondition(in, out)
			}
			return nil
		},
		nil, nil, witness, nil,
	)
	return env.CreateTransition(token, proc)
}

// CreateTransitionFromRRICombined registers the three-particle routine that
// mints two sibling output classes from a single RRI in the same atom —
// e.g. a token definition particle alongside its initial supply particle —
// and additionally checks them against each other, which a pairwise
// dispatch token cannot express on its own (§4.4's "three-particle
// routine"). It is itself a Routine: it only calls back into env, so it
// composes with ExecuteRoutine.
func CreateTransitionFromRRICombined(
	rriClass, classA, classB particle.ClassTag,
	combinedCheck func(a, b particle.Particle) error,
	witness func(in particle.Particle, w particle.WitnessData) error,
) Routine {
	return func(env ConstraintScryptEnv) error {
		if err := CreateTransitionFromRRI(env, rriClass, classA, nil, witness); err != nil {
			return fmt.Errorf("atomos: registering combined RRI transition to %q: %w", classA, err)
		}
		if err := CreateTransitionFromRRI(env, rriClass, classB, nil, witness); err != nil {
			return fmt.Errorf("atomos: registering combined RRI transition to %q: %w", classB, err)
		}

		env.AddKernelProcedure(combinedCheckKernel(classA, classB, combinedCheck))
		return nil
	}
}

// combinedCheckKernel pairs up every UP-spun classA particle with the
// UP-spun classB particle in the same position and runs combinedCheck
// across each pair, positionally — the atom-level counterpart to the
// pairwise dispatch check a TransitionToken alone cannot express for three
// coupled particles. Mismatched counts are reported as one error per
// leftover particle rather than aborting the scan, matching kernel
// procedures' batch-collection contract (§4.3.2 point 1).
func combinedCheckKernel(classA, classB particle.ClassTag, combinedCheck func(a, b particle.Particle) error) constraintmachine.KernelProcedure {
	return func(atom *particle.Atom) []error {
		var as, bs []particle.Particle
		atom.ForEach(func(_ particle.DataPointer, sp particle.SpunParticle) bool {
			if sp.Spin != spin.UP {
				return true
			}
			switch sp.Particle.ClassTag() {
			case classA:
				as = append(as, sp.Particle)
			case classB:
				bs = append(bs, sp.Particle)
			}
			return true
		})

		var errs []error
		n := len(as)
		if len(bs) > n {
			n = len(bs)
		}
		for i := 0; i < n; i++ {
			switch {
			case i >= len(as):
				errs = append(errs, fmt.Errorf("combined RRI routine: %q particle at position %d has no matching %q particle", classB, i, classA))
			case i >= len(bs):
				errs = append(errs, fmt.Errorf("combined RRI routine: %q particle at position %d has no matching %q particle", classA, i, classB))
			default:
				if err := combinedCheck(as[i], bs[i]); err != nil {
					errs = append(errs, err)
				}
			}
		}
		return errs
	}
}

// RequireInitialWith registers the rule that the *first* appearance of an
// RRI-indexed particle class — the instance minted at nonce 0, the same
// notion of "initial" the zero-nonce virtualization rule uses (§4.2) — must
// be co-produced in the same atom alongside a side-effect particle of
// sideEffectClass, checked jointly by check (CMAtomOS.java's
// `onIndexed(...).requireInitialWith`). indexedClass must already carry an
// RRI mapper (from RegisterParticleWithRRI); later, non-initial appearances
// of the same class are unconstrained by this rule.
func (e *Env) RequireInitialWith(indexedClass, sideEffectClass particle.ClassTag, check func(indexed, sideEffect particle.Particle) error) error {
	def, ok := e.defs[indexedClass]
	if !ok {
		return fmt.Errorf("atomos: %q is not registered", indexedClass)
	}
	if def.RRIMapper == nil {
		return fmt.Errorf("atomos: %q must be registered with an RRI mapper before RequireInitialWith", indexedClass)
	}
	e.builder.AddKernelProcedure(requireInitialWithKernel(indexedClass, sideEffectClass, check))
	return nil
}

// requireInitialWithKernel scans for UP-spun indexedClass particles whose
// RRI nonce is 0 and greedily pairs each with an unused UP-spun
// sideEffectClass particle from the same atom, running check across the
// pair. An initial particle left without any side-effect particle to pair
// with is reported as an error, batched alongside every other kernel
// failure (§4.3.2 point 1) rather than aborting the scan.
func requireInitialWithKernel(indexedClass, sideEffectClass particle.ClassTag, check func(indexed, sideEffect particle.Particle) error) constraintmachine.KernelProcedure {
	return func(atom *particle.Atom) []error {
		var initial, sideEffects []particle.Particle
		atom.ForEach(func(_ particle.DataPointer, sp particle.SpunParticle) bool {
			if sp.Spin != spin.UP {
				return true
			}
			switch sp.Particle.ClassTag() {
			case indexedClass:
				if n, ok := sp.Particle.(Noncer); ok && n.RRINonce() == 0 {
					initial = append(initial, sp.Particle)
				}
			case sideEffectClass:
				sideEffects = append(sideEffects, sp.Particle)
			}
			return true
		})

		var errs []error
		next := 0
		for _, ip := range initial {
			if next >= len(sideEffects) {
				errs = append(errs, fmt.Errorf("requireInitialWith: initial %q particle has no co-produced %q particle", indexedClass, sideEffectClass))
				continue
			}
			se := sideEffects[next]
			next++
			if err := check(ip, se); err != nil {
				errs = append(errs, err)
			}
		}
		return errs
	}
}
