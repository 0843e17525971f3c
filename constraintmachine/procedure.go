package constraintmachine

import (
	"github.com/i2/radix-engine-library/particle"
)

// UsedData carries partial-consumption state across a chain of dispatch
// pairs for the same particle (§4.3.2 point 4, §9). UsedDataType is a
// discriminant tag: TransitionToken keys on it instead of on the concrete
// Go type, so two procedures registered for semantically distinct "used"
// shapes never collide just because they happen to share a struct layout.
type UsedData interface {
	UsedDataType() string
}

// VoidUsedData is the carry value meaning "nothing outstanding": a particle
// dispatched with VoidUsedData on one side is being considered for the
// first time in this pairing chain.
type VoidUsedData struct{}

func (VoidUsedData) UsedDataType() string { return "Void" }

// TransitionToken is the 4-tuple a dispatch pair is looked up by: the class
// of the particle being consumed and of the one being produced, each paired
// with the UsedData shape carried into that side of the pair (§4.3.2).
type TransitionToken struct {
	InputClass     particle.ClassTag
	InputUsedType  string
	OutputClass    particle.ClassTag
	OutputUsedType string
}

// Procedure is the type-erased form a TransitionProcedure is stored in once
// registered: every concrete callback has already been wrapped to assert
// back down to its declared I/N/O/U types (see NewProcedure), so the
// dispatch loop itself never needs generics (§9 "type safety preserved by
// parameterizing procedures over concrete variants and dispatching by
// token equality").
type Procedure struct {
	// Precondition runs before either used-compute; returning a non-nil
	// error fails the pair with PreconditionFailed.
	Precondition func(in particle.Particle, inUsed UsedData, out particle.Particle, outUsed UsedData) error

	// InputUsedCompute and OutputUsedCompute each report whether their side
	// survives this dispatch with a new carry value. At most one of the two
	// may report true; both reporting true is UsedDataConflict.
	InputUsedCompute  func(in particle.Particle, inUsed UsedData, out particle.Particle, outUsed UsedData) (UsedData, bool)
	OutputUsedCompute func(in particle.Particle, inUsed UsedData, out particle.Particle, outUsed UsedData) (UsedData, bool)

	// InputWitnessValidator and OutputWitnessValidator authorize their
	// respective side against the atom's witness bundle. Either may be nil,
	// meaning that side requires no witness.
	InputWitnessValidator  func(in particle.Particle, w particle.WitnessData) error
	OutputWitnessValidator func(out particle.Particle, w particle.WitnessData) error
}

// NewProcedure builds a type-erased Procedure from callbacks typed over the
// concrete particle and used-data variants a constraint scrypt actually
// works with. It is the generic front door that keeps scrypt authors away
// from interface{} casts; the constraint machine only ever sees the
// returned Procedure (§9).
func NewProcedure[I particle.Particle, N UsedData, O particle.Particle, U UsedData](
	precondition func(in I, inUsed N, out O, outUsed U) error,
	inputUsedCompute func(in I, inUsed N, out O, outUsed U) (N, bool),
	outputUsedCompute func(in I, inUsed N, out O, outUsed U) (U, bool),
	inputWitness func(in I, w particle.WitnessData) error,
	outputWitness func(out O, w particle.WitnessData) error,
) Procedure {
	p := Procedure{}
	if precondition != nil {
		p.Precondition = func(in particle.Particle, inUsed UsedData, out particle.Particle, outUsed UsedData) error {
			return precondition(in.(I), inUsed.(N), out.(O), outUsed.(U))
		}
	}
	if inputUsedCompute != nil {
		p.InputUsedCompute = func(in particle.Particle, inUsed UsedData, out particle.Particle, outUsed UsedData) (UsedData, bool) {
			v, ok := inputUsedCompute(in.(I), inUsed.(N), out.(O), outUsed.(U))
			return v, ok
		}
	}
	if outputUsedCompute != nil {
		p.OutputUsedCompute = func(in particle.Particle, inUsed UsedData, out particle.Particle, outUsed UsedData) (UsedData, bool) {
			v, ok := outputUsedCompute(in.(I), inUsed.(N), out.(O), outUsed.(U))
			return v, ok
		}
	}
	if inputWitness != nil {
		p.InputWitnessValidator = func(in particle.Particle, w particle.WitnessData) error {
			return inputWitness(in.(I), w)
		}
	}
	if outputWitness != nil {
		p.OutputWitnessValidator = func(out particle.Particle, w particle.WitnessData) error {
			return outputWitness(out.(O), w)
		}
	}
	return p
}

// ParticleDefinition is everything the machine needs to know about one
// particle class (§3, §4.4): how to shard it, how to statically validate an
// instance standing alone, and — optionally — how to read an RRI out of it
// for the cross-side RRI-equality check at dispatch time.
type ParticleDefinition struct {
	ClassTag particle.ClassTag

	// ShardMapper computes the destinations a particle of this class maps
	// to. The machine never calls it directly; it is read by the
	// default-destination virtualization transformer (§4.2) and by the
	// StaticCheck wrapper the registering layer builds around it (§4.4), both
	// of which run during validate.
	ShardMapper func(p particle.Particle) []particle.EUID

	// StaticCheck validates a single particle instance in isolation. The
	// registering layer is expected to have already wrapped this to reject
	// empty-destination particles and particles whose declared destinations
	// differ from ShardMapper's (§4.4); the machine calls whatever is
	// registered here verbatim.
	StaticCheck func(p particle.Particle) error

	// RRIMapper reads the resource identifier out of a particle of this
	// class, if this class carries one. Nil means this class has no RRI.
	RRIMapper func(p particle.Particle) (particle.RRI, bool)

	// AllowsTransitionsFromOutsideScrypts marks a class as eligible for
	// transitions registered by a different scrypt than the one that
	// registered the class. The machine records the flag but does not read
	// it; no registration or dispatch step checks it.
	AllowsTransitionsFromOutsideScrypts bool
}

// KernelProcedure inspects a whole atom up front, before any per-particle
// work, and reports every violation it finds rather than stopping at the
// first (§4.3.2 point 1, §7): the one place the machine collects errors
// instead of failing fast.
type KernelProcedure func(atom *particle.Atom) []error

// ComputeFunc derives one named, application-visible value from an atom
// that has already passed every other check (§4.3.3).
type ComputeFunc func(atom *particle.Atom) any
