package atomos

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/i2/radix-engine-library/constraintmachine"
	"github.com/i2/radix-engine-library/constraintmachine/cmerror"
	"github.com/i2/radix-engine-library/particle"
)

// ParticleValueMapper reads a fungible amount out of a particle, reporting
// false for particles of a class that carries no fungible value.
type ParticleValueMapper func(p particle.Particle) (*uint256.Int, bool)

// FungibleDefinition is one class's entry in an AmountMapper: its own
// amount mapper, plus the chain of ancestor class tags to try, in order, if
// a queried particle's own class has no direct entry here
// (ParticleValueMapper.java's `Class.getSuperclass()` walk; the source has
// no notion of interfaces/tags to register against, so the Go rendition
// makes the chain an explicit, registration-time list instead of an
// implicit class hierarchy — §9's "explicit chain of fallback tags
// declared at registration, not implicit inheritance").
type FungibleDefinition struct {
	Class    particle.ClassTag
	ValueOf  ParticleValueMapper
	Fallback []particle.ClassTag
}

// AmountMapper resolves the fungible amount of any particle whose class (or
// one of its declared Fallback ancestors) was registered via a
// FungibleDefinition — the Go rendition of ParticleValueMapper.java.
type AmountMapper struct {
	byClass  map[particle.ClassTag]ParticleValueMapper
	fallback map[particle.ClassTag][]particle.ClassTag
}

// NewAmountMapper builds an AmountMapper from defs, matching
// ParticleValueMapper.from(List<FungibleDefinition>) in the source.
// Re-registering the same class is rejected.
func NewAmountMapper(defs ...FungibleDefinition) (*AmountMapper, error) {
	m := &AmountMapper{
		byClass:  make(map[particle.ClassTag]ParticleValueMapper, len(defs)),
		fallback: make(map[particle.ClassTag][]particle.ClassTag, len(defs)),
	}
	for _, d := range defs {
		if _, exists := m.byClass[d.Class]; exists {
			return nil, fmt.Errorf("atomos: duplicate fungible definition for class %q", d.Class)
		}
		m.byClass[d.Class] = d.ValueOf
		m.fallback[d.Class] = d.Fallback
	}
	return m, nil
}

// Amount resolves p's fungible amount: first by p's own class, then by
// walking p's declared fallback chain in order (§8 scenario 8 "value-mapper
// fallback"). Neither the class nor any ancestor having a registered
// mapper is reported as cmerror.UnknownParticle, the same Kind the
// constraint machine itself uses for a particle with no registered
// ParticleDefinition — from the caller's perspective, an amount mapper
// with no entry for this class is exactly as unusable.
func (m *AmountMapper) Amount(p particle.Particle) (*uint256.Int, error) {
	tag := p.ClassTag()
	if fn, ok := m.byClass[tag]; ok && fn != nil {
		if v, ok := fn(p); ok {
			return v, nil
		}
	}
	for _, ancestor := range m.fallback[tag] {
		fn, ok := m.byClass[ancestor]
		if !ok || fn == nil {
			continue
		}
		if v, ok := fn(p); ok {
			return v, nil
		}
	}
	return nil, cmerror.New(cmerror.UnknownParticle, particle.DataPointer{},
		"no fungible amount mapper registered for class %q or its fallback chain", tag)
}

// AsValueMapper adapts m to the flat ParticleValueMapper shape
// CreateFungibleTransition expects, so a fallback-chain-aware AmountMapper
// can be wired into a fungible transition exactly like a single-class
// mapper.
func (m *AmountMapper) AsValueMapper() ParticleValueMapper {
	return func(p particle.Particle) (*uint256.Int, bool) {
		v, err := m.Amount(p)
		if err != nil {
			return nil, false
		}
		return v, true
	}
}

// FungibleUsedData carries the unconsumed remainder of whichever side of a
// fungible transition has more value than its counterpart: a partially
// spent input, or a partially filled output (§4.3.2 point 4).
type FungibleUsedData struct {
	Remaining *uint256.Int
}

func (FungibleUsedData) UsedDataType() string { return "Fungible" }

func remainderOf(used constraintmachine.UsedData) *uint256.Int {
	f, ok := used.(FungibleUsedData)
	if !ok || f.Remaining == nil {
		return nil
	}
	return f.Remaining
}

// CreateFungibleTransition registers a value-conserving transition between
// inputClass and outputClass: the machine will pair instances of each,
// carrying forward whichever side holds the larger amount until its
// remainder is fully spoken for, exactly modelling split/merge of a
// fungible resource across an atom (§4.3.2 point 4, §9).
func CreateFungibleTransition(
	env ConstraintScryptEnv,
	inputClass, outputClass particle.ClassTag,
	valueOf ParticleValueMapper,
	witness func(in particle.Particle, w particle.WitnessData) error,
) error {
	precondition := func(in, out particle.Particle) error {
		if _, ok := valueOf(in); !ok {
			return fmt.Errorf("input particle of class %q carries no fungible value", in.ClassTag())
		}
		if _, ok := valueOf(out); !ok {
			return fmt.Errorf("output particle of class %q carries no fungible value", out.ClassTag())
		}
		return nil
	}

	// balance returns, given the amount still outstanding on each side
	// (falling back to the particle's own full value when nothing has been
	// carried yet), which side — if any — has a remainder left over.
	balance := func(in, out particle.Particle, inRemaining, outRemaining *uint256.Int) (inLeft, outLeft *uint256.Int) {
		inVal, _ := valueOf(in)
		outVal, _ := valueOf(out)
		if inRemaining == nil {
			inRemaining = inVal
		}
		if outRemaining == nil {
			outRemaining = outVal
		}
		switch inRemaining.Cmp(outRemaining) {
		case 0:
			return nil, nil
		case 1:
			return new(uint256.Int).Sub(inRemaining, outRemaining), nil
		default:
			return nil, new(uint256.Int).Sub(outRemaining, inRemaining)
		}
	}

	register := func(inUsedType, outUsedType string) error {
		token := constraintmachine.TransitionToken{
			InputClass: inputClass, InputUsedType: inUsedType,
			OutputClass: outputClass, OutputUsedType: outUsedType,
		}
		proc := constraintmachine.Procedure{
			Precondition: func(in particle.Particle, _ constraintmachine.UsedData, out particle.Particle, _ constraintmachine.UsedData) error {
				return precondition(in, out)
			},
			InputUsedCompute: func(in particle.Particle, inUsed constraintmachine.UsedData, out particle.Particle, outUsed constraintmachine.UsedData) (constraintmachine.UsedData, bool) {
				inLeft, _ := balance(in, out, remainderOf(inUsed), remainderOf(outUsed))
				if inLeft == nil {
					return nil, false
				}
				return FungibleUsedData{Remaining: inLeft}, true
			},
			OutputUsedCompute: func(in particle.Particle, inUsed constraintmachine.UsedData, out particle.Particle, outUsed constraintmachine.UsedData) (constraintmachine.UsedData, bool) {
				_, outLeft := balance(in, out, remainderOf(inUsed), remainderOf(outUsed))
				if outLeft == nil {
					return nil, false
				}
				return FungibleUsedData{Remaining: outLeft}, true
			},
			InputWitnessValidator: witness,
		}
		return env.CreateTransition(token, proc)
	}

	for _, inType := range [2]string{"Void", "Fungible"} {
		for _, outType := range [2]string{"Void", "Fungible"} {
			if err := register(inType, outType); err != nil {
				return fmt.Errorf("atomos: registering fungible transition %q -> %q: %w", inputClass, outputClass, err)
			}
		}
	}
	return nil
}
