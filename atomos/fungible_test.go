package atomos

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/i2/radix-engine-library/constraintmachine/cmerror"
	"github.com/i2/radix-engine-library/particle"
	"github.com/i2/radix-engine-library/spin"
	"github.com/i2/radix-engine-library/store"
)

type fungibleParticle struct {
	id     byte
	dest   particle.EUID
	amount uint64
}

func (p fungibleParticle) ClassTag() particle.ClassTag { return classToken }
func (p fungibleParticle) Key() particle.Key {
	var k particle.Key
	k[0] = p.id
	return k
}
func (p fungibleParticle) Destinations() []particle.EUID { return []particle.EUID{p.dest} }

func fungibleValue(p particle.Particle) (*uint256.Int, bool) {
	fp, ok := p.(fungibleParticle)
	if !ok {
		return nil, false
	}
	return uint256.NewInt(fp.amount), true
}

// One 100-unit input split into two 40/60-unit outputs: the engine must
// carry the input's remaining 60 units forward to pair with the second
// output after the first output fully consumes the first 40.
func TestCreateFungibleTransition_SplitAcrossTwoOutputs(t *testing.T) {
	dest := particle.EUIDFromAddress(newAddress(9))

	env := NewEnv()
	require.NoError(t, env.RegisterParticle(classToken, func(p particle.Particle) []particle.EUID { return p.Destinations() }, nil))
	require.NoError(t, CreateFungibleTransition(env, classToken, classToken, fungibleValue, nil))

	m, err := env.Build()
	require.NoError(t, err)

	in := fungibleParticle{id: 1, dest: dest, amount: 100}
	out1 := fungibleParticle{id: 2, dest: dest, amount: 40}
	out2 := fungibleParticle{id: 3, dest: dest, amount: 60}

	base := store.NewInMemoryEngineStore()
	require.NoError(t, base.StoreAtom(&particle.Atom{Groups: []particle.ParticleGroup{
		{{Particle: in, Spin: spin.UP}},
	}}))

	atom := &particle.Atom{Groups: []particle.ParticleGroup{
		{
			{Particle: in, Spin: spin.DOWN},
			{Particle: out1, Spin: spin.UP},
			{Particle: out2, Spin: spin.UP},
		},
	}}
	_, err = m.Validate(atom, base)
	require.NoError(t, err)
}

const classSubToken particle.ClassTag = "sub-token"

// amountCarrier is the common surface a base class's value mapper can read
// off any of its registered subclasses — standing in for the instance Java's
// subclass walk would reach via a shared supertype.
type amountCarrier interface {
	FungibleAmount() uint64
}

type subTokenParticle struct {
	id     byte
	dest   particle.EUID
	amount uint64
}

func (p subTokenParticle) ClassTag() particle.ClassTag { return classSubToken }
func (p subTokenParticle) Key() particle.Key {
	var k particle.Key
	k[0] = p.id
	return k
}
func (p subTokenParticle) Destinations() []particle.EUID { return []particle.EUID{p.dest} }
func (p subTokenParticle) FungibleAmount() uint64         { return p.amount }

// A particle of a class with no direct amount mapper resolves through its
// declared fallback chain to an ancestor's mapper (spec.md §8 scenario 8).
func TestAmountMapper_FallbackChain(t *testing.T) {
	baseValueOf := func(p particle.Particle) (*uint256.Int, bool) {
		ac, ok := p.(amountCarrier)
		if !ok {
			return nil, false
		}
		return uint256.NewInt(ac.FungibleAmount()), true
	}

	mapper, err := NewAmountMapper(
		FungibleDefinition{Class: classToken, ValueOf: baseValueOf},
		FungibleDefinition{Class: classSubToken, Fallback: []particle.ClassTag{classToken}},
	)
	require.NoError(t, err)

	sub := subTokenParticle{id: 1, dest: particle.EUIDFromAddress(newAddress(1)), amount: 42}
	v, err := mapper.Amount(sub)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(42), v)
}

// A class with no direct mapper and no fallback ancestor that resolves
// raises UnknownParticle, the same Kind the constraint machine itself uses
// for a particle with no registered ParticleDefinition.
func TestAmountMapper_UnknownParticleWithoutFallback(t *testing.T) {
	mapper, err := NewAmountMapper(
		FungibleDefinition{Class: classToken, ValueOf: fungibleValue},
	)
	require.NoError(t, err)

	orphan := subTokenParticle{id: 2, dest: particle.EUIDFromAddress(newAddress(2)), amount: 7}
	_, err = mapper.Amount(orphan)
	require.Error(t, err)

	var cmErr *cmerror.Error
	require.ErrorAs(t, err, &cmErr)
	require.Equal(t, cmerror.UnknownParticle, cmErr.Kind)
}
