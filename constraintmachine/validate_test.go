package constraintmachine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/i2/radix-engine-library/constraintmachine/cmerror"
	"github.com/i2/radix-engine-library/particle"
	"github.com/i2/radix-engine-library/spin"
	"github.com/i2/radix-engine-library/store"
)

type fixtureParticle struct {
	id    byte
	class particle.ClassTag
}

func (p fixtureParticle) ClassTag() particle.ClassTag { return p.class }
func (p fixtureParticle) Key() particle.Key {
	var k particle.Key
	k[0] = p.id
	return k
}
func (p fixtureParticle) Destinations() []particle.EUID { return nil }

const classFoo particle.ClassTag = "foo"

func passthroughDefinition(class particle.ClassTag) ParticleDefinition {
	return ParticleDefinition{
		ClassTag:    class,
		ShardMapper: func(particle.Particle) []particle.EUID { return nil },
		StaticCheck: func(particle.Particle) error { return nil },
	}
}

func buildMachine(t *testing.T, configure func(b *Builder)) *Machine {
	t.Helper()
	b := NewBuilder()
	require.NoError(t, b.AddDefinition(passthroughDefinition(classFoo)))
	if configure != nil {
		configure(b)
	}
	m, err := b.Build()
	require.NoError(t, err)
	return m
}

// Scenario 1: a single UP with a passing static check, nothing to consume,
// succeeds without ever reaching transition dispatch.
func TestValidateSingleUPAccepted(t *testing.T) {
	m := buildMachine(t, nil)
	atom := &particle.Atom{Groups: []particle.ParticleGroup{
		{{Particle: fixtureParticle{id: 1, class: classFoo}, Spin: spin.UP}},
	}}
	base := store.NewInMemoryEngineStore()
	_, err := m.Validate(atom, base)
	require.NoError(t, err)
}

// Scenario 2: UP then DOWN of the same particle within one atom, dispatched
// as a trivial self-transition with a true precondition, succeeds.
func TestValidateSelfTransition(t *testing.T) {
	token := TransitionToken{InputClass: classFoo, InputUsedType: "Void", OutputClass: classFoo, OutputUsedType: "Void"}
	m := buildMachine(t, func(b *Builder) {
		proc := NewProcedure(
			func(in fixtureParticle, inUsed VoidUsedData, out fixtureParticle, outUsed VoidUsedData) error { return nil },
			nil, nil, nil, nil,
		)
		require.NoError(t, b.AddProcedure(token, proc))
	})

	atom := &particle.Atom{Groups: []particle.ParticleGroup{
		{{Particle: fixtureParticle{id: 1, class: classFoo}, Spin: spin.UP}},
		{{Particle: fixtureParticle{id: 1, class: classFoo}, Spin: spin.DOWN}},
	}}
	base := store.NewInMemoryEngineStore()
	_, err := m.Validate(atom, base)
	require.NoError(t, err)
}

// Scenario 3: UP then UP of the same particle is a ParticleConflict, caught
// during lowering before any store or dispatch work.
func TestValidateDoubleUPIsParticleConflict(t *testing.T) {
	m := buildMachine(t, nil)
	atom := &particle.Atom{Groups: []particle.ParticleGroup{
		{{Particle: fixtureParticle{id: 1, class: classFoo}, Spin: spin.UP}},
		{{Particle: fixtureParticle{id: 1, class: classFoo}, Spin: spin.UP}},
	}}
	base := store.NewInMemoryEngineStore()
	_, err := m.Validate(atom, base)
	var cmErr *cmerror.Error
	require.ErrorAs(t, err, &cmErr)
	require.Equal(t, cmerror.ParticleConflict, cmErr.Kind)
}

// Scenario 5: a DOWN with nothing preceding it, against an empty store,
// fails MissingDependency during spin evolution.
func TestValidateDownBeforeUpIsMissingDependency(t *testing.T) {
	m := buildMachine(t, nil)
	atom := &particle.Atom{Groups: []particle.ParticleGroup{
		{{Particle: fixtureParticle{id: 1, class: classFoo}, Spin: spin.DOWN}},
	}}
	base := store.NewInMemoryEngineStore()
	_, err := m.Validate(atom, base)
	var cmErr *cmerror.Error
	require.ErrorAs(t, err, &cmErr)
	require.Equal(t, cmerror.MissingDependency, cmErr.Kind)
}

// Scenario 6: the same particle pushed twice within one group, even with
// different target spins, is rejected at lowering as ParticleConflict.
func TestValidateIntraGroupDuplicateIsParticleConflict(t *testing.T) {
	m := buildMachine(t, nil)
	atom := &particle.Atom{Groups: []particle.ParticleGroup{
		{
			{Particle: fixtureParticle{id: 1, class: classFoo}, Spin: spin.UP},
			{Particle: fixtureParticle{id: 1, class: classFoo}, Spin: spin.DOWN},
		},
	}}
	base := store.NewInMemoryEngineStore()
	_, err := m.Validate(atom, base)
	var cmErr *cmerror.Error
	require.ErrorAs(t, err, &cmErr)
	require.Equal(t, cmerror.ParticleConflict, cmErr.Kind)
}

// A dangling carry left unpaired at the end of dispatch is UnbalancedGroup.
func TestValidateDanglingCarryIsUnbalancedGroup(t *testing.T) {
	token := TransitionToken{InputClass: classFoo, InputUsedType: "Void", OutputClass: classFoo, OutputUsedType: "Void"}
	m := buildMachine(t, func(b *Builder) {
		proc := NewProcedure(
			func(in fixtureParticle, inUsed VoidUsedData, out fixtureParticle, outUsed VoidUsedData) error { return nil },
			func(in fixtureParticle, inUsed VoidUsedData, out fixtureParticle, outUsed VoidUsedData) (VoidUsedData, bool) {
				return VoidUsedData{}, true // input always claims to survive, never fully consumed
			},
			nil, nil, nil,
		)
		require.NoError(t, b.AddProcedure(token, proc))
	})

	atom := &particle.Atom{Groups: []particle.ParticleGroup{
		{
			{Particle: fixtureParticle{id: 2, class: classFoo}, Spin: spin.UP},
			{Particle: fixtureParticle{id: 1, class: classFoo}, Spin: spin.DOWN},
		},
	}}
	base := store.NewInMemoryEngineStore()
	// The consumed particle must already be UP, or spin evolution rejects the
	// atom with MissingDependency before dispatch runs.
	require.NoError(t, base.StoreAtom(&particle.Atom{Groups: []particle.ParticleGroup{
		{{Particle: fixtureParticle{id: 1, class: classFoo}, Spin: spin.UP}},
	}}))
	_, err := m.Validate(atom, base)
	var cmErr *cmerror.Error
	require.ErrorAs(t, err, &cmErr)
	require.Equal(t, cmerror.UnbalancedGroup, cmErr.Kind)
}
