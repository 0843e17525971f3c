// Package atomos is the scrypt registration surface (C4, §5): where a
// constraint scrypt declares its particle classes, transitions, and
// atom-kernel hooks, and where those declarations get compiled down into a
// constraintmachine.Machine ready to validate atoms.
package atomos

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/i2/radix-engine-library/constraintmachine"
	"github.com/i2/radix-engine-library/constraintmachine/debug"
	"github.com/i2/radix-engine-library/metrics"
	"github.com/i2/radix-engine-library/particle"
	"github.com/i2/radix-engine-library/spin"
	"github.com/i2/radix-engine-library/store"
)

// ConstraintScryptEnv is the registration surface a ConstraintScrypt is
// handed. It exists as an interface, rather than exposing *Env directly, so
// a scrypt cannot reach past registration into the machine's internals.
type ConstraintScryptEnv interface {
	RegisterParticle(class particle.ClassTag, shardMapper func(particle.Particle) []particle.EUID, staticCheck func(particle.Particle) error) error
	RegisterParticleMultipleAddresses(class particle.ClassTag, addressesMapper func(particle.Particle) []particle.Address, staticCheck func(particle.Particle) error) error
	RegisterParticleWithRRI(class particle.ClassTag, shardMapper func(particle.Particle) []particle.EUID, staticCheck func(particle.Particle) error, rriMapper func(particle.Particle) (particle.RRI, bool)) error
	RequireOnClass(class particle.ClassTag, check func(particle.Particle) error) error
	RequireInitialWith(indexedClass, sideEffectClass particle.ClassTag, check func(indexed, sideEffect particle.Particle) error) error
	CreateTransition(token constraintmachine.TransitionToken, proc constraintmachine.Procedure) error
	AddKernelProcedure(kp constraintmachine.KernelProcedure)
	AddCompute(key string, fn constraintmachine.ComputeFunc) error
}

// ConstraintScrypt is the unit a module of particle/transition logic is
// packaged as: a function that registers itself against an env.
type ConstraintScrypt func(env ConstraintScryptEnv) error

// Routine is a macro that registers several related definitions and
// procedures against an env in one call — e.g. CreateTransitionFromRRICombined
// (§4.4's "execute_routine ... calls back into the environment to register
// multiple definitions/procedures atomically"). "Atomically" here means the
// routine's registrations either all succeed or the first failure aborts
// the rest; ExecuteRoutine does not roll back what already landed, matching
// Load's same contract for a failing scrypt.
type Routine func(env ConstraintScryptEnv) error

// ExecuteRoutine runs r against e.
func (e *Env) ExecuteRoutine(r Routine) error {
	return r(e)
}

// Env accumulates registrations from one or more scrypts and compiles them
// into a constraintmachine.Machine via Build.
type Env struct {
	builder *constraintmachine.Builder
	defs    map[particle.ClassTag]constraintmachine.ParticleDefinition
	tokens  []constraintmachine.TransitionToken
}

func NewEnv() *Env {
	return &Env{
		builder: constraintmachine.NewBuilder(),
		defs:    make(map[particle.ClassTag]constraintmachine.ParticleDefinition),
	}
}

// Load runs every scrypt against this env in order. A scrypt returning an
// error aborts the load; already-registered definitions from earlier
// scrypts are left in place (the caller is expected to discard the Env).
func (e *Env) Load(scrypts ...ConstraintScrypt) error {
	for i, s := range scrypts {
		if err := s(e); err != nil {
			return fmt.Errorf("atomos: scrypt %d failed to register: %w", i, err)
		}
	}
	return nil
}

func wrapStaticCheck(shardMapper func(particle.Particle) []particle.EUID, staticCheck func(particle.Particle) error) func(particle.Particle) error {
	return func(p particle.Particle) error {
		declared := p.Destinations()
		if len(declared) == 0 {
			return fmt.Errorf("particle of class %q declares no destinations", p.ClassTag())
		}
		computed := shardMapper(p)
		if !particle.NewEUIDSet(declared...).Equal(particle.NewEUIDSet(computed...)) {
			return fmt.Errorf("particle of class %q declares destinations that do not match its shard mapper", p.ClassTag())
		}
		if staticCheck != nil {
			return staticCheck(p)
		}
		return nil
	}
}

// RegisterParticle declares a particle class: its shard mapper and its
// static check. The static check is wrapped, per §4.4, to also reject
// empty-destination particles and particles whose declared destinations
// diverge from what the shard mapper computes (invariant 4).
func (e *Env) RegisterParticle(class particle.ClassTag, shardMapper func(particle.Particle) []particle.EUID, staticCheck func(particle.Particle) error) error {
	def := constraintmachine.ParticleDefinition{
		ClassTag:    class,
		ShardMapper: shardMapper,
		StaticCheck: wrapStaticCheck(shardMapper, staticCheck),
	}
	if err := e.builder.AddDefinition(def); err != nil {
		return err
	}
	e.defs[class] = def
	return nil
}

// RegisterParticleMultipleAddresses is RegisterParticle for particle
// classes whose destinations are naturally expressed as addresses rather
// than raw EUIDs.
func (e *Env) RegisterParticleMultipleAddresses(class particle.ClassTag, addressesMapper func(particle.Particle) []particle.Address, staticCheck func(particle.Particle) error) error {
	shardMapper := func(p particle.Particle) []particle.EUID {
		addrs := addressesMapper(p)
		out := make([]particle.EUID, len(addrs))
		for i, a := range addrs {
			out[i] = particle.EUIDFromAddress(a)
		}
		return out
	}
	return e.RegisterParticle(class, shardMapper, staticCheck)
}

// RegisterParticleWithRRI is RegisterParticle plus an RRI mapper: classes
// registered this way participate in cross-transition RRI equality checks
// (§4.3.2 point 4) and in the zero-nonce virtualization rule (§4.2, §9) for
// any instance that also implements Noncer.
func (e *Env) RegisterParticleWithRRI(class particle.ClassTag, shardMapper func(particle.Particle) []particle.EUID, staticCheck func(particle.Particle) error, rriMapper func(particle.Particle) (particle.RRI, bool)) error {
	def := constraintmachine.ParticleDefinition{
		ClassTag:    class,
		ShardMapper: shardMapper,
		StaticCheck: wrapStaticCheck(shardMapper, staticCheck),
		RRIMapper:   rriMapper,
	}
	if err := e.builder.AddDefinition(def); err != nil {
		return err
	}
	e.defs[class] = def
	return nil
}

// RequireOnClass registers a stateless constraint over every instance of
// class that appears in an atom, independent of any transition (`on(Class)`
// / `ParticleClassConstraint.require` in CMAtomOS.java: "a constraint
// based on a particle class ... that ignores metadata"). Unlike
// RegisterParticle's StaticCheck, this can be layered onto an
// already-registered class by any scrypt, including one that did not
// register the class itself — e.g. a payload scrypt constraining a shared
// "note" particle class's size without owning its definition.
func (e *Env) RequireOnClass(class particle.ClassTag, check func(particle.Particle) error) error {
	if _, ok := e.defs[class]; !ok {
		return fmt.Errorf("atomos: %q is not registered", class)
	}
	e.builder.AddKernelProcedure(requireOnClassKernel(class, check))
	return nil
}

func requireOnClassKernel(class particle.ClassTag, check func(particle.Particle) error) constraintmachine.KernelProcedure {
	return func(atom *particle.Atom) []error {
		var errs []error
		atom.ForEach(func(_ particle.DataPointer, sp particle.SpunParticle) bool {
			if sp.Particle.ClassTag() != class {
				return true
			}
			if err := check(sp.Particle); err != nil {
				errs = append(errs, err)
			}
			return true
		})
		return errs
	}
}

func (e *Env) CreateTransition(token constraintmachine.TransitionToken, proc constraintmachine.Procedure) error {
	if err := e.builder.AddProcedure(token, proc); err != nil {
		return err
	}
	e.tokens = append(e.tokens, token)
	return nil
}

// RegisteredTokens reports every transition token registered so far, for
// feeding constraintmachine/debug's dependency-graph dump.
func (e *Env) RegisteredTokens() []debug.TokenDescriptor {
	out := make([]debug.TokenDescriptor, len(e.tokens))
	for i, tok := range e.tokens {
		out[i] = debug.TokenDescriptor{
			InputClass:     tok.InputClass,
			InputUsedType:  tok.InputUsedType,
			OutputClass:    tok.OutputClass,
			OutputUsedType: tok.OutputUsedType,
		}
	}
	return out
}

func (e *Env) AddKernelProcedure(kp constraintmachine.KernelProcedure) {
	e.builder.AddKernelProcedure(kp)
}

func (e *Env) AddCompute(key string, fn constraintmachine.ComputeFunc) error {
	return e.builder.AddCompute(key, fn)
}

// Noncer is implemented by particles that carry an RRI nonce. A registered
// RRI particle at nonce 0 is virtualized to UP, letting its very first
// consuming transition dispatch against an RRI instance that was never
// explicitly stored (§4.2's RRI transformer).
type Noncer interface {
	RRINonce() uint64
}

func defaultDestinationTransformer(defs map[particle.ClassTag]constraintmachine.ParticleDefinition) store.Transformer {
	return store.Transformer{
		Predicate: func(p particle.Particle) bool {
			def, ok := defs[p.ClassTag()]
			if !ok || def.ShardMapper == nil {
				return false
			}
			return particle.NewEUIDSet(p.Destinations()...).Equal(particle.NewEUIDSet(def.ShardMapper(p)...))
		},
		DefaultSpin: spin.NEUTRAL,
	}
}

func rriZeroNonceTransformer(defs map[particle.ClassTag]constraintmachine.ParticleDefinition) store.Transformer {
	return store.Transformer{
		Predicate: func(p particle.Particle) bool {
			def, ok := defs[p.ClassTag()]
			if !ok || def.RRIMapper == nil {
				return false
			}
			n, ok := p.(Noncer)
			return ok && n.RRINonce() == 0
		},
		DefaultSpin: spin.UP,
	}
}

// WithLogger attaches l to the machine under construction.
func (e *Env) WithLogger(l *zap.SugaredLogger) *Env {
	e.builder.WithLogger(l)
	return e
}

// WithMetrics attaches a prometheus metrics set to the machine under
// construction.
func (e *Env) WithMetrics(m *metrics.Set) *Env {
	e.builder.WithMetrics(m)
	return e
}

// Build compiles every registration made so far into an immutable Machine.
// The default-destination transformer is registered before the RRI-zero-
// nonce transformer, so the RRI rule is the innermost virtualization wrap
// around the base store and its answer takes precedence (§9).
func (e *Env) Build() (*constraintmachine.Machine, error) {
	e.builder.WithStateTransformer(defaultDestinationTransformer(e.defs))
	e.builder.WithStateTransformer(rriZeroNonceTransformer(e.defs))
	return e.builder.Build()
}
