package constraintmachine

import (
	"fmt"

	"github.com/i2/radix-engine-library/metrics"
	"github.com/i2/radix-engine-library/particle"
	"github.com/i2/radix-engine-library/store"
	"go.uber.org/zap"
)

// Builder assembles a Machine. It is mutable only while BUILDING; Build
// freezes it into an immutable Machine and the Builder itself must not be
// reused afterward (§4.3.4).
type Builder struct {
	definitions      map[particle.ClassTag]ParticleDefinition
	procedures       map[TransitionToken]Procedure
	kernelProcedures []KernelProcedure
	computes         map[string]ComputeFunc
	transformers     []store.Transformer
	logger           *zap.SugaredLogger
	metrics          *metrics.Set
	built            bool
}

func NewBuilder() *Builder {
	return &Builder{
		definitions: make(map[particle.ClassTag]ParticleDefinition),
		procedures:  make(map[TransitionToken]Procedure),
		computes:    make(map[string]ComputeFunc),
		logger:      zap.NewNop().Sugar(),
	}
}

func (b *Builder) mustBeBuilding(op string) {
	if b.built {
		panic(fmt.Sprintf("constraintmachine: Builder.%s called after Build", op))
	}
}

// AddDefinition registers a particle class. Re-registering the same
// ClassTag is rejected: a class has at most one definition (§3 invariant).
func (b *Builder) AddDefinition(def ParticleDefinition) error {
	b.mustBeBuilding("AddDefinition")
	if _, exists := b.definitions[def.ClassTag]; exists {
		return fmt.Errorf("constraintmachine: duplicate particle definition for class %q", def.ClassTag)
	}
	b.definitions[def.ClassTag] = def
	return nil
}

// AddProcedure registers the transition procedure dispatched for token.
// Re-registering the same token is rejected.
func (b *Builder) AddProcedure(token TransitionToken, proc Procedure) error {
	b.mustBeBuilding("AddProcedure")
	if _, exists := b.procedures[token]; exists {
		return fmt.Errorf("constraintmachine: duplicate transition procedure for token %+v", token)
	}
	b.procedures[token] = proc
	return nil
}

func (b *Builder) AddKernelProcedure(kp KernelProcedure) *Builder {
	b.mustBeBuilding("AddKernelProcedure")
	b.kernelProcedures = append(b.kernelProcedures, kp)
	return b
}

func (b *Builder) AddCompute(key string, fn ComputeFunc) error {
	b.mustBeBuilding("AddCompute")
	if _, exists := b.computes[key]; exists {
		return fmt.Errorf("constraintmachine: duplicate compute key %q", key)
	}
	b.computes[key] = fn
	return nil
}

// WithStateTransformer registers a virtualization transformer. Call order
// is composition order: see store.VirtualizeAll (§4.2, §9).
func (b *Builder) WithStateTransformer(t store.Transformer) *Builder {
	b.mustBeBuilding("WithStateTransformer")
	b.transformers = append(b.transformers, t)
	return b
}

func (b *Builder) WithLogger(l *zap.SugaredLogger) *Builder {
	b.mustBeBuilding("WithLogger")
	b.logger = l
	return b
}

func (b *Builder) WithMetrics(m *metrics.Set) *Builder {
	b.mustBeBuilding("WithMetrics")
	b.metrics = m
	return b
}

// Build freezes the builder into a Machine. Calling any mutator on the
// Builder afterward panics (§4.3.4: BUILDING -> BUILT is a one-way door).
func (b *Builder) Build() (*Machine, error) {
	b.mustBeBuilding("Build")
	b.built = true
	return &Machine{
		definitions:      b.definitions,
		procedures:       b.procedures,
		kernelProcedures: b.kernelProcedures,
		computes:         b.computes,
		transformers:     b.transformers,
		logger:           b.logger,
		metrics:          b.metrics,
	}, nil
}

// Machine is the immutable, BUILT constraint machine: the only thing
// callers validate atoms against (§4.3.4).
type Machine struct {
	definitions      map[particle.ClassTag]ParticleDefinition
	procedures       map[TransitionToken]Procedure
	kernelProcedures []KernelProcedure
	computes         map[string]ComputeFunc
	transformers     []store.Transformer
	logger           *zap.SugaredLogger
	metrics          *metrics.Set
}
