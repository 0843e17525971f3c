package atomos

import (
	"time"

	"github.com/i2/radix-engine-library/constraintmachine"
)

// Clock abstracts wall-clock access for atom-kernel procedures that need a
// notion of "now" — kept as an interface so tests can inject a fixed time
// instead of racing the system clock.
type Clock interface {
	Now() uint64
}

// SystemClock is the production Clock, backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() uint64 { return uint64(time.Now().Unix()) }

// AtomKernel bundles a kernel-level Require check with the named Compute
// hooks that should run once an atom clears it, and registers both
// together so a scrypt author cannot forget one half (§4.3.2 point 1,
// §4.3.3).
type AtomKernel struct {
	Require constraintmachine.KernelProcedure
	Compute map[string]constraintmachine.ComputeFunc
}

// RegisterAtomKernel wires k's Require procedure and Compute hooks into
// env.
func RegisterAtomKernel(env ConstraintScryptEnv, k AtomKernel) error {
	if k.Require != nil {
		env.AddKernelProcedure(k.Require)
	}
	for key, fn := range k.Compute {
		if err := env.AddCompute(key, fn); err != nil {
			return err
		}
	}
	return nil
}
