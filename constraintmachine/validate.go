package constraintmachine

import (
	"time"

	"github.com/gammazero/deque"

	"github.com/i2/radix-engine-library/constraintmachine/application"
	"github.com/i2/radix-engine-library/constraintmachine/cmerror"
	"github.com/i2/radix-engine-library/particle"
	"github.com/i2/radix-engine-library/spin"
	"github.com/i2/radix-engine-library/store"
)

// Validate runs the full pipeline of §4.3.2 against atom, reading through
// base wrapped in this machine's registered virtualization transformers.
// It never mutates base: the caller decides whether to call StoreAtom
// afterward (§4.3.3).
func (m *Machine) Validate(atom *particle.Atom, base store.EngineStore) (res *application.Result, err error) {
	if m.metrics != nil {
		start := time.Now()
		defer func() {
			m.metrics.ValidateDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				kind := "unknown"
				if cmErr, ok := err.(*cmerror.Error); ok {
					kind = string(cmErr.Kind)
				} else if _, ok := err.(cmerror.Batch); ok {
					kind = string(cmerror.KernelProcedureError)
				}
				m.metrics.ObserveRejection(kind)
			} else {
				m.metrics.ObserveAccepted()
			}
		}()
	}

	vstore := store.VirtualizeAll(base, m.transformers...)

	// 1. Kernel checks, collected to completion.
	var batch cmerror.Batch
	for _, kp := range m.kernelProcedures {
		for _, err := range kp(atom) {
			if err == nil {
				continue
			}
			batch = append(batch, cmerror.Wrap(cmerror.KernelProcedureError, particle.DataPointer{}, err, "kernel procedure rejected atom"))
		}
	}
	if err := batch.AsError(); err != nil {
		return nil, err
	}

	// 2. Lowering + atom-local structural checks.
	instructions, err := ToMicroInstructions(atom)
	if err != nil {
		return nil, err
	}

	// 3. Per-particle static checks.
	for _, instr := range instructions {
		if instr.Op != Push {
			continue
		}
		p := instr.SpunParticle.Particle
		def, ok := m.definitions[p.ClassTag()]
		if !ok {
			return nil, cmerror.New(cmerror.UnknownParticle, instr.Pointer, "no particle definition registered for class %q", p.ClassTag())
		}
		if def.StaticCheck != nil {
			if err := def.StaticCheck(p); err != nil {
				return nil, cmerror.Wrap(cmerror.StaticCheckFailed, instr.Pointer, err, "static check failed for class %q", p.ClassTag())
			}
		}
	}

	// 4. Spin evolution, in atom order, against the virtualized store.
	pending := make(map[particle.Key]spin.Spin)
	for _, instr := range instructions {
		if instr.Op != Push {
			continue
		}
		sp := instr.SpunParticle
		key := sp.Particle.Key()
		cur, seen := pending[key]
		if !seen {
			cur = vstore.GetSpin(sp.Particle)
		}

		if sp.Spin == spin.DOWN && cur == spin.NEUTRAL {
			return nil, cmerror.New(cmerror.MissingDependency, instr.Pointer, "particle is DOWN before ever being UP")
		}
		expected, nextErr := spin.Next(cur)
		if nextErr != nil || sp.Spin != expected {
			return nil, cmerror.New(cmerror.SpinConflict, instr.Pointer, "particle spin %s cannot be followed by %s", cur, sp.Spin)
		}
		pending[key] = sp.Spin
	}

	// 5. Transition dispatch over consuming/producing PUSH pairs.
	if err := m.dispatch(instructions, atom.Witnesses); err != nil {
		return nil, err
	}

	result := &application.Result{Computed: make(map[string]any, len(m.computes))}
	for key, fn := range m.computes {
		result.Computed[key] = fn(atom)
	}
	return result, nil
}

// dispatch pairs consuming (DOWN) and producing (UP) PUSH instructions in
// the order they occur, greedily: a fresh pair is pulled only when both
// queues have something waiting. When a procedure's used-compute reports a
// surviving carry on one side, that side is held and re-paired with the
// next entry on the other queue; the pairing terminates cleanly once
// neither queue holds an active carry, whether or not the queues still
// hold uncorrelated, non-carried leftovers (plain unpaired creates/destroys
// are legal — see DESIGN.md's UnbalancedGroup resolution). A carry that
// survives with nothing left to pair it against is the one case
// UnbalancedGroup actually reports.
func (m *Machine) dispatch(instructions []MicroInstruction, witnesses particle.WitnessData) error {
	var inQ, outQ deque.Deque[MicroInstruction]
	for _, instr := range instructions {
		if instr.Op != Push {
			continue
		}
		if instr.SpunParticle.Spin == spin.DOWN {
			inQ.PushBack(instr)
		} else {
			outQ.PushBack(instr)
		}
	}

	var curIn, curOut *MicroInstruction
	inUsed, outUsed := UsedData(VoidUsedData{}), UsedData(VoidUsedData{})

	for {
		switch {
		case curIn == nil && curOut == nil:
			if inQ.Len() == 0 || outQ.Len() == 0 {
				return nil
			}
			in := inQ.PopFront()
			out := outQ.PopFront()
			curIn, curOut = &in, &out
			inUsed, outUsed = VoidUsedData{}, VoidUsedData{}
		case curOut == nil:
			if outQ.Len() == 0 {
				return cmerror.New(cmerror.UnbalancedGroup, curIn.Pointer, "consuming particle has no producing counterpart left to pair with")
			}
			out := outQ.PopFront()
			curOut = &out
			outUsed = VoidUsedData{}
		case curIn == nil:
			if inQ.Len() == 0 {
				return cmerror.New(cmerror.UnbalancedGroup, curOut.Pointer, "producing particle has no consuming counterpart left to pair with")
			}
			in := inQ.PopFront()
			curIn = &in
			inUsed = VoidUsedData{}
		}

		in := curIn.SpunParticle.Particle
		out := curOut.SpunParticle.Particle
		token := TransitionToken{
			InputClass:     in.ClassTag(),
			InputUsedType:  inUsed.UsedDataType(),
			OutputClass:    out.ClassTag(),
			OutputUsedType: outUsed.UsedDataType(),
		}
		proc, ok := m.procedures[token]
		if !ok {
			return cmerror.New(cmerror.MissingProcedure, curIn.Pointer, "no transition procedure registered for %+v", token)
		}

		if proc.Precondition != nil {
			if err := proc.Precondition(in, inUsed, out, outUsed); err != nil {
				return cmerror.Wrap(cmerror.PreconditionFailed, curIn.Pointer, err, "transition precondition rejected")
			}
		}

		if err := m.checkRRIEquality(in, out, curIn.Pointer); err != nil {
			return err
		}

		if proc.InputWitnessValidator != nil {
			if err := proc.InputWitnessValidator(in, witnesses); err != nil {
				return cmerror.Wrap(cmerror.WitnessFailure, curIn.Pointer, err, "input witness validation failed")
			}
		}
		if proc.OutputWitnessValidator != nil {
			if err := proc.OutputWitnessValidator(out, witnesses); err != nil {
				return cmerror.Wrap(cmerror.WitnessFailure, curOut.Pointer, err, "output witness validation failed")
			}
		}

		var inCarried, outCarried bool
		var newInUsed, newOutUsed UsedData
		if proc.InputUsedCompute != nil {
			newInUsed, inCarried = proc.InputUsedCompute(in, inUsed, out, outUsed)
		}
		if proc.OutputUsedCompute != nil {
			newOutUsed, outCarried = proc.OutputUsedCompute(in, inUsed, out, outUsed)
		}

		switch {
		case inCarried && outCarried:
			return cmerror.New(cmerror.UsedDataConflict, curIn.Pointer, "both sides of the transition reported a surviving carry")
		case inCarried:
			inUsed = newInUsed
			curOut = nil
		case outCarried:
			outUsed = newOutUsed
			curIn = nil
		default:
			curIn, curOut = nil, nil
		}
		if m.metrics != nil {
			m.metrics.DispatchedPairs.Inc()
		}
	}
}

func (m *Machine) checkRRIEquality(in, out particle.Particle, ptr particle.DataPointer) error {
	inDef, ok := m.definitions[in.ClassTag()]
	if !ok || inDef.RRIMapper == nil {
		return nil
	}
	outDef, ok := m.definitions[out.ClassTag()]
	if !ok || outDef.RRIMapper == nil {
		return nil
	}
	inRRI, inOk := inDef.RRIMapper(in)
	outRRI, outOk := outDef.RRIMapper(out)
	if !inOk || !outOk {
		return nil
	}
	if !inRRI.Equal(outRRI) {
		return cmerror.New(cmerror.RRIMismatch, ptr, "input RRI %s does not match output RRI %s", inRRI, outRRI)
	}
	return nil
}
