// Package util carries the small set of invariant-checking helpers used
// throughout the engine, in the same spirit as the teacher's util package:
// Assertf/AssertNoError for programmer-error invariants that must never be
// reachable through valid atom data (those are reported as *cmerror.Error
// instead), never for input validation.
package util

import "fmt"

// Assertf panics with a formatted message if cond is false. Use only for
// conditions that indicate a bug in this package, never for rejecting
// attacker- or caller-controlled atom data.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

// AssertNoError panics if err is non-nil, prefixing the panic message.
func AssertNoError(err error, prefix ...string) {
	if err == nil {
		return
	}
	if len(prefix) > 0 {
		panic(fmt.Sprintf("%s: %v", prefix[0], err))
	}
	panic(err)
}

// Ref returns a pointer to a copy of v. Handy for turning a value into an
// optional-pointer field without a temporary variable at the call site.
func Ref[T any](v T) *T {
	return &v
}
