// Package lines provides a small indented line-buffer builder used for
// rendering diagnostic dumps (CM errors, application results, machine
// tables) the way the teacher's util/lines package renders transactions and
// state dumps: chainable Add calls terminating in String().
package lines

import (
	"fmt"
	"strings"
)

// Lines is an indented, chainable line buffer.
type Lines struct {
	prefix string
	buf    []string
}

// New starts a new Lines buffer. An optional prefix is prepended to every
// added line.
func New(prefix ...string) *Lines {
	l := &Lines{}
	if len(prefix) > 0 {
		l.prefix = prefix[0]
	}
	return l
}

// Add appends a formatted line.
func (l *Lines) Add(format string, args ...any) *Lines {
	l.buf = append(l.buf, l.prefix+fmt.Sprintf(format, args...))
	return l
}

// AddNoLf is Add but callers expecting to chain without a trailing newline
// semantics distinction; kept for symmetry with teacher idiom call sites.
func (l *Lines) AddNoLf(format string, args ...any) *Lines {
	return l.Add(format, args...)
}

// Append concatenates another Lines buffer's content onto this one.
func (l *Lines) Append(other *Lines) *Lines {
	l.buf = append(l.buf, other.buf...)
	return l
}

// String renders the buffer, one line per Add call.
func (l *Lines) String() string {
	return strings.Join(l.buf, "\n")
}
