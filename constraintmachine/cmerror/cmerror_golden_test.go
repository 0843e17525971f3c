package cmerror

import (
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/i2/radix-engine-library/particle"
)

// TestErrorRendering_Golden pins the exact text Error.Error() produces: the
// format is part of the machine's diagnostic surface, and a change to it
// should be a deliberate, reviewed diff rather than an incidental one.
func TestErrorRendering_Golden(t *testing.T) {
	err := Wrap(RRIMismatch, particle.DataPointer{GroupIndex: 1, ParticleIndex: 2}, errors.New("underlying"),
		"input RRI does not match output RRI")

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, "rri_mismatch_error", []byte(err.Error()))
}
