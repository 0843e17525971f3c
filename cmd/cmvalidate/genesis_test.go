package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/i2/radix-engine-library/spin"
)

func TestParseGenesis_EmbeddedDefaultParses(t *testing.T) {
	atom, err := parseGenesis(defaultGenesisYAML)
	require.NoError(t, err)
	require.Len(t, atom.Groups, 1)
	require.Len(t, atom.Groups[0], 1)

	sp := atom.Groups[0][0]
	require.Equal(t, spin.UP, sp.Spin)

	pp, ok := sp.Particle.(PayloadParticle)
	require.True(t, ok)
	require.Equal(t, "p0", pp.Name)
	require.Equal(t, "hello, ledger", string(pp.Data))
}

func TestParseGenesis_UnknownParticleReferenceFails(t *testing.T) {
	raw := []byte(`
particles:
  - name: p0
    address: "0100000000000000000000000000000000000000000000000000000000000000"
    data: "x"
groups:
  - particles:
      - particle: missing
        spin: UP
`)
	_, err := parseGenesis(raw)
	require.Error(t, err)
}

func TestParseGenesis_BadSpinFails(t *testing.T) {
	raw := []byte(`
particles:
  - name: p0
    address: "0100000000000000000000000000000000000000000000000000000000000000"
    data: "x"
groups:
  - particles:
      - particle: p0
        spin: SIDEWAYS
`)
	_, err := parseGenesis(raw)
	require.Error(t, err)
}

func TestDecodeAddress_WrongLengthFails(t *testing.T) {
	_, err := decodeAddress("0100")
	require.Error(t, err)
}

func TestDecodeAddress_InvalidHexFails(t *testing.T) {
	_, err := decodeAddress("not-hex")
	require.Error(t, err)
}
