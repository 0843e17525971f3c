package main

import (
	_ "embed"
	"encoding/hex"
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/i2/radix-engine-library/particle"
	"github.com/i2/radix-engine-library/spin"
)

//go:embed genesis.yaml
var defaultGenesisYAML []byte

// particleSpec, spunParticleSpec and groupSpec are the YAML-facing shapes;
// genesisSpec is parsed once at startup and converted into a real
// *particle.Atom.
type particleSpec struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"` // hex-encoded 32-byte public key
	Data    string `yaml:"data"`
}

type spunParticleSpec struct {
	Particle string `yaml:"particle"`
	Spin     string `yaml:"spin"` // "UP" or "DOWN"
}

type groupSpec struct {
	Particles []spunParticleSpec `yaml:"particles"`
}

type genesisSpec struct {
	Particles []particleSpec `yaml:"particles"`
	Groups    []groupSpec    `yaml:"groups"`
}

func parseGenesis(raw []byte) (*particle.Atom, error) {
	var spec genesisSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("cmvalidate: parsing genesis YAML: %w", err)
	}

	byName := make(map[string]PayloadParticle, len(spec.Particles))
	for _, ps := range spec.Particles {
		addr, err := decodeAddress(ps.Address)
		if err != nil {
			return nil, fmt.Errorf("cmvalidate: particle %q: %w", ps.Name, err)
		}
		byName[ps.Name] = PayloadParticle{Name: ps.Name, Address: addr, Data: []byte(ps.Data)}
	}

	atom := &particle.Atom{Witnesses: particle.NewWitnessBundle()}
	for gi, gs := range spec.Groups {
		group := make(particle.ParticleGroup, 0, len(gs.Particles))
		for _, sps := range gs.Particles {
			p, ok := byName[sps.Particle]
			if !ok {
				return nil, fmt.Errorf("cmvalidate: group %d references unknown particle %q", gi, sps.Particle)
			}
			s, err := parseSpin(sps.Spin)
			if err != nil {
				return nil, fmt.Errorf("cmvalidate: group %d, particle %q: %w", gi, sps.Particle, err)
			}
			group = append(group, particle.SpunParticle{Particle: p, Spin: s})
		}
		atom.Groups = append(atom.Groups, group)
	}
	return atom, nil
}

func parseSpin(s string) (spin.Spin, error) {
	switch s {
	case "UP":
		return spin.UP, nil
	case "DOWN":
		return spin.DOWN, nil
	default:
		return spin.NEUTRAL, fmt.Errorf("spin must be UP or DOWN, got %q", s)
	}
}

func decodeAddress(hexKey string) (particle.Address, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return particle.Address{}, fmt.Errorf("invalid hex address %q: %w", hexKey, err)
	}
	var pk particle.PublicKey
	if len(raw) != len(pk) {
		return particle.Address{}, fmt.Errorf("address %q must decode to %d bytes, got %d", hexKey, len(pk), len(raw))
	}
	copy(pk[:], raw)
	return particle.NewAddress(pk), nil
}
