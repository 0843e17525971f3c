package main

import (
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/i2/radix-engine-library/atomos"
	"github.com/i2/radix-engine-library/particle"
)

const classPayload particle.ClassTag = "payload"

// PayloadParticle is the demo's one concrete particle class: an opaque
// byte payload owned by an address, with no transition requirements of its
// own — it only ever goes through class-level static checks (§5.1's
// "payload particles" supplement).
type PayloadParticle struct {
	Name    string
	Address particle.Address
	Data    []byte
}

func (p PayloadParticle) ClassTag() particle.ClassTag { return classPayload }

func (p PayloadParticle) Key() particle.Key {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	h.Write([]byte(p.Name))
	h.Write(p.Address.Key[:])
	h.Write(p.Data)
	var k particle.Key
	copy(k[:], h.Sum(nil))
	return k
}

func (p PayloadParticle) Destinations() []particle.EUID {
	return []particle.EUID{particle.EUIDFromAddress(p.Address)}
}

// maxPayloadBytes bounds the demo's static check; a real scrypt would size
// this to its actual wire-format budget.
const maxPayloadBytes = 4096

func registerPayloadScrypt(env atomos.ConstraintScryptEnv) error {
	shardMapper := func(p particle.Particle) []particle.EUID { return p.Destinations() }
	staticCheck := func(p particle.Particle) error {
		pp, ok := p.(PayloadParticle)
		if !ok {
			return fmt.Errorf("payload scrypt received a non-payload particle %T", p)
		}
		if len(pp.Data) > maxPayloadBytes {
			return fmt.Errorf("payload too large: %d bytes, max %d", len(pp.Data), maxPayloadBytes)
		}
		return nil
	}
	return env.RegisterParticle(classPayload, shardMapper, staticCheck)
}
