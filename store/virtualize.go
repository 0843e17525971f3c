package store

import (
	"github.com/i2/radix-engine-library/particle"
	"github.com/i2/radix-engine-library/spin"
)

// Predicate decides whether a transformer's virtualized default applies to
// a never-stored particle.
type Predicate func(p particle.Particle) bool

// Transformer pairs a predicate with the spin that should be reported, in
// place of NEUTRAL, for any particle the wrapped store reports as NEUTRAL
// and the predicate matches (§4.2 Virtualization, §9).
type Transformer struct {
	Predicate   Predicate
	DefaultSpin spin.Spin
}

// virtualizingStore wraps a base store with a single transformer. Composing
// several transformers means nesting several virtualizingStores; each one
// only replaces a NEUTRAL answer from the store it wraps, so the innermost
// transformer whose predicate matches decides the answer — the Go analogue
// of the source's StateStores.virtualizeDefault wrapping chain. VirtualizeAll
// nests the last-registered transformer innermost, so the RRI transformer
// (registered last) wraps the base store directly.
type virtualizingStore struct {
	EngineStore
	t Transformer
}

// Virtualize wraps base with a transformer: any particle base reports as
// NEUTRAL, and that the predicate matches, is instead reported at
// DefaultSpin.
func Virtualize(base EngineStore, t Transformer) EngineStore {
	return &virtualizingStore{EngineStore: base, t: t}
}

// VirtualizeAll composes transformers by registration order: the last
// transformer wraps base directly (innermost), each earlier one wraps the
// result (more outer). Since an inner transformer's non-NEUTRAL answer is
// never replaced, the last-registered transformer wins when several
// predicates match a never-stored particle, which is why the
// default-destination transformer must be registered before the
// RRI-zero-nonce transformer (§4.2, §9).
func VirtualizeAll(base EngineStore, ts ...Transformer) EngineStore {
	ret := base
	for i := len(ts) - 1; i >= 0; i-- {
		ret = Virtualize(ret, ts[i])
	}
	return ret
}

func (v *virtualizingStore) GetSpin(p particle.Particle) spin.Spin {
	s := v.EngineStore.GetSpin(p)
	if s != spin.NEUTRAL {
		return s
	}
	if v.t.Predicate(p) {
		return v.t.DefaultSpin
	}
	return s
}
