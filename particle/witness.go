package particle

import "golang.org/x/crypto/blake2b"

// Signature is an opaque signature blob; the core never verifies it, it
// only indexes it by the signer's public-key fingerprint (§6, §9).
type Signature []byte

// Fingerprint is an O(1)-comparable digest of a PublicKey, used as the
// witness bundle's map key so WitnessData.IsSignedBy is O(1) as specified.
type Fingerprint [32]byte

func FingerprintOf(pk PublicKey) Fingerprint {
	return blake2b.Sum256(pk[:])
}

// WitnessData is the oracle transition procedures query to check
// authorization. The core trusts it completely; it performs no signature
// verification itself (§6).
type WitnessData interface {
	IsSignedBy(pk PublicKey) bool
}

// WitnessBundle is the conforming, in-memory WitnessData implementation: a
// set of signatures keyed by signer public key.
type WitnessBundle map[Fingerprint]Signature

func NewWitnessBundle() WitnessBundle {
	return make(WitnessBundle)
}

func (w WitnessBundle) Add(pk PublicKey, sig Signature) {
	w[FingerprintOf(pk)] = sig
}

func (w WitnessBundle) IsSignedBy(pk PublicKey) bool {
	_, ok := w[FingerprintOf(pk)]
	return ok
}
