package particle

import "encoding/hex"

// PublicKey is an opaque verification key. The core never interprets its
// bytes beyond equality and hashing; real signature verification lives
// behind the WitnessData oracle (§6).
type PublicKey [32]byte

func (k PublicKey) String() string {
	return hex.EncodeToString(k[:])
}

// Address identifies a signer. It is the unit the RRI namespace and the
// witness pipeline key off, the Go stand-in for the source's RadixAddress.
type Address struct {
	Key PublicKey
}

func NewAddress(key PublicKey) Address {
	return Address{Key: key}
}

func (a Address) String() string {
	return a.Key.String()
}

func (a Address) Equal(other Address) bool {
	return a.Key == other.Key
}
