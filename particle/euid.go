package particle

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/slices"
)

// EUID is the core's opaque 128-bit-ish shard identifier. The core never
// interprets its bits; it only compares EUIDs for equality and computes set
// operations against declared particle destinations.
type EUID [16]byte

func (e EUID) String() string {
	return hex.EncodeToString(e[:])
}

// EUIDFromAddress derives a shard identifier for an address by truncating a
// blake2b-256 digest of its public key, mirroring the teacher's use of
// blake2b for deterministic derivation (ledger/base/embed.go RandomFromSeed).
func EUIDFromAddress(addr Address) EUID {
	h := blake2b.Sum256(addr.Key[:])
	var e EUID
	copy(e[:], h[:16])
	return e
}

// EUIDSet is an unordered set of shard identifiers, used to compare a
// particle's declared destinations against a shard mapper's computed
// destinations (invariant 4, "destination coverage").
type EUIDSet map[EUID]struct{}

func NewEUIDSet(ids ...EUID) EUIDSet {
	s := make(EUIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s EUIDSet) Insert(id EUID) {
	s[id] = struct{}{}
}

func (s EUIDSet) Contains(id EUID) bool {
	_, ok := s[id]
	return ok
}

// Equal reports whether s and other contain exactly the same elements,
// i.e. each is a superset of the other — the "destinations.containsAll"
// check the source performs both ways.
func (s EUIDSet) Equal(other EUIDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// Sorted returns the set's elements in a deterministic byte order, useful
// for logging and golden-file rendering.
func (s EUIDSet) Sorted() []EUID {
	ret := make([]EUID, 0, len(s))
	for id := range s {
		ret = append(ret, id)
	}
	slices.SortFunc(ret, func(a, b EUID) int {
		for i := range a {
			if a[i] != b[i] {
				return int(a[i]) - int(b[i])
			}
		}
		return 0
	})
	return ret
}
