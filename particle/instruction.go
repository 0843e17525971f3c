package particle

import "fmt"

// DataPointer locates a spun particle within an atom: its particle-group
// index and its index within that group. It is carried by every
// micro-instruction and by every validation error for diagnostic precision
// (§3, §7).
type DataPointer struct {
	GroupIndex    int
	ParticleIndex int
}

func (d DataPointer) String() string {
	return fmt.Sprintf("(%d,%d)", d.GroupIndex, d.ParticleIndex)
}
