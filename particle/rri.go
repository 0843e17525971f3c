package particle

import (
	"fmt"
	"regexp"
)

// nameByteClass is the Base58 alphabet minus the visually ambiguous
// characters 0, O, I, l, exactly as specified for RRI names.
var nameByteClass = regexp.MustCompile(`^[1-9A-Za-z]+$`)

// RRI (Radix Resource Identifier) globally names a resource as the pair of
// the address that owns its namespace and a name unique within it.
type RRI struct {
	Address Address
	Name    string
}

// NewRRI validates Name against the Base58-minus-ambiguous-characters
// alphabet at construction time, per §6.
func NewRRI(addr Address, name string) (RRI, error) {
	if !nameByteClass.MatchString(name) {
		return RRI{}, fmt.Errorf("rri: name %q does not match %s", name, nameByteClass.String())
	}
	return RRI{Address: addr, Name: name}, nil
}

func (r RRI) Equal(other RRI) bool {
	return r.Address.Equal(other.Address) && r.Name == other.Name
}

func (r RRI) String() string {
	return fmt.Sprintf("%s/%s", r.Address, r.Name)
}
