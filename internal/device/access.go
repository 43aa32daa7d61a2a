package device

import (
	"fmt"
	"strings"

	"github.com/bjoernQ/svd2html/internal/svd"
)

// Access is the access mode of a register or field.
type Access int

// Access modes as named in the source document.
const (
	AccessUnset Access = iota
	ReadOnly
	WriteOnly
	ReadWrite
	WriteOnce
	ReadWriteOnce
)

var accessNames = map[string]Access{
	"read-only":      ReadOnly,
	"write-only":     WriteOnly,
	"read-write":     ReadWrite,
	"writeonce":      WriteOnce,
	"read-writeonce": ReadWriteOnce,
}

var accessLabels = map[Access]string{
	AccessUnset:   "-",
	ReadOnly:      "R",
	WriteOnly:     "W",
	ReadWrite:     "RW",
	WriteOnce:     "WO",
	ReadWriteOnce: "RWO",
}

// ParseAccess converts the textual access mode of the source document.
// An empty string results in AccessUnset.
func ParseAccess(s string) (Access, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	if text == "" {
		return AccessUnset, nil
	}
	access, ok := accessNames[text]
	if !ok {
		return AccessUnset, fmt.Errorf("%w: unsupported access mode '%s'", svd.ErrStructuralParse, s)
	}
	return access, nil
}

// Label returns the short human readable label of the access mode.
func (a Access) Label() string {
	label, ok := accessLabels[a]
	if !ok {
		return accessLabels[AccessUnset]
	}
	return label
}

// Or returns the access mode, or fallback if it is unset.
func (a Access) Or(fallback Access) Access {
	if a == AccessUnset {
		return fallback
	}
	return a
}

func (a Access) String() string {
	for name, access := range accessNames {
		if access == a {
			return name
		}
	}
	return "unset"
}
