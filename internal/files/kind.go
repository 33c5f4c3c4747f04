package files

import (
	"fmt"
	"strings"
)

// Kind tells a descriptor consumer which storage root a path is relative to.
type Kind int

const (
	// Internal is a read-only asset bundled with the application.
	Internal Kind = iota
	// External is relative to the shared (removable) storage root.
	External
	// Absolute is used verbatim.
	Absolute
	// Local is relative to the private per-app storage root.
	Local
	// Classpath is a bundled resource looked up by logical name, not through
	// the asset reader.
	Classpath
)

var kindNames = [...]string{
	Internal:  "internal",
	External:  "external",
	Absolute:  "absolute",
	Local:     "local",
	Classpath: "classpath",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses a case-insensitive kind name.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown file kind %q", s)
}

// MarshalText lets reports encode kinds by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
