package model

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/schevalier/flocker/internal/errkind"
)

// Port is a host-side to in-container TCP port mapping.
type Port struct {
	Internal int
	External int
}

func validPortNumber(n int) bool { return n >= 1 && n <= 65535 }

// NewPort validates both port numbers are in 1..65535.
func NewPort(application string, internal, external int) (Port, error) {
	if !validPortNumber(internal) || !validPortNumber(external) {
		return Port{}, errkind.NewConfigurationError(application,
			fmt.Sprintf("port internal=%d external=%d out of range 1..65535", internal, external))
	}
	return Port{Internal: internal, External: external}, nil
}

// SortPorts returns ports sorted by (external, internal) ascending, matching
// the marshaller's ordering rule.
func SortPorts(ports []Port) []Port {
	out := slices.Clone(ports)
	slices.SortFunc(out, func(a, b Port) int {
		if c := cmp.Compare(a.External, b.External); c != 0 {
			return c
		}
		return cmp.Compare(a.Internal, b.Internal)
	})
	return out
}

// UniquePortsByExternal reports a ConfigurationError if two ports in the set
// share an external port (ports must be unique within an application).
func UniquePortsByExternal(application string, ports []Port) error {
	seen := make(map[int]bool, len(ports))
	for _, p := range ports {
		if seen[p.External] {
			return errkind.NewConfigurationError(application,
				fmt.Sprintf("duplicate external port %d", p.External))
		}
		seen[p.External] = true
	}
	return nil
}
