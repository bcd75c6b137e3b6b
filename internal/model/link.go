package model

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/schevalier/flocker/internal/errkind"
)

const defaultLinkProtocol = "tcp"

// Link declares that this application expects to reach another application's
// port, addressed locally as LocalPort and forwarded by the peer as
// RemotePort, under the given Alias.
type Link struct {
	LocalPort  int
	RemotePort int
	Alias      string
}

// NewLink validates port ranges and a non-empty alias.
func NewLink(application string, localPort, remotePort int, alias string) (Link, error) {
	if !validPortNumber(localPort) || !validPortNumber(remotePort) {
		return Link{}, errkind.NewConfigurationError(application,
			fmt.Sprintf("link ports local=%d remote=%d out of range 1..65535", localPort, remotePort))
	}
	if alias == "" {
		return Link{}, errkind.NewConfigurationError(application, "link alias must not be empty")
	}
	return Link{LocalPort: localPort, RemotePort: remotePort, Alias: alias}, nil
}

// EnvAlias uppercases the alias and replaces hyphens with underscores, the
// normalization applied only when synthesizing environment variable names.
func (l Link) EnvAlias() string {
	return strings.ToUpper(strings.ReplaceAll(l.Alias, "-", "_"))
}

// SortLinks returns links sorted by (alias, local_port, remote_port).
func SortLinks(links []Link) []Link {
	out := slices.Clone(links)
	slices.SortFunc(out, func(a, b Link) int {
		if c := cmp.Compare(a.Alias, b.Alias); c != 0 {
			return c
		}
		if c := cmp.Compare(a.LocalPort, b.LocalPort); c != 0 {
			return c
		}
		return cmp.Compare(a.RemotePort, b.RemotePort)
	})
	return out
}

// SynthesizeLinkEnv builds the <ALIAS>_PORT_<local_port>_* family for one
// link of an application running on hostname. The remote endpoint is
// addressed at hostname itself: a proxy installed on that host (see
// internal/netproxy) is what actually forwards the connection on to
// whichever peer owns the target, so the application never needs to know
// the peer's identity.
func SynthesizeLinkEnv(link Link, hostname string) map[string]string {
	alias := link.EnvAlias()
	prefix := fmt.Sprintf("%s_PORT_%d", alias, link.LocalPort)
	return map[string]string{
		prefix:           fmt.Sprintf("%s://%s:%d", defaultLinkProtocol, hostname, link.RemotePort),
		prefix + "_ADDR":  hostname,
		prefix + "_PORT":  fmt.Sprintf("%d", link.RemotePort),
		prefix + "_PROTO": defaultLinkProtocol,
	}
}
