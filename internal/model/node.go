package model

import (
	"github.com/samber/lo"
	"github.com/schevalier/flocker/internal/errkind"
)

// Node is the set of applications assigned to one hostname.
type Node struct {
	Hostname     string
	Applications []Application
}

// NewNode validates that no two applications on the node share a name.
func NewNode(hostname string, apps []Application) (Node, error) {
	seen := make(map[string]bool, len(apps))
	for _, a := range apps {
		if seen[a.Name] {
			return Node{}, errkind.NewConfigurationError(a.Name,
				"duplicate application name on node "+hostname)
		}
		seen[a.Name] = true
	}
	return Node{Hostname: hostname, Applications: apps}, nil
}

// ApplicationNames is the set of application names assigned to this node.
func (n Node) ApplicationNames() []string {
	return ApplicationNames(n.Applications)
}

// Deployment is a cluster-wide mapping of applications to nodes; hostnames
// are unique within a deployment.
type Deployment struct {
	Nodes []Node
}

// NewDeployment validates hostname uniqueness across the deployment's
// nodes. Link-target resolution (every link's alias target must exist
// among the deployment's applications) happens earlier, during parsing,
// in internal/config/compose.go's two-pass composeLink resolution.
func NewDeployment(nodes []Node) (Deployment, error) {
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if seen[n.Hostname] {
			return Deployment{}, errkind.NewConfigurationError("",
				"duplicate hostname in deployment: "+n.Hostname)
		}
		seen[n.Hostname] = true
	}
	return Deployment{Nodes: nodes}, nil
}

// NodeByHostname returns the node for hostname, if present.
func (d Deployment) NodeByHostname(hostname string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.Hostname == hostname {
			return n, true
		}
	}
	return Node{}, false
}

// ApplicationsOnHost returns the applications deployed to hostname (empty if
// the hostname is not part of the deployment).
func (d Deployment) ApplicationsOnHost(hostname string) []Application {
	n, ok := d.NodeByHostname(hostname)
	if !ok {
		return nil
	}
	return n.Applications
}

// AllApplications flattens every (hostname, application) pair in the deployment.
type HostedApplication struct {
	Hostname    string
	Application Application
}

func (d Deployment) AllApplications() []HostedApplication {
	var out []HostedApplication
	for _, n := range d.Nodes {
		for _, a := range n.Applications {
			out = append(out, HostedApplication{Hostname: n.Hostname, Application: a})
		}
	}
	return out
}

// HostOf returns the hostname hosting the named application, if any.
func (d Deployment) HostOf(name string) (string, bool) {
	for _, n := range d.Nodes {
		if lo.SomeBy(n.Applications, func(a Application) bool { return a.Name == name }) {
			return n.Hostname, true
		}
	}
	return "", false
}

// ApplicationWithVolume returns the application owning the named volume and
// its hostname, anywhere in the deployment.
func (d Deployment) ApplicationWithVolume(volumeName string) (HostedApplication, bool) {
	for _, ha := range d.AllApplications() {
		if ha.Application.HasVolume() && ha.Application.Volume.Name == volumeName {
			return ha, true
		}
	}
	return HostedApplication{}, false
}
