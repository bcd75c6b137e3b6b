// Package netproxy implements the namespaced port-proxy controller: an
// iptables-backed DNAT/MASQUERADE manager that isolates flocker-owned rules
// by a user-chosen namespace tag (§4.3).
package netproxy

import "github.com/schevalier/flocker/internal/model"

// ProxyController models the INetwork capability from §4.3: create/delete/
// enumerate proxies scoped to one namespace, plus a globally-scoped view of
// used ports (proxy ownership is namespaced; port usage is not).
type ProxyController interface {
	CreateProxyTo(ip string, port int) (model.Proxy, error)
	DeleteProxy(p model.Proxy) error
	EnumerateProxies() ([]model.Proxy, error)
	EnumerateUsedPorts() (map[int]bool, error)
	Namespace() string
}
