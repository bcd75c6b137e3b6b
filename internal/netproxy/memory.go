package netproxy

import "github.com/schevalier/flocker/internal/model"

// MemoryController is an in-memory ProxyController double, the Go
// counterpart of the original implementation's MemoryNetwork test fake.
// Views obtained through WithNamespace share one simulated kernel state (a
// `used` ports map keyed globally, `proxies` keyed by namespace), so
// controllers with different namespaces derived from the same
// NewMemoryNetwork value observe each other's used ports, matching real
// kernel semantics. Separate NewMemoryNetwork calls do not share state.
type MemoryController struct {
	namespace string
	state     *memoryState
}

type memoryState struct {
	proxies map[string][]model.Proxy // namespace -> proxies
	used    map[int]bool
}

// NewMemoryNetwork returns a namespace-scoped view over fresh shared state;
// call .WithNamespace on the result to get additional views sharing the
// same underlying kernel simulation.
func NewMemoryNetwork(namespace string) *MemoryController {
	return &MemoryController{
		namespace: namespace,
		state:     &memoryState{proxies: make(map[string][]model.Proxy), used: make(map[int]bool)},
	}
}

// WithNamespace returns a sibling controller sharing this one's simulated
// kernel state but scoped to a different namespace.
func (m *MemoryController) WithNamespace(namespace string) *MemoryController {
	return &MemoryController{namespace: namespace, state: m.state}
}

func (m *MemoryController) Namespace() string { return m.namespace }

func (m *MemoryController) CreateProxyTo(ip string, port int) (model.Proxy, error) {
	p := model.Proxy{TargetIP: ip, TargetPort: port, Namespace: m.namespace}
	m.state.proxies[m.namespace] = append(m.state.proxies[m.namespace], p)
	m.state.used[port] = true
	return p, nil
}

func (m *MemoryController) DeleteProxy(p model.Proxy) error {
	owned := m.state.proxies[p.Namespace]
	for i, existing := range owned {
		if existing == p {
			m.state.proxies[p.Namespace] = append(owned[:i], owned[i+1:]...)
			break
		}
	}
	// The port stays marked used after the proxy is deleted: the fake
	// does not track whether another namespace or a listening socket
	// still claims it, so it never releases a used port.
	return nil
}

func (m *MemoryController) EnumerateProxies() ([]model.Proxy, error) {
	out := make([]model.Proxy, len(m.state.proxies[m.namespace]))
	copy(out, m.state.proxies[m.namespace])
	return out, nil
}

func (m *MemoryController) EnumerateUsedPorts() (map[int]bool, error) {
	out := make(map[int]bool, len(m.state.used))
	for p := range m.state.used {
		out[p] = true
	}
	return out, nil
}

// MarkPortUsed lets tests simulate a pre-existing listening socket.
func (m *MemoryController) MarkPortUsed(port int) {
	m.state.used[port] = true
}
