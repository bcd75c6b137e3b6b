package netproxy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schevalier/flocker/internal/netproxy"
)

func TestCreateProxyToIsScopedByNamespace(t *testing.T) {
	a := netproxy.NewMemoryNetwork("ns-a")
	b := a.WithNamespace("ns-b")

	_, err := a.CreateProxyTo("10.0.0.1", 5432)
	require.NoError(t, err)

	aProxies, err := a.EnumerateProxies()
	require.NoError(t, err)
	assert.Len(t, aProxies, 1)

	bProxies, err := b.EnumerateProxies()
	require.NoError(t, err)
	assert.Len(t, bProxies, 0)
}

func TestUsedPortsAreGlobalAcrossNamespaces(t *testing.T) {
	a := netproxy.NewMemoryNetwork("ns-a")
	b := a.WithNamespace("ns-b")

	_, err := a.CreateProxyTo("10.0.0.1", 5432)
	require.NoError(t, err)

	used, err := b.EnumerateUsedPorts()
	require.NoError(t, err)
	assert.True(t, used[5432])
}

func TestMarkPortUsedSimulatesExistingListener(t *testing.T) {
	m := netproxy.NewMemoryNetwork("ns-a")
	m.MarkPortUsed(9090)

	used, err := m.EnumerateUsedPorts()
	require.NoError(t, err)
	assert.True(t, used[9090])
}

func TestDeleteProxyRemovesFromOwningNamespaceOnly(t *testing.T) {
	a := netproxy.NewMemoryNetwork("ns-a")
	p, err := a.CreateProxyTo("10.0.0.1", 5432)
	require.NoError(t, err)

	require.NoError(t, a.DeleteProxy(p))

	proxies, err := a.EnumerateProxies()
	require.NoError(t, err)
	assert.Len(t, proxies, 0)
}
