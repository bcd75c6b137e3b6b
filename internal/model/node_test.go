package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schevalier/flocker/internal/model"
)

func mustApp(t *testing.T, name string) model.Application {
	t.Helper()
	app, err := model.NewApplication(name, nil, nil, nil, nil, nil)
	require.NoError(t, err)
	return app
}

func TestNewNodeRejectsDuplicateApplicationNames(t *testing.T) {
	_, err := model.NewNode("node1", []model.Application{mustApp(t, "web"), mustApp(t, "web")})
	assert.Error(t, err)
}

func TestNewDeploymentRejectsDuplicateHostnames(t *testing.T) {
	n1, err := model.NewNode("node1", []model.Application{mustApp(t, "web")})
	require.NoError(t, err)
	n2, err := model.NewNode("node1", []model.Application{mustApp(t, "db")})
	require.NoError(t, err)

	_, err = model.NewDeployment([]model.Node{n1, n2})
	assert.Error(t, err)
}

func TestDeploymentLookups(t *testing.T) {
	web := mustApp(t, "web")
	db := mustApp(t, "db")
	n1, err := model.NewNode("node1", []model.Application{web})
	require.NoError(t, err)
	n2, err := model.NewNode("node2", []model.Application{db})
	require.NoError(t, err)

	d, err := model.NewDeployment([]model.Node{n1, n2})
	require.NoError(t, err)

	host, ok := d.HostOf("db")
	require.True(t, ok)
	assert.Equal(t, "node2", host)

	_, ok = d.HostOf("missing")
	assert.False(t, ok)

	n, ok := d.NodeByHostname("node1")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"web"}, n.ApplicationNames())
}

func TestApplicationWithVolume(t *testing.T) {
	vol, err := model.NewAttachedVolume("db", "db", "/var/lib/db")
	require.NoError(t, err)
	db, err := model.NewApplication("db", nil, &vol, nil, nil, nil)
	require.NoError(t, err)
	n1, err := model.NewNode("node1", []model.Application{db})
	require.NoError(t, err)
	d, err := model.NewDeployment([]model.Node{n1})
	require.NoError(t, err)

	ha, ok := d.ApplicationWithVolume("db")
	require.True(t, ok)
	assert.Equal(t, "node1", ha.Hostname)
	assert.Equal(t, "db", ha.Application.Name)

	_, ok = d.ApplicationWithVolume("missing")
	assert.False(t, ok)
}
