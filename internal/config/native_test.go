package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schevalier/flocker/internal/config"
	"github.com/schevalier/flocker/internal/model"
)

func TestParseApplicationsNative(t *testing.T) {
	doc := []byte(`
version: 1
applications:
  web:
    image: nginx:1.25
    ports:
      - internal: 80
        external: 8080
    links:
      - local_port: 5432
        remote_port: 5432
        alias: db
    environment:
      FOO: bar
  db:
    image: postgres:16
    volume:
      mountpoint: /var/lib/postgresql/data
`)

	apps, err := config.ParseApplications(doc)
	require.NoError(t, err)
	require.Contains(t, apps, "web")
	require.Contains(t, apps, "db")

	web := apps["web"]
	assert.Equal(t, "nginx:1.25", web.Image.String())
	require.Len(t, web.Ports, 1)
	assert.Equal(t, 8080, web.Ports[0].External)
	require.Len(t, web.Links, 1)
	assert.Equal(t, "db", web.Links[0].Alias)
	assert.Equal(t, "bar", web.Environment["FOO"])

	db := apps["db"]
	require.NotNil(t, db.Volume)
	assert.Equal(t, "/var/lib/postgresql/data", db.Volume.Mountpoint)
}

func TestParseApplicationsRejectsUnknownVersion(t *testing.T) {
	doc := []byte(`
version: 2
applications:
  web:
    image: nginx:1.25
`)
	_, err := config.ParseApplications(doc)
	assert.Error(t, err)
}

func TestParseApplicationsRejectsUnrecognizedKey(t *testing.T) {
	doc := []byte(`
version: 1
applications:
  web:
    image: nginx:1.25
    bogus: true
`)
	_, err := config.ParseApplications(doc)
	assert.Error(t, err)
}

func TestParseApplicationsStrictRejectsBadImage(t *testing.T) {
	doc := []byte(`
version: 1
applications:
  web:
    image: nginx
`)
	_, err := config.ParseApplications(doc)
	assert.Error(t, err)
}

func TestParseApplicationsLenientSubstitutesUnknownImage(t *testing.T) {
	doc := []byte(`
version: 1
applications:
  web:
    image: nginx
`)
	apps, err := config.ParseApplicationsLenient(doc)
	require.NoError(t, err)
	assert.True(t, apps["web"].Image.IsUnknown())
}

func TestParseDeploymentResolvesKnownApplications(t *testing.T) {
	appsDoc := []byte(`
version: 1
applications:
  web:
    image: nginx:1.25
  db:
    image: postgres:16
`)
	apps, err := config.ParseApplications(appsDoc)
	require.NoError(t, err)

	deploymentDoc := []byte(`
version: 1
nodes:
  node1:
    - web
  node2:
    - db
`)
	d, err := config.ParseDeployment(deploymentDoc, apps)
	require.NoError(t, err)

	host, ok := d.HostOf("db")
	require.True(t, ok)
	assert.Equal(t, "node2", host)
}

func TestParseDeploymentRejectsUnknownApplication(t *testing.T) {
	deploymentDoc := []byte(`
version: 1
nodes:
  node1:
    - ghost
`)
	_, err := config.ParseDeployment(deploymentDoc, map[string]model.Application{})
	assert.Error(t, err)
}
