package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schevalier/flocker/internal/config"
)

func TestIsComposeStyleDetection(t *testing.T) {
	composeDoc := []byte(`
web:
  image: nginx:1.25
  ports:
    - "8080:80"
`)
	apps, err := config.ParseApplications(composeDoc)
	require.NoError(t, err)
	assert.Contains(t, apps, "web")
}

func TestComposeLinkClosureResolvesTargetPorts(t *testing.T) {
	doc := []byte(`
web:
  image: nginx:1.25
  links:
    - "db:database"
db:
  image: postgres:16
  ports:
    - "5432:5432"
`)
	apps, err := config.ParseApplications(doc)
	require.NoError(t, err)

	web := apps["web"]
	require.Len(t, web.Links, 1)
	link := web.Links[0]
	assert.Equal(t, "database", link.Alias)
	assert.Equal(t, 5432, link.LocalPort)
	assert.Equal(t, 5432, link.RemotePort)
}

func TestComposeLinkUnresolvedTargetRejected(t *testing.T) {
	doc := []byte(`
web:
  image: nginx:1.25
  links:
    - "ghost:alias"
`)
	_, err := config.ParseApplications(doc)
	assert.Error(t, err)
}

func TestComposeRejectsBuildKey(t *testing.T) {
	doc := []byte(`
web:
  build: .
`)
	_, err := config.ParseApplications(doc)
	assert.Error(t, err)
}

func TestComposeRejectsDenylistedKey(t *testing.T) {
	doc := []byte(`
web:
  image: nginx:1.25
  privileged: true
`)
	_, err := config.ParseApplications(doc)
	assert.Error(t, err)
}

func TestComposeMultiVolumeRejected(t *testing.T) {
	doc := []byte(`
web:
  image: nginx:1.25
  volumes:
    - /data
    - /other
`)
	_, err := config.ParseApplications(doc)
	assert.Error(t, err)
}

func TestUndetectableDocumentRejected(t *testing.T) {
	doc := []byte(`
foo: bar
`)
	_, err := config.ParseApplications(doc)
	assert.Error(t, err)
}
