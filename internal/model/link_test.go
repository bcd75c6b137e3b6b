package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schevalier/flocker/internal/model"
)

func TestNewLink(t *testing.T) {
	scenarios := []struct {
		name       string
		localPort  int
		remotePort int
		alias      string
		wantError  bool
	}{
		{name: "valid", localPort: 80, remotePort: 5432, alias: "db"},
		{name: "out of range port rejected", localPort: 0, remotePort: 5432, alias: "db", wantError: true},
		{name: "empty alias rejected", localPort: 80, remotePort: 5432, alias: "", wantError: true},
	}

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			_, err := model.NewLink("web", sc.localPort, sc.remotePort, sc.alias)
			if sc.wantError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEnvAliasNormalization(t *testing.T) {
	link, err := model.NewLink("web", 80, 5432, "my-db")
	require.NoError(t, err)
	assert.Equal(t, "MY_DB", link.EnvAlias())
}

func TestSynthesizeLinkEnvAddressesOwnHostname(t *testing.T) {
	link, err := model.NewLink("web", 80, 5432, "db")
	require.NoError(t, err)

	env := model.SynthesizeLinkEnv(link, "node1.example.com")

	assert.Equal(t, "tcp://node1.example.com:5432", env["DB_PORT_80"])
	assert.Equal(t, "node1.example.com", env["DB_PORT_80_ADDR"])
	assert.Equal(t, "5432", env["DB_PORT_80_PORT"])
	assert.Equal(t, "tcp", env["DB_PORT_80_PROTO"])
}

func TestSortLinksStable(t *testing.T) {
	b, err := model.NewLink("web", 80, 5432, "b")
	require.NoError(t, err)
	a, err := model.NewLink("web", 81, 5433, "a")
	require.NoError(t, err)

	sorted := model.SortLinks([]model.Link{b, a})
	assert.Equal(t, "a", sorted[0].Alias)
	assert.Equal(t, "b", sorted[1].Alias)
}
