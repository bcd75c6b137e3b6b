package action_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schevalier/flocker/internal/action"
	"github.com/schevalier/flocker/internal/model"
)

func TestLinkEnvironmentMergesUnderDeclaredEnvironment(t *testing.T) {
	link, err := model.NewLink("web", 5432, 5432, "db")
	require.NoError(t, err)
	app, err := model.NewApplication("web", nil, nil, nil, []model.Link{link},
		map[string]string{"DB_PORT_5432_ADDR": "overridden"})
	require.NoError(t, err)

	env := action.LinkEnvironment(app, "node1")

	assert.Equal(t, "overridden", env["DB_PORT_5432_ADDR"])
	assert.Equal(t, "5432", env["DB_PORT_5432_PORT"])
}

func TestLinkEnvironmentSynthesizesForEveryLink(t *testing.T) {
	l1, err := model.NewLink("web", 5432, 5432, "db")
	require.NoError(t, err)
	l2, err := model.NewLink("web", 6379, 6379, "cache")
	require.NoError(t, err)
	app, err := model.NewApplication("web", nil, nil, nil, []model.Link{l1, l2}, nil)
	require.NoError(t, err)

	env := action.LinkEnvironment(app, "node1")

	assert.Equal(t, "tcp://node1:5432", env["DB_PORT_5432"])
	assert.Equal(t, "tcp://node1:6379", env["CACHE_PORT_6379"])
}

// actionVariants lists the nine documented variants; a compile failure here
// means one of them was removed or no longer implements Action.
func actionVariants() []action.Action {
	return []action.Action{
		action.Sequentially{},
		action.InParallel{},
		action.StartApplication{},
		action.StopApplication{},
		action.CreateVolume{},
		action.WaitForVolume{},
		action.HandoffVolume{},
		action.PushVolume{},
		action.SetProxies{},
	}
}

func TestActionVariantSetIsClosed(t *testing.T) {
	assert.Len(t, actionVariants(), 9)
}
