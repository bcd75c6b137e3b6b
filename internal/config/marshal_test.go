package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schevalier/flocker/internal/config"
	"github.com/schevalier/flocker/internal/model"
)

func TestMarshalRoundTripsThroughParseApplications(t *testing.T) {
	img, err := model.ParseImageReference("web", "nginx:1.25")
	require.NoError(t, err)
	port, err := model.NewPort("web", 80, 8080)
	require.NoError(t, err)
	link, err := model.NewLink("web", 5432, 5432, "db")
	require.NoError(t, err)
	app, err := model.NewApplication("web", &img, nil, []model.Port{port}, []model.Link{link},
		map[string]string{"FOO": "bar"})
	require.NoError(t, err)

	data, err := config.Marshal(map[string]model.Application{"web": app}, []int{22, 443})
	require.NoError(t, err)

	reparsed, err := config.ParseApplications(data)
	require.NoError(t, err)
	require.Contains(t, reparsed, "web")
	assert.True(t, app.Equal(reparsed["web"]))
}

func TestMarshalEmitsUsedPortsSorted(t *testing.T) {
	data, err := config.Marshal(map[string]model.Application{}, []int{443, 22, 8080})
	require.NoError(t, err)
	assert.Contains(t, string(data), "used_ports")
	assert.Regexp(t, `(?s)22.*443.*8080`, string(data))
}

func TestMarshalVolumeUnknownMountpointEmitsNullMountpoint(t *testing.T) {
	vol := model.NewAttachedVolumeUnknownMountpoint("db")
	app, err := model.NewApplication("db", nil, &vol, nil, nil, nil)
	require.NoError(t, err)

	data, err := config.Marshal(map[string]model.Application{"db": app}, nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mountpoint: null")
}
