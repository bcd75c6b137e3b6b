package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schevalier/flocker/internal/model"
)

func TestNewApplication(t *testing.T) {
	scenarios := []struct {
		name      string
		appName   string
		ports     []model.Port
		wantError bool
	}{
		{name: "valid", appName: "web", ports: []model.Port{{Internal: 80, External: 8080}}},
		{name: "empty name rejected", appName: "", wantError: true},
		{
			name:    "duplicate external port rejected",
			appName: "web",
			ports: []model.Port{
				{Internal: 80, External: 8080},
				{Internal: 81, External: 8080},
			},
			wantError: true,
		},
	}

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			_, err := model.NewApplication(sc.appName, nil, nil, sc.ports, nil, nil)
			if sc.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewApplicationVolumeNameMustMatch(t *testing.T) {
	vol, err := model.NewAttachedVolume("web", "other-name", "/var/lib/data")
	require.NoError(t, err)

	_, err = model.NewApplication("web", nil, &vol, nil, nil, nil)
	assert.Error(t, err)
}

func TestApplicationEqualIsOrderIndependentOnPorts(t *testing.T) {
	a, err := model.NewApplication("web", nil, nil, []model.Port{
		{Internal: 80, External: 8080},
		{Internal: 81, External: 8081},
	}, nil, nil)
	require.NoError(t, err)

	b, err := model.NewApplication("web", nil, nil, []model.Port{
		{Internal: 81, External: 8081},
		{Internal: 80, External: 8080},
	}, nil, nil)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
}

func TestApplicationsByNameAndNames(t *testing.T) {
	web, err := model.NewApplication("web", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	db, err := model.NewApplication("db", nil, nil, nil, nil, nil)
	require.NoError(t, err)

	byName := model.ApplicationsByName([]model.Application{web, db})
	assert.Len(t, byName, 2)
	assert.Equal(t, "web", byName["web"].Name)

	names := model.ApplicationNames([]model.Application{web, db})
	assert.ElementsMatch(t, []string{"web", "db"}, names)
}
