package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schevalier/flocker/internal/model"
)

func TestNewPortRange(t *testing.T) {
	scenarios := []struct {
		name      string
		internal  int
		external  int
		wantError bool
	}{
		{name: "valid", internal: 80, external: 8080},
		{name: "zero rejected", internal: 0, external: 8080, wantError: true},
		{name: "above 65535 rejected", internal: 80, external: 70000, wantError: true},
	}
	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			_, err := model.NewPort("web", sc.internal, sc.external)
			if sc.wantError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSortPortsOrdersByExternalThenInternal(t *testing.T) {
	p1 := model.Port{Internal: 80, External: 9090}
	p2 := model.Port{Internal: 81, External: 8080}
	p3 := model.Port{Internal: 79, External: 8080}

	sorted := model.SortPorts([]model.Port{p1, p2, p3})
	assert.Equal(t, []model.Port{p3, p2, p1}, sorted)
}

func TestUniquePortsByExternal(t *testing.T) {
	err := model.UniquePortsByExternal("web", []model.Port{
		{Internal: 80, External: 8080},
		{Internal: 81, External: 8080},
	})
	assert.Error(t, err)

	err = model.UniquePortsByExternal("web", []model.Port{
		{Internal: 80, External: 8080},
		{Internal: 81, External: 8081},
	})
	assert.NoError(t, err)
}

func TestNewAttachedVolumeRequiresAbsoluteASCIIPath(t *testing.T) {
	_, err := model.NewAttachedVolume("db", "db", "relative/path")
	assert.Error(t, err)

	_, err = model.NewAttachedVolume("db", "db", "/café/data")
	assert.Error(t, err)

	v, err := model.NewAttachedVolume("db", "db", "/var/lib/db")
	require.NoError(t, err)
	assert.False(t, v.MountpointUnknown())
}

func TestNewAttachedVolumeUnknownMountpointSentinel(t *testing.T) {
	v := model.NewAttachedVolumeUnknownMountpoint("db")
	assert.True(t, v.MountpointUnknown())
}

func TestParseImageReference(t *testing.T) {
	scenarios := []struct {
		name      string
		input     string
		wantError bool
	}{
		{name: "valid", input: "nginx:1.25"},
		{name: "missing tag rejected", input: "nginx", wantError: true},
		{name: "trailing colon rejected", input: "nginx:", wantError: true},
	}
	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			ref, err := model.ParseImageReference("web", sc.input)
			if sc.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, sc.input, ref.String())
		})
	}
}

func TestUnknownImage(t *testing.T) {
	img := model.UnknownImage()
	assert.True(t, img.IsUnknown())
	assert.Equal(t, model.UnknownImageSentinel, img.String())
}
