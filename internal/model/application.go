package model

import (
	"slices"

	"github.com/samber/lo"
	"github.com/schevalier/flocker/internal/errkind"
)

// Application is a uniquely named container declaration.
type Application struct {
	Name        string
	Image       *ImageReference
	Volume      *AttachedVolume
	Ports       []Port
	Links       []Link
	Environment map[string]string
}

// NewApplication validates the name is non-empty, ports are unique by
// external port, and normalizes ports/links into the canonical sort order so
// Equal is order-independent.
func NewApplication(name string, image *ImageReference, volume *AttachedVolume, ports []Port, links []Link, env map[string]string) (Application, error) {
	if name == "" {
		return Application{}, errkind.NewConfigurationError(name, "application name must not be empty")
	}
	if err := UniquePortsByExternal(name, ports); err != nil {
		return Application{}, err
	}
	if volume != nil && volume.Name != name {
		return Application{}, errkind.NewConfigurationError(name,
			"volume name must equal the owning application's name")
	}
	return Application{
		Name:        name,
		Image:       image,
		Volume:      volume,
		Ports:       SortPorts(ports),
		Links:       SortLinks(links),
		Environment: env,
	}, nil
}

// HasVolume reports whether this application declares an attached volume.
func (a Application) HasVolume() bool { return a.Volume != nil }

// Equal compares two applications structurally; Ports/Links are assumed
// already canonically sorted by the constructor.
func (a Application) Equal(other Application) bool {
	if a.Name != other.Name {
		return false
	}
	if !imagePtrEqual(a.Image, other.Image) {
		return false
	}
	if !volumePtrEqual(a.Volume, other.Volume) {
		return false
	}
	if !slices.Equal(a.Ports, other.Ports) {
		return false
	}
	if !slices.Equal(a.Links, other.Links) {
		return false
	}
	return mapEqual(a.Environment, other.Environment)
}

func imagePtrEqual(a, b *ImageReference) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func volumePtrEqual(a, b *AttachedVolume) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func mapEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// ApplicationsByName indexes a set of applications by name.
func ApplicationsByName(apps []Application) map[string]Application {
	return lo.KeyBy(apps, func(a Application) string { return a.Name })
}

// ApplicationNames returns the set of names in apps.
func ApplicationNames(apps []Application) []string {
	return lo.Map(apps, func(a Application, _ int) string { return a.Name })
}
