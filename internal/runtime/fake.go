package runtime

import (
	"context"

	"github.com/schevalier/flocker/internal/errkind"
)

// FakeRuntime is an in-process ContainerRuntime double for planner/action
// tests, matching the teacher's own runtime_mock.go approach of a minimal
// map-backed stand-in rather than exercising a real container engine.
type FakeRuntime struct {
	units   map[string]Unit
	exposed map[string]string
}

func NewFakeRuntime() *FakeRuntime {
	return &FakeRuntime{units: make(map[string]Unit), exposed: make(map[string]string)}
}

func (r *FakeRuntime) Add(_ context.Context, name, image string, ports map[int]int, _ map[string]string) error {
	if _, exists := r.units[name]; exists {
		return errkind.NewRuntimeConflict(name, nil)
	}
	r.units[name] = Unit{Name: name, ContainerImage: image, ActivationState: Active, Ports: ports}
	return nil
}

func (r *FakeRuntime) Remove(_ context.Context, name string) error {
	delete(r.units, name) // idempotent: deleting an absent key is a no-op
	return nil
}

func (r *FakeRuntime) List(_ context.Context) ([]Unit, error) {
	out := make([]Unit, 0, len(r.units))
	for _, u := range r.units {
		out = append(out, u)
	}
	return out, nil
}

// Has reports whether name is currently tracked, for test assertions.
func (r *FakeRuntime) Has(name string) bool {
	_, ok := r.units[name]
	return ok
}

func (r *FakeRuntime) ExposeVolume(_ context.Context, name, mountpoint string) error {
	r.exposed[name] = mountpoint
	return nil
}

func (r *FakeRuntime) UnexposeVolume(_ context.Context, name string) error {
	delete(r.exposed, name) // idempotent: unexposing an absent mount is a no-op
	return nil
}

// Exposed reports the mountpoint bound for name, for test assertions.
func (r *FakeRuntime) Exposed(name string) (string, bool) {
	mountpoint, ok := r.exposed[name]
	return mountpoint, ok
}
