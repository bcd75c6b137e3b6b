// Package runtime defines the thin external-collaborator interfaces the
// planner's action layer drives: the container runtime client and the
// configuration-file writer (spec §6). Both are out of core scope; besides
// the contracts and the FakeRuntime test double, this package carries thin
// real adapters: DockerCLIRuntime (shelling out to the docker binary) and
// FileConfigWriter (plain file writes behind a sentinel lock file).
package runtime

import "context"

// ActivationState mirrors the teacher's ContainerRuntime unit states
// (pkg/commands/runtime_types.go), trimmed to what the planner cares about.
type ActivationState string

const (
	Active     ActivationState = "active"
	Activating ActivationState = "activating"
	Inactive   ActivationState = "inactive"
)

// Unit is one container as reported by list().
type Unit struct {
	Name            string
	ContainerImage  string
	ActivationState ActivationState
	Ports           map[int]int // external -> internal
}

// ContainerRuntime is the out-of-scope external collaborator: a thin client
// around the container engine (docker/podman/etc).
type ContainerRuntime interface {
	Add(ctx context.Context, name, image string, ports map[int]int, env map[string]string) error
	Remove(ctx context.Context, name string) error // idempotent on missing
	List(ctx context.Context) ([]Unit, error)

	// ExposeVolume and UnexposeVolume bind an already-created volume's
	// mountpoint into the runtime ahead of StartApplication, and release
	// it after StopApplication succeeds (spec §4.4).
	ExposeVolume(ctx context.Context, name, mountpoint string) error
	UnexposeVolume(ctx context.Context, name string) error
}

// ConfigWriter is the out-of-scope configuration-file loader's write half;
// the agent owns the configuration file path and must release it on every
// exit path (spec §5's shared-resource policy).
type ConfigWriter interface {
	Write(path string, data []byte) error
}
