// Package action defines the closed set of convergence primitives the
// planner emits (spec §4.4): a tagged-variant tree of state changes with
// value equality, executed by a single dispatcher in internal/executor
// rather than by per-type virtual methods. There are no extension points
// beyond the nine listed variants, so a closed interface with an
// unexported marker method stands in for the source language's subclass
// hierarchy.
package action

import "github.com/schevalier/flocker/internal/model"

// Action is implemented only by the types in this package; the unexported
// marker method closes the set the same way a sealed class hierarchy
// would in a language with one.
type Action interface {
	isAction()
}

// Sequentially runs its children in order; the first failure aborts the
// remaining children and propagates.
type Sequentially struct {
	Children []Action
}

// InParallel starts every child immediately, awaits all of them, and
// fails with the first error observed while still running every child to
// completion (spec §4.6).
type InParallel struct {
	Children []Action
}

// StartApplication exposes the application's volume (if any) to the
// runtime, then creates and starts its container with synthesized link
// environment merged under the application's own declared environment.
type StartApplication struct {
	Application model.Application
	Hostname    string
}

// StopApplication stops and removes the named container; a missing
// container is not an error. On success, if the application had a
// volume, it is unexposed from the runtime.
type StopApplication struct {
	Application model.Application
}

// CreateVolume creates a new, locally-owned volume with the given name.
type CreateVolume struct {
	Volume model.AttachedVolume
}

// WaitForVolume blocks until a volume with the given name exists and is
// locally owned.
type WaitForVolume struct {
	VolumeName string
}

// HandoffVolume transfers ownership of the named volume to the peer over
// the cross-node transport.
type HandoffVolume struct {
	VolumeName     string
	PeerHostname   string
	PrivateKeyPath string
}

// PushVolume replicates the named volume's contents to the peer without
// transferring ownership.
type PushVolume struct {
	VolumeName     string
	PeerHostname   string
	PrivateKeyPath string
}

// SetProxies reconciles the proxy controller's namespace to exactly the
// given set: the symmetric difference against what is currently
// installed is computed at execution time, not at plan time.
type SetProxies struct {
	Desired []model.Proxy
}

func (Sequentially) isAction()     {}
func (InParallel) isAction()       {}
func (StartApplication) isAction() {}
func (StopApplication) isAction()  {}
func (CreateVolume) isAction()     {}
func (WaitForVolume) isAction()    {}
func (HandoffVolume) isAction()    {}
func (PushVolume) isAction()       {}
func (SetProxies) isAction()       {}

// LinkEnvironment synthesizes the <ALIAS>_PORT_* family for every link
// declared by app, addressed at hostname, merged under the application's
// own declared environment (which wins on conflict, per spec §4.4).
func LinkEnvironment(app model.Application, hostname string) map[string]string {
	env := make(map[string]string, len(app.Environment))
	for _, link := range app.Links {
		for k, v := range model.SynthesizeLinkEnv(link, hostname) {
			env[k] = v
		}
	}
	for k, v := range app.Environment {
		env[k] = v
	}
	return env
}
