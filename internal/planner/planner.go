// Package planner computes the ordered action plan a convergence tick
// should execute (spec §4.5): given the desired deployment, a possibly
// stale cluster-wide view of where things currently run, what is
// actually observed on the local node, and the local hostname, it
// produces a single action.Sequentially of phases, each an
// action.InParallel of primitives. Empty phases are omitted.
package planner

import (
	"github.com/samber/lo"

	"github.com/schevalier/flocker/internal/action"
	"github.com/schevalier/flocker/internal/model"
)

// Inputs bundles everything one planning pass needs. CurrentProxies is the
// proxy controller's own enumeration at observation time — the spec
// describes the first step as comparing against "the controller's current
// enumeration" without listing it among the four named inputs, so it is
// folded in here as part of the same observed-state bundle as
// ObservedLocal.
type Inputs struct {
	Desired        model.Deployment
	CurrentCluster model.Deployment
	ObservedLocal  model.NodeState
	LocalHostname  string
	CurrentProxies []model.Proxy
	Namespace      string
	PrivateKeyPath string
}

// Plan computes the ordered plan for one tick.
func Plan(in Inputs) action.Action {
	phases := make([]action.Action, 0, 7)

	if proxies, changed := proxyDelta(in); changed {
		phases = append(phases, action.SetProxies{Desired: proxies})
	}

	toStart, toStop, toRestart := containerDeltas(in)
	changes := volumeDeltas(in)

	// Phase order follows the worked scenario (S5) rather than the
	// prose summary: push the outgoing snapshot before stopping the
	// owning container so the pushed image is whatever was last
	// running, then stop, then hand off ownership, then wait on what
	// is coming in, then create anything brand new, then start.
	phases = appendIfNonEmpty(phases, pushPhase(in, changes.Going))
	phases = appendIfNonEmpty(phases, stopPhase(toStop))
	phases = appendIfNonEmpty(phases, handoffPhase(in, changes.Going))
	phases = appendIfNonEmpty(phases, waitPhase(changes.Coming))
	phases = appendIfNonEmpty(phases, createPhase(changes.Creating))
	phases = appendIfNonEmpty(phases, startRestartPhase(in, toStart, toRestart))

	return action.Sequentially{Children: phases}
}

func appendIfNonEmpty(phases []action.Action, phase action.Action) []action.Action {
	if phase == nil {
		return phases
	}
	return append(phases, phase)
}

// proxyDelta collects every port exposed by every application on every
// non-local node in desired and reports whether that set differs from
// what the controller currently has installed.
func proxyDelta(in Inputs) ([]model.Proxy, bool) {
	desired := make(map[model.Proxy]struct{})
	for _, ha := range in.Desired.AllApplications() {
		if ha.Hostname == in.LocalHostname {
			continue
		}
		for _, p := range ha.Application.Ports {
			desired[model.Proxy{TargetIP: ha.Hostname, TargetPort: p.External, Namespace: in.Namespace}] = struct{}{}
		}
	}

	current := make(map[model.Proxy]struct{}, len(in.CurrentProxies))
	for _, p := range in.CurrentProxies {
		current[model.Proxy{TargetIP: p.TargetIP, TargetPort: p.TargetPort, Namespace: in.Namespace}] = struct{}{}
	}

	if setsEqual(desired, current) {
		return nil, false
	}
	out := make([]model.Proxy, 0, len(desired))
	for p := range desired {
		out = append(out, p)
	}
	return out, true
}

func setsEqual[T comparable](a, b map[T]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// containerDeltas implements spec §4.5 step 2.
func containerDeltas(in Inputs) (toStart, toStop, toRestart []model.Application) {
	desiredLocal := in.Desired.ApplicationsOnHost(in.LocalHostname)
	desiredByName := model.ApplicationsByName(desiredLocal)
	desiredNames := lo.Keys(desiredByName)

	running := model.ApplicationsByName(in.ObservedLocal.Running)
	notRunning := model.ApplicationsByName(in.ObservedLocal.NotRunning)
	allLocal := model.ApplicationsByName(in.ObservedLocal.AllApplications())

	for _, name := range desiredNames {
		_, isRunning := running[name]
		_, isNotRunning := notRunning[name]
		if !isRunning && !isNotRunning {
			toStart = append(toStart, desiredByName[name])
		}
		if isNotRunning {
			toRestart = append(toRestart, desiredByName[name])
		}
	}
	for name, app := range allLocal {
		if _, wanted := desiredByName[name]; !wanted {
			toStop = append(toStop, app)
		}
	}
	return toStart, toStop, toRestart
}

type volumeLocation struct {
	hostname string
	volume   model.AttachedVolume
}

// volumeDeltas implements spec §4.5 step 3: volumes are compared across
// desired and current_cluster by volume name only, indexed by the
// hostname hosting the owning application.
func volumeDeltas(in Inputs) model.VolumeChanges {
	desiredByVolume := volumeLocationsByName(in.Desired)
	currentByVolume := volumeLocationsByName(in.CurrentCluster)

	var changes model.VolumeChanges
	for name, cur := range currentByVolume {
		if cur.hostname != in.LocalHostname {
			continue
		}
		if des, ok := desiredByVolume[name]; ok && des.hostname != in.LocalHostname {
			changes.Going = append(changes.Going, model.GoingVolume{Volume: cur.volume, PeerHostname: des.hostname})
		}
	}
	for name, des := range desiredByVolume {
		if des.hostname != in.LocalHostname {
			continue
		}
		cur, existsAnywhere := currentByVolume[name]
		switch {
		case !existsAnywhere:
			changes.Creating = append(changes.Creating, des.volume)
		case cur.hostname != in.LocalHostname:
			changes.Coming = append(changes.Coming, des.volume)
		}
	}
	return changes
}

func volumeLocationsByName(d model.Deployment) map[string]volumeLocation {
	out := make(map[string]volumeLocation)
	for _, ha := range d.AllApplications() {
		if ha.Application.HasVolume() {
			out[ha.Application.Volume.Name] = volumeLocation{hostname: ha.Hostname, volume: *ha.Application.Volume}
		}
	}
	return out
}

func pushPhase(in Inputs, going []model.GoingVolume) action.Action {
	if len(going) == 0 {
		return nil
	}
	children := make([]action.Action, 0, len(going))
	for _, g := range going {
		children = append(children, action.PushVolume{
			VolumeName:     g.Volume.Name,
			PeerHostname:   g.PeerHostname,
			PrivateKeyPath: in.PrivateKeyPath,
		})
	}
	return action.InParallel{Children: children}
}

func stopPhase(toStop []model.Application) action.Action {
	if len(toStop) == 0 {
		return nil
	}
	children := make([]action.Action, 0, len(toStop))
	for _, a := range toStop {
		children = append(children, action.StopApplication{Application: a})
	}
	return action.InParallel{Children: children}
}

func handoffPhase(in Inputs, going []model.GoingVolume) action.Action {
	if len(going) == 0 {
		return nil
	}
	children := make([]action.Action, 0, len(going))
	for _, g := range going {
		children = append(children, action.HandoffVolume{
			VolumeName:     g.Volume.Name,
			PeerHostname:   g.PeerHostname,
			PrivateKeyPath: in.PrivateKeyPath,
		})
	}
	return action.InParallel{Children: children}
}

func waitPhase(coming []model.AttachedVolume) action.Action {
	if len(coming) == 0 {
		return nil
	}
	children := make([]action.Action, 0, len(coming))
	for _, v := range coming {
		children = append(children, action.WaitForVolume{VolumeName: v.Name})
	}
	return action.InParallel{Children: children}
}

func createPhase(creating []model.AttachedVolume) action.Action {
	if len(creating) == 0 {
		return nil
	}
	children := make([]action.Action, 0, len(creating))
	for _, v := range creating {
		children = append(children, action.CreateVolume{Volume: v})
	}
	return action.InParallel{Children: children}
}

// startRestartPhase implements spec §4.5 step 4.7: a restart is a bare
// Sequentially([Stop, Start]), never a bare Start (testable property 6).
func startRestartPhase(in Inputs, toStart, toRestart []model.Application) action.Action {
	if len(toStart) == 0 && len(toRestart) == 0 {
		return nil
	}
	children := make([]action.Action, 0, len(toStart)+len(toRestart))
	for _, a := range toStart {
		children = append(children, action.StartApplication{Application: a, Hostname: in.LocalHostname})
	}
	for _, a := range toRestart {
		children = append(children, action.Sequentially{Children: []action.Action{
			action.StopApplication{Application: a},
			action.StartApplication{Application: a, Hostname: in.LocalHostname},
		}})
	}
	return action.InParallel{Children: children}
}
