// Package agent drives one convergence tick (spec §1, §5): observe what
// is actually running locally, plan the delta against the desired
// deployment, and execute the plan. Ticks never overlap — a new tick
// waits for the previous one's plan to finish or fail before starting
// (spec §5, Cancellation).
package agent

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/schevalier/flocker/internal/errkind"
	"github.com/schevalier/flocker/internal/executor"
	"github.com/schevalier/flocker/internal/model"
	"github.com/schevalier/flocker/internal/netproxy"
	"github.com/schevalier/flocker/internal/planner"
	"github.com/schevalier/flocker/internal/runtime"
	"github.com/schevalier/flocker/internal/transport"
	"github.com/schevalier/flocker/internal/volumepool"
)

// Agent owns the per-node convergence loop's collaborators and the
// last-known cluster-wide state the planner compares volumes against.
// There is no distributed cluster-state propagation in scope (spec §6
// names only the config file, the runtime, the volume pool and the
// transport as external interfaces) so the simplest faithful choice is
// to track the most recently applied desired deployment as the stand-in
// for "last-known cluster state" across ticks; see DESIGN.md.
type Agent struct {
	Hostname       string
	Namespace      string
	PrivateKeyPath string

	Runtime   runtime.ContainerRuntime
	Volumes   volumepool.Pool
	Proxies   netproxy.ProxyController
	Transport transport.Transport
	Log       *logrus.Entry

	lastKnownCluster model.Deployment
}

// New constructs an Agent with no prior cluster knowledge; the first
// tick's current_cluster input is therefore empty.
func New(hostname, namespace, privateKeyPath string, rt runtime.ContainerRuntime, vp volumepool.Pool, proxies netproxy.ProxyController, tr transport.Transport, log *logrus.Entry) *Agent {
	return &Agent{
		Hostname:       hostname,
		Namespace:      namespace,
		PrivateKeyPath: privateKeyPath,
		Runtime:        rt,
		Volumes:        vp,
		Proxies:        proxies,
		Transport:      tr,
		Log:            log,
	}
}

// Tick runs exactly one observe/plan/execute cycle against desired.
// Configuration errors are not produced here — they are fatal at load
// time (spec §7) and surface before a deployment ever reaches Tick.
// Runtime-layer failures are logged and returned to the caller; the
// caller's loop keeps ticking, so the next tick re-observes and re-plans.
func (a *Agent) Tick(ctx context.Context, desired model.Deployment) error {
	observed, err := a.observeLocal(ctx)
	if err != nil {
		a.logf("observe failed: %v", err)
		return err
	}

	currentProxies, err := a.Proxies.EnumerateProxies()
	if err != nil {
		a.logf("enumerate proxies failed: %v", err)
		return err
	}

	plan := planner.Plan(planner.Inputs{
		Desired:        desired,
		CurrentCluster: a.lastKnownCluster,
		ObservedLocal:  observed,
		LocalHostname:  a.Hostname,
		CurrentProxies: currentProxies,
		Namespace:      a.Namespace,
		PrivateKeyPath: a.PrivateKeyPath,
	})

	exec := &executor.Executor{
		Runtime:        a.Runtime,
		Volumes:        a.Volumes,
		Proxies:        a.Proxies,
		Transport:      a.Transport,
		Log:            a.Log,
		PrivateKeyPath: a.PrivateKeyPath,
	}

	if err := exec.Run(ctx, plan); err != nil {
		a.logf("tick execution failed: %v", err)
		return err
	}

	a.lastKnownCluster = desired
	return nil
}

// observeLocal builds the NodeState for this host by listing the
// runtime's units and the proxy controller's globally-scoped used-port
// view. A unit's volume, if any, is recovered from the last-known
// cluster state by name, since the runtime's own unit listing does not
// report volume identity.
func (a *Agent) observeLocal(ctx context.Context) (model.NodeState, error) {
	units, err := a.Runtime.List(ctx)
	if err != nil {
		return model.NodeState{}, errkind.NewTransientIO("list runtime units", err)
	}

	localKnown := model.ApplicationsByName(a.lastKnownCluster.ApplicationsOnHost(a.Hostname))

	var state model.NodeState
	for _, unit := range units {
		app := applicationFromUnit(unit, localKnown[unit.Name])
		switch unit.ActivationState {
		case runtime.Inactive:
			state.NotRunning = append(state.NotRunning, app)
		default:
			state.Running = append(state.Running, app)
		}
	}

	usedPorts, err := a.Proxies.EnumerateUsedPorts()
	if err != nil {
		return model.NodeState{}, errkind.NewTransientIO("enumerate used ports", err)
	}
	for port, used := range usedPorts {
		if used {
			state.UsedPorts = append(state.UsedPorts, port)
		}
	}
	return state, nil
}

func applicationFromUnit(unit runtime.Unit, known model.Application) model.Application {
	ports := make([]model.Port, 0, len(unit.Ports))
	for external, internal := range unit.Ports {
		ports = append(ports, model.Port{Internal: internal, External: external})
	}

	image, err := model.ParseImageReference(unit.Name, unit.ContainerImage)
	if err != nil {
		image = model.UnknownImage()
	}

	return model.Application{
		Name:        unit.Name,
		Image:       &image,
		Volume:      known.Volume,
		Links:       known.Links,
		Environment: known.Environment,
		Ports:       model.SortPorts(ports),
	}
}

func (a *Agent) logf(format string, args ...any) {
	if a.Log == nil {
		return
	}
	a.Log.Errorf(format, args...)
}
