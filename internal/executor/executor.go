// Package executor runs an action.Action tree against the live
// collaborators (spec §4.6): container runtime, volume pool, cross-node
// transport, and proxy controller. Sequentially chains children and
// short-circuits on the first failure; InParallel fans children out on
// golang.org/x/sync/errgroup, awaits all of them, logs every failure, and
// returns the first one observed.
package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/schevalier/flocker/internal/action"
	"github.com/schevalier/flocker/internal/errkind"
	"github.com/schevalier/flocker/internal/model"
	"github.com/schevalier/flocker/internal/netproxy"
	"github.com/schevalier/flocker/internal/runtime"
	"github.com/schevalier/flocker/internal/transport"
	"github.com/schevalier/flocker/internal/volumepool"
)

// Executor wires the collaborators an action tree is run against.
type Executor struct {
	Runtime        runtime.ContainerRuntime
	Volumes        volumepool.Pool
	Proxies        netproxy.ProxyController
	Transport      transport.Transport
	Log            *logrus.Entry
	PrivateKeyPath string
}

// Run dispatches act by concrete type, recursing into composites.
func (e *Executor) Run(ctx context.Context, act action.Action) error {
	switch a := act.(type) {
	case action.Sequentially:
		return e.runSequentially(ctx, a)
	case action.InParallel:
		return e.runInParallel(ctx, a)
	case action.StartApplication:
		return e.startApplication(ctx, a)
	case action.StopApplication:
		return e.stopApplication(ctx, a)
	case action.CreateVolume:
		return e.createVolume(ctx, a)
	case action.WaitForVolume:
		return e.waitForVolume(ctx, a)
	case action.HandoffVolume:
		return e.handoffVolume(ctx, a)
	case action.PushVolume:
		return e.pushVolume(ctx, a)
	case action.SetProxies:
		return e.setProxies(ctx, a)
	default:
		return fmt.Errorf("executor: unknown action type %T", act)
	}
}

func (e *Executor) runSequentially(ctx context.Context, s action.Sequentially) error {
	for _, child := range s.Children {
		if err := e.Run(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

// runInParallel starts every child immediately and waits for all of them;
// every failure is logged, but only the first is returned, matching the
// "aggregate, don't cancel siblings" policy in spec §4.6/§5.
func (e *Executor) runInParallel(ctx context.Context, p action.InParallel) error {
	var g errgroup.Group
	var mu sync.Mutex
	var first error
	var firstSet bool

	for _, child := range p.Children {
		child := child
		g.Go(func() error {
			err := e.Run(ctx, child)
			if err != nil {
				e.logf("parallel action failed: %v", err)
				mu.Lock()
				if !firstSet {
					first = err
					firstSet = true
				}
				mu.Unlock()
			}
			return err
		})
	}
	_ = g.Wait()
	return first
}

func (e *Executor) startApplication(ctx context.Context, a action.StartApplication) error {
	if a.Application.HasVolume() {
		volume := a.Application.Volume
		if err := e.Runtime.ExposeVolume(ctx, volume.Name, volume.Mountpoint); err != nil {
			return err
		}
	}

	ports := make(map[int]int, len(a.Application.Ports))
	for _, p := range a.Application.Ports {
		ports[p.External] = p.Internal
	}

	image := ""
	if a.Application.Image != nil {
		image = a.Application.Image.String()
	}

	env := action.LinkEnvironment(a.Application, a.Hostname)
	return e.Runtime.Add(ctx, a.Application.Name, image, ports, env)
}

func (e *Executor) stopApplication(ctx context.Context, a action.StopApplication) error {
	if err := e.Runtime.Remove(ctx, a.Application.Name); err != nil {
		return err
	}
	if a.Application.HasVolume() {
		return e.Runtime.UnexposeVolume(ctx, a.Application.Volume.Name)
	}
	return nil
}

func (e *Executor) createVolume(ctx context.Context, a action.CreateVolume) error {
	return e.Volumes.Create(ctx, a.Volume.Name)
}

func (e *Executor) waitForVolume(ctx context.Context, a action.WaitForVolume) error {
	return e.Volumes.WaitForVolume(ctx, a.VolumeName)
}

func (e *Executor) handoffVolume(ctx context.Context, a action.HandoffVolume) error {
	remote, err := e.Transport.Dial(ctx, a.PeerHostname, e.PrivateKeyPath)
	if err != nil {
		return err
	}
	volume, err := e.Volumes.Get(ctx, a.VolumeName)
	if err != nil {
		return err
	}
	return e.Volumes.Handoff(ctx, volume, remote)
}

func (e *Executor) pushVolume(ctx context.Context, a action.PushVolume) error {
	remote, err := e.Transport.Dial(ctx, a.PeerHostname, e.PrivateKeyPath)
	if err != nil {
		return err
	}
	volume, err := e.Volumes.Get(ctx, a.VolumeName)
	if err != nil {
		return err
	}
	return e.Volumes.Push(ctx, volume, remote)
}

type peerPort struct {
	ip   string
	port int
}

// setProxies computes the symmetric difference against the controller's
// current enumeration and applies it; delete and create failures are
// each captured independently and surfaced aggregated (spec §4.4).
func (e *Executor) setProxies(_ context.Context, a action.SetProxies) error {
	current, err := e.Proxies.EnumerateProxies()
	if err != nil {
		return err
	}

	desired := make(map[peerPort]struct{}, len(a.Desired))
	for _, p := range a.Desired {
		desired[peerPort{p.TargetIP, p.TargetPort}] = struct{}{}
	}
	existing := make(map[peerPort]model.Proxy, len(current))
	for _, p := range current {
		existing[peerPort{p.TargetIP, p.TargetPort}] = p
	}

	var failures []error
	for key, p := range existing {
		if _, keep := desired[key]; !keep {
			if err := e.Proxies.DeleteProxy(p); err != nil {
				failures = append(failures, err)
			}
		}
	}
	for key := range desired {
		if _, already := existing[key]; !already {
			if _, err := e.Proxies.CreateProxyTo(key.ip, key.port); err != nil {
				failures = append(failures, err)
			}
		}
	}

	if len(failures) == 0 {
		return nil
	}
	for _, f := range failures {
		e.logf("proxy reconciliation failure: %v", f)
	}
	return errkind.NewKernelRuleError("set proxies", failures[0])
}

func (e *Executor) logf(format string, args ...any) {
	if e.Log == nil {
		return
	}
	e.Log.Errorf(format, args...)
}
