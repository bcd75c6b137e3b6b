package volumepool

import (
	"context"

	"github.com/google/uuid"
	"github.com/schevalier/flocker/internal/errkind"
)

// FakePool is an in-process Pool double used by planner/executor tests so
// they never need a real snapshot-capable filesystem.
type FakePool struct {
	serviceUUID uuid.UUID
	volumes     map[string]Volume
}

// NewFakePool returns a pool that owns every volume created through it.
func NewFakePool() *FakePool {
	return &FakePool{serviceUUID: uuid.New(), volumes: make(map[string]Volume)}
}

func (p *FakePool) ServiceUUID() uuid.UUID { return p.serviceUUID }

func (p *FakePool) Create(_ context.Context, name string) error {
	p.volumes[name] = Volume{UUID: p.serviceUUID, Name: name}
	return nil
}

func (p *FakePool) Get(_ context.Context, name string) (Volume, error) {
	v, ok := p.volumes[name]
	if !ok {
		return Volume{}, errkind.NewTransientIO("no such volume: "+name, nil)
	}
	return v, nil
}

func (p *FakePool) Enumerate(_ context.Context) ([]Volume, error) {
	out := make([]Volume, 0, len(p.volumes))
	for _, v := range p.volumes {
		out = append(out, v)
	}
	return out, nil
}

func (p *FakePool) WaitForVolume(_ context.Context, name string) error {
	v, ok := p.volumes[name]
	if !ok || !v.LocallyOwned(p.serviceUUID) {
		return errkind.NewTransientIO("volume never arrived: "+name, nil)
	}
	return nil
}

// Handoff transfers ownership to the peer: the volume leaves this pool's
// locally-owned set.
func (p *FakePool) Handoff(_ context.Context, volume Volume, remote RemoteVolumeManager) error {
	local, ok := p.volumes[volume.Name]
	if !ok || !local.LocallyOwned(p.serviceUUID) {
		return errkind.NewOwnershipError(volume.Name)
	}
	peerUUID, err := remote.Acquire(context.Background(), local)
	if err != nil {
		return errkind.NewTransientIO("handoff acquire failed", err)
	}
	p.volumes[volume.Name] = Volume{UUID: peerUUID, Name: volume.Name}
	return nil
}

// Push replicates contents to the peer without changing ownership.
func (p *FakePool) Push(_ context.Context, volume Volume, remote RemoteVolumeManager) error {
	local, ok := p.volumes[volume.Name]
	if !ok || !local.LocallyOwned(p.serviceUUID) {
		return errkind.NewOwnershipError(volume.Name)
	}
	sink, err := remote.Receive(context.Background(), local)
	if err != nil {
		return errkind.NewTransientIO("push receive failed", err)
	}
	return sink.Close()
}
