package volumepool

import (
	"context"

	"github.com/google/uuid"
)

// RemoteVolumeManager is the peer-side handle a cross-node transport session
// exposes: a sink to stream an incoming volume's contents into, and a way to
// acquire ownership of a volume already present on the peer.
type RemoteVolumeManager interface {
	Receive(ctx context.Context, volume Volume) (StreamSink, error)
	Acquire(ctx context.Context, volume Volume) (uuid.UUID, error)
}

// StreamSink is the wire-format-agnostic destination for a volume transfer;
// its exact framing is an external transport contract (spec §9, Open
// Questions) and is not specified here.
type StreamSink interface {
	Write(p []byte) (int, error)
	Close() error
}

// Pool is the thin external-collaborator interface onto the storage pool
// driver (snapshots, send/receive) — spec §6.
type Pool interface {
	Create(ctx context.Context, name string) error
	Get(ctx context.Context, name string) (Volume, error)
	Enumerate(ctx context.Context) ([]Volume, error)
	WaitForVolume(ctx context.Context, name string) error
	Handoff(ctx context.Context, volume Volume, remote RemoteVolumeManager) error
	Push(ctx context.Context, volume Volume, remote RemoteVolumeManager) error
	ServiceUUID() uuid.UUID
}
