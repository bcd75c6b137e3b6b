package transport

import (
	"context"

	"github.com/google/uuid"

	"github.com/schevalier/flocker/internal/volumepool"
)

// FakeTransport hands out in-process RemoteVolumeManagers backed by peer
// FakePool instances, so planner/executor integration tests can exercise
// handoff/push across two "nodes" without a real SSH session.
type FakeTransport struct {
	peers map[string]*volumepool.FakePool
}

func NewFakeTransport(peers map[string]*volumepool.FakePool) *FakeTransport {
	return &FakeTransport{peers: peers}
}

func (t *FakeTransport) Dial(_ context.Context, hostname, _ string) (volumepool.RemoteVolumeManager, error) {
	peer, ok := t.peers[hostname]
	if !ok {
		return nil, errUnknownPeer(hostname)
	}
	return &fakeRemoteVolumeManager{pool: peer}, nil
}

type fakeRemoteVolumeManager struct {
	pool *volumepool.FakePool
}

func (m *fakeRemoteVolumeManager) Receive(ctx context.Context, volume volumepool.Volume) (volumepool.StreamSink, error) {
	return &discardSink{}, nil
}

func (m *fakeRemoteVolumeManager) Acquire(ctx context.Context, volume volumepool.Volume) (uuid.UUID, error) {
	return m.pool.ServiceUUID(), nil
}

type discardSink struct{}

func (discardSink) Write(p []byte) (int, error) { return len(p), nil }
func (discardSink) Close() error                { return nil }

type peerError string

func (e peerError) Error() string { return string(e) }

func errUnknownPeer(hostname string) error {
	return peerError("transport: unknown peer " + hostname)
}
