package volumepool

import (
	"archive/tar"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/schevalier/flocker/internal/errkind"
)

const metadataFile = ".flocker-volume.json"

// DirectoryPool is the real Pool: each volume is a directory under
// BasePath, tagged with an owning UUID recorded in a metadata file
// beside its contents. It stands in for the snapshot-and-send/receive
// filesystem (e.g. ZFS) the original implementation drives — the exact
// storage backend is an external collaborator concern the spec leaves
// unspecified (§6), and archive/tar (used for Push's wire format the
// same way the corpus's file-transfer endpoints tar up a directory) is
// the simplest faithful stand-in.
type DirectoryPool struct {
	BasePath    string
	serviceUUID uuid.UUID
}

func NewDirectoryPool(basePath string) (*DirectoryPool, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, errkind.NewTransientIO("create volume pool base directory", err)
	}
	return &DirectoryPool{BasePath: basePath, serviceUUID: uuid.New()}, nil
}

func (p *DirectoryPool) ServiceUUID() uuid.UUID { return p.serviceUUID }

func (p *DirectoryPool) Create(_ context.Context, name string) error {
	dir := p.volumeDir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errkind.NewTransientIO("create volume "+name, err)
	}
	return p.writeMeta(name, Volume{UUID: p.serviceUUID, Name: name})
}

func (p *DirectoryPool) Get(_ context.Context, name string) (Volume, error) {
	return p.readMeta(name)
}

func (p *DirectoryPool) Enumerate(_ context.Context) ([]Volume, error) {
	entries, err := os.ReadDir(p.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errkind.NewTransientIO("enumerate volume pool", err)
	}
	var out []Volume
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		v, err := p.readMeta(entry.Name())
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// WaitForVolume polls the volume's metadata until it exists and is
// locally owned, or ctx is cancelled.
func (p *DirectoryPool) WaitForVolume(ctx context.Context, name string) error {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		if v, err := p.readMeta(name); err == nil && v.LocallyOwned(p.serviceUUID) {
			return nil
		}
		select {
		case <-ctx.Done():
			return errkind.NewTransientIO("wait for volume "+name, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (p *DirectoryPool) Handoff(ctx context.Context, volume Volume, remote RemoteVolumeManager) error {
	local, err := p.readMeta(volume.Name)
	if err != nil || !local.LocallyOwned(p.serviceUUID) {
		return errkind.NewOwnershipError(volume.Name)
	}
	peerUUID, err := remote.Acquire(ctx, local)
	if err != nil {
		return errkind.NewTransientIO("handoff acquire failed", err)
	}
	return p.writeMeta(volume.Name, Volume{UUID: peerUUID, Name: volume.Name})
}

func (p *DirectoryPool) Push(ctx context.Context, volume Volume, remote RemoteVolumeManager) error {
	local, err := p.readMeta(volume.Name)
	if err != nil || !local.LocallyOwned(p.serviceUUID) {
		return errkind.NewOwnershipError(volume.Name)
	}
	sink, err := remote.Receive(ctx, local)
	if err != nil {
		return errkind.NewTransientIO("push receive failed", err)
	}
	if err := p.writeTar(volume.Name, sink); err != nil {
		sink.Close()
		return errkind.NewTransientIO("push write failed", err)
	}
	return sink.Close()
}

func (p *DirectoryPool) writeTar(name string, dst io.Writer) error {
	tw := tar.NewWriter(dst)
	defer tw.Close()

	dir := p.volumeDir(name)
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == filepath.Join(dir, metadataFile) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = rel
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
}

func (p *DirectoryPool) volumeDir(name string) string {
	return filepath.Join(p.BasePath, name)
}

func (p *DirectoryPool) writeMeta(name string, v Volume) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errkind.NewTransientIO("encode volume metadata", err)
	}
	return os.WriteFile(filepath.Join(p.volumeDir(name), metadataFile), data, 0o644)
}

func (p *DirectoryPool) readMeta(name string) (Volume, error) {
	data, err := os.ReadFile(filepath.Join(p.volumeDir(name), metadataFile))
	if err != nil {
		return Volume{}, errkind.NewTransientIO("no such volume: "+name, err)
	}
	var v Volume
	if err := json.Unmarshal(data, &v); err != nil {
		return Volume{}, errkind.NewTransientIO("decode volume metadata", err)
	}
	return v, nil
}
