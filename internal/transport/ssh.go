// Package transport dials the cross-node volume-manager session over SSH
// (spec §6): (hostname, 22, "root", <private-key-path>). The remote manager
// itself, and the exact wire format of its receive stream, are external
// contracts (§9 Open Questions) — this package only establishes the
// session and exposes it as a volumepool.RemoteVolumeManager.
package transport

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"

	"github.com/schevalier/flocker/internal/errkind"
	"github.com/schevalier/flocker/internal/volumepool"
)

const (
	sshPort = 22
	sshUser = "root"
)

// Transport dials a remote-volume-manager session on a peer node.
type Transport interface {
	Dial(ctx context.Context, hostname, privateKeyPath string) (volumepool.RemoteVolumeManager, error)
}

// SSHTransport is the real, key-authenticated SSH implementation. dial is
// indirected the same way the teacher's SSHHandler indirects dialContext/
// startCmd, so tests can substitute a fake without a live SSH server.
type SSHTransport struct {
	dial func(network, addr string, config *ssh.ClientConfig) (*ssh.Client, error)
}

func NewSSHTransport() *SSHTransport {
	return &SSHTransport{dial: ssh.Dial}
}

func (t *SSHTransport) Dial(_ context.Context, hostname, privateKeyPath string) (volumepool.RemoteVolumeManager, error) {
	key, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, errkind.NewTransientIO("read private key", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, errkind.NewTransientIO("parse private key", err)
	}

	config := &ssh.ClientConfig{
		User:            sshUser,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	addr := fmt.Sprintf("%s:%d", hostname, sshPort)
	client, err := t.dial("tcp", addr, config)
	if err != nil {
		return nil, errkind.NewTransientIO("dial remote volume manager at "+addr, err)
	}

	return &sshRemoteVolumeManager{client: client}, nil
}

type sshRemoteVolumeManager struct {
	client *ssh.Client
}

func (m *sshRemoteVolumeManager) Receive(_ context.Context, volume volumepool.Volume) (volumepool.StreamSink, error) {
	session, err := m.client.NewSession()
	if err != nil {
		return nil, errkind.NewTransientIO("open receive session", err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return nil, errkind.NewTransientIO("open receive stdin", err)
	}
	if err := session.Start("flocker-volume receive " + volume.Name); err != nil {
		session.Close()
		return nil, errkind.NewTransientIO("start receive", err)
	}
	return &sessionSink{session: session, stdin: stdin}, nil
}

func (m *sshRemoteVolumeManager) Acquire(_ context.Context, volume volumepool.Volume) (uuid.UUID, error) {
	session, err := m.client.NewSession()
	if err != nil {
		return uuid.UUID{}, errkind.NewTransientIO("open acquire session", err)
	}
	defer session.Close()

	out, err := session.Output("flocker-volume acquire " + volume.Name)
	if err != nil {
		return uuid.UUID{}, errkind.NewTransientIO("acquire remote volume", err)
	}
	peerUUID, err := uuid.Parse(strings.TrimSpace(string(out)))
	if err != nil {
		return uuid.UUID{}, errkind.NewTransientIO("parse peer volume uuid", err)
	}
	return peerUUID, nil
}

type sessionSink struct {
	session interface{ Close() error }
	stdin   interface {
		Write([]byte) (int, error)
		Close() error
	}
}

func (s *sessionSink) Write(p []byte) (int, error) { return s.stdin.Write(p) }

func (s *sessionSink) Close() error {
	stdinErr := s.stdin.Close()
	sessionErr := s.session.Close()
	if stdinErr != nil {
		return stdinErr
	}
	return sessionErr
}
