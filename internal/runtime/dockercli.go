package runtime

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sasha-s/go-deadlock"

	"github.com/schevalier/flocker/internal/errkind"
)

// DockerCLIRuntime is the real ContainerRuntime, shelling out to the
// `docker` binary the same way internal/netproxy shells out to
// `iptables` rather than pulling in the full SDK client for a handful of
// verbs (add/remove/list/expose volume).
type DockerCLIRuntime struct {
	binary string

	mu      deadlock.Mutex
	exposed map[string]string // application name -> mountpoint
}

func NewDockerCLIRuntime() *DockerCLIRuntime {
	return &DockerCLIRuntime{binary: "docker", exposed: make(map[string]string)}
}

func (r *DockerCLIRuntime) Add(ctx context.Context, name, image string, ports map[int]int, env map[string]string) error {
	args := []string{"run", "-d", "--name", name}
	for external, internal := range ports {
		args = append(args, "-p", fmt.Sprintf("%d:%d", external, internal))
	}
	r.mu.Lock()
	mountpoint, hasVolume := r.exposed[name]
	r.mu.Unlock()
	if hasVolume {
		args = append(args, "-v", fmt.Sprintf("%s:%s", mountpoint, mountpoint))
	}
	for k, v := range env {
		args = append(args, "-e", k+"="+v)
	}
	args = append(args, image)

	out, err := r.run(ctx, args...)
	if err != nil {
		if strings.Contains(out, "already in use") || strings.Contains(out, "Conflict.") {
			return errkind.NewRuntimeConflict(name, err)
		}
		return errkind.NewTransientIO("docker run "+name, err)
	}
	return nil
}

func (r *DockerCLIRuntime) Remove(ctx context.Context, name string) error {
	out, err := r.run(ctx, "rm", "-f", name)
	if err != nil && !strings.Contains(out, "No such container") {
		return errkind.NewTransientIO("docker rm "+name, err)
	}
	return nil
}

func (r *DockerCLIRuntime) List(ctx context.Context) ([]Unit, error) {
	out, err := r.run(ctx, "ps", "-a", "--format", "{{.Names}}\t{{.Image}}\t{{.State}}\t{{.Ports}}")
	if err != nil {
		return nil, errkind.NewTransientIO("docker ps", err)
	}

	var units []Unit
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 4)
		if len(fields) < 3 {
			continue
		}
		units = append(units, Unit{
			Name:            fields[0],
			ContainerImage:  fields[1],
			ActivationState: activationStateOf(fields[2]),
			Ports:           parseDockerPorts(fields[3]),
		})
	}
	return units, nil
}

func (r *DockerCLIRuntime) ExposeVolume(_ context.Context, name, mountpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exposed[name] = mountpoint
	return nil
}

func (r *DockerCLIRuntime) UnexposeVolume(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.exposed, name)
	return nil
}

func activationStateOf(dockerState string) ActivationState {
	switch strings.ToLower(dockerState) {
	case "running":
		return Active
	case "restarting", "created":
		return Activating
	default:
		return Inactive
	}
}

// parseDockerPorts turns `docker ps`'s "0.0.0.0:8080->80/tcp, ..." column
// into the external->internal map the rest of the system works with.
func parseDockerPorts(column string) map[int]int {
	ports := make(map[int]int)
	for _, entry := range strings.Split(column, ",") {
		entry = strings.TrimSpace(entry)
		arrow := strings.Index(entry, "->")
		if arrow < 0 {
			continue
		}
		externalPart := entry[:arrow]
		internalPart := strings.TrimSuffix(entry[arrow+2:], "/tcp")
		internalPart = strings.TrimSuffix(internalPart, "/udp")

		colon := strings.LastIndex(externalPart, ":")
		if colon < 0 {
			continue
		}
		external, err := strconv.Atoi(externalPart[colon+1:])
		if err != nil {
			continue
		}
		internal, err := strconv.Atoi(internalPart)
		if err != nil {
			continue
		}
		ports[external] = internal
	}
	return ports
}

func (r *DockerCLIRuntime) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String() + stderr.String(), fmt.Errorf("%s %s: %w: %s", r.binary, strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), nil
}
