package config

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/schevalier/flocker/internal/model"
)

type marshaledPort struct {
	Internal int `yaml:"internal"`
	External int `yaml:"external"`
}

type marshaledLink struct {
	LocalPort  int    `yaml:"local_port"`
	RemotePort int    `yaml:"remote_port"`
	Alias      string `yaml:"alias"`
}

type marshaledVolume struct {
	Mountpoint *string `yaml:"mountpoint"`
}

type marshaledApplication struct {
	Image       string                 `yaml:"image,omitempty"`
	Ports       []marshaledPort        `yaml:"ports,omitempty"`
	Links       []marshaledLink        `yaml:"links,omitempty"`
	Environment map[string]string      `yaml:"environment,omitempty"`
	Volume      *marshaledVolume       `yaml:"volume,omitempty"`
}

type marshaledDocument struct {
	Version      int                              `yaml:"version"`
	Applications map[string]marshaledApplication `yaml:"applications"`
	UsedPorts    []int                            `yaml:"used_ports"`
}

// Marshal emits the native configuration shape for a set of applications
// plus the host's currently-used ports, per §4.1.
func Marshal(apps map[string]model.Application, usedPorts []int) ([]byte, error) {
	doc := marshaledDocument{
		Version:      supportedVersion,
		Applications: make(map[string]marshaledApplication, len(apps)),
		UsedPorts:    sortedCopy(usedPorts),
	}

	for name, app := range apps {
		doc.Applications[name] = marshalApplication(app)
	}

	return yaml.Marshal(doc)
}

func marshalApplication(app model.Application) marshaledApplication {
	out := marshaledApplication{}

	if app.Image != nil {
		out.Image = app.Image.String()
	}

	sortedPorts := model.SortPorts(app.Ports)
	for _, p := range sortedPorts {
		out.Ports = append(out.Ports, marshaledPort{Internal: p.Internal, External: p.External})
	}

	sortedLinks := model.SortLinks(app.Links)
	for _, l := range sortedLinks {
		out.Links = append(out.Links, marshaledLink{LocalPort: l.LocalPort, RemotePort: l.RemotePort, Alias: l.Alias})
	}

	if app.Environment != nil {
		out.Environment = app.Environment
	}

	if app.Volume != nil {
		out.Volume = &marshaledVolume{}
		if !app.Volume.MountpointUnknown() {
			mp := app.Volume.Mountpoint
			out.Volume.Mountpoint = &mp
		}
	}

	return out
}

func sortedCopy(ports []int) []int {
	out := append([]int{}, ports...)
	sort.Ints(out)
	return out
}
