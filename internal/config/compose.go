package config

import (
	"strings"

	"github.com/schevalier/flocker/internal/model"
)

// composeDenylist keys are recognized but explicitly unsupported, reported
// distinctly from keys this parser has simply never heard of.
var composeDenylist = map[string]bool{
	"working_dir": true, "entrypoint": true, "user": true, "hostname": true,
	"domainname": true, "mem_limit": true, "privileged": true, "dns": true,
	"net": true, "volumes_from": true, "expose": true, "command": true,
}

var composeAllowedKeys = map[string]bool{
	"image": true, "environment": true, "ports": true, "links": true, "volumes": true,
}

// isComposeDefinition reports whether def is a compose-style application
// definition: a mapping containing exactly one of "image" or "build".
func isComposeDefinition(def map[string]any) bool {
	_, hasImage := def["image"]
	_, hasBuild := def["build"]
	return hasImage != hasBuild
}

// IsComposeStyle detects the whole document as compose-style iff at least
// one top-level value is a mapping containing exactly one of image/build.
func IsComposeStyle(doc map[string]any) bool {
	for _, raw := range doc {
		if def, ok := asMap(raw); ok && isComposeDefinition(def) {
			return true
		}
	}
	return false
}

// composeLink is the not-yet-resolved form of a compose-style "target[:alias]"
// link entry, recorded in a side table because the target application may
// not have been lifted yet when this entry is encountered.
type composeLink struct {
	application string
	target      string
	alias       string
}

func parseCompose(doc map[string]any) (map[string]model.Application, error) {
	type pending struct {
		name  string
		ports []model.Port
		image *model.ImageReference
		vol   *model.AttachedVolume
		env   map[string]string
	}

	var pendings []pending
	var links []composeLink

	for name, raw := range doc {
		def, ok := asMap(raw)
		if !ok {
			return nil, newParseError(name, "application definition must be a mapping", raw)
		}
		if !isComposeDefinition(def) {
			return nil, newParseError(name, "compose-style definition must have exactly one of image/build", raw)
		}
		if _, hasBuild := def["build"]; hasBuild {
			return nil, newParseError(name, "unsupported key build", "build")
		}

		for key := range def {
			if key == "build" {
				continue
			}
			if composeDenylist[key] {
				return nil, newParseError(name, "unsupported key "+key, key)
			}
			if !composeAllowedKeys[key] {
				return nil, newParseError(name, "unrecognized key "+key, key)
			}
		}

		var image *model.ImageReference
		if raw, ok := def["image"]; ok {
			s, ok := asString(raw)
			if !ok {
				return nil, newParseError(name, "image must be a string", raw)
			}
			ref, err := model.ParseImageReference(name, s)
			if err != nil {
				return nil, err
			}
			image = &ref
		}

		ports, err := parseComposePorts(name, def["ports"])
		if err != nil {
			return nil, err
		}

		vol, err := parseComposeVolumes(name, def["volumes"])
		if err != nil {
			return nil, err
		}

		env, err := parseEnvironment(name, def["environment"])
		if err != nil {
			return nil, err
		}

		appLinks, err := parseComposeLinks(name, def["links"])
		if err != nil {
			return nil, err
		}
		links = append(links, appLinks...)

		pendings = append(pendings, pending{name: name, ports: ports, image: image, vol: vol, env: env})
	}

	// Second pass: resolve each side-tabled link against the now-complete
	// set of parsed ports, synthesizing one model.Link per target port.
	portsByApp := make(map[string][]model.Port, len(pendings))
	for _, p := range pendings {
		portsByApp[p.name] = p.ports
	}

	resolvedLinks := make(map[string][]model.Link, len(pendings))
	for _, l := range links {
		targetPorts, ok := portsByApp[l.target]
		if !ok {
			return nil, newParseError(l.application, "link target not declared: "+l.target, l.target)
		}
		alias := l.alias
		if alias == "" {
			alias = l.target
		}
		for _, p := range targetPorts {
			// Compose-style links carry no distinct local/remote port of
			// their own; both ends of the synthesized link use the
			// target's externally-exposed port, so the link's remote_port
			// is always one the target actually declares (closure property).
			link, err := model.NewLink(l.application, p.External, p.External, alias)
			if err != nil {
				return nil, err
			}
			resolvedLinks[l.application] = append(resolvedLinks[l.application], link)
		}
	}

	out := make(map[string]model.Application, len(pendings))
	for _, p := range pendings {
		app, err := model.NewApplication(p.name, p.image, p.vol, p.ports, resolvedLinks[p.name], p.env)
		if err != nil {
			return nil, err
		}
		out[p.name] = app
	}
	return out, nil
}

func parseComposePorts(application string, raw any) ([]model.Port, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := asSlice(raw)
	if !ok {
		return nil, newParseError(application, "ports must be a list", raw)
	}
	ports := make([]model.Port, 0, len(items))
	for _, item := range items {
		s, ok := asString(item)
		if !ok {
			return nil, newParseError(application, "each port must be a \"host:container\" string", item)
		}
		parts := strings.SplitN(s, ":", 2)
		if len(parts) != 2 {
			return nil, newParseError(application, "port must be of the form host:container", s)
		}
		external, err1 := atoiStrict(parts[0])
		internal, err2 := atoiStrict(parts[1])
		if err1 != nil || err2 != nil {
			return nil, newParseError(application, "port must be of the form host:container", s)
		}
		port, err := model.NewPort(application, internal, external)
		if err != nil {
			return nil, err
		}
		ports = append(ports, port)
	}
	return ports, nil
}

func parseComposeVolumes(application string, raw any) (*model.AttachedVolume, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := asSlice(raw)
	if !ok {
		return nil, newParseError(application, "volumes must be a list", raw)
	}
	if len(items) != 1 {
		return nil, newParseError(application, "volumes must contain exactly one path (multi-volume unsupported)", items)
	}
	mp, ok := asString(items[0])
	if !ok {
		return nil, newParseError(application, "volume path must be a string", items[0])
	}
	v, err := model.NewAttachedVolume(application, application, mp)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseComposeLinks(application string, raw any) ([]composeLink, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := asSlice(raw)
	if !ok {
		return nil, newParseError(application, "links must be a list", raw)
	}
	out := make([]composeLink, 0, len(items))
	for _, item := range items {
		s, ok := asString(item)
		if !ok {
			return nil, newParseError(application, "each link must be a \"target[:alias]\" string", item)
		}
		parts := strings.SplitN(s, ":", 2)
		l := composeLink{application: application, target: parts[0]}
		if len(parts) == 2 {
			l.alias = parts[1]
		}
		out = append(out, l)
	}
	return out, nil
}

func atoiStrict(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, &ParseError{Description: "empty port number"}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, &ParseError{Description: "not a number", Offending: s}
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
