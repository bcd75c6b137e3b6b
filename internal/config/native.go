package config

import (
	"github.com/schevalier/flocker/internal/model"
)

var nativeAppAllowedKeys = map[string]bool{
	"image": true, "environment": true, "ports": true, "links": true, "volume": true,
}

// parseNative lifts the native-format applications mapping into the model.
// lenient relaxes image/mountpoint resolution for observed-state documents.
func parseNative(appsDoc map[string]any, lenient bool) (map[string]model.Application, error) {
	out := make(map[string]model.Application, len(appsDoc))
	for name, raw := range appsDoc {
		def, ok := asMap(raw)
		if !ok {
			return nil, newParseError(name, "application definition must be a mapping", raw)
		}
		for key := range def {
			if !nativeAppAllowedKeys[key] {
				return nil, newParseError(name, "unrecognized key "+key, key)
			}
		}

		app, err := parseNativeApplication(name, def, lenient)
		if err != nil {
			return nil, err
		}
		out[name] = app
	}
	return out, nil
}

func parseNativeApplication(name string, def map[string]any, lenient bool) (model.Application, error) {
	var image *model.ImageReference
	if raw, ok := def["image"]; ok {
		s, ok := asString(raw)
		if !ok {
			return model.Application{}, newParseError(name, "image must be a string", raw)
		}
		ref, err := parseImage(name, s, lenient)
		if err != nil {
			return model.Application{}, err
		}
		image = &ref
	}

	var volume *model.AttachedVolume
	if raw, ok := def["volume"]; ok {
		v, err := parseNativeVolume(name, raw, lenient)
		if err != nil {
			return model.Application{}, err
		}
		volume = &v
	}

	ports, err := parseNativePorts(name, def["ports"])
	if err != nil {
		return model.Application{}, err
	}

	links, err := parseNativeLinks(name, def["links"])
	if err != nil {
		return model.Application{}, err
	}

	env, err := parseEnvironment(name, def["environment"])
	if err != nil {
		return model.Application{}, err
	}

	return model.NewApplication(name, image, volume, ports, links, env)
}

func parseImage(application, s string, lenient bool) (model.ImageReference, error) {
	ref, err := model.ParseImageReference(application, s)
	if err != nil && lenient {
		return model.UnknownImage(), nil
	}
	return ref, err
}

func parseNativeVolume(application string, raw any, lenient bool) (model.AttachedVolume, error) {
	def, ok := asMap(raw)
	if !ok {
		return model.AttachedVolume{}, newParseError(application, "volume must be a mapping", raw)
	}
	mp, ok := asString(def["mountpoint"])
	if !ok {
		if lenient {
			return model.NewAttachedVolumeUnknownMountpoint(application), nil
		}
		return model.AttachedVolume{}, newParseError(application, "volume.mountpoint must be a string", def["mountpoint"])
	}
	v, err := model.NewAttachedVolume(application, application, mp)
	if err != nil && lenient {
		return model.NewAttachedVolumeUnknownMountpoint(application), nil
	}
	return v, err
}

func parseNativePorts(application string, raw any) ([]model.Port, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := asSlice(raw)
	if !ok {
		return nil, newParseError(application, "ports must be a list", raw)
	}
	ports := make([]model.Port, 0, len(items))
	for _, item := range items {
		def, ok := asMap(item)
		if !ok {
			return nil, newParseError(application, "each port must be a mapping", item)
		}
		internal, ok1 := asInt(def["internal"])
		external, ok2 := asInt(def["external"])
		if !ok1 || !ok2 {
			return nil, newParseError(application, "port requires integer internal/external", item)
		}
		port, err := model.NewPort(application, internal, external)
		if err != nil {
			return nil, err
		}
		ports = append(ports, port)
	}
	return ports, nil
}

func parseNativeLinks(application string, raw any) ([]model.Link, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := asSlice(raw)
	if !ok {
		return nil, newParseError(application, "links must be a list", raw)
	}
	links := make([]model.Link, 0, len(items))
	for _, item := range items {
		def, ok := asMap(item)
		if !ok {
			return nil, newParseError(application, "each link must be a mapping", item)
		}
		local, ok1 := asInt(def["local_port"])
		remote, ok2 := asInt(def["remote_port"])
		alias, ok3 := asString(def["alias"])
		if !ok1 || !ok2 || !ok3 {
			return nil, newParseError(application, "link requires local_port, remote_port, alias", item)
		}
		link, err := model.NewLink(application, local, remote, alias)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, nil
}

func parseEnvironment(application string, raw any) (map[string]string, error) {
	if raw == nil {
		return nil, nil
	}
	def, ok := asMap(raw)
	if !ok {
		return nil, newParseError(application, "environment must be a mapping", raw)
	}
	env := make(map[string]string, len(def))
	for k, v := range def {
		s, ok := asString(v)
		if !ok {
			return nil, newParseError(application, "environment values must be strings", v)
		}
		env[k] = s
	}
	return env, nil
}
