// Package config validates and lifts the two YAML-shaped application
// configurations (native and compose-style) into the model, and marshals
// observed state back into the native shape.
package config

import (
	"gopkg.in/yaml.v3"

	"github.com/schevalier/flocker/internal/model"
)

const supportedVersion = 1

// ParseApplications decodes a configuration document, auto-detecting native
// vs. compose-style, and lifts it into the model. Strict: images and
// mountpoints must resolve or the document is rejected.
func ParseApplications(data []byte) (map[string]model.Application, error) {
	return parseApplications(data, false)
}

// ParseApplicationsLenient is the observed-state counterpart: in a
// native-format document, unresolvable images/mountpoints become the
// unknown sentinel instead of failing. Compose-style documents are parsed
// strictly either way.
func ParseApplicationsLenient(data []byte) (map[string]model.Application, error) {
	return parseApplications(data, true)
}

func parseApplications(data []byte, lenient bool) (map[string]model.Application, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, newParseError("", "invalid YAML", err.Error())
	}

	if isNativeDocument(doc) {
		return parseNativeDocument(doc, lenient)
	}
	if IsComposeStyle(doc) {
		return parseCompose(doc)
	}
	return nil, newParseError("", "could not detect configuration format (native requires version+applications; compose-style requires exactly one of image/build per entry)", doc)
}

func isNativeDocument(doc map[string]any) bool {
	_, hasVersion := doc["version"]
	_, hasApplications := doc["applications"]
	return hasVersion && hasApplications
}

func parseNativeDocument(doc map[string]any, lenient bool) (map[string]model.Application, error) {
	version, ok := asInt(doc["version"])
	if !ok || version != supportedVersion {
		return nil, newParseError("", "version must equal 1", doc["version"])
	}
	appsDoc, ok := asMap(doc["applications"])
	if !ok {
		return nil, newParseError("", "applications must be a mapping", doc["applications"])
	}
	return parseNative(appsDoc, lenient)
}

// ParseDeployment parses {version:1, nodes: {hostname: [app_name,...]}},
// resolving each name against the already-parsed application set.
func ParseDeployment(data []byte, known map[string]model.Application) (model.Deployment, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return model.Deployment{}, newParseError("", "invalid YAML", err.Error())
	}

	version, ok := asInt(doc["version"])
	if !ok || version != supportedVersion {
		return model.Deployment{}, newParseError("", "version must equal 1", doc["version"])
	}

	nodesDoc, ok := asMap(doc["nodes"])
	if !ok {
		return model.Deployment{}, newParseError("", "nodes must be a mapping", doc["nodes"])
	}

	var nodes []model.Node
	for hostname, raw := range nodesDoc {
		names, ok := asSlice(raw)
		if !ok {
			return model.Deployment{}, newParseError("", "node application list must be a list", raw)
		}
		apps := make([]model.Application, 0, len(names))
		for _, rawName := range names {
			name, ok := asString(rawName)
			if !ok {
				return model.Deployment{}, newParseError("", "application name must be a string", rawName)
			}
			app, ok := known[name]
			if !ok {
				return model.Deployment{}, newParseError(name, "unknown application referenced by deployment", name)
			}
			apps = append(apps, app)
		}
		node, err := model.NewNode(hostname, apps)
		if err != nil {
			return model.Deployment{}, err
		}
		nodes = append(nodes, node)
	}

	return model.NewDeployment(nodes)
}
