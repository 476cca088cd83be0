package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// readManifest loads webapp/manifest.json and returns it with its sap.app.id
func readManifest(path string) (*object, string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("%s: %w", path, ErrManifestNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read manifest: %w", err)
	}

	manifest, err := decodeObject(data)
	if err != nil {
		return nil, "", fmt.Errorf("invalid manifest %s: %w", path, err)
	}

	app, ok := manifest.get("sap.app")
	if !ok {
		return nil, "", fmt.Errorf("manifest %s has no sap.app section", path)
	}
	appObj, ok := app.(*object)
	if !ok {
		return nil, "", fmt.Errorf("manifest %s: sap.app is not an object", path)
	}
	id, _ := appObj.get("id")
	appID, ok := id.(string)
	if !ok || appID == "" {
		return nil, "", fmt.Errorf("manifest %s has no sap.app.id", path)
	}
	return manifest, appID, nil
}

func writeManifest(path string, manifest *object) error {
	data, err := encodeDocument(manifest)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// addRoute registers a route and target for the view under sap.ui5.routing.
// The first view gets the empty pattern unless another route already has it.
// It reports whether the manifest changed.
func addRoute(manifest *object, name, appID string, first bool) (bool, error) {
	ui5, err := manifest.child("sap.ui5")
	if err != nil {
		return false, err
	}
	routing, err := ui5.child("routing")
	if err != nil {
		return false, fmt.Errorf("sap.ui5: %w", err)
	}

	changed := false
	if _, ok := routing.get("config"); !ok {
		config := newObject()
		config.set("routerClass", "sap.m.routing.Router")
		config.set("viewType", "XML")
		config.set("async", true)
		config.set("viewPath", appID+".view")
		config.set("controlId", "app")
		config.set("controlAggregation", "pages")
		routing.set("config", config)
		changed = true
	}

	var routes []any
	if v, ok := routing.get("routes"); ok {
		if routes, ok = v.([]any); !ok {
			return false, fmt.Errorf("sap.ui5.routing.routes is not an array")
		}
	}

	routeExists, emptyPatternTaken := false, false
	for _, r := range routes {
		route, ok := r.(*object)
		if !ok {
			continue
		}
		if n, _ := route.get("name"); n == name {
			routeExists = true
		}
		if p, ok := route.get("pattern"); ok && p == "" {
			emptyPatternTaken = true
		}
	}

	if !routeExists {
		pattern := name
		if first && !emptyPatternTaken {
			pattern = ""
		}
		route := newObject()
		route.set("name", name)
		route.set("pattern", pattern)
		route.set("target", []any{name})
		routing.set("routes", append(routes, route))
		changed = true
	}

	targets, err := routing.child("targets")
	if err != nil {
		return false, fmt.Errorf("sap.ui5.routing: %w", err)
	}
	if _, ok := targets.get(name); !ok {
		target := newObject()
		target.set("viewType", "XML")
		target.set("viewId", name)
		target.set("viewName", name)
		targets.set(name, target)
		changed = true
	}

	return changed, nil
}

// hasViews reports whether dir already holds an XML view
func hasViews(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to list views: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".view.xml") {
			return true, nil
		}
	}
	return false, nil
}
