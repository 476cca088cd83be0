package scaffold

import (
	"fmt"

	"github.com/liamcoop/ui5helper/internal/logger"
)

// CreateRoute writes a controller and XML view named name and registers the
// view in the manifest routing. A controller in either language blocks a new
// one. The manifest is only patched when the view is newly created.
func (g *Generator) CreateRoute(name string, ts bool) ([]FileResult, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	manifestPath := g.webapp("manifest.json")
	manifest, appID, err := readManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	data := templateData{Name: name, AppID: appID}

	var results []FileResult

	ext, other := extension(ts), extension(!ts)
	controllerPath := g.webapp("controller", fmt.Sprintf("%s.controller.%s", name, ext))
	otherPath := g.webapp("controller", fmt.Sprintf("%s.controller.%s", name, other))
	if exists(otherPath) {
		results = append(results, FileResult{Path: otherPath, Status: StatusSkipped})
	} else {
		content, err := render("controller."+ext+".tmpl", data)
		if err != nil {
			return nil, err
		}
		res, err := writeNew(controllerPath, content)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	viewDir := g.webapp("view")
	viewPath := g.webapp("view", name+".view.xml")
	if exists(viewPath) {
		return append(results, FileResult{Path: viewPath, Status: StatusSkipped}), nil
	}

	existing, err := hasViews(viewDir)
	if err != nil {
		return nil, err
	}

	content, err := render("view.xml.tmpl", data)
	if err != nil {
		return nil, err
	}
	res, err := writeNew(viewPath, content)
	if err != nil {
		return nil, err
	}
	results = append(results, res)
	if res.Status != StatusCreated {
		return results, nil
	}

	changed, err := addRoute(manifest, name, appID, !existing)
	if err != nil {
		return nil, fmt.Errorf("failed to update routing: %w", err)
	}
	if changed {
		if err := writeManifest(manifestPath, manifest); err != nil {
			return nil, err
		}
		logger.CountFile()
		results = append(results, FileResult{Path: manifestPath, Status: StatusUpdated})
	}

	logger.Info("route created", "name", name, "app", appID, "typescript", ts)
	return results, nil
}
