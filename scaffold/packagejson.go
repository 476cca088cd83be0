package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/liamcoop/ui5helper/internal/logger"
)

const (
	ScriptName           = "ui5-helper"
	DefaultScriptCommand = "ui5helper"
)

// RegisterScript adds scripts["ui5-helper"] to the project's package.json
func (g *Generator) RegisterScript(command string) ([]FileResult, error) {
	if command == "" {
		command = DefaultScriptCommand
	}
	path := filepath.Join(g.Root, "package.json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}
	pkg, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("invalid package.json: %w", err)
	}

	scripts, err := pkg.child("scripts")
	if err != nil {
		return nil, fmt.Errorf("package.json: %w", err)
	}
	if current, ok := scripts.get(ScriptName); ok && current == command {
		return []FileResult{{Path: path, Status: StatusSkipped}}, nil
	}
	scripts.set(ScriptName, command)

	out, err := encodeDocument(pkg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode package.json: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write package.json: %w", err)
	}

	logger.CountFile()
	logger.Info("script registered", "script", ScriptName, "command", command)
	return []FileResult{{Path: path, Status: StatusUpdated}}, nil
}
