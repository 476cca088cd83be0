package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/liamcoop/ui5helper/internal/logger"
)

var (
	ErrFileExists       = errors.New("file already exists")
	ErrManifestNotFound = errors.New("manifest.json not found")
	ErrInvalidName      = errors.New("invalid name")
)

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Status describes what happened to one file
type Status string

const (
	StatusCreated Status = "created"
	StatusSkipped Status = "skipped"
	StatusUpdated Status = "updated"
)

// FileResult is the outcome for one file touched by a generator operation
type FileResult struct {
	Path   string `json:"path"`
	Status Status `json:"status"`
}

// Generator writes UI5 boilerplate below a project root.
// Existing files are never overwritten.
type Generator struct {
	Root string
}

// New creates a generator for the project at root
func New(root string) *Generator {
	return &Generator{Root: root}
}

func (g *Generator) webapp(parts ...string) string {
	return filepath.Join(append([]string{g.Root, "webapp"}, parts...)...)
}

// ValidateName checks a route or fragment name is usable as a file and class name
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q must start with a letter and contain only letters, digits or _", ErrInvalidName, name)
	}
	return nil
}

// createFile writes content to a new file, creating parent directories.
// It returns ErrFileExists without touching an existing file.
func createFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s: %w", path, ErrFileExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := f.Write(content); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.CountFile()
	logger.Debug("file created", "path", path)
	return nil
}

// writeNew creates the file and reports it as created, or as skipped when it exists
func writeNew(path string, content []byte) (FileResult, error) {
	err := createFile(path, content)
	if errors.Is(err, ErrFileExists) {
		logger.Debug("file exists, skipping", "path", path)
		return FileResult{Path: path, Status: StatusSkipped}, nil
	}
	if err != nil {
		return FileResult{}, err
	}
	return FileResult{Path: path, Status: StatusCreated}, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
