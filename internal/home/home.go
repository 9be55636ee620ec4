// Package home manages the ~/.papertree directory: the config file,
// rendered page images, media crops and exported workbooks.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the papertree home directory.
	DefaultDirName = ".papertree"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	pagesDirName   = "pages"
	assetsDirName  = "assets"
	exportsDirName = "exports"
)

// Dir represents the papertree home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.papertree).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, sub := range []string{pagesDirName, assetsDirName, exportsDirName} {
		if err := os.MkdirAll(filepath.Join(d.path, sub), 0o755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", sub, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// PagesDir returns the directory for a document's rendered page images.
func (d *Dir) PagesDir(document string) string {
	return filepath.Join(d.path, pagesDirName, document)
}

// AssetsDir returns the directory for a document's cropped media images.
func (d *Dir) AssetsDir(document string) string {
	return filepath.Join(d.path, assetsDirName, document)
}

// ExportsDir returns the directory for exported workbooks.
func (d *Dir) ExportsDir() string {
	return filepath.Join(d.path, exportsDirName)
}

// ExportPath returns the default workbook path for a document.
func (d *Dir) ExportPath(document string) string {
	return filepath.Join(d.ExportsDir(), document+".xlsx")
}
