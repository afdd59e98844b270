package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// Filename is the conventional manifest file name inside a catalog.
	Filename = "manifest.yml"

	// SourceTypeGit is the only supported sourcecode type.
	SourceTypeGit = "git"

	// defaultFileMode is used for files written by the bundler.
	defaultFileMode os.FileMode = 0o644
)

var (
	// ErrNotFound is returned when the manifest file does not exist.
	ErrNotFound = errors.New("manifest not found")
	// ErrFormat is returned when the manifest document cannot be parsed.
	ErrFormat = errors.New("manifest format error")
)

// SourceLocation pins the application source revision.
type SourceLocation struct {
	// Origin is the remote repository URL.
	Origin string `yaml:"origin" json:"origin"`
	// CommitSHA is the full 40-character revision hash.
	CommitSHA string `yaml:"commit_sha" json:"commit_sha"`
	// Subdir optionally narrows the effective source root to a subtree.
	Subdir string `yaml:"subdir,omitempty" json:"subdir,omitempty"`
}

// SourceCode describes where the application source comes from.
// It is immutable once the source has been fetched.
type SourceCode struct {
	// Type is the revision control kind; only "git" is supported.
	Type string `yaml:"type" json:"type"`
	// Location pins origin, revision and optional subdirectory.
	Location SourceLocation `yaml:"location" json:"location"`
}

// Manifest is the author-supplied metadata document describing an
// application. Field order here is the canonical order of the persisted
// document.
type Manifest struct {
	SourceCode       SourceCode `yaml:"sourcecode" json:"sourcecode"`
	Name             string     `yaml:"name" json:"name"`
	ID               string     `yaml:"id" json:"id"`
	Author           string     `yaml:"author" json:"author"`
	Version          string     `yaml:"version" json:"version"`
	Icon             string     `yaml:"icon" json:"icon"`
	Category         string     `yaml:"category" json:"category"`
	ShortDescription string     `yaml:"short_description" json:"short_description"`
	Description      string     `yaml:"description" json:"description"`
	Changelog        string     `yaml:"changelog" json:"changelog"`
	Screenshots      []string   `yaml:"screenshots" json:"screenshots"`
	Targets          []string   `yaml:"targets" json:"targets"`
}

// Load parses the manifest document at path. The document is only decoded
// here; value checks happen separately so a catalog walker can report all
// problems at once.
func Load(path string) (*Manifest, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFormat, path, err)
	}

	return &m, nil
}

// Save serializes the manifest back to YAML, preserving field order.
func Save(m *Manifest, path string) error {
	contents, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), contents, defaultFileMode); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// ExportJSON writes the manifest as an indented JSON document for
// downstream tooling. This is a convenience copy, not the archive format.
func ExportJSON(m *Manifest, path string) error {
	contents, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal manifest json: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), contents, defaultFileMode); err != nil {
		return fmt.Errorf("write manifest json: %w", err)
	}

	return nil
}
