package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Directory names inside the sandbox root.
const (
	// CodeDirName holds the fetched application source tree.
	CodeDirName = "code"
	// AssetsDirName holds processed icons and screenshots.
	AssetsDirName = "assets"
)

var (
	// ErrPathNotFound is returned when a validated path does not exist.
	ErrPathNotFound = errors.New("path not found")
	// ErrPathTraversal is returned when a path resolves outside its root.
	ErrPathTraversal = errors.New("path traversal detected")
)

// Sandbox is the ephemeral directory tree a single bundling run works in.
// Every path referenced by the final manifest must resolve inside Root;
// the fetched source tree is attacker-influenced, so all paths derived from
// it or from the manifest go through Validate before being touched.
type Sandbox struct {
	// Root is the resolved bundle staging directory.
	Root string
	// CloneRoot is a separate resolved scratch directory used for cloning.
	CloneRoot string
}

// New creates the staging tree ({root}/assets) and the clone scratch
// directory. Call Close to remove both.
func New() (*Sandbox, error) {
	root, err := os.MkdirTemp("", "bundler-*")
	if err != nil {
		return nil, fmt.Errorf("create sandbox root: %w", err)
	}

	cloneRoot, err := os.MkdirTemp("", "bundler-clone-*")
	if err != nil {
		_ = os.RemoveAll(root)
		return nil, fmt.Errorf("create clone root: %w", err)
	}

	// MkdirTemp may hand out a path containing symlinks (macOS /var -> /private/var),
	// so resolve both roots up front to keep containment checks exact.
	if root, err = filepath.EvalSymlinks(root); err != nil {
		return nil, fmt.Errorf("resolve sandbox root: %w", err)
	}

	if cloneRoot, err = filepath.EvalSymlinks(cloneRoot); err != nil {
		return nil, fmt.Errorf("resolve clone root: %w", err)
	}

	s := &Sandbox{Root: root, CloneRoot: cloneRoot}

	if err = os.Mkdir(s.AssetsDir(), 0o755); err != nil {
		s.Close()
		return nil, fmt.Errorf("create assets dir: %w", err)
	}

	return s, nil
}

// Close removes the sandbox trees. It is safe to call on every exit path.
func (s *Sandbox) Close() {
	_ = os.RemoveAll(s.Root)
	_ = os.RemoveAll(s.CloneRoot)
}

// CodeDir returns the path of the source tree inside the sandbox.
func (s *Sandbox) CodeDir() string {
	return filepath.Join(s.Root, CodeDirName)
}

// AssetsDir returns the path of the processed assets directory.
func (s *Sandbox) AssetsDir() string {
	return filepath.Join(s.Root, AssetsDirName)
}

// Validate fails unless path exists and, after full resolution of symlinks
// and "..", is contained in the sandbox root.
func (s *Sandbox) Validate(path string) error {
	return Validate(path, s.Root)
}

// Rel returns the POSIX-style path of path relative to the sandbox root.
// The path is validated first.
func (s *Sandbox) Rel(path string) (string, error) {
	return Rel(path, s.Root)
}

// Validate fails unless path exists and its fully resolved form is contained
// in root. Root must itself be resolved.
func Validate(path, root string) error {
	if _, err := os.Lstat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}

	if !contains(root, resolved) {
		return fmt.Errorf("%w: %s is outside %s", ErrPathTraversal, path, root)
	}

	return nil
}

// Rel validates path against root and returns its root-relative POSIX form.
func Rel(path, root string) (string, error) {
	if err := Validate(path, root); err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}

	rel, err := filepath.Rel(root, resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, path)
	}

	return filepath.ToSlash(rel), nil
}

// contains reports whether candidate equals root or lives below it.
func contains(root, candidate string) bool {
	if candidate == root {
		return true
	}

	return strings.HasPrefix(candidate, root+string(filepath.Separator))
}
