package sandbox

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNewAndClose verifies the staging tree layout and its removal.
func TestNewAndClose(t *testing.T) {
	t.Parallel()

	s, err := New()
	require.NoError(t, err)

	info, err := os.Stat(s.AssetsDir())
	require.NoError(t, err)
	require.True(t, info.IsDir())

	s.Close()

	_, err = os.Stat(s.Root)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(s.CloneRoot)
	require.True(t, os.IsNotExist(err))
}

// TestValidateContainment checks the containment property: paths inside the
// root pass, paths outside fail with ErrPathTraversal.
func TestValidateContainment(t *testing.T) {
	t.Parallel()

	s, err := New()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	inside := filepath.Join(s.Root, "file.txt")
	require.NoError(t, os.WriteFile(inside, []byte("x"), 0o644))

	require.NoError(t, s.Validate(inside))
	require.NoError(t, s.Validate(s.AssetsDir()))

	outside := filepath.Join(t.TempDir(), "other.txt")
	require.NoError(t, os.WriteFile(outside, []byte("y"), 0o644))

	err = s.Validate(outside)
	require.ErrorIs(t, err, ErrPathTraversal)

	// Escape via "..".
	err = s.Validate(filepath.Join(s.Root, "..", filepath.Base(outside)))
	require.Error(t, err)
}

// TestValidateMissingPath ensures nonexistent paths are rejected before any
// containment decision.
func TestValidateMissingPath(t *testing.T) {
	t.Parallel()

	s, err := New()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	err = s.Validate(filepath.Join(s.Root, "nope.txt"))
	require.ErrorIs(t, err, ErrPathNotFound)
}

// TestValidateSymlinkEscape ensures a symlink inside the root pointing
// outside of it is treated as traversal.
func TestValidateSymlinkEscape(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	s, err := New()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	target := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(target, []byte("z"), 0o644))

	link := filepath.Join(s.Root, "link.txt")
	require.NoError(t, os.Symlink(target, link))

	err = s.Validate(link)
	require.ErrorIs(t, err, ErrPathTraversal)
}

// TestRel checks POSIX-relative path results and the validation precondition.
func TestRel(t *testing.T) {
	t.Parallel()

	s, err := New()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	nested := filepath.Join(s.AssetsDir(), "screenshots")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	file := filepath.Join(nested, "0.png")
	require.NoError(t, os.WriteFile(file, []byte("p"), 0o644))

	rel, err := s.Rel(file)
	require.NoError(t, err)
	require.Equal(t, "assets/screenshots/0.png", rel)

	_, err = s.Rel(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
