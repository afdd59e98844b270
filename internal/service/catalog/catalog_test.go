package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flipcat/catalog-bundler/internal/manifest"
)

// sample returns a manifest that passes all validation.
func sample(id, category string) *manifest.Manifest {
	return &manifest.Manifest{
		SourceCode: manifest.SourceCode{
			Type: manifest.SourceTypeGit,
			Location: manifest.SourceLocation{
				Origin:    "https://example.com/repo.git",
				CommitSHA: "0123456789abcdef0123456789abcdef01234567",
			},
		},
		Name:             "Example",
		ID:               id,
		Author:           "Author",
		Version:          "1.0",
		Category:         category,
		ShortDescription: "Summary.",
		Description:      "A longer description.",
		Changelog:        "First release.",
		Screenshots:      []string{"screenshots/ss0.png"},
	}
}

// place saves the manifest under applications/<category>/<id> in root.
func place(t *testing.T, root string, m *manifest.Manifest) string {
	t.Helper()

	dir := filepath.Join(root, "applications", m.Category, m.ID)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, manifest.Filename)
	require.NoError(t, manifest.Save(m, path))

	return path
}

// TestCheckAllValid checks a clean catalog scan.
func TestCheckAllValid(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	place(t, root, sample("first_app", "Tools"))
	place(t, root, sample("second_app", "Games"))

	problems, checked, err := Check(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, 2, checked)
	require.Empty(t, problems)

	require.NoError(t, Run(context.Background(), &Options{Root: root}))
}

// TestCheckReportsAllProblems checks that every failing manifest is
// reported, not just the first one.
func TestCheckReportsAllProblems(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	place(t, root, sample("good_app", "Tools"))

	bad := sample("bad_app", "Games")
	bad.Changelog = ""
	place(t, root, bad)

	moved := sample("moved_app", "Tools")
	movedPath := place(t, root, moved)
	moved.Category = "Media"
	require.NoError(t, manifest.Save(moved, movedPath))

	problems, checked, err := Check(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, 3, checked)
	require.Len(t, problems, 2)

	require.ErrorIs(t, problems[0].Err, manifest.ErrInvalidValues)
	require.ErrorIs(t, problems[1].Err, manifest.ErrLocationMismatch)

	err = Run(context.Background(), &Options{Root: root})
	require.EqualError(t, err, "2 of 3 manifests failed validation")
}

// TestCheckEmptyCatalog checks the empty-tree guard.
func TestCheckEmptyCatalog(t *testing.T) {
	t.Parallel()

	_, _, err := Check(context.Background(), t.TempDir())
	require.ErrorIs(t, err, ErrNoManifests)
}

// TestCheckSkipsHiddenDirectories checks that dot-directories are not
// scanned.
func TestCheckSkipsHiddenDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	place(t, root, sample("visible_app", "Tools"))

	hidden := filepath.Join(root, ".git", "applications", "Tools", "ghost_app")
	require.NoError(t, os.MkdirAll(hidden, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(hidden, manifest.Filename), []byte("{"), 0o644))

	problems, checked, err := Check(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, 1, checked)
	require.Empty(t, problems)
}
