package manifest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCheckValues validates the id pattern and required content fields.
func TestCheckValues(t *testing.T) {
	t.Parallel()

	require.NoError(t, CheckValues(sample()))

	m := sample()
	m.ID = "My-App"

	err := CheckValues(m)
	require.ErrorIs(t, err, ErrInvalidValues)
	require.Contains(t, err.Error(), "My-App")

	m = sample()
	m.Changelog = ""
	m.Description = ""

	err = CheckValues(m)
	require.ErrorIs(t, err, ErrInvalidValues)
	require.Contains(t, err.Error(), "changelog is empty")
	require.Contains(t, err.Error(), "description is empty")
}

// TestCheckLocation covers the applications/<category>/<id>/manifest.yml
// convention and its exemption for paths outside a catalog tree.
func TestCheckLocation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := sample()

	good := filepath.Join("catalog", "applications", "Tools", "example_app", Filename)
	require.NoError(t, CheckLocation(ctx, good, m))

	// Outside a catalog tree the check is skipped entirely.
	require.NoError(t, CheckLocation(ctx, filepath.Join("somewhere", Filename), m))

	// Wrong id segment.
	bad := filepath.Join("applications", "Tools", "other_app", Filename)
	require.ErrorIs(t, CheckLocation(ctx, bad, m), ErrLocationMismatch)

	// Wrong category segment.
	bad = filepath.Join("applications", "NFC", "example_app", Filename)
	require.ErrorIs(t, CheckLocation(ctx, bad, m), ErrLocationMismatch)

	// Wrong file name.
	bad = filepath.Join("applications", "Tools", "example_app", "app.yml")
	require.ErrorIs(t, CheckLocation(ctx, bad, m), ErrLocationMismatch)

	// Truncated path below the catalog directory.
	bad = filepath.Join("applications", "Tools")
	require.ErrorIs(t, CheckLocation(ctx, bad, m), ErrLocationMismatch)
}
