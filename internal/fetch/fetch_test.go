package fetch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flipcat/catalog-bundler/internal/manifest"
)

// location builds a SourceCode value for validation tests.
func location(srcType, sha string) manifest.SourceCode {
	return manifest.SourceCode{
		Type: srcType,
		Location: manifest.SourceLocation{
			Origin:    "https://example.com/app.git",
			CommitSHA: sha,
		},
	}
}

// TestValidateLocation covers the pre-clone pinning contract: git only,
// full 40-hex commit hashes only.
func TestValidateLocation(t *testing.T) {
	t.Parallel()

	fullSHA := strings.Repeat("ab", 20)

	require.NoError(t, ValidateLocation(location("git", fullSHA)))

	err := ValidateLocation(location("svn", fullSHA))
	require.ErrorIs(t, err, ErrUnsupportedSourceType)

	err = ValidateLocation(location("git", ""))
	require.ErrorIs(t, err, ErrInvalidRevision)

	// 39 characters: one short of a full hash.
	err = ValidateLocation(location("git", fullSHA[:39]))
	require.ErrorIs(t, err, ErrInvalidRevision)

	// Tags and branch names are not accepted in place of a hash.
	err = ValidateLocation(location("git", "v1.2.3"))
	require.ErrorIs(t, err, ErrInvalidRevision)

	// Uppercase hex is rejected; hashes are canonical lowercase.
	err = ValidateLocation(location("git", strings.ToUpper(fullSHA)))
	require.ErrorIs(t, err, ErrInvalidRevision)
}
