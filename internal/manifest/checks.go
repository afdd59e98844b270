package manifest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flipcat/catalog-bundler/internal/logger"
)

// catalogDirName is the well-known root segment of a catalog checkout.
const catalogDirName = "applications"

var (
	// ErrInvalidValues is returned when final manifest value checks fail.
	ErrInvalidValues = errors.New("invalid manifest values")
	// ErrLocationMismatch is returned when the manifest's location inside a
	// catalog tree contradicts its own id or category.
	ErrLocationMismatch = errors.New("manifest location mismatch")

	// appIDPattern constrains application identifiers.
	appIDPattern = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// CheckValues validates the finalized manifest fields. All problems are
// reported together so the package author can fix them in one pass.
func CheckValues(m *Manifest) error {
	var errs []error

	if m.Name == "" {
		errs = append(errs, errors.New("name is empty"))
	}

	if !appIDPattern.MatchString(m.ID) {
		errs = append(errs, fmt.Errorf("app id %q does not match %s", m.ID, appIDPattern.String()))
	}

	if m.Changelog == "" {
		errs = append(errs, errors.New("changelog is empty"))
	}

	if m.ShortDescription == "" {
		errs = append(errs, errors.New("short description is empty"))
	}

	if m.Description == "" {
		errs = append(errs, errors.New("description is empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidValues, errors.Join(errs...))
	}

	return nil
}

// CheckLocation verifies the path convention of catalog checkouts: when the
// manifest lives under an "applications" directory, the path must read
// applications/<category>/<id>/manifest.yml and both segments must agree
// with the manifest contents. Manifests outside a catalog tree are exempt.
func CheckLocation(ctx context.Context, manifestPath string, m *Manifest) error {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(manifestPath)), "/")

	idx := -1
	for i, part := range parts {
		if part == catalogDirName {
			idx = i
			break
		}
	}

	if idx == -1 {
		logger.InfoKV(ctx, "Skipping category check, path has no catalog directory",
			"path", manifestPath)

		return nil
	}

	if len(parts) < idx+4 {
		return fmt.Errorf("%w: invalid path to manifest: %s", ErrLocationMismatch, manifestPath)
	}

	pathCategory, pathAppID, fileName := parts[idx+1], parts[idx+2], parts[idx+3]

	if fileName != Filename {
		return fmt.Errorf("%w: manifest file name %q does not match expected name %q",
			ErrLocationMismatch, fileName, Filename)
	}

	if m.ID != pathAppID {
		return fmt.Errorf("%w: app id %q in manifest does not match id %q from path %s",
			ErrLocationMismatch, m.ID, pathAppID, manifestPath)
	}

	if m.Category != pathCategory {
		return fmt.Errorf("%w: category %q in manifest does not match category %q from path %s",
			ErrLocationMismatch, m.Category, pathCategory, manifestPath)
	}

	return nil
}
