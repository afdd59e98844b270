package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flipcat/catalog-bundler/internal/logger"
	"github.com/flipcat/catalog-bundler/internal/manifest"
)

// ErrNoManifests is returned when the catalog root contains no manifest
// documents at the expected depth.
var ErrNoManifests = errors.New("no manifests found")

// Options contains inputs for the catalog checker entry point.
type Options struct {
	// Root is the catalog checkout to scan. Manifests are expected at
	// applications/<category>/<id>/manifest.yml below it.
	Root string
}

// Problem records one failed manifest so a report can show everything
// wrong in a single run.
type Problem struct {
	// Path is the manifest that failed.
	Path string
	// Err is the validation failure.
	Err error
}

// Run scans the catalog tree and validates every manifest it finds. All
// manifests are checked even after failures; the returned error counts
// them.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "catalog-checker")

	problems, checked, err := Check(ctx, opts.Root)
	if err != nil {
		return err
	}

	for _, p := range problems {
		logger.ErrorKV(ctx, "Manifest failed validation", "path", p.Path, "error", p.Err)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%d of %d manifests failed validation", len(problems), checked)
	}

	logger.InfoKV(ctx, "All manifests are valid", "checked", checked)

	return nil
}

// Check validates every manifest under root and returns the list of
// failures plus the number of manifests checked.
func Check(ctx context.Context, root string) ([]Problem, int, error) {
	paths, err := discover(root)
	if err != nil {
		return nil, 0, err
	}

	if len(paths) == 0 {
		return nil, 0, fmt.Errorf("%w under %s", ErrNoManifests, root)
	}

	var problems []Problem

	for _, path := range paths {
		logger.DebugKV(ctx, "Checking manifest", "path", path)

		if err := checkOne(ctx, path); err != nil {
			problems = append(problems, Problem{Path: path, Err: err})
		}
	}

	return problems, len(paths), nil
}

// checkOne loads and validates a single manifest document.
func checkOne(ctx context.Context, path string) error {
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	return errors.Join(
		manifest.CheckValues(m),
		manifest.CheckLocation(ctx, path, m),
	)
}

// discover lists manifest files at the catalog depth, sorted for stable
// reports. Hidden directories are skipped.
func discover(root string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}

			return nil
		}

		if d.Name() == manifest.Filename {
			paths = append(paths, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}

	sort.Strings(paths)

	return paths, nil
}
