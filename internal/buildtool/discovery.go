package buildtool

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/flipcat/catalog-bundler/internal/fam"
	"github.com/flipcat/catalog-bundler/internal/logger"
)

const (
	// DeclarationFilename is the build tool's own manifest file name.
	DeclarationFilename = "application.fam"

	// DistDirName is the conventional build output directory.
	DistDirName = "dist"

	// ArtifactExtension is the extension of compiled application packages.
	ArtifactExtension = ".fap"
)

var (
	// ErrDeclarationNotFound is returned when the source tree carries no
	// build-declaration files at all.
	ErrDeclarationNotFound = errors.New("application declaration not found")
	// ErrNoExternalApplication is returned when declarations exist but none
	// of them is an externally distributable target.
	ErrNoExternalApplication = errors.New("no external application targets found")
	// ErrAmbiguousTarget is returned when several external targets exist
	// and none matches the preferred id.
	ErrAmbiguousTarget = errors.New("multiple external application targets found")
)

// DiscoverTarget walks the source tree for build-declaration files and
// returns the single externally distributable target. With several
// candidates, preferredID (the manifest's id) disambiguates; failing that,
// the error lists every candidate id.
func DiscoverTarget(ctx context.Context, dir, preferredID string) (*fam.Application, error) {
	apps, err := loadDeclarations(dir)
	if err != nil {
		return nil, err
	}

	var external []*fam.Application
	for _, app := range apps {
		if app.Type == fam.AppTypeExternal {
			external = append(external, app)
		}
	}

	switch len(external) {
	case 0:
		return nil, fmt.Errorf("%w in %s", ErrNoExternalApplication, dir)
	case 1:
		return external[0], nil
	}

	for _, app := range external {
		if app.ID == preferredID {
			logger.InfoKV(ctx, "Selected application target", "id", app.ID, "name", app.Name)
			return app, nil
		}
	}

	ids := make([]string, 0, len(external))
	for _, app := range external {
		ids = append(ids, app.ID)
	}

	return nil, fmt.Errorf("%w, specify 'id' in the manifest (%s)",
		ErrAmbiguousTarget, strings.Join(ids, ", "))
}

// ArtifactPath returns the conventional location of the compiled package
// for a target inside the source tree.
func ArtifactPath(codeDir, appID string) string {
	return filepath.Join(codeDir, DistDirName, appID+ArtifactExtension)
}

// loadDeclarations parses every application.fam below dir, skipping hidden
// directories and the build output tree. Duplicate appids across files are
// an error.
func loadDeclarations(dir string) ([]*fam.Application, error) {
	var (
		apps []*fam.Application
		seen = map[string]string{}
	)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || d.Name() == DistDirName) {
				return filepath.SkipDir
			}

			return nil
		}

		if d.Name() != DeclarationFilename {
			return nil
		}

		parsed, err := fam.ParseFile(path)
		if err != nil {
			return err
		}

		for _, app := range parsed {
			if prev, ok := seen[app.ID]; ok {
				return fmt.Errorf("%w: %q declared in %s and %s", fam.ErrDuplicateID, app.ID, prev, path)
			}

			seen[app.ID] = path
			apps = append(apps, app)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(apps) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrDeclarationNotFound, dir)
	}

	return apps, nil
}
