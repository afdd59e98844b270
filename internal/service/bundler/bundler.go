package bundler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/flipcat/catalog-bundler/internal/archive"
	"github.com/flipcat/catalog-bundler/internal/assets"
	"github.com/flipcat/catalog-bundler/internal/buildtool"
	"github.com/flipcat/catalog-bundler/internal/fam"
	"github.com/flipcat/catalog-bundler/internal/fetch"
	"github.com/flipcat/catalog-bundler/internal/logger"
	"github.com/flipcat/catalog-bundler/internal/manifest"
	"github.com/flipcat/catalog-bundler/internal/markdown"
	"github.com/flipcat/catalog-bundler/internal/sandbox"
)

// includePrefix marks a manifest text field whose value is a file path
// inside the fetched source tree rather than inline text.
const includePrefix = "@"

// errNoScreenshots is returned when the manifest lists no screenshots.
var errNoScreenshots = errors.New("at least one screenshot is required")

// Options contains inputs for the bundler entry point.
type Options struct {
	// ManifestPath is the application manifest to bundle.
	ManifestPath string
	// BundlePath is the destination zip file.
	BundlePath string
	// SkipLint disables the source lint stage.
	SkipLint bool
	// SkipBuild disables the source build stage.
	SkipBuild bool
	// SkipSourceCode excludes the fetched source tree from the bundle.
	SkipSourceCode bool
	// SkipRefresh disables the build tool self-update before the run.
	SkipRefresh bool
	// AllowVersionMismatch downgrades a manifest/declaration version
	// conflict from an error to a warning.
	AllowVersionMismatch bool
	// JSONManifestPath optionally exports the reconciled manifest as JSON.
	JSONManifestPath string
	// ArtifactsPath optionally archives the compiled build output.
	ArtifactsPath string
}

// bundler carries the state of one bundling run.
// It is unexported; callers go through Run, which owns setup and teardown.
type bundler struct {
	opts *Options
	box  *sandbox.Sandbox
	man  *manifest.Manifest
	app  *fam.Application
}

// Run executes the bundling workflow: fetch the pinned source revision,
// optionally lint and build it, reconcile metadata, validate text and
// image assets, and assemble the bundle archive.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "bundler")

	man, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return classify(KindInput, err)
	}

	if err = fetch.ValidateLocation(man.SourceCode); err != nil {
		return classify(KindInput, err)
	}

	box, err := sandbox.New()
	if err != nil {
		return classify(KindInput, fmt.Errorf("create sandbox: %w", err))
	}

	defer box.Close()

	b := &bundler{opts: opts, box: box, man: man}

	if err = b.run(ctx); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Bundle completed successfully", "path", opts.BundlePath)

	return nil
}

// run drives the pipeline stages in order. Each stage wraps its failure
// with the matching class.
func (b *bundler) run(ctx context.Context) error {
	if err := fetch.Fetch(ctx, b.box, b.man.SourceCode); err != nil {
		return classifyPath(KindInput, err)
	}

	if err := b.runBuildTool(ctx); err != nil {
		return err
	}

	if err := b.resolveTarget(ctx); err != nil {
		return err
	}

	if err := classify(KindInput, b.expandIncludes(ctx)); err != nil {
		return err
	}

	if err := classify(KindAsset, b.processAssets(ctx)); err != nil {
		return err
	}

	if err := b.checkContent(); err != nil {
		return err
	}

	return b.assemble(ctx)
}

// runBuildTool refreshes, lints and builds the fetched source with the
// external build tool, honoring the skip options.
func (b *bundler) runBuildTool(ctx context.Context) error {
	if !b.opts.SkipRefresh {
		if err := buildtool.Update(ctx); err != nil {
			return classify(KindExternalTool, err)
		}
	}

	if !b.opts.SkipLint {
		if err := buildtool.Lint(ctx, b.box.CodeDir()); err != nil {
			return classify(KindExternalTool, err)
		}
	}

	if !b.opts.SkipBuild {
		if err := buildtool.Build(ctx, b.box.CodeDir()); err != nil {
			return classify(KindExternalTool, err)
		}
	}

	return nil
}

// resolveTarget locates the application declaration in the fetched tree,
// reconciles manifest metadata against it and verifies the manifest sits
// at its catalog location.
func (b *bundler) resolveTarget(ctx context.Context) error {
	app, err := buildtool.DiscoverTarget(ctx, b.box.CodeDir(), b.man.ID)
	if err != nil {
		return classify(KindInput, err)
	}

	b.app = app

	err = manifest.Reconcile(ctx, b.man, app, manifest.ReconcileOptions{
		AllowVersionMismatch: b.opts.AllowVersionMismatch,
	})
	if err != nil {
		return classify(KindReconciliation, err)
	}

	if err = manifest.CheckLocation(ctx, b.opts.ManifestPath, b.man); err != nil {
		return classify(KindInput, err)
	}

	return nil
}

// expandIncludes replaces "@path" text fields with the contents of the
// referenced file from the fetched source tree.
func (b *bundler) expandIncludes(ctx context.Context) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"changelog", &b.man.Changelog},
		{"description", &b.man.Description},
	}

	for _, field := range fields {
		if !strings.HasPrefix(*field.value, includePrefix) {
			continue
		}

		include := filepath.Join(b.box.CodeDir(), strings.TrimPrefix(*field.value, includePrefix))
		if err := sandbox.Validate(include, b.box.CodeDir()); err != nil {
			return classifyPath(KindInput, fmt.Errorf("%s include: %w", field.name, err))
		}

		contents, err := os.ReadFile(filepath.Clean(include))
		if err != nil {
			return fmt.Errorf("read %s include: %w", field.name, err)
		}

		logger.DebugKV(ctx, "Expanded include", "field", field.name, "path", include)

		*field.value = string(contents)
	}

	return nil
}

// processAssets converts the application icon and every screenshot into
// their catalog formats under the sandbox assets directory, rewriting the
// manifest paths to point at the converted copies.
func (b *bundler) processAssets(ctx context.Context) error {
	if len(b.man.Screenshots) == 0 {
		return errNoScreenshots
	}

	if err := b.processIcon(ctx); err != nil {
		return err
	}

	screenshotsDir := filepath.Join(b.box.AssetsDir(), "screenshots")
	if err := os.MkdirAll(screenshotsDir, 0o755); err != nil {
		return fmt.Errorf("create screenshots folder: %w", err)
	}

	for i, src := range b.man.Screenshots {
		srcPath := filepath.Join(b.box.CodeDir(), src)
		if err := sandbox.Validate(srcPath, b.box.CodeDir()); err != nil {
			return classifyPath(KindAsset, fmt.Errorf("screenshot %d: %w", i, err))
		}

		dst := filepath.Join(screenshotsDir, strconv.Itoa(i)+filepath.Ext(src))
		if err := assets.ProcessScreenshot(srcPath, dst); err != nil {
			return fmt.Errorf("screenshot %d: %w", i, err)
		}

		rel, err := b.box.Rel(dst)
		if err != nil {
			return err
		}

		logger.DebugKV(ctx, "Processed screenshot", "source", src, "destination", rel)

		b.man.Screenshots[i] = rel
	}

	return nil
}

// processIcon converts the declaration's icon into the catalog format. The
// file lookup always follows the declared fap_icon relative to the
// declaration's own directory; the manifest icon field is metadata and may
// differ after a soft reconciliation conflict.
func (b *bundler) processIcon(ctx context.Context) error {
	if b.app.Icon == "" {
		return errors.New("application icon is not declared")
	}

	src := filepath.Join(filepath.Dir(b.app.Path), b.app.Icon)
	if err := sandbox.Validate(src, b.box.CodeDir()); err != nil {
		return classifyPath(KindAsset, fmt.Errorf("icon: %w", err))
	}

	dst := filepath.Join(b.box.AssetsDir(), "icon.png")
	if err := assets.ProcessIcon(src, dst); err != nil {
		return fmt.Errorf("icon: %w", err)
	}

	rel, err := b.box.Rel(dst)
	if err != nil {
		return err
	}

	logger.DebugKV(ctx, "Processed icon", "source", src, "destination", rel)

	b.man.Icon = rel

	return nil
}

// checkContent validates the reconciled metadata values and the markdown
// of the long-form text fields.
func (b *bundler) checkContent() error {
	if err := manifest.CheckValues(b.man); err != nil {
		return classify(KindContent, err)
	}

	for _, field := range []struct {
		name  string
		value string
	}{
		{"changelog", b.man.Changelog},
		{"description", b.man.Description},
	} {
		if err := markdown.Check(field.value); err != nil {
			return classify(KindContent, fmt.Errorf("%s: %w", field.name, err))
		}
	}

	return nil
}

// assemble persists the reconciled manifest into the sandbox and writes
// the bundle plus any requested side outputs.
func (b *bundler) assemble(ctx context.Context) error {
	if err := manifest.Save(b.man, filepath.Join(b.box.Root, manifest.Filename)); err != nil {
		return classify(KindInput, err)
	}

	err := archive.WriteBundle(ctx, b.box, b.opts.BundlePath, !b.opts.SkipSourceCode)
	if err != nil {
		return classify(KindInput, err)
	}

	if b.opts.JSONManifestPath != "" {
		if err = manifest.ExportJSON(b.man, b.opts.JSONManifestPath); err != nil {
			return classify(KindInput, err)
		}
	}

	if b.opts.ArtifactsPath != "" {
		if err = archive.WriteArtifacts(ctx, b.box.CodeDir(), b.opts.ArtifactsPath); err != nil {
			return classify(KindInput, err)
		}

		logger.InfoKV(ctx, "Artifacts archived",
			"artifact", path.Base(buildtool.ArtifactPath(b.box.CodeDir(), b.man.ID)),
			"path", b.opts.ArtifactsPath)
	}

	return nil
}
