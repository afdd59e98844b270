package buildtool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flipcat/catalog-bundler/internal/fam"
)

// writeDeclaration drops an application.fam with the given body under dir.
func writeDeclaration(t *testing.T, dir, body string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DeclarationFilename), []byte(body), 0o644))
}

// TestDiscoverSingleTarget finds the one external target in a tree.
func TestDiscoverSingleTarget(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDeclaration(t, dir, `
App(appid="solo", name="Solo", apptype=FlipperAppType.EXTERNAL, fap_icon="icon.png")
App(appid="helper", apptype=FlipperAppType.PLUGIN)
`)

	app, err := DiscoverTarget(context.Background(), dir, "")
	require.NoError(t, err)
	require.Equal(t, "solo", app.ID)
	require.Equal(t, "icon.png", app.Icon)
}

// TestDiscoverWalksSubdirectories picks up declarations below the root and
// skips hidden and build output directories.
func TestDiscoverWalksSubdirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDeclaration(t, filepath.Join(dir, "app"), `App(appid="nested", apptype=FlipperAppType.EXTERNAL)`)
	writeDeclaration(t, filepath.Join(dir, ".git"), `not even parseable`)
	writeDeclaration(t, filepath.Join(dir, DistDirName), `also ( not parseable`)

	app, err := DiscoverTarget(context.Background(), dir, "")
	require.NoError(t, err)
	require.Equal(t, "nested", app.ID)
}

// TestDiscoverNoDeclarations distinguishes a missing declaration from a
// tree with declarations but no external target.
func TestDiscoverNoDeclarations(t *testing.T) {
	t.Parallel()

	_, err := DiscoverTarget(context.Background(), t.TempDir(), "")
	require.ErrorIs(t, err, ErrDeclarationNotFound)

	dir := t.TempDir()
	writeDeclaration(t, dir, `App(appid="svc", apptype=FlipperAppType.SERVICE)`)

	_, err = DiscoverTarget(context.Background(), dir, "")
	require.ErrorIs(t, err, ErrNoExternalApplication)
}

// TestDiscoverAmbiguousTargets requires a preferred id when several
// external targets exist, and lists the candidates otherwise.
func TestDiscoverAmbiguousTargets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDeclaration(t, dir, `
App(appid="first", apptype=FlipperAppType.EXTERNAL)
App(appid="second", apptype=FlipperAppType.EXTERNAL)
`)

	app, err := DiscoverTarget(context.Background(), dir, "second")
	require.NoError(t, err)
	require.Equal(t, "second", app.ID)

	_, err = DiscoverTarget(context.Background(), dir, "")
	require.ErrorIs(t, err, ErrAmbiguousTarget)
	require.Contains(t, err.Error(), "first")
	require.Contains(t, err.Error(), "second")

	_, err = DiscoverTarget(context.Background(), dir, "third")
	require.ErrorIs(t, err, ErrAmbiguousTarget)
}

// TestDiscoverDuplicateIDs rejects the same appid declared twice.
func TestDiscoverDuplicateIDs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDeclaration(t, filepath.Join(dir, "a"), `App(appid="dup", apptype=FlipperAppType.EXTERNAL)`)
	writeDeclaration(t, filepath.Join(dir, "b"), `App(appid="dup", apptype=FlipperAppType.EXTERNAL)`)

	_, err := DiscoverTarget(context.Background(), dir, "")
	require.ErrorIs(t, err, fam.ErrDuplicateID)
}

// TestArtifactPath checks the conventional dist location.
func TestArtifactPath(t *testing.T) {
	t.Parallel()

	got := ArtifactPath(filepath.Join("sb", "code"), "solo")
	require.Equal(t, filepath.Join("sb", "code", "dist", "solo.fap"), got)
}
