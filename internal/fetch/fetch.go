package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/flipcat/catalog-bundler/internal/logger"
	"github.com/flipcat/catalog-bundler/internal/manifest"
	"github.com/flipcat/catalog-bundler/internal/sandbox"
)

var (
	// ErrUnsupportedSourceType is returned for any sourcecode type other
	// than git.
	ErrUnsupportedSourceType = errors.New("unsupported sourcecode type")
	// ErrInvalidRevision is returned when commit_sha is missing or is not a
	// full 40-character hash. Branch names and short hashes are rejected on
	// purpose: bundles must be reproducible.
	ErrInvalidRevision = errors.New("missing or invalid commit sha")
)

// commitSHAPattern matches a full lowercase git object hash.
var commitSHAPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// ValidateLocation performs the pre-clone input checks. It is separate from
// Fetch so the pipeline can fail fast before any network or disk side
// effects.
func ValidateLocation(sc manifest.SourceCode) error {
	if sc.Type != manifest.SourceTypeGit {
		return fmt.Errorf("%w: %q", ErrUnsupportedSourceType, sc.Type)
	}

	sha := sc.Location.CommitSHA
	if sha == "" {
		return fmt.Errorf("%w: commit_sha not specified for %s", ErrInvalidRevision, sc.Location.Origin)
	}

	if !commitSHAPattern.MatchString(sha) {
		return fmt.Errorf("%w: commit_sha for %s must be 40 hex characters, got %q",
			ErrInvalidRevision, sc.Location.Origin, sha)
	}

	return nil
}

// Fetch clones the pinned revision into the sandbox: recursive clone into
// the clone scratch directory, detached checkout of the commit, recursive
// submodule update, then the effective source root (the clone or the
// declared subdir) is moved to {sandbox}/code.
func Fetch(ctx context.Context, s *sandbox.Sandbox, sc manifest.SourceCode) error {
	if err := ValidateLocation(sc); err != nil {
		return err
	}

	loc := sc.Location

	logger.InfoKV(ctx, "Cloning repository", "origin", loc.Origin, "destination", s.CloneRoot)

	repo, err := git.PlainCloneContext(ctx, s.CloneRoot, false, &git.CloneOptions{
		URL:               loc.Origin,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	})
	if err != nil {
		return fmt.Errorf("clone %s: %w", loc.Origin, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}

	logger.InfoKV(ctx, "Checking out pinned commit", "commit_sha", loc.CommitSHA)

	if err = wt.Checkout(&git.CheckoutOptions{
		Hash:  plumbing.NewHash(loc.CommitSHA),
		Force: true,
	}); err != nil {
		return fmt.Errorf("checkout %s: %w", loc.CommitSHA, err)
	}

	if err = updateSubmodules(wt); err != nil {
		return err
	}

	effective := s.CloneRoot
	if loc.Subdir != "" {
		effective = filepath.Join(s.CloneRoot, loc.Subdir)
		// The subdir comes from the manifest, so it must prove containment.
		if err = sandbox.Validate(effective, s.CloneRoot); err != nil {
			return fmt.Errorf("subdir %q: %w", loc.Subdir, err)
		}
	}

	logger.InfoKV(ctx, "Moving source tree into sandbox", "source", effective, "destination", s.CodeDir())

	if err = moveTree(effective, s.CodeDir()); err != nil {
		return fmt.Errorf("move source tree: %w", err)
	}

	return nil
}

// updateSubmodules initializes and updates submodules recursively after the
// detached checkout.
func updateSubmodules(wt *git.Worktree) error {
	subs, err := wt.Submodules()
	if err != nil {
		return fmt.Errorf("list submodules: %w", err)
	}

	if len(subs) == 0 {
		return nil
	}

	if err = subs.Update(&git.SubmoduleUpdateOptions{
		Init:              true,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	}); err != nil {
		return fmt.Errorf("update submodules: %w", err)
	}

	return nil
}

// moveTree renames src to dst, falling back to a copy when the rename
// crosses filesystems.
func moveTree(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyTree(src, dst); err != nil {
		return err
	}

	return os.RemoveAll(src)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}

			return os.Symlink(link, target)
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
