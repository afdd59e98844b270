package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/flipcat/catalog-bundler/internal/buildtool"
	"github.com/flipcat/catalog-bundler/internal/logger"
	"github.com/flipcat/catalog-bundler/internal/sandbox"
)

// WriteBundle writes the sandbox tree into a deflate-compressed zip at dst.
// Hidden (dot-prefixed) entries and the build output directory are always
// excluded; the fetched source subtree is excluded when includeSource is
// false. Every entry name is the guard-validated, sandbox-relative POSIX
// path of the file.
func WriteBundle(ctx context.Context, s *sandbox.Sandbox, dst string, includeSource bool) error {
	out, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return fmt.Errorf("create bundle: %w", err)
	}

	zw := zip.NewWriter(out)

	err = filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			switch {
			case path == s.Root:
				return nil
			case strings.HasPrefix(d.Name(), "."), d.Name() == buildtool.DistDirName:
				logger.DebugKV(ctx, "Skipping folder", "path", path)
				return filepath.SkipDir
			case !includeSource && path == s.CodeDir():
				logger.DebugKV(ctx, "Skipping source code folder", "path", path)
				return filepath.SkipDir
			}

			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			logger.DebugKV(ctx, "Skipping hidden file", "name", d.Name())
			return nil
		}

		name, err := s.Rel(path)
		if err != nil {
			return err
		}

		return addFile(zw, path, name, d)
	})
	if err != nil {
		_ = zw.Close()
		_ = out.Close()
		_ = os.Remove(dst)

		return fmt.Errorf("write bundle: %w", err)
	}

	if err = zw.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("finish bundle: %w", err)
	}

	if err = out.Close(); err != nil {
		return fmt.Errorf("close bundle: %w", err)
	}

	logger.InfoKV(ctx, "Bundle created", "path", dst)

	return nil
}

// WriteArtifacts zips the build output directory of the source tree, entry
// names relative to the output directory itself. Used to hand compiled
// packages to the upload step.
func WriteArtifacts(ctx context.Context, codeDir, dst string) error {
	distDir := filepath.Join(codeDir, buildtool.DistDirName)

	out, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return fmt.Errorf("create artifacts archive: %w", err)
	}

	zw := zip.NewWriter(out)

	err = filepath.WalkDir(distDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(distDir, path)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Adding artifact", "path", path)

		return addFile(zw, path, filepath.ToSlash(rel), d)
	})
	if err != nil {
		_ = zw.Close()
		_ = out.Close()
		_ = os.Remove(dst)

		return fmt.Errorf("write artifacts archive: %w", err)
	}

	if err = zw.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("finish artifacts archive: %w", err)
	}

	return out.Close()
}

// addFile streams one file into the archive under the given entry name.
func addFile(zw *zip.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = name
	header.Method = zip.Deflate

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err = io.Copy(writer, file); err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}

	return nil
}
