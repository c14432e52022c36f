package template

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CopyTree copies the directory srcDir of src into dstDir of dst,
// preserving file modes.
//
// Version-control metadata (any entry named .git) and symbolic links are
// skipped, so a template checkout becomes a plain file tree. dstDir is
// created when missing; existing files in it are overwritten.
func CopyTree(src afero.Fs, srcDir string, dst afero.Fs, dstDir string) error {
	return afero.Walk(src, srcDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("error walking template directory at %s: %w", path, walkErr)
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		dstPath := filepath.Join(dstDir, relPath)

		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}

		if info.Name() == ".git" && relPath != "." {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if err := dst.MkdirAll(dstPath, info.Mode().Perm()|0o700); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dstPath, err)
			}
			return nil
		}

		return copyFile(src, path, dst, dstPath, info.Mode().Perm())
	})
}

// copyFile streams a single file from src to dst with the given mode.
func copyFile(src afero.Fs, srcPath string, dst afero.Fs, dstPath string, mode os.FileMode) error {
	in, err := src.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcPath, err)
	}
	defer func() { _ = in.Close() }()

	out, err := dst.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dstPath, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", srcPath, dstPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dstPath, err)
	}

	// OpenFile only applies mode to new files.
	if err := dst.Chmod(dstPath, mode); err != nil {
		return fmt.Errorf("failed to set mode of %s: %w", dstPath, err)
	}
	return nil
}
