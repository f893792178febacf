package fileops

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/foldergen/foldergen/fgen/generator/common"
)

// FileOps provides the low-level filesystem operations the materializer runs
// on: idempotent directory creation and overwriting copies that preserve the
// source's permissions and modification time.
type FileOps struct {
	pathUtils *common.PathUtils
}

// NewFileOps creates a new file operations instance
func NewFileOps() *FileOps {
	return &FileOps{
		pathUtils: common.NewPathUtils(),
	}
}

// CreateDirectory creates a directory and all missing ancestors. Succeeds if
// the directory already exists.
func (fo *FileOps) CreateDirectory(ctx context.Context, path string, perms os.FileMode) error {
	// Check for context cancellation
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := fo.pathUtils.ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	if err := os.MkdirAll(path, perms); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}

	return nil
}

// CopyFile copies file content and attributes from srcPath to dstPath,
// overwriting any existing destination file.
func (fo *FileOps) CopyFile(ctx context.Context, srcPath, dstPath string) error {
	// Check for context cancellation
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := fo.pathUtils.ValidatePath(dstPath); err != nil {
		return fmt.Errorf("invalid destination path: %w", err)
	}

	if err := fo.performFileCopy(ctx, srcPath, dstPath); err != nil {
		return fmt.Errorf("failed to copy file from %s to %s: %w", srcPath, dstPath, err)
	}

	if err := fo.copyFileAttributes(srcPath, dstPath); err != nil {
		return fmt.Errorf("failed to copy file attributes to %s: %w", dstPath, err)
	}

	return nil
}

// FileSize returns the current on-disk size of a file.
func (fo *FileOps) FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	return info.Size(), nil
}

func (fo *FileOps) performFileCopy(ctx context.Context, srcPath, dstPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	// Create destination directory if it doesn't exist
	dstDir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	dstFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := fo.copyContent(ctx, dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	return nil
}

func (fo *FileOps) copyContent(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buffer := make([]byte, 32*1024) // 32KB buffer
	var totalBytes int64

	for {
		select {
		case <-ctx.Done():
			return totalBytes, ctx.Err()
		default:
		}

		n, readErr := src.Read(buffer)
		if n > 0 {
			if _, writeErr := dst.Write(buffer[:n]); writeErr != nil {
				return totalBytes, writeErr
			}
			totalBytes += int64(n)
		}

		if readErr != nil {
			if readErr == io.EOF {
				return totalBytes, nil
			}
			return totalBytes, readErr
		}
	}
}

// copyFileAttributes preserves permissions and modification time, matching
// the copy-with-metadata semantics of the reference implementation.
func (fo *FileOps) copyFileAttributes(srcPath, dstPath string) error {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return fmt.Errorf("failed to stat source %s: %w", srcPath, err)
	}

	if err := os.Chmod(dstPath, srcInfo.Mode()); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", dstPath, err)
	}

	if err := os.Chtimes(dstPath, time.Now(), srcInfo.ModTime()); err != nil {
		return fmt.Errorf("failed to set times on %s: %w", dstPath, err)
	}

	return nil
}
