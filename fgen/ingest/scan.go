package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	internal "github.com/foldergen/foldergen/fgen"
	"github.com/foldergen/foldergen/fgen/generator/types"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"
)

// ScanOptions configures a source folder scan.
type ScanOptions struct {
	Extensions   []string // Accepted file extensions (lowercase, with dot)
	MaxFileBytes int64    // Per-file size cap; larger files are excluded
	Workers      int      // Stat fan-out worker count
}

// ScanFolder lists the candidate source files directly inside dir:
// regular files with a supported extension, at or under the size cap, not
// matched by an optional .fgenignore file. Results are sorted by name.
// The scan is a hosting-layer concern; the generation engine itself never
// touches the source folder.
func ScanFolder(ctx context.Context, dir string, opts ScanOptions) ([]types.SourceFileRef, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access source folder %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path is not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source folder %s: %w", dir, err)
	}

	ignoreChecker, err := loadIgnoreFile(dir)
	if err != nil {
		return nil, err
	}

	extensions := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		extensions[strings.ToLower(ext)] = true
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	var (
		files []types.SourceFileRef
		mu    sync.Mutex
	)

	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx)
	for _, entry := range entries {
		p.Go(func(ctx context.Context) error {
			if entry.IsDir() {
				return nil
			}

			name := entry.Name()
			if len(extensions) > 0 && !extensions[strings.ToLower(filepath.Ext(name))] {
				return nil
			}
			if ignoreChecker != nil && ignoreChecker.MatchesPath(name) {
				return nil
			}

			fileInfo, err := entry.Info()
			if err != nil {
				slog.Warn("Failed to stat candidate file", "name", name, "error", err)
				return nil
			}
			if opts.MaxFileBytes > 0 && fileInfo.Size() > opts.MaxFileBytes {
				return nil
			}

			mu.Lock()
			files = append(files, types.SourceFileRef{
				DisplayName: name,
				Path:        filepath.Join(dir, name),
				Size:        fileInfo.Size(),
			})
			mu.Unlock()
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("source folder scan failed: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].DisplayName < files[j].DisplayName
	})

	return files, nil
}

// loadIgnoreFile compiles the optional ignore file in dir.
func loadIgnoreFile(dir string) (*ignore.GitIgnore, error) {
	ignorePath := filepath.Join(dir, internal.DefaultIgnoreFile)

	if _, err := os.Stat(ignorePath); err == nil {
		ignored, err := ignore.CompileIgnoreFile(ignorePath)
		if err != nil {
			return nil, fmt.Errorf("error reading %s file: %w", internal.DefaultIgnoreFile, err)
		}
		return ignored, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("error checking for %s file: %w", internal.DefaultIgnoreFile, err)
	}

	return nil, nil
}
