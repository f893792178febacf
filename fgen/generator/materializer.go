package generator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/foldergen/foldergen/fgen/generator/fileops"
	"github.com/foldergen/foldergen/fgen/generator/types"

	"github.com/ZanzyTHEbar/assert-lib"
)

// DefaultMaxSourceFileBytes is the per-file copy cap. Files exactly at the
// cap are copied; one byte over is rejected.
const DefaultMaxSourceFileBytes = 10 * 1024 * 1024

// Materializer creates the resolved directories under the output root and
// copies the selected source files into each of them, accounting every
// skipped unit of work in the run result. Strictly sequential: one record,
// then its files, then the next record.
type Materializer struct {
	fileOps       *fileops.FileOps
	maxFileBytes  int64
	assertHandler *assert.AssertHandler
}

// NewMaterializer creates a new materializer with the given per-file size cap
func NewMaterializer(maxFileBytes int64, assertHandler *assert.AssertHandler) *Materializer {
	if maxFileBytes <= 0 {
		maxFileBytes = DefaultMaxSourceFileBytes
	}
	return &Materializer{
		fileOps:       fileops.NewFileOps(),
		maxFileBytes:  maxFileBytes,
		assertHandler: assertHandler,
	}
}

// Materialize processes every folder part sequence in order. A record whose
// directory cannot be created is charged the cost of all its would-be copies
// and skipped; an individual copy failure skips that file only. Nothing
// aborts the run.
func (m *Materializer) Materialize(ctx context.Context, sequences []types.FolderPartSequence, sourceFiles []types.SourceFileRef, outputRoot string, result *types.GenerationResult) {
	start := time.Now()

	for recordIdx, parts := range sequences {
		targetDir := filepath.Join(append([]string{outputRoot}, parts...)...)

		if err := m.fileOps.CreateDirectory(ctx, targetDir, 0o755); err != nil {
			// One fatal directory error costs as much as copying every file
			// would have; the record is not retried.
			result.FailDetails = append(result.FailDetails, fmt.Sprintf("failed to process record %d: %v", recordIdx+1, err))
			result.FailCount += len(sourceFiles)
			continue
		}
		result.FolderCount++

		for _, src := range sourceFiles {
			m.copyInto(ctx, src, targetDir, result)
		}
	}

	// A folder only counts once per record, and copies only land in created
	// folders; violating either means the accounting above is broken.
	m.assertHandler.Assert(ctx, result.FolderCount <= len(sequences), "cannot create more folders than records")
	m.assertHandler.Assert(ctx, result.SuccessCount <= result.FolderCount*len(sourceFiles), "cannot copy more files than created folders hold")

	slog.Info("Materialization completed",
		"records", len(sequences),
		"folders", result.FolderCount,
		"copied", result.SuccessCount,
		"failed", result.FailCount,
		"duration", time.Since(start))
}

func (m *Materializer) copyInto(ctx context.Context, src types.SourceFileRef, targetDir string, result *types.GenerationResult) {
	baseName := filepath.Base(src.Path)

	info, err := os.Stat(src.Path)
	if err != nil {
		if os.IsNotExist(err) {
			result.AddFailure(fmt.Sprintf("source file does not exist: %s", baseName))
		} else {
			result.AddFailure(fmt.Sprintf("failed to access source file %s: %v", baseName, err))
		}
		return
	}

	if info.Size() > m.maxFileBytes {
		result.AddFailure(fmt.Sprintf("file too large (%.2f MB): %s", float64(info.Size())/(1024*1024), baseName))
		return
	}

	dstPath := filepath.Join(targetDir, baseName)
	if err := m.fileOps.CopyFile(ctx, src.Path, dstPath); err != nil {
		result.AddFailure(fmt.Sprintf("failed to copy file: %v", err))
		return
	}

	result.SuccessCount++
}
