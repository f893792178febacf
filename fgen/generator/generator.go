package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/foldergen/foldergen/fgen/generator/types"

	"github.com/ZanzyTHEbar/assert-lib"
)

// Generator is the generation engine: resolver plus materializer behind one
// Process call. It is stateless and reentrant; every run's inputs arrive in
// the RunRequest and every run's outcome leaves in the returned result.
type Generator struct {
	resolver      *Resolver
	materializer  *Materializer
	assertHandler *assert.AssertHandler
}

// New creates a generation engine with the given per-file size cap
// (0 selects the 10 MiB default).
func New(maxFileBytes int64) *Generator {
	// Create assert handler for the engine and its materializer
	assertHandler := assert.NewAssertHandler()
	return &Generator{
		resolver:      NewResolver(),
		materializer:  NewMaterializer(maxFileBytes, assertHandler),
		assertHandler: assertHandler,
	}
}

// Process runs one generation: resolve records into folder part sequences,
// then materialize directories and copies under the output root. The result
// is always returned, even on partial failure; a non-nil error marks a
// configuration failure that produced zero filesystem side effects.
func (g *Generator) Process(ctx context.Context, req *types.RunRequest) (*types.GenerationResult, error) {
	start := time.Now()
	result := &types.GenerationResult{}

	if req == nil {
		return result, fmt.Errorf("run request cannot be nil")
	}
	if strings.TrimSpace(req.OutputRoot) == "" {
		result.AddDiagnostic("no output folder configured")
		return result, fmt.Errorf("output root cannot be empty")
	}

	slog.Info("Starting generation run",
		"dataSource", req.DataSource,
		"levels", len(req.Levels),
		"sourceFiles", len(req.SourceFiles),
		"outputRoot", req.OutputRoot)

	sequences, diagnostics, err := g.resolver.Resolve(req)
	for _, d := range diagnostics {
		result.AddDiagnostic(d)
	}
	if err != nil {
		result.AddDiagnostic(err.Error())
		return result, err
	}

	// Every record resolves to the same number of segments: the valid level
	// count for name mode, the bound column count for tabular mode.
	for _, seq := range sequences {
		g.assertHandler.Assert(ctx, len(seq) == len(sequences[0]), "resolved records must share one segment count")
	}

	g.materializer.Materialize(ctx, sequences, req.SourceFiles, req.OutputRoot, result)

	slog.Info("Generation run completed",
		"folders", result.FolderCount,
		"copied", result.SuccessCount,
		"failed", result.FailCount,
		"duration", time.Since(start))

	return result, nil
}
