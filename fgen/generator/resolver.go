package generator

import (
	"fmt"
	"strings"

	"github.com/foldergen/foldergen/fgen/generator/common"
	"github.com/foldergen/foldergen/fgen/generator/types"
)

// Resolver turns (records × configured levels) into sanitized folder part
// sequences. It owns no mutable state and performs no I/O: the hosting layer
// hands it fully materialized name lists and tables.
type Resolver struct {
	pathUtils *common.PathUtils
}

// NewResolver creates a new record resolver
func NewResolver() *Resolver {
	return &Resolver{
		pathUtils: common.NewPathUtils(),
	}
}

// Resolve produces one FolderPartSequence per record, plus diagnostics for
// levels that were dropped without failing the run. Configuration errors
// (no levels, no records, no valid columns) terminate resolution.
func (rv *Resolver) Resolve(req *types.RunRequest) ([]types.FolderPartSequence, []string, error) {
	validLevels := rv.filterLevels(req.Levels)
	if len(validLevels) == 0 {
		return nil, nil, common.ErrNoValidLevels
	}

	switch req.DataSource {
	case types.SourceNameList:
		return rv.resolveNames(req.Names, validLevels, req.LevelPolicy)
	case types.SourceTabular:
		return rv.resolveTable(req.Table, validLevels)
	default:
		return nil, nil, fmt.Errorf("unknown data source %q", req.DataSource)
	}
}

// filterLevels drops blank level entries, preserving order.
func (rv *Resolver) filterLevels(levels []string) []string {
	valid := make([]string, 0, len(levels))
	for _, level := range levels {
		if strings.TrimSpace(level) == "" {
			continue
		}
		valid = append(valid, level)
	}
	return valid
}

func (rv *Resolver) resolveNames(names []string, levels []string, policy types.LevelPolicy) ([]types.FolderPartSequence, []string, error) {
	if len(names) == 0 {
		return nil, nil, common.ErrEmptyNameList
	}

	sequences := make([]types.FolderPartSequence, 0, len(names))
	for nameIdx, name := range names {
		parts := make(types.FolderPartSequence, 0, len(levels))
		for levelIdx, level := range levels {
			segment := rv.resolveNameLevel(name, level, levelIdx, policy)
			parts = append(parts, rv.pathUtils.CleanSegment(segment, nameIdx, levelIdx))
		}
		sequences = append(sequences, parts)
	}

	return sequences, nil, nil
}

// resolveNameLevel applies the level policy. The first level always resolves
// to the record name. Under the legacy policy any purely alphabetic level
// string is a second substitution of the record name; under the strict policy
// only the literal token "name" substitutes.
func (rv *Resolver) resolveNameLevel(name, level string, levelIdx int, policy types.LevelPolicy) string {
	if levelIdx == 0 {
		return name
	}

	if policy == types.PolicyStrict {
		if level == "name" {
			return name
		}
		return level
	}

	if rv.pathUtils.IsAlphabetic(level) {
		return name
	}
	return level
}

func (rv *Resolver) resolveTable(rows [][]string, levels []string) ([]types.FolderPartSequence, []string, error) {
	if len(rows) == 0 {
		return nil, nil, common.ErrEmptyTable
	}

	// Column bounds are checked against the first row only; shorter rows
	// later fall back per cell instead of invalidating the column.
	columnCount := len(rows[0])
	columns := make([]int, 0, len(levels))
	var diagnostics []string
	for _, level := range levels {
		idx := rv.pathUtils.ColumnIndex(level)
		if idx < 0 || idx >= columnCount {
			diagnostics = append(diagnostics, fmt.Sprintf("invalid column %q ignored", level))
			continue
		}
		columns = append(columns, idx)
	}

	if len(columns) == 0 {
		return nil, diagnostics, common.ErrNoValidColumns
	}

	sequences := make([]types.FolderPartSequence, 0, len(rows))
	for rowIdx, row := range rows {
		parts := make(types.FolderPartSequence, 0, len(columns))
		for _, colIdx := range columns {
			cell := ""
			if colIdx < len(row) {
				cell = row[colIdx]
			}
			parts = append(parts, rv.pathUtils.CleanSegment(cell, rowIdx, colIdx))
		}
		sequences = append(sequences, parts)
	}

	return sequences, diagnostics, nil
}
