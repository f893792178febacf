package generator

import (
	"testing"

	"github.com/foldergen/foldergen/fgen/generator/common"
	"github.com/foldergen/foldergen/fgen/generator/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNameModeLegacyPolicy(t *testing.T) {
	rv := NewResolver()

	// Alphabetic non-first levels substitute the record name again under
	// the legacy policy; anything else is literal.
	sequences, diagnostics, err := rv.Resolve(&types.RunRequest{
		DataSource:  types.SourceNameList,
		Names:       []string{"Alice", "Bob"},
		Levels:      []string{"name", "Dept", "2024-Q1"},
		LevelPolicy: types.PolicyLegacy,
	})
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
	require.Len(t, sequences, 2)
	assert.Equal(t, types.FolderPartSequence{"Alice", "Alice", "2024-Q1"}, sequences[0])
	assert.Equal(t, types.FolderPartSequence{"Bob", "Bob", "2024-Q1"}, sequences[1])
}

func TestResolveNameModeStrictPolicy(t *testing.T) {
	rv := NewResolver()

	sequences, _, err := rv.Resolve(&types.RunRequest{
		DataSource:  types.SourceNameList,
		Names:       []string{"Alice"},
		Levels:      []string{"name", "Dept", "name"},
		LevelPolicy: types.PolicyStrict,
	})
	require.NoError(t, err)
	require.Len(t, sequences, 1)
	assert.Equal(t, types.FolderPartSequence{"Alice", "Dept", "Alice"}, sequences[0])
}

func TestResolveSanitizesSegments(t *testing.T) {
	rv := NewResolver()

	sequences, _, err := rv.Resolve(&types.RunRequest{
		DataSource: types.SourceNameList,
		Names:      []string{`A/B:C?`, `///`},
		Levels:     []string{"name"},
	})
	require.NoError(t, err)
	require.Len(t, sequences, 2)
	assert.Equal(t, types.FolderPartSequence{"ABC"}, sequences[0])
	// Fully stripped names get the deterministic fallback.
	assert.Equal(t, types.FolderPartSequence{"文件夹_1_0"}, sequences[1])
}

func TestResolveBlankLevelsFiltered(t *testing.T) {
	rv := NewResolver()

	sequences, _, err := rv.Resolve(&types.RunRequest{
		DataSource: types.SourceNameList,
		Names:      []string{"Alice"},
		Levels:     []string{"", "name", "  "},
	})
	require.NoError(t, err)
	require.Len(t, sequences, 1)
	assert.Len(t, sequences[0], 1)
}

func TestResolveConfigurationErrors(t *testing.T) {
	rv := NewResolver()

	tests := []struct {
		name     string
		req      *types.RunRequest
		expected error
	}{
		{
			"no valid levels",
			&types.RunRequest{DataSource: types.SourceNameList, Names: []string{"A"}, Levels: []string{" ", ""}},
			common.ErrNoValidLevels,
		},
		{
			"empty name list",
			&types.RunRequest{DataSource: types.SourceNameList, Levels: []string{"name"}},
			common.ErrEmptyNameList,
		},
		{
			"empty table",
			&types.RunRequest{DataSource: types.SourceTabular, Levels: []string{"A"}},
			common.ErrEmptyTable,
		},
		{
			"no valid columns",
			&types.RunRequest{DataSource: types.SourceTabular, Table: [][]string{{"X"}}, Levels: []string{"B", "?"}},
			common.ErrNoValidColumns,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := rv.Resolve(tt.req)
			assert.ErrorIs(t, err, tt.expected)
			assert.True(t, common.IsConfigurationError(err))
		})
	}
}

func TestResolveTabularMode(t *testing.T) {
	rv := NewResolver()

	sequences, diagnostics, err := rv.Resolve(&types.RunRequest{
		DataSource: types.SourceTabular,
		Table:      [][]string{{"X", "Y"}, {"", "Z"}},
		Levels:     []string{"A", "B"},
	})
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
	require.Len(t, sequences, 2)
	assert.Equal(t, types.FolderPartSequence{"X", "Y"}, sequences[0])
	// Empty cell falls back to the record/column placeholder.
	assert.Equal(t, types.FolderPartSequence{"文件夹_1_0", "Z"}, sequences[1])
}

func TestResolveTabularInvalidColumnDropped(t *testing.T) {
	rv := NewResolver()

	// Column C is out of bounds for a two-column table: dropped with one
	// diagnostic, no matter how many rows there are.
	sequences, diagnostics, err := rv.Resolve(&types.RunRequest{
		DataSource: types.SourceTabular,
		Table:      [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}},
		Levels:     []string{"A", "C"},
	})
	require.NoError(t, err)
	require.Len(t, diagnostics, 1)
	assert.Contains(t, diagnostics[0], `invalid column "C"`)
	require.Len(t, sequences, 3)
	for _, seq := range sequences {
		assert.Len(t, seq, 1)
	}
}

func TestResolveTabularShortRow(t *testing.T) {
	rv := NewResolver()

	sequences, _, err := rv.Resolve(&types.RunRequest{
		DataSource: types.SourceTabular,
		Table:      [][]string{{"X", "Y"}, {"only"}},
		Levels:     []string{"A", "B"},
	})
	require.NoError(t, err)
	require.Len(t, sequences, 2)
	// Row 1 has no column B cell: treated as empty, then fallback.
	assert.Equal(t, types.FolderPartSequence{"only", "文件夹_1_1"}, sequences[1])
}

func TestResolveUnknownDataSource(t *testing.T) {
	rv := NewResolver()

	_, _, err := rv.Resolve(&types.RunRequest{
		DataSource: types.DataSource("excel"),
		Levels:     []string{"A"},
	})
	assert.Error(t, err)
	assert.False(t, common.IsConfigurationError(err))
}
