package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadNameList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.txt")
	content := "Alice\n\n# comment line\n  Bob  \n#another\n王芳\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	names, err := ReadNameList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob", "王芳"}, names)
}

func TestReadNameListMissingFile(t *testing.T) {
	_, err := ReadNameList(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestReadNameListAllCommentsYieldsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.txt")
	require.NoError(t, os.WriteFile(path, []byte("# only\n# comments\n\n"), 0o644))

	names, err := ReadNameList(path)
	require.NoError(t, err)
	assert.Empty(t, names)
}
