package utils

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, UniqueStrings([]string{"b", "a", "b", "c", "a"}))
	assert.Equal(t, []string{}, UniqueStrings(nil))
}

func TestDeepCopyMap(t *testing.T) {
	src := map[string]string{"a": "1"}
	var dst map[string]string
	require.NoError(t, DeepCopy(&dst, &src))
	dst["a"] = "2"
	assert.Equal(t, "1", src["a"])
}

func TestCopyFileKeepsMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o755))

	dst := filepath.Join(dir, "sub", "dir", "dst")
	require.NoError(t, CopyFile(src, dst))

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))

	st, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), st.Mode().Perm())

	assert.Error(t, CopyFile(dir, filepath.Join(dir, "x")))
}

func TestTrimExt(t *testing.T) {
	assert.Equal(t, "/a/bin/lldb", TrimExt("/a/bin/lldb"))
	assert.Equal(t, "/a/lib/liblldb", TrimExt("/a/lib/liblldb.dylib"))
}
