package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root, rel string) {
	t.Helper()
	require.NoError(t, WriteFile(filepath.Join(root, rel), "x"))
}

func rels(t *testing.T, w *Walker, root string) []string {
	t.Helper()
	files, err := w.Walk(root)
	require.NoError(t, err)
	var out []string
	for _, f := range files {
		out = append(out, f.Rel)
	}
	return out
}

func TestWalkerFiltersByExtensionAndExcludes(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "src/lib.rs")
	touch(t, root, "src/mod.rs")
	touch(t, root, "src/util/mod.rs")
	touch(t, root, "src/util/strings.rs")
	touch(t, root, "README.md")
	touch(t, root, "target/debug/build.rs")

	w := NewWalker(nil, []string{"**/mod.rs", "target/"}, []string{".rs"})
	assert.Equal(t, []string{"src/lib.rs", "src/util/strings.rs"}, rels(t, w, root))
}

func TestWalkerIncludes(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a/one.go")
	touch(t, root, "b/two.go")

	w := NewWalker([]string{"b/**"}, nil, []string{".go"})
	assert.Equal(t, []string{"b/two.go"}, rels(t, w, root))
}

func TestWalkerSingleFile(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "main.py")

	w := NewWalker(nil, []string{"**/*.py"}, []string{".rs"})
	files, err := w.Walk(filepath.Join(root, "main.py"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.py", files[0].Rel)
}

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c.go")
	require.NoError(t, WriteFile(path, "package c\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package c\n", string(data))
}
