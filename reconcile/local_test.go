package reconcile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taoky/tsumugu/parser"
	"github.com/taoky/tsumugu/reconcile"
)

func TestScanLocalDirClassifiesKinds(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.Symlink("sub", filepath.Join(dir, "link")))

	entries, err := reconcile.ScanLocalDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, parser.File, entries["file.txt"].Kind)
	require.EqualValues(t, 2, *entries["file.txt"].Size)
	require.Equal(t, parser.Directory, entries["sub"].Kind)
	require.Equal(t, parser.Symlink, entries["link"].Kind)
}

func TestScanLocalDirMissingIsEmptyNotError(t *testing.T) {
	entries, err := reconcile.ScanLocalDir(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	require.Empty(t, entries)
}
