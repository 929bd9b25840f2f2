package reconcile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taoky/tsumugu/reconcile"
)

func TestMaterializeSymlinkCreatesRelativeLink(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "centos"), 0o755))
	from := filepath.Join(dir, "rhel")
	to := filepath.Join(dir, "centos")

	require.NoError(t, reconcile.MaterializeSymlink(from, to))

	target, err := os.Readlink(from)
	require.NoError(t, err)
	require.Equal(t, "centos", target)
}

func TestMaterializeSymlinkIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "centos"), 0o755))
	from := filepath.Join(dir, "rhel")
	to := filepath.Join(dir, "centos")

	require.NoError(t, reconcile.MaterializeSymlink(from, to))
	require.NoError(t, reconcile.MaterializeSymlink(from, to))

	target, err := os.Readlink(from)
	require.NoError(t, err)
	require.Equal(t, "centos", target)
}

func TestMaterializeSymlinkReplacesCorruptDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "centos"), 0o755))
	from := filepath.Join(dir, "rhel")
	require.NoError(t, os.MkdirAll(from, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(from, "stale.txt"), []byte("x"), 0o644))

	to := filepath.Join(dir, "centos")
	require.NoError(t, reconcile.MaterializeSymlink(from, to))

	fi, err := os.Lstat(from)
	require.NoError(t, err)
	require.True(t, fi.Mode()&os.ModeSymlink != 0)
}
