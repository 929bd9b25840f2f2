package reconcile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taoky/tsumugu/cmn"
	"github.com/taoky/tsumugu/reconcile"
)

func TestCleanupRemovesLedgeredPaths(t *testing.T) {
	dir := t.TempDir()
	victim := filepath.Join(dir, "orphan.txt")
	require.NoError(t, os.WriteFile(victim, []byte("bye"), 0o644))

	ledger := &reconcile.Ledger{}
	ledger.Add(victim)

	result, err := reconcile.Cleanup(ledger, 100, false)
	require.NoError(t, err)
	require.Equal(t, 1, result.Removed)
	_, statErr := os.Stat(victim)
	require.True(t, os.IsNotExist(statErr))
}

func TestCleanupSkipsWhenNoDelete(t *testing.T) {
	dir := t.TempDir()
	victim := filepath.Join(dir, "orphan.txt")
	require.NoError(t, os.WriteFile(victim, []byte("bye"), 0o644))

	ledger := &reconcile.Ledger{}
	ledger.Add(victim)

	result, err := reconcile.Cleanup(ledger, 100, true)
	require.NoError(t, err)
	require.Equal(t, 0, result.Removed)
	_, statErr := os.Stat(victim)
	require.NoError(t, statErr)
}

func TestCleanupAbortsOverMaxDelete(t *testing.T) {
	ledger := &reconcile.Ledger{}
	ledger.Add("/tmp/a")
	ledger.Add("/tmp/b")
	ledger.Add("/tmp/c")

	_, err := reconcile.Cleanup(ledger, 2, false)
	require.Error(t, err)
	var capErr *cmn.DeletionCapExceededError
	require.ErrorAs(t, err, &capErr)
	require.Equal(t, 3, capErr.Ledger)
	require.Equal(t, 2, capErr.Max)
}
