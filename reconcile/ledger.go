package reconcile

import (
	"os"
	"sync"

	"github.com/taoky/tsumugu/cmn"
)

// Ledger is the append-only deletion ledger of spec §3/§5: written
// concurrently by workers as orphan local paths are discovered, read once at
// the end of the run by Cleanup.
type Ledger struct {
	mu    sync.Mutex
	paths []string
}

func (l *Ledger) Add(path string) {
	l.mu.Lock()
	l.paths = append(l.paths, path)
	l.mu.Unlock()
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.paths)
}

func (l *Ledger) Snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.paths))
	copy(out, l.paths)
	return out
}

// CleanupResult reports what Cleanup actually removed, for logging/metrics.
type CleanupResult struct {
	Removed int
	Bytes   int64
}

// Cleanup implements spec §4.4's cleanup step: if the ledger exceeds
// max-delete, abort without deleting anything and report
// DeletionCapExceededError (exit 25). If noDelete is set, skip entirely.
// Otherwise remove every ledgered path, accumulating count and size in the
// manner of the teacher's lruJ.evict loop (iterate, stat before remove,
// accumulate, keep going past individual failures but remember the first
// one).
func Cleanup(ledger *Ledger, maxDelete int, noDelete bool) (CleanupResult, error) {
	if noDelete {
		return CleanupResult{}, nil
	}
	paths := ledger.Snapshot()
	if len(paths) > maxDelete {
		return CleanupResult{}, &cmn.DeletionCapExceededError{Ledger: len(paths), Max: maxDelete}
	}

	var (
		result   CleanupResult
		firstErr error
	)
	for _, path := range paths {
		fi, statErr := os.Lstat(path)
		var size int64
		if statErr == nil && !fi.IsDir() {
			size = fi.Size()
		}
		if err := os.RemoveAll(path); err != nil {
			if firstErr == nil {
				firstErr = &cmn.FilesystemError{Path: path, Cause: err}
			}
			continue
		}
		result.Removed++
		result.Bytes += size
	}
	return result, firstErr
}
