package traverse

import (
	"sync"

	"go.uber.org/atomic"
)

// RunResult is the run-level result holder (spec §3 ambient addition),
// grounded on the teacher's request/response accumulation pattern in
// downloader/download.go: it accumulates the first escalating error and a
// set of run counters, independent of which worker hit them, so concurrent
// workers never race on "what's the process exit code" or "how many files
// were fetched".
type RunResult struct {
	mu       sync.Mutex
	firstErr error

	DirsListed    atomic.Int64
	FilesFetched  atomic.Int64
	BytesFetched  atomic.Int64
	FilesSkipped  atomic.Int64
	FilesDeleted  atomic.Int64
	RetriesIssued atomic.Int64
}

// Escalate records err as the run's failure if no error has been recorded
// yet, reporting whether this call was the one that set it. Only the first
// escalating error determines the process exit code (spec §5: "The run is
// bounded by either normal drain or a fatal error").
func (r *RunResult) Escalate(err error) (first bool) {
	if err == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.firstErr == nil {
		r.firstErr = err
		return true
	}
	return false
}

func (r *RunResult) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.firstErr
}
