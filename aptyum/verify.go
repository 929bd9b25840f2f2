// Package aptyum implements the best-effort post-sync integrity check of
// spec §4.6: once a Debian/RPM tree has been mirrored, verify that the
// repository's own package index agrees with what landed on disk. A failure
// here is reported, never escalated — it runs strictly after the deletion
// ledger has already been applied, so there is nothing left to protect by
// aborting.
package aptyum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Mismatch names one package whose local copy disagrees with the index, or
// is missing entirely.
type Mismatch struct {
	Filename string
	Reason   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: %s", m.Filename, m.Reason)
}

// Result accumulates the outcome of a verification pass. It is never an
// error by itself; callers log it and move on.
type Result struct {
	Checked    int
	Mismatches []Mismatch
}

func (r *Result) fail(filename, reason string) {
	r.Mismatches = append(r.Mismatches, Mismatch{Filename: filename, Reason: reason})
}

// checkLocalFile verifies that the file at path exists, has the expected
// size, and (when want != "") hashes to the expected SHA256.
func checkLocalFile(path string, wantSize int64, wantSHA256 string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	if wantSHA256 == "" {
		if wantSize < 0 {
			return nil
		}
		fi, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat: %w", err)
		}
		if fi.Size() != wantSize {
			return fmt.Errorf("size mismatch: index says %d, local is %d", wantSize, fi.Size())
		}
		return nil
	}

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	if wantSize >= 0 && n != wantSize {
		return fmt.Errorf("size mismatch: index says %d, local is %d", wantSize, n)
	}
	got := hex.EncodeToString(h.Sum(nil))
	if got != wantSHA256 {
		return fmt.Errorf("sha256 mismatch: index says %s, local is %s", wantSHA256, got)
	}
	return nil
}
