package reconcile

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// MaterializeSymlink implements spec §4.4's symlink materialization: compute
// a relative path from "from" to "to", remove any pre-existing differing
// entry at "from" (symlink or otherwise -- a non-symlink there is treated as
// corrupt local state per spec), and create the new symlink. Re-running the
// same task twice is idempotent: if the correct symlink already exists,
// nothing is touched.
func MaterializeSymlink(from, to string) error {
	rel, err := filepath.Rel(filepath.Dir(from), to)
	if err != nil {
		return errors.Wrapf(err, "compute relative symlink target from %s to %s", from, to)
	}

	if existing, err := os.Readlink(from); err == nil {
		if existing == rel {
			return nil
		}
	}

	if fi, err := os.Lstat(from); err == nil {
		if fi.IsDir() && fi.Mode()&os.ModeSymlink == 0 {
			if err := os.RemoveAll(from); err != nil {
				return errors.Wrapf(err, "remove stale directory at symlink path %s", from)
			}
		} else if err := os.Remove(from); err != nil {
			return errors.Wrapf(err, "remove stale entry at symlink path %s", from)
		}
	}

	if err := os.MkdirAll(filepath.Dir(from), 0o755); err != nil {
		return errors.Wrapf(err, "create parent directory for symlink %s", from)
	}
	if err := os.Symlink(rel, from); err != nil {
		return errors.Wrapf(err, "create symlink %s -> %s", from, rel)
	}
	return nil
}
