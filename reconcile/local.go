// Package reconcile implements spec §4.4: comparing listing metadata to the
// local filesystem, deciding download/skip/delete, and performing the
// atomic download, symlink materialization, and bounded cleanup.
package reconcile

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/karrick/godirwalk"

	"github.com/taoky/tsumugu/parser"
)

// LocalEntry is a filesystem observation at a directory, derived by a single
// directory read per visit (spec §3).
type LocalEntry struct {
	Name  string
	Kind  parser.Kind
	Size  *int64
	MTime *time.Time
}

// ScanLocalDir reads dir's immediate children, grounded on the teacher's
// fs.Scanner (a single-level godirwalk.Scanner, not a recursive walk: the
// traversal engine itself decides which subdirectories to descend into).
// A missing directory is not an error: the caller is about to create it, or
// everything in the remote listing is new.
func ScanLocalDir(dir string) (map[string]LocalEntry, error) {
	entries := make(map[string]LocalEntry)

	scanner, err := godirwalk.NewScanner(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, err
	}
	for scanner.Scan() {
		dirent, err := scanner.Dirent()
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		name := dirent.Name()
		fqn := filepath.Join(dir, name)

		fi, err := os.Lstat(fqn)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		entry := LocalEntry{Name: name}
		switch {
		case fi.Mode()&os.ModeSymlink != 0:
			entry.Kind = parser.Symlink
		case fi.IsDir():
			entry.Kind = parser.Directory
		default:
			entry.Kind = parser.File
			size := fi.Size()
			entry.Size = &size
		}
		mtime := fi.ModTime()
		entry.MTime = &mtime
		entries[name] = entry
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// sortedNames returns a LocalEntry map's keys in sorted order, so Resolve
// emits local-only entries in a deterministic order.
func sortedNames(entries map[string]LocalEntry) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
