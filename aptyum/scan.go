package aptyum

import (
	"os"
	"path/filepath"
)

// FindDebIndexes walks root and returns every directory that holds a
// Packages index (Packages, Packages.gz, Packages.xz, or Packages.lz4) —
// typically one per dists/<suite>/<component>/binary-<arch>/ the sync just
// mirrored. A mirror may carry several suites/components/architectures at
// once, so VerifyDeb is run once per discovered directory rather than
// assuming a single fixed layout.
func FindDebIndexes(root string) ([]string, error) {
	var dirs []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if _, ok := findIndex(path); ok {
				dirs = append(dirs, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

// FindRepodataDirs walks root and returns every repodata/ directory found —
// an RPM tree may carry one per repository rooted under the mirror.
func FindRepodataDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && filepath.Base(path) == "repodata" {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}
