package aptyum

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pierrec/lz4/v3"
	"github.com/ulikunitz/xz"
)

// debPackage is one stanza of a Packages index: the fields tsumugu needs to
// verify a mirrored .deb against what the repository claims for it.
type debPackage struct {
	Filename string
	Size     int64
	SHA256   string
}

// openIndex opens a Packages/Packages.gz/Packages.xz/Packages.lz4 file,
// returning a decompressing reader keyed on the file extension, per spec
// §4.6. The teacher has no Debian-archive notion; this is grounded on the
// generic "pick a decompressor by extension" shape every dialect's size
// parsing already follows (cmn.ParseSize's suffix table).
func openIndex(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch filepath.Ext(path) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloserPair{Reader: gz, closer: f}, nil
	case ".xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloserPair{Reader: xr, closer: f}, nil
	case ".lz4":
		return &readCloserPair{Reader: lz4.NewReader(f), closer: f}, nil
	default:
		return f, nil
	}
}

// readCloserPair pairs a decompressing io.Reader (which has no Close of its
// own) with the underlying file that does.
type readCloserPair struct {
	io.Reader
	closer io.Closer
}

func (p *readCloserPair) Close() error { return p.closer.Close() }

// findIndex locates whichever Packages variant exists in dir, preferring the
// uncompressed form.
func findIndex(dir string) (string, bool) {
	for _, name := range []string{"Packages", "Packages.xz", "Packages.gz", "Packages.lz4"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// parsePackages reads an RFC822-style stanza stream (blank-line separated,
// "Key: value" pairs, continuation lines dropped since only scalar fields
// are needed) and extracts Filename/Size/SHA256 per stanza.
func parsePackages(r io.Reader) ([]debPackage, error) {
	var (
		pkgs    []debPackage
		current debPackage
		have    bool
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	flush := func() {
		if have && current.Filename != "" {
			pkgs = append(pkgs, current)
		}
		current = debPackage{}
		have = false
	}
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			continue // continuation of a multi-line field, not needed here
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		have = true
		switch key {
		case "Filename":
			current.Filename = val
		case "Size":
			if n, err := strconv.ParseInt(val, 10, 64); err == nil {
				current.Size = n
			}
		case "SHA256":
			current.SHA256 = val
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return pkgs, nil
}

// VerifyDeb implements spec §4.6's Debian/Ubuntu integrity check: locate a
// Packages index under indexDir (typically the dists/.../binary-*/ directory
// tsumugu just mirrored), parse it, and confirm every listed .deb exists
// under localRoot with the claimed size and SHA256.
func VerifyDeb(localRoot, indexDir string) (*Result, error) {
	path, ok := findIndex(indexDir)
	if !ok {
		return nil, os.ErrNotExist
	}
	rc, err := openIndex(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	pkgs, err := parsePackages(rc)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, p := range pkgs {
		result.Checked++
		local := filepath.Join(localRoot, filepath.FromSlash(p.Filename))
		if err := checkLocalFile(local, p.Size, p.SHA256); err != nil {
			result.fail(p.Filename, err.Error())
		}
	}
	return result, nil
}
