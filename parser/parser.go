// Package parser implements the listing-parser abstraction: a uniform
// extraction of (name, kind, size, mtime) tuples from the heterogeneous
// directory-listing HTML dialects tsumugu crawls (spec §4.1). Each dialect
// is a tagged variant dispatched once at startup from --parser, not an
// open-ended plugin interface (spec §9 "Dynamic dispatch over parsers").
package parser

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/taoky/tsumugu/cmn"
)

type Kind int

const (
	File Kind = iota
	Directory
	Symlink
)

func (k Kind) String() string {
	switch k {
	case Directory:
		return "directory"
	case Symlink:
		return "symlink"
	default:
		return "file"
	}
}

// ListingItem is the parser's output record, per spec §3. Name never
// contains '/' or '..'; Size is nil for directories and dialects that don't
// report one; MTime is nil when the listing carries no timestamp at all.
type ListingItem struct {
	Name  string
	Kind  Kind
	Size  *int64
	MTime *time.Time
	Href  string
}

// Parser is the contract every dialect implements: HTML bytes + base URL ->
// ordered sequence of ListingItem. Implementations must ignore the "../" /
// "Parent Directory" entry, preserve listing order, and return an empty
// slice (not an error) for an empty or malformed listing page.
type Parser interface {
	Parse(base *url.URL, body []byte) ([]ListingItem, error)
}

// Get resolves the dialect tagged-variant for --parser. Returns an error for
// unknown names instead of silently defaulting, since a misconfigured
// dialect would quietly make the traversal blind.
func Get(dialect string) (Parser, error) {
	switch dialect {
	case cmn.DialectNginx:
		return nginxParser{}, nil
	case cmn.DialectApacheF2:
		return apacheF2Parser{}, nil
	case cmn.DialectLighttpd:
		return lighttpdParser{}, nil
	case cmn.DialectCaddy:
		return caddyParser{}, nil
	case cmn.DialectDirectoryLister:
		return directoryListerParser{}, nil
	case cmn.DialectDocker:
		return dockerParser{}, nil
	default:
		return nil, fmt.Errorf("parser: unknown dialect %q", dialect)
	}
}

// isParentEntry recognizes the "../" / "Parent Directory" link every
// dialect emits and that every parser must skip, per spec §4.1.
func isParentEntry(href, text string) bool {
	href = strings.TrimSpace(href)
	text = strings.ToLower(strings.TrimSpace(text))
	if href == "../" || href == ".." || href == "/" {
		return true
	}
	if strings.Contains(text, "parent directory") {
		return true
	}
	return false
}

// classify decides Kind and normalized Name/Href from a raw href, honoring
// spec §4.1's rule that directory hrefs keep a trailing '/' while Name never
// does, and that out-of-directory hrefs (absolute URL or one that escapes
// the current directory) become Symlink items whose target is the resolved
// absolute URL.
func classify(base *url.URL, href string) (name string, kind Kind, resolved string, ok bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "?") || strings.HasPrefix(href, "#") {
		return "", File, "", false
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", File, "", false
	}
	abs := base.ResolveReference(u)

	isDir := strings.HasSuffix(u.Path, "/") || strings.HasSuffix(href, "/")
	trimmed := strings.TrimSuffix(u.Path, "/")
	name = trimmed
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		name = trimmed[idx+1:]
	}
	if name == "" {
		return "", File, "", false
	}

	// Outside the current directory: either a different host, or a path
	// that does not sit directly under base's path.
	baseDir := base.Path
	if !strings.HasSuffix(baseDir, "/") {
		baseDir += "/"
	}
	outOfDir := abs.Host != base.Host || !strings.HasPrefix(abs.Path, baseDir) ||
		strings.Contains(strings.TrimSuffix(abs.Path[len(baseDir):], "/"), "/")
	if u.IsAbs() || strings.HasPrefix(href, "//") {
		outOfDir = true
	}
	if outOfDir {
		return name, Symlink, abs.String(), true
	}
	if isDir {
		return name, Directory, abs.String(), true
	}
	return name, File, abs.String(), true
}

func ptrInt64(v int64) *int64        { return &v }
func ptrTime(t time.Time) *time.Time { return &t }
