package reconcile_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taoky/tsumugu/parser"
	"github.com/taoky/tsumugu/reconcile"
)

func ptrInt64(v int64) *int64        { return &v }
func ptrTime(t time.Time) *time.Time { return &t }

func mustCompile(t *testing.T, pattern string) *regexp.Regexp {
	t.Helper()
	re, err := regexp.Compile(pattern)
	require.NoError(t, err)
	return re
}

func TestResolveDownloadsWhenMissingLocally(t *testing.T) {
	remote := []parser.ListingItem{{Name: "a.txt", Kind: parser.File, Size: ptrInt64(10)}}
	results := reconcile.Resolve(remote, map[string]reconcile.LocalEntry{}, reconcile.Options{})
	require.Len(t, results, 1)
	require.Equal(t, reconcile.ActionDownload, results[0].Action)
}

func TestResolveSkipsWhenSizeAndMtimeMatch(t *testing.T) {
	mtime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	remote := []parser.ListingItem{{Name: "a.txt", Kind: parser.File, Size: ptrInt64(10), MTime: ptrTime(mtime)}}
	local := map[string]reconcile.LocalEntry{
		"a.txt": {Name: "a.txt", Kind: parser.File, Size: ptrInt64(10), MTime: ptrTime(mtime)},
	}
	results := reconcile.Resolve(remote, local, reconcile.Options{})
	require.Len(t, results, 1)
	require.Equal(t, reconcile.ActionSkip, results[0].Action)
}

func TestResolveDownloadsWhenSizeDiffers(t *testing.T) {
	remote := []parser.ListingItem{{Name: "a.txt", Kind: parser.File, Size: ptrInt64(20)}}
	local := map[string]reconcile.LocalEntry{"a.txt": {Name: "a.txt", Kind: parser.File, Size: ptrInt64(10)}}
	results := reconcile.Resolve(remote, local, reconcile.Options{})
	require.Equal(t, reconcile.ActionDownload, results[0].Action)
}

func TestResolveDownloadsWhenRemoteNewer(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	remote := []parser.ListingItem{{Name: "a.txt", Kind: parser.File, Size: ptrInt64(10), MTime: ptrTime(newer)}}
	local := map[string]reconcile.LocalEntry{"a.txt": {Name: "a.txt", Kind: parser.File, Size: ptrInt64(10), MTime: ptrTime(older)}}
	results := reconcile.Resolve(remote, local, reconcile.Options{})
	require.Equal(t, reconcile.ActionDownload, results[0].Action)
}

func TestResolveDeletesOrphanLocalEntries(t *testing.T) {
	local := map[string]reconcile.LocalEntry{"gone.txt": {Name: "gone.txt", Kind: parser.File}}
	results := reconcile.Resolve(nil, local, reconcile.Options{})
	require.Len(t, results, 1)
	require.Equal(t, reconcile.ActionDelete, results[0].Action)
	require.Equal(t, "gone.txt", results[0].Name)
}

func TestResolveDescendsIntoDirectories(t *testing.T) {
	remote := []parser.ListingItem{{Name: "sub", Kind: parser.Directory}}
	results := reconcile.Resolve(remote, nil, reconcile.Options{})
	require.Equal(t, reconcile.ActionDescend, results[0].Action)
}

func TestResolveHeadBeforeGetRedownloadsOnSizeChange(t *testing.T) {
	// Remote listing reports no size at all (e.g. a dialect with no size
	// column), so only the HEAD-observed size can catch the mismatch.
	remote := []parser.ListingItem{{Name: "Packages.gz", Kind: parser.File}}
	local := map[string]reconcile.LocalEntry{"Packages.gz": {Name: "Packages.gz", Kind: parser.File, Size: ptrInt64(100)}}
	opts := reconcile.Options{
		CompareSizeOnly: mustCompile(t, "Packages"),
		HeadBeforeGet:   true,
		HeadSize:        map[string]int64{"Packages.gz": 200},
	}
	results := reconcile.Resolve(remote, local, opts)
	require.Equal(t, reconcile.ActionDownload, results[0].Action)
}

func TestResolveHeadBeforeGetSkipsWhenSizeUnchanged(t *testing.T) {
	remote := []parser.ListingItem{{Name: "Packages.gz", Kind: parser.File}}
	local := map[string]reconcile.LocalEntry{"Packages.gz": {Name: "Packages.gz", Kind: parser.File, Size: ptrInt64(100)}}
	opts := reconcile.Options{
		CompareSizeOnly: mustCompile(t, "Packages"),
		HeadBeforeGet:   true,
		HeadSize:        map[string]int64{"Packages.gz": 100},
	}
	results := reconcile.Resolve(remote, local, opts)
	require.Equal(t, reconcile.ActionSkip, results[0].Action)
}

func TestResolveSkipIfExistsOverridesSizeMismatch(t *testing.T) {
	remote := []parser.ListingItem{{Name: "Packages.gz", Kind: parser.File, Size: ptrInt64(999)}}
	local := map[string]reconcile.LocalEntry{"Packages.gz": {Name: "Packages.gz", Kind: parser.File, Size: ptrInt64(1)}}
	opts := reconcile.Options{SkipIfExists: mustCompile(t, "Packages")}
	results := reconcile.Resolve(remote, local, opts)
	require.Equal(t, reconcile.ActionSkip, results[0].Action)
}
