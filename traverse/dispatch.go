package traverse

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/taoky/tsumugu/cmn"
	"github.com/taoky/tsumugu/parser"
	"github.com/taoky/tsumugu/policy"
	"github.com/taoky/tsumugu/reconcile"
)

// dispatch routes a popped Task to the state-machine step its Kind names
// (spec §4.3's per-directory state machine, plus the MakeSymlink leaf task
// the engine itself schedules).
func (e *Engine) dispatch(ctx context.Context, t Task) {
	switch t.Kind {
	case MakeSymlink:
		e.processSymlink(t)
	default:
		e.processListDir(ctx, t)
	}
}

func (e *Engine) processSymlink(t Task) {
	if err := reconcile.MaterializeSymlink(t.SymlinkFrom, t.SymlinkTo); err != nil {
		e.escalate(&cmn.FilesystemError{Path: t.SymlinkFrom, Cause: err})
	}
}

// processListDir implements spec §4.3's seven-step per-directory algorithm.
func (e *Engine) processListDir(ctx context.Context, t Task) {
	// Step 1: at-most-once dispatch.
	if !e.visited.TryVisit(t.URL) {
		return
	}

	requestedURL, err := url.Parse(t.URL)
	if err != nil {
		e.escalate(&cmn.ListingFailure{URL: t.URL, Cause: err})
		return
	}

	// Step 2: GET, following redirects (the shared client's CheckRedirect
	// only guards against loops; the final URL is inspected here).
	resp, err := e.client.Get(ctx, t.URL)
	if err != nil {
		e.escalate(&cmn.ListingFailure{URL: t.URL, Cause: err})
		return
	}
	defer resp.Body.Close()
	finalURL := resp.Request.URL

	// Step 3: boundary check against the final URL.
	if !e.inBoundary(finalURL) {
		return
	}

	// Step 4: a final URL that differs from the requested one (after
	// stripping a trailing index.html) models the directory as a symlink.
	if sanitizedPath(finalURL.Path) != sanitizedPath(requestedURL.Path) {
		targetRelative := e.relativeTo(finalURL)
		e.enqueue(Task{
			Kind:        MakeSymlink,
			SymlinkFrom: e.localPath(t.Relative),
			SymlinkTo:   e.localPath(targetRelative),
		})
		// The target task's own step 1 keeps its listing at-most-once.
		e.enqueue(Task{Kind: ListDir, URL: finalURL.String(), Relative: targetRelative})
		return
	}

	// Step 5: confirm this is an HTML listing, then parse it.
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "text/html") {
		e.escalate(&cmn.ListingFailure{
			URL:   t.URL,
			Cause: fmt.Errorf("unexpected content-type %q", contentType),
		})
		return
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e.escalate(&cmn.ListingFailure{URL: t.URL, Cause: err})
		return
	}
	items, err := e.pars.Parse(finalURL, body)
	if err != nil {
		e.escalate(&cmn.ListingFailure{URL: t.URL, Cause: err})
		return
	}
	e.result.DirsListed.Add(1)

	// This directory's own classification gates whether its *file*
	// children are reconciled at all (spec §4.3 step 6, "If a file and the
	// current directory is ListOnly: drop"). The root is always processed.
	dirDecision := policy.Include
	if t.Relative != "" {
		dirDecision = e.policy.Classify(t.Relative)
	}

	local, err := reconcile.ScanLocalDir(e.localPath(t.Relative))
	if err != nil {
		e.escalate(&cmn.FilesystemError{Path: e.localPath(t.Relative), Cause: err})
		return
	}

	results := reconcile.Resolve(items, local, reconcile.Options{
		SkipIfExists:    e.cfg.SkipIfExists,
		CompareSizeOnly: e.cfg.CompareSizeOnly,
		HeadBeforeGet:   e.cfg.HeadBeforeGet,
		HeadSize:        e.headSizes(ctx, items, local),
	})

	for i := range results {
		r := &results[i]
		if r.Remote == nil {
			// Local-only: a deletion candidate, unless its own path is
			// itself excluded from tsumugu's management (spec §4.3 step 7).
			relative := joinRelative(t.Relative, r.Name)
			if reconcile.ClassifyDeletion(e.policy, relative) {
				e.ledger.Add(e.localPath(relative))
			}
			continue
		}
		e.dispatchItem(ctx, t, dirDecision, r)
	}
}

// headSizes implements spec §4.4 bullet 5: for a file both matching
// --compare-size-only and already present locally, issue a HEAD instead of
// trusting the listing's own reported size, and hand the observed
// Content-Length back to reconcile.Resolve. Nothing is issued for names with
// no local counterpart (a download is already decided) or when
// --head-before-get is off.
func (e *Engine) headSizes(ctx context.Context, items []parser.ListingItem, local map[string]reconcile.LocalEntry) map[string]int64 {
	if !e.cfg.HeadBeforeGet || e.cfg.CompareSizeOnly == nil {
		return nil
	}
	var sizes map[string]int64
	for i := range items {
		item := &items[i]
		if item.Kind != parser.File {
			continue
		}
		if _, exists := local[item.Name]; !exists {
			continue
		}
		if !e.cfg.CompareSizeOnly.MatchString(item.Name) {
			continue
		}
		resp, err := e.client.Head(ctx, item.Href)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.ContentLength < 0 {
			continue
		}
		if sizes == nil {
			sizes = make(map[string]int64)
		}
		sizes[item.Name] = resp.ContentLength
	}
	return sizes
}

// dispatchItem applies spec §4.3 step 6 to a single ListingItem already
// merged against local state by reconcile.Resolve.
func (e *Engine) dispatchItem(ctx context.Context, parent Task, dirDecision policy.Decision, r *reconcile.Result) {
	relative := joinRelative(parent.Relative, r.Name)
	itemDecision := e.policy.Classify(relative)
	if itemDecision == policy.Stop {
		return
	}

	switch r.Remote.Kind {
	case parser.Directory:
		e.enqueue(Task{Kind: ListDir, URL: r.Remote.Href, Relative: relative})

	case parser.Symlink:
		targetURL, err := url.Parse(r.Remote.Href)
		if err != nil {
			return
		}
		if !e.inBoundary(targetURL) {
			return
		}
		targetRelative := e.relativeTo(targetURL)
		e.enqueue(Task{
			Kind:        MakeSymlink,
			SymlinkFrom: e.localPath(relative),
			SymlinkTo:   e.localPath(targetRelative),
		})
		// Only a directory target is listed; the target task's own step 1
		// keeps that listing at-most-once.
		if strings.HasSuffix(targetURL.Path, "/") {
			e.enqueue(Task{Kind: ListDir, URL: targetURL.String(), Relative: targetRelative})
		}

	default: // parser.File
		if dirDecision == policy.ListOnly {
			return
		}
		e.reconcileFile(ctx, relative, r)
	}
}

func (e *Engine) reconcileFile(ctx context.Context, relative string, r *reconcile.Result) {
	destination := e.localPath(relative)
	switch r.Action {
	case reconcile.ActionSkip:
		e.result.FilesSkipped.Add(1)
	case reconcile.ActionDownload:
		if e.cfg.DryRun {
			e.result.FilesFetched.Add(1)
			return
		}
		// Parser mtimes are trusted to set the local file's mtime only
		// under --allow-mtime-from-parser: several dialects report only a
		// date, and the timezone-calibration offset is a best-effort
		// estimate (spec §4.5), so the conservative default leaves the
		// downloaded file's mtime at its write time instead.
		var mtime *time.Time
		if e.cfg.AllowMtimeFromParser && r.Remote.MTime != nil {
			naive := e.tzOffset.Apply(*r.Remote.MTime)
			mtime = &naive
		}
		err := reconcile.Download(ctx, e.client, r.Remote.Href, destination, mtime, e.cfg.Retry, nil)
		if err != nil {
			e.escalate(err)
			return
		}
		e.result.FilesFetched.Add(1)
		if fi, statErr := os.Stat(destination); statErr == nil {
			e.result.BytesFetched.Add(fi.Size())
		}
	}
}
