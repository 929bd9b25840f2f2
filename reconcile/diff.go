package reconcile

import (
	"regexp"

	"github.com/taoky/tsumugu/parser"
	"github.com/taoky/tsumugu/policy"
)

// Action is the outcome of reconciling one name present in either the remote
// listing or the local directory scan (or both), per spec §4.4.
type Action int

const (
	ActionSkip Action = iota
	ActionDownload
	ActionDelete
	ActionDescend // directory present remotely: enqueue as ListDir, no local comparison
)

func (a Action) String() string {
	switch a {
	case ActionDownload:
		return "download"
	case ActionDelete:
		return "delete"
	case ActionDescend:
		return "descend"
	default:
		return "skip"
	}
}

// Result pairs a decided Action with whichever of Remote/Local produced it.
type Result struct {
	Name   string
	Action Action
	Remote *parser.ListingItem
	Local  *LocalEntry
}

// Options carries the regex knobs from spec §4.4's per-file decision rules.
type Options struct {
	SkipIfExists    *regexp.Regexp
	CompareSizeOnly *regexp.Regexp
	HeadBeforeGet   bool
	// HeadSize, when non-nil, is consulted instead of issuing a live HEAD
	// request for names matching CompareSizeOnly+HeadBeforeGet. The
	// traversal engine resolves the HEAD itself (it owns the HTTP client)
	// and passes the observed size back in; Resolve stays a pure function.
	HeadSize map[string]int64
}

// Resolve merges the remote listing and the local directory scan by name
// (spec §4.4), deciding download/skip for files, descend for directories,
// and delete for any local entry the remote side no longer carries. Remote
// entries are looked up in the local map by name and emitted in listing
// order, followed by the local-only entries in sorted name order. The shape
// is adapted from the teacher's downloader.DiffResolver
// (Send/Recv/Delete/Skip by ObjName comparison), reduced from a channel
// pipeline to a single-directory batch (tsumugu reconciles one listing
// response at a time, not a continuous object stream).
func Resolve(remote []parser.ListingItem, local map[string]LocalEntry, opts Options) []Result {
	remoteByName := make(map[string]*parser.ListingItem, len(remote))
	for i := range remote {
		remoteByName[remote[i].Name] = &remote[i]
	}

	seen := make(map[string]bool, len(remote)+len(local))
	var results []Result

	for i := range remote {
		r := &remote[i]
		seen[r.Name] = true
		if r.Kind == parser.Directory {
			results = append(results, Result{Name: r.Name, Action: ActionDescend, Remote: r})
			continue
		}
		l, exists := local[r.Name]
		var localPtr *LocalEntry
		if exists {
			localPtr = &l
		}
		action := decideFileAction(r, localPtr, opts)
		results = append(results, Result{Name: r.Name, Action: action, Remote: r, Local: localPtr})
	}

	for _, name := range sortedNames(local) {
		if seen[name] {
			continue
		}
		l := local[name]
		results = append(results, Result{Name: name, Action: ActionDelete, Local: &l})
	}

	return results
}



// decideFileAction implements spec §4.4's per-file rules in order:
// skip-if-exists short-circuits first, then missing-local and known-diff
// rules (names matching --compare-size-only skip the mtime rule), then the
// head-before-get size-only comparison.
func decideFileAction(r *parser.ListingItem, l *LocalEntry, opts Options) Action {
	if l == nil {
		return ActionDownload
	}
	if opts.SkipIfExists != nil && opts.SkipIfExists.MatchString(r.Name) {
		return ActionSkip
	}
	sizeOnly := opts.CompareSizeOnly != nil && opts.CompareSizeOnly.MatchString(r.Name)
	if r.Size != nil && l.Size != nil && *r.Size != *l.Size {
		return ActionDownload
	}
	if !sizeOnly && r.MTime != nil && l.MTime != nil && r.MTime.After(*l.MTime) {
		return ActionDownload
	}
	if sizeOnly && opts.HeadBeforeGet {
		if headSize, ok := opts.HeadSize[r.Name]; ok {
			if l.Size == nil || headSize != *l.Size {
				return ActionDownload
			}
		}
	}
	return ActionSkip
}

// ClassifyDeletion reports whether a local-only entry flagged ActionDelete
// belongs in the deletion ledger: true unless the policy set classifies it
// Stop, in which case cleanup leaves it alone (spec §4.3 step 7: "any
// local entry not present in the remote set (and not excluded by policy)").
func ClassifyDeletion(set *policy.Set, relativePath string) bool {
	return set.Classify(relativePath) != policy.Stop
}
