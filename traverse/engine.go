package traverse

import (
	"context"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/taoky/tsumugu/cmn"
	"github.com/taoky/tsumugu/httpclient"
	"github.com/taoky/tsumugu/parser"
	"github.com/taoky/tsumugu/policy"
	"github.com/taoky/tsumugu/reconcile"
)

// Engine is the traversal engine of spec §4.3: a work queue of directory
// tasks, a worker pool, a visited-path set, and a pending-task counter. The
// queue/worker shape is grounded on the teacher's downloader
// dispatcher-jogger pool (a bounded pool of symmetric workers), here pulling
// from the mutex/cond-guarded Queue of queue.go rather than a channel, with
// an atomic outstanding-task counter gating termination rather than a plain
// sync.WaitGroup.
type Engine struct {
	cfg    *cmn.Config
	policy *policy.Set
	pars   parser.Parser
	client *httpclient.Client

	boundaryHost   string
	boundaryPrefix string
	tzOffset       httpclient.Offset

	queue   *Queue
	pending *cmn.PendingCounter
	workers *cmn.LimitedWaitGroup
	visited *VisitedSet
	ledger  *reconcile.Ledger

	result *RunResult
	cancel context.CancelFunc
}

var indexHTMLSuffix = regexp.MustCompile(`(?i)index\.html?$`)

func New(cfg *cmn.Config, set *policy.Set, p parser.Parser, client *httpclient.Client, tzOffset httpclient.Offset) *Engine {
	host, prefix := cfg.Boundary()
	return &Engine{
		cfg:            cfg,
		policy:         set,
		pars:           p,
		client:         client,
		boundaryHost:   host,
		boundaryPrefix: prefix,
		tzOffset:       tzOffset,
		queue:          NewQueue(),
		pending:        cmn.NewPendingCounter(),
		workers:        cmn.NewLimitedWaitGroup(cfg.Threads),
		visited:        NewVisitedSet(1 << 16),
		ledger:         &reconcile.Ledger{},
		result:         &RunResult{},
	}
}

func (e *Engine) Ledger() *reconcile.Ledger { return e.ledger }

// escalate records err as the run's failure and, the first time any worker
// does so, cancels the run's context so every other in-flight and
// not-yet-started task observes it promptly instead of continuing to churn
// through a doomed crawl (spec §5: "The run is bounded by either normal
// drain or a fatal error").
func (e *Engine) escalate(err error) {
	if e.result.Escalate(err) && e.cancel != nil {
		e.cancel()
	}
}

// inBoundary reports whether u lies within (boundary_host, boundary_prefix),
// per spec §4.3 step 3.
func (e *Engine) inBoundary(u *url.URL) bool {
	if u.Hostname() != e.boundaryHost {
		return false
	}
	return strings.HasPrefix(u.Path, e.boundaryPrefix)
}

// sanitizedPath strips a trailing index.html(?i), per spec §4.3 step 4.
func sanitizedPath(p string) string {
	return indexHTMLSuffix.ReplaceAllString(p, "")
}

// relativeTo computes u's path relative to the boundary prefix, with no
// leading or trailing slash, for policy classification and local-path
// derivation.
func (e *Engine) relativeTo(u *url.URL) string {
	rel := strings.TrimPrefix(u.Path, e.boundaryPrefix)
	return strings.Trim(rel, "/")
}

// localPath maps a boundary-relative path to its destination on disk.
func (e *Engine) localPath(relative string) string {
	return filepath.Join(e.cfg.Local, filepath.FromSlash(relative))
}

// Run seeds the upstream root directory and drains the traversal to
// completion, per spec §4.3/§5: the run terminates when the queue is empty
// AND the pending counter reaches zero, then cleanup runs unless
// --no-delete is set.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	defer cancel()

	e.pending.Inc()
	e.queue.Push(Task{Kind: ListDir, URL: e.cfg.Upstream.String(), Relative: ""})

	for {
		task, ok := e.queue.Pop()
		if !ok {
			break
		}
		t := task
		e.workers.Go(func() {
			defer e.completeTask()
			select {
			case <-ctx.Done():
				return
			default:
			}
			e.dispatch(ctx, t)
		})
	}
	e.workers.Wait()

	if err := e.result.Err(); err != nil {
		return e.result, err
	}

	if e.cfg.DryRun {
		return e.result, nil
	}
	cleanupResult, err := reconcile.Cleanup(e.ledger, e.cfg.MaxDelete, e.cfg.NoDelete)
	if err != nil {
		e.escalate(err)
		return e.result, err
	}
	e.result.FilesDeleted.Add(int64(cleanupResult.Removed))
	return e.result, nil
}

// completeTask decrements the pending counter and, if that was the last
// outstanding task, closes the queue so the dispatch loop's blocking Pop
// returns. Safe because Inc always precedes a Push for the same task and
// Dec always follows that task's processing in full (including every Inc it
// performed for its own children) -- so pending==0 implies the queue holds
// no task whose Inc hasn't been matched by a Dec, i.e. it is empty.
func (e *Engine) completeTask() {
	if e.pending.Dec() == 0 {
		e.queue.Close()
	}
}

func (e *Engine) enqueue(t Task) {
	e.pending.Inc()
	e.queue.Push(t)
}

func joinRelative(dir, name string) string {
	if dir == "" {
		return name
	}
	return path.Join(dir, name)
}
