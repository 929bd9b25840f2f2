package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os/signal"
	"path"
	"strings"
	"syscall"

	"github.com/urfave/cli"

	"github.com/taoky/tsumugu/cmn"
	"github.com/taoky/tsumugu/httpclient"
	"github.com/taoky/tsumugu/parser"
	"github.com/taoky/tsumugu/policy"
)

var listCommand = cli.Command{
	Name:      "list",
	Usage:     "print UPSTREAM's tree without touching local disk",
	ArgsUsage: "UPSTREAM",
	Flags: []cli.Flag{
		userAgentFlag, parserFlag, excludeFlag, includeFlag, varFlag,
		upstreamBaseFlag,
	},
	Action: listAction,
}

func listAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("list needs exactly one argument: UPSTREAM", cmn.ExitConfigError)
	}

	cfg, set, err := commonConfig(c)
	if err != nil {
		return cli.NewExitError(err.Error(), cmn.ExitConfigError)
	}
	upstream, err := parseUpstream(c.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err.Error(), cmn.ExitConfigError)
	}
	cfg.Upstream = upstream
	cfg.UpstreamBase = c.String("upstream-base")
	if cfg.UpstreamBase == "" {
		cfg.UpstreamBase = "/"
	}
	// list has no --threads flag; Validate requires a positive worker count.
	cfg.Threads = cmn.DefaultThreads
	if err := cfg.Validate(); err != nil {
		return cli.NewExitError(err.Error(), cmn.ExitConfigError)
	}

	p, err := parser.Get(cfg.Parser)
	if err != nil {
		return cli.NewExitError(err.Error(), cmn.ExitConfigError)
	}
	client := httpclient.New(cmn.TransportArgs{
		UserAgent:    cfg.UserAgent,
		MaxRedirects: cmn.DefaultMaxRedirects,
	}, cmn.DefaultRetry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := upstream.ResolveReference(&url.URL{Path: strings.TrimPrefix(cfg.UpstreamBase, "/")})
	w := &lister{client: client, parser: p, policy: set, boundaryHost: cfg.Upstream.Hostname(), boundaryPrefix: cfg.Upstream.Path}
	return w.walk(ctx, root.String(), "")
}

// lister is a minimal, sequential, read-only walk of the same boundary and
// policy rules traverse.Engine enforces during sync (spec §4.3 steps 1-6),
// without the worker pool, visited set, or local reconciliation a mutating
// run needs: list has no deletion ledger and no destination to write to, so
// it is not worth standing up the full engine for a diagnostic print.
type lister struct {
	client         *httpclient.Client
	parser         parser.Parser
	policy         *policy.Set
	boundaryHost   string
	boundaryPrefix string
}

func (w *lister) inBoundary(u *url.URL) bool {
	return u.Hostname() == w.boundaryHost && strings.HasPrefix(u.Path, w.boundaryPrefix)
}

func (w *lister) walk(ctx context.Context, dirURL, relative string) error {
	resp, err := w.client.Get(ctx, dirURL)
	if err != nil {
		return &cmn.ListingFailure{URL: dirURL, Cause: err}
	}
	defer resp.Body.Close()

	finalURL := resp.Request.URL
	if !w.inBoundary(finalURL) {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &cmn.ListingFailure{URL: dirURL, Cause: err}
	}
	items, err := w.parser.Parse(finalURL, body)
	if err != nil {
		return &cmn.ListingFailure{URL: dirURL, Cause: err}
	}

	for _, item := range items {
		rel := path.Join(relative, item.Name)
		if w.policy.Classify(rel) == policy.Stop {
			continue
		}
		switch item.Kind {
		case parser.Directory:
			fmt.Println(rel + "/")
			if err := w.walk(ctx, item.Href, rel); err != nil {
				return err
			}
		case parser.Symlink:
			fmt.Println(rel + " -> " + item.Href)
		default:
			fmt.Println(rel)
		}
	}
	return nil
}
