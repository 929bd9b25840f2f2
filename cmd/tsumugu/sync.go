package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"regexp"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/taoky/tsumugu/aptyum"
	"github.com/taoky/tsumugu/cmn"
	"github.com/taoky/tsumugu/httpclient"
	"github.com/taoky/tsumugu/metrics"
	"github.com/taoky/tsumugu/parser"
	"github.com/taoky/tsumugu/traverse"
)

var syncCommand = cli.Command{
	Name:      "sync",
	Usage:     "mirror UPSTREAM into LOCAL",
	ArgsUsage: "UPSTREAM LOCAL",
	Flags: []cli.Flag{
		userAgentFlag, parserFlag, excludeFlag, includeFlag, varFlag, metricsAddrFlag,
		dryRunFlag, threadsFlag, noDeleteFlag, maxDeleteFlag,
		timezoneFileFlag, timezoneFlag, retryFlag, headBeforeGetFlag,
		skipIfExistsFlag, compareSizeOnlyFlag, allowMtimeFromParserFlag,
		aptPackagesFlag, yumPackagesFlag, memoryCeilingFlag,
	},
	Action: syncAction,
}

func syncAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.NewExitError("sync needs exactly two arguments: UPSTREAM LOCAL", cmn.ExitConfigError)
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
	cfg.Local = c.Args().Get(1)

	cfg.DryRun = c.Bool("dry-run")
	cfg.Threads = c.Int("threads")
	if cfg.Threads == 0 {
		cfg.Threads = cmn.DefaultThreads
	}
	cfg.NoDelete = c.Bool("no-delete")
	cfg.MaxDelete = c.Int("max-delete")
	if cfg.MaxDelete == 0 {
		cfg.MaxDelete = cmn.DefaultMaxDelete
	}
	cfg.TimezoneFile = c.String("timezone-file")
	if c.IsSet("timezone") {
		d := time.Duration(c.Float64("timezone") * float64(time.Hour))
		cfg.TimezoneOffset = &d
	}
	cfg.Retry = c.Int("retry")
	if cfg.Retry == 0 {
		cfg.Retry = cmn.DefaultRetry
	}
	cfg.HeadBeforeGet = c.Bool("head-before-get")
	if pat := c.String("skip-if-exists"); pat != "" {
		re, err := regexp.Compile(pat)
		if err != nil {
			return cli.NewExitError("--skip-if-exists: "+err.Error(), cmn.ExitConfigError)
		}
		cfg.SkipIfExists = re
	}
	if pat := c.String("compare-size-only"); pat != "" {
		re, err := regexp.Compile(pat)
		if err != nil {
			return cli.NewExitError("--compare-size-only: "+err.Error(), cmn.ExitConfigError)
		}
		cfg.CompareSizeOnly = re
	}
	cfg.AllowMtimeFromParser = c.Bool("allow-mtime-from-parser")
	cfg.AptPackages = c.Bool("apt-packages")
	cfg.YumPackages = c.Bool("yum-packages")
	cfg.MetricsAddr = c.String("metrics-addr")

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
	}, cfg.Retry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tzOffset httpclient.Offset
	if cfg.TimezoneOffset != nil {
		tzOffset = httpclient.Offset(*cfg.TimezoneOffset)
	} else if cfg.TimezoneFile != "" {
		if resp, rootErr := client.Get(ctx, cfg.Upstream.String()); rootErr == nil {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr == nil {
				if items, parseErr := p.Parse(cfg.Upstream, body); parseErr == nil {
					if offset, ok := httpclient.Calibrate(ctx, client, cfg.TimezoneFile, items); ok {
						tzOffset = offset
					}
				}
			}
		}
	}

	ceiling := c.Int64("memory-ceiling")
	guard := metrics.NewGuardrail(ceiling)
	guardCtx, guardCancel := context.WithCancel(ctx)
	defer guardCancel()
	go guard.Run(guardCtx)

	engine := traverse.New(cfg, set, p, client, tzOffset)
	result, runErr := engine.Run(ctx)
	guardCancel()

	snap := metrics.NewSnapshot()
	snap.Fill(result)
	snap.Disk.Sample()
	if pushErr := snap.Push(cfg.MetricsAddr); pushErr != nil {
		cmn.Log.Warningf("metrics push to %s failed: %v", cfg.MetricsAddr, pushErr)
	}

	if runErr != nil {
		return cli.NewExitError(runErr.Error(), cmn.ExitCode(runErr))
	}

	runIntegrityChecks(cfg)

	fmt.Printf("dirs=%d files=%d bytes=%d skipped=%d deleted=%d retries=%d\n",
		result.DirsListed.Load(), result.FilesFetched.Load(), result.BytesFetched.Load(),
		result.FilesSkipped.Load(), result.FilesDeleted.Load(), result.RetriesIssued.Load())
	return nil
}

// runIntegrityChecks runs the best-effort APT/YUM verification (spec §4.6)
// after the sync and its deletion pass have both completed. Failures are
// logged, never escalated: spec §4.6 requires this check to run strictly
// after cleanup, with nothing left to protect by aborting.
func runIntegrityChecks(cfg *cmn.Config) {
	if cfg.AptPackages {
		indexDirs, err := aptyum.FindDebIndexes(cfg.Local)
		if err != nil {
			cmn.Log.Warningf("apt package verification: scanning %s: %v", cfg.Local, err)
		}
		for _, dir := range indexDirs {
			// Filename entries in a Packages index are relative to the
			// mirror root (where dists/ and pool/ are siblings), not to
			// the binary-*/ directory the index itself lives in.
			if result, err := aptyum.VerifyDeb(cfg.Local, dir); err != nil {
				cmn.Log.Warningf("apt package verification (%s) failed: %v", dir, err)
			} else {
				reportMismatches("apt", result)
			}
		}
	}
	if cfg.YumPackages {
		repodataDirs, err := aptyum.FindRepodataDirs(cfg.Local)
		if err != nil {
			cmn.Log.Warningf("yum package verification: scanning %s: %v", cfg.Local, err)
		}
		for _, dir := range repodataDirs {
			repoRoot := filepath.Dir(dir)
			if result, err := aptyum.VerifyRepomd(repoRoot, dir); err != nil {
				cmn.Log.Warningf("yum package verification (%s) failed: %v", dir, err)
			} else {
				reportMismatches("yum", result)
			}
		}
	}
}

func reportMismatches(kind string, result *aptyum.Result) {
	cmn.Log.Infof("%s verification: checked %d packages, %d mismatches", kind, result.Checked, len(result.Mismatches))
	for _, m := range result.Mismatches {
		cmn.Log.Warningf("%s mismatch: %s", kind, m.String())
	}
}
