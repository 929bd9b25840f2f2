package main

import "github.com/urfave/cli"

// Flags shared between sync and list, per spec §6: "Common flags:
// --user-agent, --parser, --exclude (repeatable), --include (repeatable)".
// Declared once and reused across cli.Command.Flags the way the teacher
// declares fromFileFlag/depsFileFlag once in commands/flag.go and reuses
// them across etlCmds' subcommands.
var (
	userAgentFlag = cli.StringFlag{
		Name:  "user-agent",
		Usage: "value of the User-Agent header sent with every request",
	}
	parserFlag = cli.StringFlag{
		Name:  "parser",
		Usage: "listing dialect: nginx, apache-f2, docker, directory-lister, lighttpd, caddy",
		Value: "nginx",
	}
	excludeFlag = cli.StringSliceFlag{
		Name:  "exclude",
		Usage: "regex (repeatable) of relative paths to drop from the mirror",
	}
	includeFlag = cli.StringSliceFlag{
		Name:  "include",
		Usage: "regex (repeatable) carving an exception out of an --exclude",
	}
	varFlag = cli.StringSliceFlag{
		Name:  "var",
		Usage: "KEY=PATTERN binding substituted into ${KEY} tokens in --exclude/--include (repeatable)",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "pushgateway address to push run counters to at exit (optional)",
	}
)

var (
	dryRunFlag = cli.BoolFlag{
		Name:  "dry-run",
		Usage: "report what would change without touching the filesystem",
	}
	threadsFlag = cli.IntFlag{
		Name:  "threads",
		Usage: "number of concurrent worker goroutines",
		Value: 2,
	}
	noDeleteFlag = cli.BoolFlag{
		Name:  "no-delete",
		Usage: "skip the deletion pass entirely",
	}
	maxDeleteFlag = cli.IntFlag{
		Name:  "max-delete",
		Usage: "abort cleanup if more than this many local files would be deleted",
		Value: 100,
	}
	timezoneFileFlag = cli.StringFlag{
		Name:  "timezone-file",
		Usage: "URL of a small upstream file used to calibrate naive listing mtimes against its Last-Modified header",
	}
	timezoneFlag = cli.Float64Flag{
		Name:  "timezone",
		Usage: "fixed UTC offset in hours, overrides --timezone-file calibration",
	}
	retryFlag = cli.IntFlag{
		Name:  "retry",
		Usage: "retries for a transient listing or download failure",
		Value: 3,
	}
	headBeforeGetFlag = cli.BoolFlag{
		Name:  "head-before-get",
		Usage: "HEAD before GET when comparing size against a local file",
	}
	skipIfExistsFlag = cli.StringFlag{
		Name:  "skip-if-exists",
		Usage: "regex of relative paths to skip whenever a local copy already exists",
	}
	compareSizeOnlyFlag = cli.StringFlag{
		Name:  "compare-size-only",
		Usage: "regex of relative paths reconciled by size alone, skipping the mtime comparison",
	}
	allowMtimeFromParserFlag = cli.BoolFlag{
		Name:  "allow-mtime-from-parser",
		Usage: "set a downloaded file's mtime from the listing's reported mtime instead of leaving it at write time",
	}
	aptPackagesFlag = cli.BoolFlag{
		Name:  "apt-packages",
		Usage: "after sync, verify mirrored .deb files against the dists/ Packages index",
	}
	yumPackagesFlag = cli.BoolFlag{
		Name:  "yum-packages",
		Usage: "after sync, verify mirrored .rpm files against the repodata/ primary index",
	}
	memoryCeilingFlag = cli.Int64Flag{
		Name:  "memory-ceiling",
		Usage: "bytes of process Sys memory the guardrail allows before aborting (default 4GiB)",
	}
)

var upstreamBaseFlag = cli.StringFlag{
	Name:  "upstream-base",
	Usage: "path under UPSTREAM to start listing from",
	Value: "/",
}
