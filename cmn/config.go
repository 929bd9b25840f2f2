package cmn

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Dialect names accepted by --parser, per spec §6.
const (
	DialectNginx           = "nginx"
	DialectApacheF2        = "apache-f2"
	DialectLighttpd        = "lighttpd"
	DialectCaddy           = "caddy"
	DialectDirectoryLister = "directory-lister"
	DialectDocker          = "docker"
)

var Dialects = []string{
	DialectNginx, DialectApacheF2, DialectDocker,
	DialectDirectoryLister, DialectLighttpd, DialectCaddy,
}

func ValidDialect(name string) bool {
	for _, d := range Dialects {
		if d == name {
			return true
		}
	}
	return false
}

// Config is assembled once from CLI flags (cmd/tsumugu/common.go, sync.go
// and list.go) and shared
// read-only across every worker goroutine, mirroring the teacher's
// cmn.Config: one struct, validated at startup, never mutated afterward.
type Config struct {
	// common
	UserAgent string
	Parser    string
	Excludes  []string
	Includes  []string
	Variables map[string]string

	// sync-only
	Upstream        *url.URL
	Local           string
	DryRun          bool
	Threads         int
	NoDelete        bool
	MaxDelete       int
	TimezoneFile    string
	TimezoneOffset  *time.Duration
	Retry           int
	HeadBeforeGet   bool
	SkipIfExists    *regexp.Regexp
	CompareSizeOnly *regexp.Regexp
	AllowMtimeFromParser bool
	AptPackages     bool
	YumPackages     bool
	MetricsAddr     string

	// list-only
	UpstreamBase string
}

// DefaultThreads, DefaultMaxDelete, DefaultRetry mirror spec §6's stated CLI
// defaults; cmd/tsumugu falls back to these when a flag is unset.
const (
	DefaultThreads   = 2
	DefaultMaxDelete = 100
	DefaultRetry     = 3

	// DefaultMemoryCeiling is the RSS/heap ceiling the memory guardrail
	// enforces before aborting with exit 3 (spec §5).
	DefaultMemoryCeiling = 4 * GiB
)

// Validate enforces the configuration-time invariants named in spec §6/§7:
// the upstream must end with '/', and it must parse as an absolute URL.
// Reported as *ConfigError before any network I/O.
func (c *Config) Validate() error {
	if c.Upstream == nil {
		return &ConfigError{Msg: "missing upstream URL"}
	}
	if !strings.HasSuffix(c.Upstream.Path, "/") {
		return &ConfigError{Msg: "upstream URL must end with '/': " + c.Upstream.String()}
	}
	if !c.Upstream.IsAbs() {
		return &ConfigError{Msg: "upstream URL must be absolute: " + c.Upstream.String()}
	}
	if c.Parser != "" && !ValidDialect(c.Parser) {
		return &ConfigError{Msg: "unknown --parser dialect: " + c.Parser}
	}
	if c.Threads <= 0 {
		return &ConfigError{Msg: "--threads must be positive"}
	}
	return nil
}

// Boundary returns the (host, path-prefix) pair that bounds the crawl, per
// spec §6's Upstream URL contract. Host comparison is port-insensitive.
func (c *Config) Boundary() (host, prefix string) {
	return c.Upstream.Hostname(), c.Upstream.Path
}
