package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/urfave/cli"

	"github.com/taoky/tsumugu/cmn"
	"github.com/taoky/tsumugu/policy"
)

// parseVars turns repeated --var KEY=PATTERN bindings into the map
// policy.Compile substitutes into ${KEY} tokens (spec §4.2's "distro-version
// variables", e.g. DEBIAN_CURRENT=bookworm). Not a named flag in spec.md
// (which only says "with distro-version variables" without naming the CLI
// surface); resolved here as an Open Question, recorded in DESIGN.md.
func parseVars(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(raw))
	for _, kv := range raw {
		idx := strings.Index(kv, "=")
		if idx <= 0 {
			return nil, fmt.Errorf("--var %q: expected KEY=PATTERN", kv)
		}
		vars[kv[:idx]] = kv[idx+1:]
	}
	return vars, nil
}

// parseUpstream parses the UPSTREAM argument into a URL. It does not check
// spec §6's "UPSTREAM MUST end with '/'" contract; cmn.Config.Validate does,
// as the single source of truth for the CLI and programmatic callers alike.
func parseUpstream(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &cmn.ConfigError{Msg: "invalid UPSTREAM: " + err.Error()}
	}
	return u, nil
}

// commonConfig fills the fields spec §6 lists as shared between sync and
// list: user agent, parser dialect, exclude/include policy, and the
// variable bindings substituted into them.
func commonConfig(c *cli.Context) (*cmn.Config, *policy.Set, error) {
	vars, err := parseVars(c.StringSlice("var"))
	if err != nil {
		return nil, nil, err
	}
	cfg := &cmn.Config{
		UserAgent: c.String("user-agent"),
		Parser:    c.String("parser"),
		Excludes:  c.StringSlice("exclude"),
		Includes:  c.StringSlice("include"),
		Variables: vars,
	}
	set, err := policy.Compile(cfg.Excludes, cfg.Includes, cfg.Variables)
	if err != nil {
		return nil, nil, err
	}
	return cfg, set, nil
}
