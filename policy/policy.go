// Package policy implements the regex policy engine that compiles user
// --exclude / --include patterns (with distro-version variables) into the
// three-way Include / ListOnly / Stop decision described in spec §4.2.
package policy

import (
	"regexp"
	"strings"
)

type Decision int

const (
	Include Decision = iota
	ListOnly
	Stop
)

func (d Decision) String() string {
	switch d {
	case Stop:
		return "stop"
	case ListOnly:
		return "list-only"
	default:
		return "include"
	}
}

// Set is the compiled PolicySet of spec §3: three disjoint regex lists, plus
// the rev_inner fast-reject regex for sibling distro versions.
type Set struct {
	stopRegexes     []*regexp.Regexp
	listOnlyRegexes []*regexp.Regexp
	includeRegexes  []*regexp.Regexp
	revInner        *regexp.Regexp
}

var varToken = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Compile builds a Set from raw user patterns and variable bindings (e.g.
// DEBIAN_CURRENT=bookworm, UBUNTU_LTS=(jammy|noble)), per spec §4.2.
func Compile(excludes, includes []string, vars map[string]string) (*Set, error) {
	substitutedIncludes := make([]string, len(includes))
	for i, raw := range includes {
		substitutedIncludes[i] = substitute(raw, vars)
	}

	var includeRegexes []*regexp.Regexp
	for _, sub := range substitutedIncludes {
		re, err := regexp.Compile(sub)
		if err != nil {
			return nil, err
		}
		includeRegexes = append(includeRegexes, re)
	}

	var stopRegexes, listOnlyRegexes []*regexp.Regexp
	for _, raw := range excludes {
		sub := substitute(raw, vars)
		re, err := regexp.Compile(sub)
		if err != nil {
			return nil, err
		}
		if isPrefixOfAnyInclude(sub, substitutedIncludes) {
			listOnlyRegexes = append(listOnlyRegexes, re)
		} else {
			stopRegexes = append(stopRegexes, re)
		}
	}

	revInnerPattern := buildRevInner(append(append([]string{}, excludes...), includes...), vars)
	var revInner *regexp.Regexp
	if revInnerPattern != "" {
		re, err := regexp.Compile(revInnerPattern)
		if err != nil {
			return nil, err
		}
		revInner = re
	}

	return &Set{
		stopRegexes:     stopRegexes,
		listOnlyRegexes: listOnlyRegexes,
		includeRegexes:  includeRegexes,
		revInner:        revInner,
	}, nil
}

// neverMatch is a character class that excludes every code point, so it can
// match no input (RE2 has no "(?!)" lookahead to express this).
const neverMatch = `[^\x00-\x{10FFFF}]`

// substitute replaces every ${VAR} token with its bound concrete pattern.
// Unbound variables substitute to an always-failing pattern, so a typo in
// --var never silently widens the match.
func substitute(pattern string, vars map[string]string) string {
	return varToken.ReplaceAllStringFunc(pattern, func(tok string) string {
		name := varToken.FindStringSubmatch(tok)[1]
		if v, ok := vars[name]; ok {
			return "(?:" + v + ")"
		}
		return neverMatch
	})
}

// isPrefixOfAnyInclude implements spec §4.2 step 3: an exclude whose
// compiled prefix (the literal, metacharacter-free run at the start of its
// pattern, ignoring a leading "^" anchor) is a prefix of some include's
// pattern becomes a list-only rule; otherwise it is a stop rule.
func isPrefixOfAnyInclude(excludeSub string, includeSubs []string) bool {
	excludeLiteral := literalPrefix(excludeSub)
	if excludeLiteral == "" {
		return false
	}
	for _, inc := range includeSubs {
		if strings.HasPrefix(inc, excludeLiteral) {
			return true
		}
	}
	return false
}

const regexMeta = `.*+?()[]{}|\^$`

// literalPrefix returns the longest run of literal (non-regex-special)
// characters at the start of pattern, after stripping a leading "^" anchor.
func literalPrefix(pattern string) string {
	p := strings.TrimPrefix(pattern, "^")
	i := 0
	for i < len(p) && !strings.ContainsRune(regexMeta, rune(p[i])) {
		i++
	}
	return p[:i]
}

// buildRevInner constructs the fast-reject regex for sibling distro
// versions: for every bound ${VAR} token in a pattern, substitute that
// one occurrence with a named capture group while substituting every other
// token normally, and union the results with alternation (spec §4.2 step 2).
// Tokens of unbound variables produce no variant.
func buildRevInner(patterns []string, vars map[string]string) string {
	var variants []string
	for _, raw := range patterns {
		matches := varToken.FindAllStringSubmatchIndex(raw, -1)
		for i, m := range matches {
			if _, bound := vars[raw[m[2]:m[3]]]; !bound {
				continue
			}
			variant := rebuildWithCapture(raw, matches, i, vars)
			if variant != "" {
				variants = append(variants, "(?:"+variant+")")
			}
		}
	}
	if len(variants) == 0 {
		return ""
	}
	return strings.Join(variants, "|")
}

// rebuildWithCapture reconstructs raw with the tokenIdx-th ${VAR} occurrence
// replaced by a named capture and every other occurrence substituted
// normally.
func rebuildWithCapture(raw string, matches [][]int, tokenIdx int, vars map[string]string) string {
	var sb strings.Builder
	prev := 0
	for i, m := range matches {
		start, end := m[0], m[1]
		sb.WriteString(raw[prev:start])
		if i == tokenIdx {
			sb.WriteString(`(?P<distro_ver>.+)`)
		} else {
			nameStart, nameEnd := m[2], m[3]
			name := raw[nameStart:nameEnd]
			if v, ok := vars[name]; ok {
				sb.WriteString("(?:" + v + ")")
			} else {
				sb.WriteString(neverMatch)
			}
		}
		prev = end
	}
	sb.WriteString(raw[prev:])
	return sb.String()
}

// Classify decides Include/ListOnly/Stop for a relative path, per the
// decision table in spec §4.2. Paths are compared without a trailing
// slash; directories are matched by their bare name plus path.
func (s *Set) Classify(relativePath string) Decision {
	p := strings.TrimSuffix(relativePath, "/")
	for _, re := range s.stopRegexes {
		if re.MatchString(p) {
			return Stop
		}
	}
	for _, re := range s.includeRegexes {
		if re.MatchString(p) {
			return Include
		}
	}
	if s.revInner != nil && s.revInner.MatchString(p) {
		return Stop
	}
	for _, re := range s.listOnlyRegexes {
		if re.MatchString(p) {
			return ListOnly
		}
	}
	return Include
}
