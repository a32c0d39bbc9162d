package adapter

import (
	"regexp"
	"strings"
)

// SearchCriteria is the decomposition of a search pattern into the single
// literal directory to enumerate and a predicate over full entry names.
type SearchCriteria struct {
	// Prefix is the wildcard-free directory path to list. Empty means
	// the endpoint root. When the pattern has no wildcard, Prefix is the
	// entire pattern and the whole directory matches.
	Prefix string

	// Match anchors the full entry name. Nil means every entry under
	// Prefix qualifies.
	Match *regexp.Regexp
}

// Matches reports whether the full entry name qualifies.
func (c SearchCriteria) Matches(name string) bool {
	if c.Match == nil {
		return true
	}
	return c.Match.MatchString(name)
}

// Decompose splits a search pattern into SearchCriteria. Backslashes are
// normalized to slashes first. `*` matches zero or more characters within
// a single path segment; every other character is literal. There is no
// recursive descent: listing enumerates exactly the Prefix directory.
func Decompose(pattern string) SearchCriteria {
	pattern = NormalizePath(pattern)

	star := strings.IndexByte(pattern, '*')
	if star < 0 {
		return SearchCriteria{Prefix: pattern}
	}

	// Deepest literal directory: everything up to the last '/' before
	// the first wildcard. No '/' before it means the root is listed.
	prefix := ""
	if slash := strings.LastIndexByte(pattern[:star], '/'); slash >= 0 {
		prefix = pattern[:slash]
	}

	var b strings.Builder
	b.WriteString("^")
	for _, part := range strings.Split(pattern, "*") {
		if b.Len() > 1 {
			b.WriteString("[^/]*")
		}
		b.WriteString(regexp.QuoteMeta(part))
	}
	b.WriteString("$")

	return SearchCriteria{
		Prefix: prefix,
		Match:  regexp.MustCompile(b.String()),
	}
}

// NormalizePath replaces backslashes with slashes. Remote filesystems are
// slash-delimited regardless of the caller's convention.
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// FullName joins a listed directory with an entry name into the full
// entry name a matcher is applied to.
func FullName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, "/") + "/" + name
}
