package scanner

import (
	"path/filepath"
	"strings"
)

// ignorePattern is a single gitignore-style pattern from a .ifqignore
// file. Supported forms: plain names, path-rooted patterns (leading /),
// globs per filepath.Match within a segment, ** for any number of
// segments, and ! negation.
type ignorePattern struct {
	negate   bool
	rooted   bool
	segments []string
}

func parseIgnorePattern(raw string) ignorePattern {
	p := ignorePattern{}
	if strings.HasPrefix(raw, "!") {
		p.negate = true
		raw = raw[1:]
	}
	if strings.HasPrefix(raw, "/") {
		p.rooted = true
		raw = raw[1:]
	}
	raw = strings.TrimSuffix(raw, "/")
	p.segments = strings.Split(raw, "/")
	return p
}

// matchesIgnore applies patterns in order; a later negation overrides an
// earlier match, as in gitignore.
func matchesIgnore(relPath string, patterns []ignorePattern) bool {
	ignored := false
	for _, p := range patterns {
		if p.match(relPath) {
			ignored = !p.negate
		}
	}
	return ignored
}

func (p ignorePattern) match(relPath string) bool {
	pathSegs := strings.Split(relPath, "/")
	if p.rooted {
		return matchSegments(p.segments, pathSegs)
	}
	// Unrooted patterns may match at any depth.
	for start := 0; start < len(pathSegs); start++ {
		if matchSegments(p.segments, pathSegs[start:]) {
			return true
		}
	}
	return false
}

// matchSegments matches pattern segments against the leading path
// segments. A pattern shorter than the path matches a prefix, which makes
// directory patterns cover their contents.
func matchSegments(patSegs, pathSegs []string) bool {
	if len(patSegs) == 0 {
		return true
	}
	if patSegs[0] == "**" {
		for i := 0; i <= len(pathSegs); i++ {
			if matchSegments(patSegs[1:], pathSegs[i:]) {
				return true
			}
		}
		return false
	}
	if len(pathSegs) == 0 {
		return false
	}
	if ok, err := filepath.Match(patSegs[0], pathSegs[0]); err != nil || !ok {
		return false
	}
	return matchSegments(patSegs[1:], pathSegs[1:])
}
