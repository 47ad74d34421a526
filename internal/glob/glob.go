// Package glob matches slash paths against watcher exclude patterns.
// Patterns without a slash match against the basename only; patterns with
// slashes match against the full path, where "**" spans any number of
// segments and "*" matches within one segment.
package glob

import (
	"path"
	"strings"
)

// Match reports whether the slash-separated p matches pattern. A malformed
// pattern matches nothing.
func Match(pattern, p string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}

	if !strings.Contains(pattern, "/") && !strings.Contains(pattern, "**") {
		ok, err := path.Match(pattern, path.Base(p))
		return err == nil && ok
	}

	return matchSegments(
		strings.Split(strings.Trim(pattern, "/"), "/"),
		strings.Split(strings.Trim(p, "/"), "/"),
	)
}

// MatchAny reports whether any of the patterns matches p.
func MatchAny(patterns []string, p string) bool {
	for _, pattern := range patterns {
		if Match(pattern, p) {
			return true
		}
	}
	return false
}

func matchSegments(pattern, names []string) bool {
	if len(pattern) == 0 {
		return len(names) == 0
	}

	if pattern[0] == "**" {
		// "**" may consume zero or more leading segments.
		for skip := 0; skip <= len(names); skip++ {
			if matchSegments(pattern[1:], names[skip:]) {
				return true
			}
		}
		return false
	}

	if len(names) == 0 {
		return false
	}
	ok, err := path.Match(pattern[0], names[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], names[1:])
}
