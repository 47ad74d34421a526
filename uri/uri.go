// Package uri provides the resource identifier used as the key for every
// filesystem operation and event. A URI is an immutable scheme-qualified,
// slash-separated path with hierarchical comparison helpers.
package uri

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrInvalid is returned when a string cannot be parsed into a URI.
var ErrInvalid = errors.New("invalid resource identifier")

// URI is an opaque, comparable locator for a resource on some backend.
// The zero value is not a valid URI; construct one via Parse, New or File.
type URI struct {
	scheme string
	path   string
}

// New builds a URI from a scheme and a path. The path is normalized to an
// absolute, slash-separated form with traversal segments resolved.
func New(scheme, p string) (URI, error) {
	if scheme == "" {
		return URI{}, fmt.Errorf("%w: empty scheme", ErrInvalid)
	}
	cleaned, err := cleanPath(p)
	if err != nil {
		return URI{}, err
	}
	return URI{scheme: scheme, path: cleaned}, nil
}

// Parse parses a "scheme:///path" string into a URI.
func Parse(s string) (URI, error) {
	idx := strings.Index(s, "://")
	if idx <= 0 {
		return URI{}, fmt.Errorf("%w: %q has no scheme separator", ErrInvalid, s)
	}
	return New(s[:idx], s[idx+3:])
}

// File builds a URI with the "file" scheme for the given path.
func File(p string) (URI, error) {
	return New("file", p)
}

// MustParse is Parse for statically known inputs, such as test fixtures.
// It panics on malformed input.
func MustParse(s string) URI {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// cleanPath normalizes p to an absolute slash path and rejects paths that
// would climb above the root.
func cleanPath(p string) (string, error) {
	if p == "" {
		return "/", nil
	}
	if strings.ContainsRune(p, '\\') {
		return "", fmt.Errorf("%w: %q contains backslashes", ErrInvalid, p)
	}
	if strings.ContainsRune(p, 0) {
		return "", fmt.Errorf("%w: path contains NUL byte", ErrInvalid)
	}

	// Count depth before cleaning so "a/../../b" style escapes are rejected
	// rather than silently clamped to the root.
	depth := 0
	for _, part := range strings.Split(strings.TrimPrefix(p, "/"), "/") {
		switch part {
		case "", ".":
		case "..":
			depth--
			if depth < 0 {
				return "", fmt.Errorf("%w: %q escapes the root", ErrInvalid, p)
			}
		default:
			depth++
		}
	}

	cleaned := path.Clean("/" + strings.TrimPrefix(p, "/"))
	return cleaned, nil
}

// Scheme returns the backend scheme, e.g. "file".
func (u URI) Scheme() string {
	return u.scheme
}

// Path returns the absolute slash-separated path.
func (u URI) Path() string {
	return u.path
}

// String renders the canonical "scheme:///path" form.
func (u URI) String() string {
	return u.scheme + "://" + u.path
}

// IsZero reports whether u is the zero value.
func (u URI) IsZero() bool {
	return u.scheme == "" && u.path == ""
}

// Name returns the last path segment, or "" for the root.
func (u URI) Name() string {
	if u.IsRoot() {
		return ""
	}
	return path.Base(u.path)
}

// IsRoot reports whether u denotes the root of its scheme.
func (u URI) IsRoot() bool {
	return u.path == "/"
}

// Parent returns the parent identifier. The parent of the root is the root.
func (u URI) Parent() URI {
	if u.IsRoot() {
		return u
	}
	return URI{scheme: u.scheme, path: path.Dir(u.path)}
}

// Join returns a child identifier with the given name segments appended.
func (u URI) Join(names ...string) URI {
	p := u.path
	for _, name := range names {
		p = p + "/" + strings.Trim(name, "/")
	}
	return URI{scheme: u.scheme, path: path.Clean(p)}
}

// Equal reports canonical string equality.
func (u URI) Equal(other URI) bool {
	return u.scheme == other.scheme && u.path == other.path
}

// IsEqualOrParent reports whether u equals other or is an ancestor directory
// of it. Identifiers from different schemes are never related.
func (u URI) IsEqualOrParent(other URI) bool {
	if u.scheme != other.scheme {
		return false
	}
	if u.path == other.path {
		return true
	}
	prefix := u.path
	if prefix != "/" {
		prefix += "/"
	}
	return strings.HasPrefix(other.path, prefix)
}
