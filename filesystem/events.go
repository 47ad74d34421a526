package filesystem

import (
	"strings"

	"github.com/wwsinagogogo/theia/uri"
)

// ChangeType classifies a single file change.
type ChangeType int

const (
	// Updated marks content or metadata changes to an existing resource.
	Updated ChangeType = iota
	// Added marks a newly appearing resource.
	Added
	// Deleted marks a removed resource.
	Deleted
)

// String returns a short log-friendly name.
func (t ChangeType) String() string {
	switch t {
	case Updated:
		return "updated"
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// FileChange is one immutable (kind, resource) change record.
type FileChange struct {
	Type     ChangeType
	Resource uri.URI
}

// FileChangesEvent is an immutable ordered batch of change records produced
// once per provider notification cycle. Batches are expected to be small and
// short-lived; filters below are O(n) and uncached.
type FileChangesEvent struct {
	changes []FileChange
}

// NewFileChangesEvent copies changes into a new immutable batch.
func NewFileChangesEvent(changes []FileChange) FileChangesEvent {
	cp := make([]FileChange, len(changes))
	copy(cp, changes)
	return FileChangesEvent{changes: cp}
}

// Changes returns a copy of the records in original order.
func (e FileChangesEvent) Changes() []FileChange {
	cp := make([]FileChange, len(e.changes))
	copy(cp, e.changes)
	return cp
}

// Len returns the number of records in the batch.
func (e FileChangesEvent) Len() int {
	return len(e.changes)
}

// Contains reports whether the batch includes a record for resource,
// restricted to the given types when any are listed. A Deleted record for a
// directory matches the directory itself and every descendant, even though
// no explicit record exists per descendant.
func (e FileChangesEvent) Contains(resource uri.URI, types ...ChangeType) bool {
	for _, c := range e.changes {
		if len(types) > 0 && !containsType(types, c.Type) {
			continue
		}
		if c.Resource.Equal(resource) {
			return true
		}
		if c.Type == Deleted && c.Resource.IsEqualOrParent(resource) {
			return true
		}
	}
	return false
}

func containsType(types []ChangeType, t ChangeType) bool {
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}

// Added returns the Added records, preserving batch order.
func (e FileChangesEvent) Added() []FileChange {
	return e.ofType(Added)
}

// Deleted returns the Deleted records, preserving batch order.
func (e FileChangesEvent) Deleted() []FileChange {
	return e.ofType(Deleted)
}

// Updated returns the Updated records, preserving batch order.
func (e FileChangesEvent) Updated() []FileChange {
	return e.ofType(Updated)
}

func (e FileChangesEvent) ofType(t ChangeType) []FileChange {
	var out []FileChange
	for _, c := range e.changes {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// GotAdded reports whether any Added record is present.
func (e FileChangesEvent) GotAdded() bool {
	return e.gotType(Added)
}

// GotDeleted reports whether any Deleted record is present.
func (e FileChangesEvent) GotDeleted() bool {
	return e.gotType(Deleted)
}

// GotUpdated reports whether any Updated record is present.
func (e FileChangesEvent) GotUpdated() bool {
	return e.gotType(Updated)
}

func (e FileChangesEvent) gotType(t ChangeType) bool {
	for _, c := range e.changes {
		if c.Type == t {
			return true
		}
	}
	return false
}

// String summarizes the batch for logs.
func (e FileChangesEvent) String() string {
	var b strings.Builder
	for i, c := range e.changes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.Type.String())
		b.WriteByte(' ')
		b.WriteString(c.Resource.String())
	}
	return b.String()
}
