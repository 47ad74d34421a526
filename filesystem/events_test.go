package filesystem

import (
	"testing"

	"github.com/wwsinagogogo/theia/uri"
)

func TestContainsDeletedDescendant(t *testing.T) {
	ev := NewFileChangesEvent([]FileChange{
		{Type: Deleted, Resource: uri.MustParse("file:///a/b")},
	})

	tests := []struct {
		name     string
		resource string
		types    []ChangeType
		want     bool
	}{
		{"deleted directory itself", "file:///a/b", []ChangeType{Deleted}, true},
		{"descendant of deleted directory", "file:///a/b/c", []ChangeType{Deleted}, true},
		{"deep descendant", "file:///a/b/c/d/e", []ChangeType{Deleted}, true},
		{"descendant with wrong type", "file:///a/b/c", []ChangeType{Updated}, false},
		{"parent of deleted directory", "file:///a", []ChangeType{Deleted}, false},
		{"sibling", "file:///a/c", []ChangeType{Deleted}, false},
		{"no type filter", "file:///a/b/c", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ev.Contains(uri.MustParse(tt.resource), tt.types...)
			if got != tt.want {
				t.Errorf("Contains(%s, %v) = %v, want %v", tt.resource, tt.types, got, tt.want)
			}
		})
	}
}

func TestContainsExactForNonDeleted(t *testing.T) {
	ev := NewFileChangesEvent([]FileChange{
		{Type: Updated, Resource: uri.MustParse("file:///a")},
	})

	if !ev.Contains(uri.MustParse("file:///a"), Updated) {
		t.Error("exact updated match expected")
	}
	// Containment semantics apply to deletions only.
	if ev.Contains(uri.MustParse("file:///a/b"), Updated) {
		t.Error("updated records must not match descendants")
	}
}

func TestFilters(t *testing.T) {
	x := uri.MustParse("file:///x")
	y := uri.MustParse("file:///y")
	ev := NewFileChangesEvent([]FileChange{
		{Type: Updated, Resource: x},
		{Type: Added, Resource: y},
	})

	added := ev.Added()
	if len(added) != 1 || !added[0].Resource.Equal(y) {
		t.Errorf("Added() = %v, want [%v]", added, y)
	}
	if got := ev.Deleted(); len(got) != 0 {
		t.Errorf("Deleted() = %v, want empty", got)
	}
	updated := ev.Updated()
	if len(updated) != 1 || !updated[0].Resource.Equal(x) {
		t.Errorf("Updated() = %v, want [%v]", updated, x)
	}

	if !ev.GotUpdated() || !ev.GotAdded() || ev.GotDeleted() {
		t.Errorf("predicates = added %v deleted %v updated %v",
			ev.GotAdded(), ev.GotDeleted(), ev.GotUpdated())
	}
}

func TestFiltersPreserveOrder(t *testing.T) {
	resources := []string{"file:///1", "file:///2", "file:///3"}
	var changes []FileChange
	for _, r := range resources {
		changes = append(changes, FileChange{Type: Added, Resource: uri.MustParse(r)})
	}
	ev := NewFileChangesEvent(changes)

	for i, c := range ev.Added() {
		if c.Resource.String() != resources[i] {
			t.Fatalf("order not preserved at %d: got %v", i, c.Resource)
		}
	}
}

func TestBatchImmutable(t *testing.T) {
	changes := []FileChange{{Type: Added, Resource: uri.MustParse("file:///a")}}
	ev := NewFileChangesEvent(changes)

	// Mutating the source slice after construction must not affect the batch.
	changes[0] = FileChange{Type: Deleted, Resource: uri.MustParse("file:///z")}

	if !ev.GotAdded() || ev.GotDeleted() {
		t.Error("batch observed a mutation of the source slice")
	}

	// Mutating the copy handed out by Changes must not either.
	out := ev.Changes()
	out[0].Type = Deleted
	if ev.GotDeleted() {
		t.Error("batch observed a mutation of a returned copy")
	}
}
