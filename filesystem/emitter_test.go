package filesystem

import (
	"testing"

	"github.com/wwsinagogogo/theia/uri"
)

func TestChangeEmitterFanOut(t *testing.T) {
	e := NewChangeEmitter()
	ch1, d1 := e.Subscribe()
	ch2, d2 := e.Subscribe()
	defer d1.Dispose()
	defer d2.Dispose()

	ev := NewFileChangesEvent([]FileChange{
		{Type: Added, Resource: uri.MustParse("file:///a")},
	})
	e.Emit(ev)

	for i, ch := range []<-chan FileChangesEvent{ch1, ch2} {
		got := <-ch
		if !got.GotAdded() {
			t.Errorf("subscriber %d missed the event", i)
		}
	}
}

func TestChangeEmitterIndependentDisposal(t *testing.T) {
	e := NewChangeEmitter()
	ch1, d1 := e.Subscribe()
	ch2, d2 := e.Subscribe()
	defer d2.Dispose()

	d1.Dispose()
	if _, open := <-ch1; open {
		t.Error("disposed subscription channel still open")
	}

	e.Emit(NewFileChangesEvent([]FileChange{
		{Type: Updated, Resource: uri.MustParse("file:///b")},
	}))

	if got := <-ch2; !got.GotUpdated() {
		t.Error("surviving subscriber missed the event")
	}
	if e.Len() != 1 {
		t.Errorf("Len() = %d, want 1", e.Len())
	}
}

func TestChangeEmitterDisposeIdempotent(t *testing.T) {
	e := NewChangeEmitter()
	_, d := e.Subscribe()

	d.Dispose()
	d.Dispose()
	d.Dispose()

	if e.Len() != 0 {
		t.Errorf("Len() = %d, want 0", e.Len())
	}
}

func TestChangeEmitterOrderPerSubscriber(t *testing.T) {
	e := NewChangeEmitter()
	ch, d := e.Subscribe()
	defer d.Dispose()

	resources := []string{"file:///1", "file:///2", "file:///3"}
	for _, r := range resources {
		e.Emit(NewFileChangesEvent([]FileChange{
			{Type: Added, Resource: uri.MustParse(r)},
		}))
	}

	for _, want := range resources {
		got := <-ch
		if got.Added()[0].Resource.String() != want {
			t.Fatalf("out of order: got %v, want %s", got, want)
		}
	}
}

func TestCapabilityEmitter(t *testing.T) {
	e := NewCapabilityEmitter()
	ch, d := e.Subscribe()
	defer d.Dispose()

	e.Emit(CapFileReadWrite | CapTrash)

	got := <-ch
	if !got.Has(CapFileReadWrite) || !got.Has(CapTrash) {
		t.Errorf("received %v, want FileReadWrite|Trash", got)
	}
}
