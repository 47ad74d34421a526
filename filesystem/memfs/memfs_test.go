package memfs

import (
	"context"
	"testing"

	"github.com/wwsinagogogo/theia/filesystem"
	"github.com/wwsinagogogo/theia/uri"
)

const allCaps = filesystem.CapFileReadWrite |
	filesystem.CapFileOpenReadWriteClose |
	filesystem.CapFileFolderCopy |
	filesystem.CapTrash

// newTestProvider returns a provider with a deterministic millisecond clock.
func newTestProvider(t *testing.T, caps filesystem.Capabilities) *Provider {
	t.Helper()
	ts := int64(1700000000000)
	return NewWithClock(caps, func() int64 {
		ts++
		return ts
	})
}

func mustWrite(t *testing.T, p *Provider, path string, content string) uri.URI {
	t.Helper()
	u := uri.MustParse(path)
	err := p.WriteFile(context.Background(), u, []byte(content), filesystem.WriteFileOptions{Create: true, Overwrite: true})
	if err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
	return u
}

func TestStatAndReadDir(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, allCaps)

	dir := uri.MustParse("memfs:///docs")
	if err := p.Mkdir(ctx, dir); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	mustWrite(t, p, "memfs:///docs/b.txt", "bb")
	mustWrite(t, p, "memfs:///docs/a.txt", "a")

	st, err := p.Stat(ctx, dir)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !st.Type.Has(filesystem.TypeDirectory) {
		t.Errorf("Stat type = %v, want directory", st.Type)
	}

	entries, err := p.ReadDir(ctx, dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "a.txt" || entries[1].Name != "b.txt" {
		t.Errorf("ReadDir = %v, want ordered a.txt, b.txt", entries)
	}

	if _, err := p.Stat(ctx, uri.MustParse("memfs:///missing")); filesystem.CodeOf(err) != filesystem.CodeFileNotFound {
		t.Errorf("Stat missing: code = %v, want FileNotFound", filesystem.CodeOf(err))
	}
	if _, err := p.ReadDir(ctx, uri.MustParse("memfs:///docs/a.txt")); filesystem.CodeOf(err) != filesystem.CodeFileNotADirectory {
		t.Errorf("ReadDir on file: code = %v, want FileNotADirectory", filesystem.CodeOf(err))
	}
}

func TestMkdirConflict(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, allCaps)

	u := uri.MustParse("memfs:///d")
	if err := p.Mkdir(ctx, u); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := p.Mkdir(ctx, u); filesystem.CodeOf(err) != filesystem.CodeFileExists {
		t.Errorf("second Mkdir: code = %v, want FileExists", filesystem.CodeOf(err))
	}
}

func TestDeleteNonEmptyDirectory(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, allCaps)

	dir := uri.MustParse("memfs:///d")
	if err := p.Mkdir(ctx, dir); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, p, "memfs:///d/f", "x")

	err := p.Delete(ctx, dir, filesystem.DeleteOptions{Recursive: false})
	if err == nil {
		t.Fatal("non-recursive delete of non-empty directory must fail")
	}

	if err := p.Delete(ctx, dir, filesystem.DeleteOptions{Recursive: true}); err != nil {
		t.Fatalf("recursive delete: %v", err)
	}
	if _, err := p.Stat(ctx, dir); filesystem.CodeOf(err) != filesystem.CodeFileNotFound {
		t.Error("directory survived recursive delete")
	}
}

func TestDeleteToTrash(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, allCaps)
	u := mustWrite(t, p, "memfs:///f", "x")

	if err := p.Delete(ctx, u, filesystem.DeleteOptions{UseTrash: true}); err != nil {
		t.Fatal(err)
	}
	if !p.Trashed(u) {
		t.Error("deleted resource not retained in trash")
	}
}

func TestRenameOverwritePolicy(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, allCaps)
	from := mustWrite(t, p, "memfs:///from", "src")
	to := mustWrite(t, p, "memfs:///to", "dst")

	err := p.Rename(ctx, from, to, filesystem.RenameOptions{})
	if filesystem.CodeOf(err) != filesystem.CodeFileExists {
		t.Errorf("rename without overwrite: code = %v, want FileExists", filesystem.CodeOf(err))
	}

	if err := p.Rename(ctx, from, to, filesystem.RenameOptions{Overwrite: true}); err != nil {
		t.Fatalf("rename with overwrite: %v", err)
	}
	content, err := p.ReadFile(ctx, to)
	if err != nil || string(content) != "src" {
		t.Errorf("ReadFile after rename = %q, %v", content, err)
	}
	if _, err := p.Stat(ctx, from); filesystem.CodeOf(err) != filesystem.CodeFileNotFound {
		t.Error("source survived rename")
	}
}

func TestWriteFileOptions(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, allCaps)
	u := uri.MustParse("memfs:///f")

	err := p.WriteFile(ctx, u, []byte("x"), filesystem.WriteFileOptions{})
	if filesystem.CodeOf(err) != filesystem.CodeFileNotFound {
		t.Errorf("write without create: code = %v, want FileNotFound", filesystem.CodeOf(err))
	}

	if err := p.WriteFile(ctx, u, []byte("x"), filesystem.WriteFileOptions{Create: true}); err != nil {
		t.Fatal(err)
	}

	err = p.WriteFile(ctx, u, []byte("y"), filesystem.WriteFileOptions{Create: true})
	if filesystem.CodeOf(err) != filesystem.CodeFileExists {
		t.Errorf("write without overwrite: code = %v, want FileExists", filesystem.CodeOf(err))
	}
}

func TestOpenReadWriteClose(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, allCaps)
	u := mustWrite(t, p, "memfs:///f", "hello world")

	orwc, ok := filesystem.ToOpenReadWriteClose(p)
	if !ok {
		t.Fatal("narrowing failed despite capability")
	}

	fd, err := orwc.Open(ctx, u, filesystem.OpenOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	buf := make([]byte, 5)
	n, err := orwc.Read(ctx, fd, 6, buf)
	if err != nil || string(buf[:n]) != "world" {
		t.Errorf("Read = %q, %v", buf[:n], err)
	}

	if _, err := orwc.Write(ctx, fd, 0, []byte("HELLO")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := orwc.Close(ctx, fd); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Idempotent close.
	if err := orwc.Close(ctx, fd); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	content, err := p.ReadFile(ctx, u)
	if err != nil || string(content) != "HELLO world" {
		t.Errorf("content after positional write = %q, %v", content, err)
	}
}

func TestFolderCopy(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, allCaps)

	if err := p.Mkdir(ctx, uri.MustParse("memfs:///src")); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, p, "memfs:///src/f", "data")

	fc, ok := filesystem.ToFolderCopy(p)
	if !ok {
		t.Fatal("narrowing failed despite capability")
	}
	if err := fc.Copy(ctx, uri.MustParse("memfs:///src"), uri.MustParse("memfs:///dst"), filesystem.CopyOptions{}); err != nil {
		t.Fatalf("Copy: %v", err)
	}

	content, err := p.ReadFile(ctx, uri.MustParse("memfs:///dst/f"))
	if err != nil || string(content) != "data" {
		t.Errorf("copied content = %q, %v", content, err)
	}
	// Source is untouched.
	if _, err := p.Stat(ctx, uri.MustParse("memfs:///src/f")); err != nil {
		t.Errorf("source missing after copy: %v", err)
	}
}

func TestWatchScopesNotifications(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, allCaps)

	if err := p.Mkdir(ctx, uri.MustParse("memfs:///watched")); err != nil {
		t.Fatal(err)
	}
	if err := p.Mkdir(ctx, uri.MustParse("memfs:///other")); err != nil {
		t.Fatal(err)
	}

	ch, sub := p.SubscribeChanges()
	defer sub.Dispose()

	w, err := p.Watch(ctx, uri.MustParse("memfs:///watched"), filesystem.WatchOptions{
		Recursive: true,
		Excludes:  []string{"*.tmp"},
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	mustWrite(t, p, "memfs:///watched/a.txt", "1")   // reported
	mustWrite(t, p, "memfs:///watched/skip.tmp", "") // excluded
	mustWrite(t, p, "memfs:///other/b.txt", "2")     // outside the watch

	ev := <-ch
	if !ev.Contains(uri.MustParse("memfs:///watched/a.txt"), filesystem.Added) {
		t.Errorf("expected a.txt in batch, got %v", ev)
	}

	select {
	case extra := <-ch:
		t.Errorf("unexpected extra batch: %v", extra)
	default:
	}

	// After disposal nothing further is reported.
	w.Dispose()
	mustWrite(t, p, "memfs:///watched/later.txt", "3")
	select {
	case extra := <-ch:
		t.Errorf("batch after watch disposal: %v", extra)
	default:
	}
}

func TestWatchNotYetCreatedPath(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, allCaps)

	ch, sub := p.SubscribeChanges()
	defer sub.Dispose()

	u := uri.MustParse("memfs:///future")
	w, err := p.Watch(ctx, u, filesystem.WatchOptions{Recursive: true})
	if err != nil {
		t.Fatalf("Watch on non-existent path: %v", err)
	}
	defer w.Dispose()

	if err := p.Mkdir(ctx, u); err != nil {
		t.Fatal(err)
	}

	ev := <-ch
	if !ev.Contains(u, filesystem.Added) {
		t.Errorf("expected creation of watched path in batch, got %v", ev)
	}
}

func TestCapabilityChangeAnnounced(t *testing.T) {
	p := newTestProvider(t, filesystem.CapFileReadWrite)

	ch, sub := p.SubscribeCapabilities()
	defer sub.Dispose()

	p.SetCapabilities(filesystem.CapFileReadWrite | filesystem.CapTrash)

	got := <-ch
	if !got.Has(filesystem.CapTrash) {
		t.Errorf("announced capabilities %v missing Trash", got)
	}
}

func TestHandleMutationsReported(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, allCaps)

	ch, sub := p.SubscribeChanges()
	defer sub.Dispose()

	w, err := p.Watch(ctx, uri.MustParse("memfs:///"), filesystem.WatchOptions{Recursive: true})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Dispose()

	// Creating through a handle reports Added once the handle closes.
	created := uri.MustParse("memfs:///handle.txt")
	fd, err := p.Open(ctx, created, filesystem.OpenOptions{Create: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := p.Write(ctx, fd, 0, []byte("body")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := p.Close(ctx, fd); err != nil {
		t.Fatalf("Close: %v", err)
	}
	ev := <-ch
	if !ev.Contains(created, filesystem.Added) {
		t.Errorf("expected Added for %v, got %v", created, ev)
	}

	// Rewriting an existing file through a handle reports Updated.
	fd, err = p.Open(ctx, created, filesystem.OpenOptions{})
	if err != nil {
		t.Fatalf("Open existing: %v", err)
	}
	if _, err := p.Write(ctx, fd, 0, []byte("B")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := p.Close(ctx, fd); err != nil {
		t.Fatalf("Close: %v", err)
	}
	ev = <-ch
	if !ev.Contains(created, filesystem.Updated) {
		t.Errorf("expected Updated for %v, got %v", created, ev)
	}

	// A read-only handle reports nothing.
	fd, err = p.Open(ctx, created, filesystem.OpenOptions{})
	if err != nil {
		t.Fatalf("Open for read: %v", err)
	}
	buf := make([]byte, 4)
	if _, err := p.Read(ctx, fd, 0, buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if err := p.Close(ctx, fd); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case extra := <-ch:
		t.Errorf("unexpected batch after read-only handle: %v", extra)
	default:
	}
}
