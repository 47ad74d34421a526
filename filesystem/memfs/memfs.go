// Package memfs is an in-memory reference implementation of the provider
// contract. It backs the test suites of the layers above and demonstrates
// what a complete backend, including the optional capability groups, looks
// like. It is safe for concurrent use.
package memfs

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wwsinagogogo/theia/filesystem"
	"github.com/wwsinagogogo/theia/internal/glob"
	"github.com/wwsinagogogo/theia/uri"
)

// Scheme is the identifier scheme served by this provider.
const Scheme = "memfs"

type node struct {
	typ      filesystem.FileType
	content  []byte
	children map[string]*node
	mtime    int64
	ctime    int64
}

func (n *node) isDir() bool {
	return n.typ.Has(filesystem.TypeDirectory)
}

func (n *node) size() int64 {
	if n.isDir() {
		return 0
	}
	return int64(len(n.content))
}

type watchEntry struct {
	resource uri.URI
	opts     filesystem.WatchOptions
}

type openFile struct {
	node     *node
	resource uri.URI
	created  bool
	dirty    bool
	closed   bool
}

// Provider is an in-memory filesystem provider rooted at "/".
type Provider struct {
	filesystem.ProviderBase

	mu      sync.Mutex
	root    *node
	fds     map[int]*openFile
	nextFD  int
	watches map[string]*watchEntry
	trash   map[string]*node
	now     func() int64
}

// New creates an empty provider advertising the given capabilities.
func New(caps filesystem.Capabilities) *Provider {
	return NewWithClock(caps, func() int64 { return time.Now().UnixMilli() })
}

// NewWithClock creates a provider with an injected millisecond clock, so
// tests can control modification times and etags.
func NewWithClock(caps filesystem.Capabilities, now func() int64) *Provider {
	ts := now()
	return &Provider{
		ProviderBase: filesystem.NewProviderBase(caps),
		root: &node{
			typ:      filesystem.TypeDirectory,
			children: make(map[string]*node),
			mtime:    ts,
			ctime:    ts,
		},
		fds:     make(map[int]*openFile),
		nextFD:  1,
		watches: make(map[string]*watchEntry),
		trash:   make(map[string]*node),
		now:     now,
	}
}

// lookup resolves a path to its node. Caller holds mu.
func (p *Provider) lookup(resource uri.URI) (*node, error) {
	n := p.root
	for _, name := range segments(resource) {
		if !n.isDir() {
			return nil, filesystem.NewError(filesystem.CodeFileNotADirectory, "%s is not a directory", resource)
		}
		child, ok := n.children[name]
		if !ok {
			return nil, filesystem.NewError(filesystem.CodeFileNotFound, "%s does not exist", resource)
		}
		n = child
	}
	return n, nil
}

// lookupParent resolves the parent directory of a path. Caller holds mu.
func (p *Provider) lookupParent(resource uri.URI) (*node, string, error) {
	parent, err := p.lookup(resource.Parent())
	if err != nil {
		return nil, "", err
	}
	if !parent.isDir() {
		return nil, "", filesystem.NewError(filesystem.CodeFileNotADirectory, "%s is not a directory", resource.Parent())
	}
	return parent, resource.Name(), nil
}

func segments(resource uri.URI) []string {
	p := strings.Trim(resource.Path(), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Watch implements filesystem.Provider. Watching a not-yet-created path is
// valid and becomes live once the path exists.
func (p *Provider) Watch(ctx context.Context, resource uri.URI, opts filesystem.WatchOptions) (filesystem.Disposable, error) {
	id := uuid.NewString()

	p.mu.Lock()
	p.watches[id] = &watchEntry{resource: resource, opts: opts}
	p.mu.Unlock()

	return filesystem.DisposableFunc(func() {
		p.mu.Lock()
		delete(p.watches, id)
		p.mu.Unlock()
	}), nil
}

// emit publishes the subset of changes covered by at least one live watch.
func (p *Provider) emit(changes []filesystem.FileChange) {
	p.mu.Lock()
	var matched []filesystem.FileChange
	for _, c := range changes {
		for _, w := range p.watches {
			if p.watchCovers(w, c.Resource) {
				matched = append(matched, c)
				break
			}
		}
	}
	p.mu.Unlock()

	if len(matched) > 0 {
		p.EmitChanges(filesystem.NewFileChangesEvent(matched))
	}
}

func (p *Provider) watchCovers(w *watchEntry, resource uri.URI) bool {
	if glob.MatchAny(w.opts.Excludes, resource.Path()) {
		return false
	}
	if w.opts.Recursive {
		return w.resource.IsEqualOrParent(resource)
	}
	return w.resource.Equal(resource) || w.resource.Equal(resource.Parent())
}

// Stat implements filesystem.Provider.
func (p *Provider) Stat(ctx context.Context, resource uri.URI) (filesystem.Stat, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.lookup(resource)
	if err != nil {
		return filesystem.Stat{}, err
	}
	return filesystem.Stat{Type: n.typ, MTime: n.mtime, CTime: n.ctime, Size: n.size()}, nil
}

// Mkdir implements filesystem.Provider. Policy: any existing entry at the
// target, directory or not, fails with FileExists; there is no merge.
func (p *Provider) Mkdir(ctx context.Context, resource uri.URI) error {
	p.mu.Lock()
	parent, name, err := p.lookupParent(resource)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	if _, ok := parent.children[name]; ok {
		p.mu.Unlock()
		return filesystem.NewError(filesystem.CodeFileExists, "%s already exists", resource)
	}

	ts := p.now()
	parent.children[name] = &node{
		typ:      filesystem.TypeDirectory,
		children: make(map[string]*node),
		mtime:    ts,
		ctime:    ts,
	}
	parent.mtime = ts
	p.mu.Unlock()

	p.emit([]filesystem.FileChange{{Type: filesystem.Added, Resource: resource}})
	return nil
}

// ReadDir implements filesystem.Provider. Entries are ordered by name.
func (p *Provider) ReadDir(ctx context.Context, resource uri.URI) ([]filesystem.DirEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.lookup(resource)
	if err != nil {
		return nil, err
	}
	if !n.isDir() {
		return nil, filesystem.NewError(filesystem.CodeFileNotADirectory, "%s is not a directory", resource)
	}

	entries := make([]filesystem.DirEntry, 0, len(n.children))
	for name, child := range n.children {
		entries = append(entries, filesystem.DirEntry{Name: name, Type: child.typ})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Delete implements filesystem.Provider.
func (p *Provider) Delete(ctx context.Context, resource uri.URI, opts filesystem.DeleteOptions) error {
	p.mu.Lock()
	parent, name, err := p.lookupParent(resource)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	n, ok := parent.children[name]
	if !ok {
		p.mu.Unlock()
		return filesystem.NewError(filesystem.CodeFileNotFound, "%s does not exist", resource)
	}
	// The closed code set has no "directory not empty"; Unknown is the
	// nearest fit and the message carries the specifics.
	if n.isDir() && !opts.Recursive && len(n.children) > 0 {
		p.mu.Unlock()
		return filesystem.NewError(filesystem.CodeUnknown, "%s is a non-empty directory", resource)
	}

	delete(parent.children, name)
	parent.mtime = p.now()
	if opts.UseTrash && p.Capabilities().Has(filesystem.CapTrash) {
		p.trash[resource.Path()] = n
	}
	p.mu.Unlock()

	p.emit([]filesystem.FileChange{{Type: filesystem.Deleted, Resource: resource}})
	return nil
}

// Trashed reports whether a deleted resource was retained in the trash.
func (p *Provider) Trashed(resource uri.URI) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.trash[resource.Path()]
	return ok
}

// Rename implements filesystem.Provider.
func (p *Provider) Rename(ctx context.Context, from, to uri.URI, opts filesystem.RenameOptions) error {
	p.mu.Lock()
	fromParent, fromName, err := p.lookupParent(from)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	n, ok := fromParent.children[fromName]
	if !ok {
		p.mu.Unlock()
		return filesystem.NewError(filesystem.CodeFileNotFound, "%s does not exist", from)
	}
	toParent, toName, err := p.lookupParent(to)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	if _, exists := toParent.children[toName]; exists && !opts.Overwrite {
		p.mu.Unlock()
		return filesystem.NewError(filesystem.CodeFileExists, "%s already exists", to)
	}

	delete(fromParent.children, fromName)
	toParent.children[toName] = n
	ts := p.now()
	fromParent.mtime = ts
	toParent.mtime = ts
	p.mu.Unlock()

	p.emit([]filesystem.FileChange{
		{Type: filesystem.Deleted, Resource: from},
		{Type: filesystem.Added, Resource: to},
	})
	return nil
}

// ReadFile implements filesystem.FileReadWriteProvider.
func (p *Provider) ReadFile(ctx context.Context, resource uri.URI) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.lookup(resource)
	if err != nil {
		return nil, err
	}
	if n.isDir() {
		return nil, filesystem.NewError(filesystem.CodeFileIsADirectory, "%s is a directory", resource)
	}

	out := make([]byte, len(n.content))
	copy(out, n.content)
	return out, nil
}

// WriteFile implements filesystem.FileReadWriteProvider.
func (p *Provider) WriteFile(ctx context.Context, resource uri.URI, content []byte, opts filesystem.WriteFileOptions) error {
	p.mu.Lock()
	parent, name, err := p.lookupParent(resource)
	if err != nil {
		p.mu.Unlock()
		return err
	}

	n, exists := parent.children[name]
	switch {
	case exists && n.isDir():
		p.mu.Unlock()
		return filesystem.NewError(filesystem.CodeFileIsADirectory, "%s is a directory", resource)
	case exists && !opts.Overwrite:
		p.mu.Unlock()
		return filesystem.NewError(filesystem.CodeFileExists, "%s already exists", resource)
	case !exists && !opts.Create:
		p.mu.Unlock()
		return filesystem.NewError(filesystem.CodeFileNotFound, "%s does not exist", resource)
	}

	ts := p.now()
	changeType := filesystem.Updated
	if !exists {
		n = &node{typ: filesystem.TypeFile, ctime: ts}
		parent.children[name] = n
		parent.mtime = ts
		changeType = filesystem.Added
	}
	n.content = append([]byte(nil), content...)
	n.mtime = ts
	p.mu.Unlock()

	p.emit([]filesystem.FileChange{{Type: changeType, Resource: resource}})
	return nil
}

// Open implements filesystem.OpenReadWriteCloseProvider.
func (p *Provider) Open(ctx context.Context, resource uri.URI, opts filesystem.OpenOptions) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	created := false
	n, err := p.lookup(resource)
	if err != nil {
		if filesystem.CodeOf(err) != filesystem.CodeFileNotFound || !opts.Create {
			return 0, err
		}
		parent, name, perr := p.lookupParent(resource)
		if perr != nil {
			return 0, perr
		}
		ts := p.now()
		n = &node{typ: filesystem.TypeFile, mtime: ts, ctime: ts}
		parent.children[name] = n
		parent.mtime = ts
		created = true
	}
	if n.isDir() {
		return 0, filesystem.NewError(filesystem.CodeFileIsADirectory, "%s is a directory", resource)
	}

	fd := p.nextFD
	p.nextFD++
	p.fds[fd] = &openFile{node: n, resource: resource, created: created}
	return fd, nil
}

// Close implements filesystem.OpenReadWriteCloseProvider. Closing an
// already-closed handle is not an error. Mutations made through the handle
// surface as one change record here, not per Write call.
func (p *Provider) Close(ctx context.Context, fd int) error {
	p.mu.Lock()
	f, ok := p.fds[fd]
	if !ok || f.closed {
		p.mu.Unlock()
		return nil
	}
	f.closed = true
	delete(p.fds, fd)
	created, dirty, resource := f.created, f.dirty, f.resource
	p.mu.Unlock()

	switch {
	case created:
		p.emit([]filesystem.FileChange{{Type: filesystem.Added, Resource: resource}})
	case dirty:
		p.emit([]filesystem.FileChange{{Type: filesystem.Updated, Resource: resource}})
	}
	return nil
}

func (p *Provider) handle(fd int) (*openFile, error) {
	f, ok := p.fds[fd]
	if !ok || f.closed {
		return nil, filesystem.NewError(filesystem.CodeUnknown, "file descriptor %d is not open", fd)
	}
	return f, nil
}

// Read implements filesystem.OpenReadWriteCloseProvider.
func (p *Provider) Read(ctx context.Context, fd int, pos int64, buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := p.handle(fd)
	if err != nil {
		return 0, err
	}
	if pos >= int64(len(f.node.content)) {
		return 0, nil
	}
	return copy(buf, f.node.content[pos:]), nil
}

// Write implements filesystem.OpenReadWriteCloseProvider.
func (p *Provider) Write(ctx context.Context, fd int, pos int64, buf []byte) (int, error) {
	p.mu.Lock()
	f, err := p.handle(fd)
	if err != nil {
		p.mu.Unlock()
		return 0, err
	}

	end := pos + int64(len(buf))
	if end > int64(len(f.node.content)) {
		grown := make([]byte, end)
		copy(grown, f.node.content)
		f.node.content = grown
	}
	copy(f.node.content[pos:], buf)
	f.node.mtime = p.now()
	f.dirty = true
	p.mu.Unlock()

	return len(buf), nil
}

// Copy implements filesystem.FolderCopyProvider with a deep copy.
func (p *Provider) Copy(ctx context.Context, from, to uri.URI, opts filesystem.CopyOptions) error {
	p.mu.Lock()
	src, err := p.lookup(from)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	toParent, toName, err := p.lookupParent(to)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	if _, exists := toParent.children[toName]; exists && !opts.Overwrite {
		p.mu.Unlock()
		return filesystem.NewError(filesystem.CodeFileExists, "%s already exists", to)
	}

	toParent.children[toName] = deepCopy(src, p.now())
	toParent.mtime = p.now()
	p.mu.Unlock()

	p.emit([]filesystem.FileChange{{Type: filesystem.Added, Resource: to}})
	return nil
}

func deepCopy(n *node, ts int64) *node {
	cp := &node{typ: n.typ, mtime: ts, ctime: ts}
	if n.isDir() {
		cp.children = make(map[string]*node, len(n.children))
		for name, child := range n.children {
			cp.children[name] = deepCopy(child, ts)
		}
		return cp
	}
	cp.content = append([]byte(nil), n.content...)
	return cp
}
